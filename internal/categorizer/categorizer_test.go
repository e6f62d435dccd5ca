package categorizer_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathexis-net/cathexis/internal/categorizer"
	"github.com/cathexis-net/cathexis/internal/model"
)

func simpleMLP(t *testing.T) *categorizer.MLP {
	t.Helper()
	mlp, err := categorizer.NewMLP(2, 2, 2,
		[][]float64{{1, 0}, {0, 1}},
		[]float64{0, 0},
		[][]float64{{1, 0}, {0, 1}},
		[]float64{0, 0},
	)
	require.NoError(t, err)
	return mlp
}

func TestNewMLPRejectsZeroCategories(t *testing.T) {
	_, err := categorizer.NewMLP(2, 2, 0, nil, nil, nil, nil)
	assert.True(t, model.IsKind(err, model.KindInvalidCategoryCount))
}

func TestNewMLPValidatesShapes(t *testing.T) {
	_, err := categorizer.NewMLP(2, 2, 2, [][]float64{{1, 0}}, []float64{0, 0}, [][]float64{{1, 0}, {0, 1}}, []float64{0, 0})
	assert.True(t, model.IsKind(err, model.KindDimensionMismatch))
}

func TestPredictSumsToOne(t *testing.T) {
	mlp := simpleMLP(t)
	probs, err := mlp.Predict([]float64{1, 2})
	require.NoError(t, err)
	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestPredictDimensionMismatch(t *testing.T) {
	mlp := simpleMLP(t)
	_, err := mlp.Predict([]float64{1})
	assert.True(t, model.IsKind(err, model.KindDimensionMismatch))
}

func TestAssignTieBreaksLowestIndex(t *testing.T) {
	mlp, err := categorizer.NewMLP(2, 2, 3,
		[][]float64{{1, 0}, {0, 1}},
		[]float64{0, 0},
		[][]float64{{1, 0}, {1, 0}, {0, 0}},
		[]float64{0, 0, 0},
	)
	require.NoError(t, err)
	id, probs, err := categorizer.Assign(mlp, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, id)
	assert.Len(t, probs, 3)
}

func TestSoftmaxLargeLogitsNoNaN(t *testing.T) {
	// Large logits that would overflow without max-subtraction still
	// produce a non-NaN probability.
	mlp, err := categorizer.NewMLP(1, 1, 2,
		[][]float64{{1}},
		[]float64{0},
		[][]float64{{1000}, {1}},
		[]float64{0, 0},
	)
	require.NoError(t, err)
	probs, err := mlp.Predict([]float64{1})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(probs[0]))
}
