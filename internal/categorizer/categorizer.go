// Package categorizer maps feature vectors to category probability
// distributions.
package categorizer

import (
	"math"

	"github.com/cathexis-net/cathexis/internal/model"
)

// Categorizer is the capability consumed by the engine: a fixed
// category count, a fixed input dimension, and a prediction function.
type Categorizer interface {
	CategoryCount() int
	InputDim() int
	Predict(x []float64) ([]float64, error)
}

// Assign runs c.Predict and derives the argmax category id, tie-broken
// by lowest index. An empty or all-non-finite probability vector
// (degenerate softmax surfaced by Predict) is fatal here, since no
// argmax is well-defined over it.
func Assign(c Categorizer, x []float64) (categoryID int, probabilities []float64, err error) {
	probs, err := c.Predict(x)
	if err != nil {
		return 0, nil, err
	}
	if len(probs) == 0 {
		return 0, nil, model.InvalidProbabilityVector("categorizer.assign")
	}
	best := -1
	bestVal := math.Inf(-1)
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		if best == -1 || p > bestVal {
			best = i
			bestVal = p
		}
	}
	if best == -1 {
		return 0, nil, model.InvalidProbabilityVector("categorizer.assign")
	}
	return best, probs, nil
}

// MLP is the reference two-layer feed-forward categorizer:
// h = relu(W1*x + b1), y = softmax(W2*h + b2).
type MLP struct {
	inputDim    int
	hiddenDim   int
	categoryN   int
	w1          [][]float64 // hiddenDim x inputDim
	b1          []float64   // hiddenDim
	w2          [][]float64 // categoryN x hiddenDim
	b2          []float64   // categoryN
}

// NewMLP validates the weight shapes against (inputDim, hiddenDim,
// categoryCount) and constructs an MLP. categoryCount == 0 fails with
// InvalidCategoryCount; any other shape mismatch fails with
// DimensionMismatch.
func NewMLP(inputDim, hiddenDim, categoryCount int, w1 [][]float64, b1 []float64, w2 [][]float64, b2 []float64) (*MLP, error) {
	if categoryCount == 0 {
		return nil, model.InvalidCategoryCount()
	}
	if len(w1) != hiddenDim {
		return nil, model.DimensionMismatch("mlp.w1.rows", hiddenDim, len(w1))
	}
	for i, row := range w1 {
		if len(row) != inputDim {
			return nil, model.DimensionMismatch("mlp.w1.cols", inputDim, len(row))
		}
		_ = i
	}
	if len(b1) != hiddenDim {
		return nil, model.DimensionMismatch("mlp.b1", hiddenDim, len(b1))
	}
	if len(w2) != categoryCount {
		return nil, model.DimensionMismatch("mlp.w2.rows", categoryCount, len(w2))
	}
	for _, row := range w2 {
		if len(row) != hiddenDim {
			return nil, model.DimensionMismatch("mlp.w2.cols", hiddenDim, len(row))
		}
	}
	if len(b2) != categoryCount {
		return nil, model.DimensionMismatch("mlp.b2", categoryCount, len(b2))
	}
	return &MLP{
		inputDim:  inputDim,
		hiddenDim: hiddenDim,
		categoryN: categoryCount,
		w1:        w1,
		b1:        b1,
		w2:        w2,
		b2:        b2,
	}, nil
}

// CategoryCount implements Categorizer.
func (m *MLP) CategoryCount() int { return m.categoryN }

// InputDim implements Categorizer.
func (m *MLP) InputDim() int { return m.inputDim }

// Predict implements Categorizer.
func (m *MLP) Predict(x []float64) ([]float64, error) {
	if len(x) != m.inputDim {
		return nil, model.DimensionMismatch("mlp.predict.x", m.inputDim, len(x))
	}
	hidden := make([]float64, m.hiddenDim)
	for i := 0; i < m.hiddenDim; i++ {
		hidden[i] = relu(dot(m.w1[i], x) + m.b1[i])
	}
	logits := make([]float64, m.categoryN)
	for i := 0; i < m.categoryN; i++ {
		logits[i] = dot(m.w2[i], hidden) + m.b2[i]
	}
	return softmax(logits), nil
}

func relu(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func dot(w, x []float64) float64 {
	var sum float64
	for i := range w {
		sum += w[i] * x[i]
	}
	return sum
}

// softmax is numerically stabilized via max-subtraction. If the
// resulting exponent sum is non-finite or zero, the unnormalized
// exponentials are returned instead of dividing by it — the
// sums-to-one invariant is relaxed only in that pathological case, per
// spec.
func softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	exps := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(v - max)
		exps[i] = e
		sum += e
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) || sum == 0 {
		return exps
	}
	out := make([]float64, len(exps))
	for i, e := range exps {
		out[i] = e / sum
	}
	return out
}
