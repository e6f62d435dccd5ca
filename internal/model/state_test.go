package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathexis-net/cathexis/internal/model"
)

func testParams(t *testing.T) model.Params {
	t.Helper()
	p, err := model.NewParams(model.Params{
		K:             2,
		WPos:          []float64{1},
		WNeg:          []float64{0},
		DecayBeta:     []float64{0.5},
		DampingLambda: 1,
		WitnessTopK:   10,
		BaseRate:      0.5,
	})
	require.NoError(t, err)
	return p
}

func TestParamsValidation(t *testing.T) {
	_, err := model.NewParams(model.Params{K: 0, WPos: []float64{1}, WNeg: []float64{0}, DecayBeta: []float64{0.5}, DampingLambda: 1, WitnessTopK: 1})
	assert.Error(t, err)

	_, err = model.NewParams(model.Params{K: 1, WPos: []float64{1}, WNeg: []float64{0, 0}, DecayBeta: []float64{0.5}, DampingLambda: 1, WitnessTopK: 1})
	assert.Error(t, err)

	_, err = model.NewParams(model.Params{K: 1, WPos: []float64{1}, WNeg: []float64{0}, DecayBeta: []float64{1.5}, DampingLambda: 1, WitnessTopK: 1})
	assert.Error(t, err)

	_, err = model.NewParams(model.Params{K: 1, WPos: []float64{1}, WNeg: []float64{0}, DecayBeta: []float64{0.5}, DampingLambda: 0, WitnessTopK: 1})
	assert.Error(t, err)

	_, err = model.NewParams(model.Params{K: 1, WPos: []float64{1}, WNeg: []float64{0}, DecayBeta: []float64{0.5}, DampingLambda: 1, WitnessTopK: 0})
	assert.Error(t, err)
}

func TestDecayNoOpAtZero(t *testing.T) {
	params := testParams(t)
	state := model.NewTrustState(1)
	require.NoError(t, state.SetEdge("a", "b", model.EvidenceTensor{2.0}))
	require.NoError(t, model.Decay(state, params, 0))
	assert.Equal(t, model.EvidenceTensor{2.0}, state.Edges[model.PairKey{From: "a", To: "b"}])
}

func TestDecayScenario(t *testing.T) {
	// scenario 6: decay_beta=[0.5], dt=1: edge A->B [2.0] becomes [1.0]
	params := testParams(t)
	state := model.NewTrustState(1)
	require.NoError(t, state.SetEdge("A", "B", model.EvidenceTensor{2.0}))
	require.NoError(t, model.Decay(state, params, 1))
	assert.InDelta(t, 1.0, state.Edges[model.PairKey{From: "A", To: "B"}][0], 1e-9)
}

func TestDecayMultiplicativity(t *testing.T) {
	params := testParams(t)

	stateSplit := model.NewTrustState(1)
	require.NoError(t, stateSplit.SetEdge("A", "B", model.EvidenceTensor{8.0}))
	require.NoError(t, model.Decay(stateSplit, params, 2))
	require.NoError(t, model.Decay(stateSplit, params, 3))

	stateCombined := model.NewTrustState(1)
	require.NoError(t, stateCombined.SetEdge("A", "B", model.EvidenceTensor{8.0}))
	require.NoError(t, model.Decay(stateCombined, params, 5))

	assert.InDelta(t,
		stateCombined.Edges[model.PairKey{From: "A", To: "B"}][0],
		stateSplit.Edges[model.PairKey{From: "A", To: "B"}][0],
		1e-9,
	)
}

func TestAttributeHyperedgesToPairsScenario(t *testing.T) {
	// scenario 4: hyperedge {A,B,C}, e=[6.0]: every ordered pair receives exactly [1.0]
	state := model.NewTrustState(1)
	require.NoError(t, state.AddHyperedge(model.Hyperedge{
		ID:     "h1",
		Nodes:  []string{"A", "B", "C"},
		Tensor: model.EvidenceTensor{6.0},
	}))
	require.NoError(t, model.AttributeHyperedgesToPairs(state))

	pairs := [][2]string{{"A", "B"}, {"A", "C"}, {"B", "A"}, {"B", "C"}, {"C", "A"}, {"C", "B"}}
	for _, p := range pairs {
		tensor, ok := state.Edges[model.PairKey{From: p[0], To: p[1]}]
		require.True(t, ok, "missing pair %v", p)
		assert.InDelta(t, 1.0, tensor[0], 1e-9)
	}

	// hyperedge tensor itself is not consumed
	assert.Equal(t, model.EvidenceTensor{6.0}, state.Hypers["h1"].Tensor)
}

func TestAttributeHyperedgesCompoundsOnRepeat(t *testing.T) {
	state := model.NewTrustState(1)
	require.NoError(t, state.AddHyperedge(model.Hyperedge{ID: "h1", Nodes: []string{"A", "B"}, Tensor: model.EvidenceTensor{2.0}}))
	require.NoError(t, model.AttributeHyperedgesToPairs(state))
	require.NoError(t, model.AttributeHyperedgesToPairs(state))
	// alpha = 1/(2*1) = 0.5, applied twice => 2.0
	assert.InDelta(t, 2.0, state.Edges[model.PairKey{From: "A", To: "B"}][0], 1e-9)
}

func TestDepth1WitnessPropagationScenario(t *testing.T) {
	params := testParams(t)
	state := model.NewTrustState(1)
	require.NoError(t, state.SetEdge("A", "B", model.EvidenceTensor{2.0}))
	require.NoError(t, state.SetEdge("B", "C", model.EvidenceTensor{2.0}))

	opinions, err := model.ComputeOpinions(state, params)
	require.NoError(t, err)

	propagated, err := model.Depth1WitnessPropagation(state, params, opinions)
	require.NoError(t, err)

	rs := propagated[model.PairKey{From: "A", To: "C"}]
	assert.InDelta(t, 1.5, rs[0], 1e-9)
	assert.InDelta(t, 0.0, rs[1], 1e-9)
}

func TestComputeOpinionsDimensionMismatch(t *testing.T) {
	params := testParams(t)
	state := model.NewTrustState(2)
	_, err := model.ComputeOpinions(state, params)
	assert.Error(t, err)
}
