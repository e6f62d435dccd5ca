package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathexis-net/cathexis/internal/model"
)

func TestComputeBasicEmbeddings(t *testing.T) {
	opinions := map[model.PairKey]model.Opinion{
		{From: "A", To: "B"}: model.EBSLOpinion(2, 0, 2, 0.5),
		{From: "B", To: "C"}: model.EBSLOpinion(2, 0, 2, 0.5),
	}
	embeddings := model.ComputeBasicEmbeddings([]string{"A", "B", "C"}, opinions)

	a := embeddings["A"]
	assert.Equal(t, 0, a.InCount)
	assert.Equal(t, 1, a.OutCount)
	assert.InDelta(t, opinions[model.PairKey{From: "A", To: "B"}].Expectation(), a.OutExpectMean, 1e-9)

	b := embeddings["B"]
	assert.Equal(t, 1, b.InCount)
	assert.Equal(t, 1, b.OutCount)

	c := embeddings["C"]
	assert.Equal(t, 1, c.InCount)
	assert.Equal(t, 0, c.OutCount)

	require.Len(t, a.Vector(), 4)
}
