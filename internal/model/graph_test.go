package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathexis-net/cathexis/internal/model"
)

func TestGraphSnapshotSelfLoopsDropped(t *testing.T) {
	g := model.NewGraphSnapshot()
	g.AddEdge("a", "a")
	assert.Equal(t, 0, g.Degree("a"))
}

func TestGraphSnapshotDegreeAndClustering(t *testing.T) {
	g := model.NewGraphSnapshot()
	g.AddEdge("alice", "bob")
	g.AddEdge("bob", "carol")
	g.AddEdge("alice", "carol")

	assert.Equal(t, []string{"alice", "bob", "carol"}, g.Nodes())
	assert.Equal(t, 2, g.Degree("alice"))
	assert.InDelta(t, 1.0, g.ClusteringCoefficient("alice"), 1e-9)
	assert.Equal(t, 0.0, g.ClusteringCoefficient("unknown"))
}

func TestGraphSnapshotClusteringBelowTwoNeighbors(t *testing.T) {
	g := model.NewGraphSnapshot()
	g.AddEdge("alice", "bob")
	assert.Equal(t, 0.0, g.ClusteringCoefficient("alice"))
}

func TestGraphSnapshotHyperedgeDroppedBelowTwoMembers(t *testing.T) {
	g := model.NewGraphSnapshot()
	g.AddHyperedge("h1", []string{"a", "a"}, nil, model.EvidenceTensor{1})
	require.Empty(t, g.Hyperedges())
}

func TestGraphSnapshotHyperedgeSortsAndDedups(t *testing.T) {
	g := model.NewGraphSnapshot()
	g.AddHyperedge("h1", []string{"c", "a", "b", "a"}, nil, model.EvidenceTensor{6})
	hs := g.Hyperedges()
	require.Len(t, hs, 1)
	assert.Equal(t, []string{"a", "b", "c"}, hs[0].Nodes)
}

func TestGraphSnapshotHyperedgeCountAndMeanSize(t *testing.T) {
	g := model.NewGraphSnapshot()
	g.AddHyperedge("h1", []string{"a", "b", "c"}, nil, model.EvidenceTensor{1})
	g.AddHyperedge("h2", []string{"a", "b"}, nil, model.EvidenceTensor{1})
	assert.Equal(t, 2, g.HyperedgeCountFor("a"))
	assert.InDelta(t, 2.5, g.MeanHyperedgeSizeFor("a"), 1e-9)
	assert.Equal(t, 0, g.HyperedgeCountFor("z"))
	assert.Equal(t, 0.0, g.MeanHyperedgeSizeFor("z"))
}
