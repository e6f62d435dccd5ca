package label_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathexis-net/cathexis/internal/label"
	"github.com/cathexis-net/cathexis/internal/summary"
)

func TestInMemoryStoreGetUpsert(t *testing.T) {
	store := label.NewInMemoryStore()
	_, ok := store.Get(0)
	assert.False(t, ok)

	store.Upsert(label.Record{CategoryID: 0, Handle: "h0", Gloss: "g0", SnapshotTime: 1})
	rec, ok := store.Get(0)
	require.True(t, ok)
	assert.Equal(t, "h0", rec.Handle)

	store.Upsert(label.Record{CategoryID: 0, Handle: "h0-new", Gloss: "g0-new", SnapshotTime: 2})
	rec, ok = store.Get(0)
	require.True(t, ok)
	assert.Equal(t, "h0-new", rec.Handle)
}

func TestComputeDriftMembershipRatio(t *testing.T) {
	prev := summary.CategorySummary{Mean: []float64{0, 0}, Members: []string{"a", "b"}}
	curr := summary.CategorySummary{Mean: []float64{0, 0}, Members: []string{"a", "c"}}
	drift := label.ComputeDrift(prev, curr)
	assert.InDelta(t, 0.0, drift.MeanL2Drift, 1e-9)
	// union {a,b,c}=3, symdiff {b,c}=2 => ratio 2/3
	assert.InDelta(t, 2.0/3.0, drift.MembershipChangeRatio, 1e-9)
}

func TestComputeDriftL2Distance(t *testing.T) {
	prev := summary.CategorySummary{Mean: []float64{0, 0}, Members: []string{"a"}}
	curr := summary.CategorySummary{Mean: []float64{3, 4}, Members: []string{"a"}}
	drift := label.ComputeDrift(prev, curr)
	assert.InDelta(t, 5.0, drift.MeanL2Drift, 1e-9)
	assert.InDelta(t, 0.0, drift.MembershipChangeRatio, 1e-9)
}

func TestUpdatePolicyDisjunction(t *testing.T) {
	policy := label.DefaultUpdatePolicy()
	assert.True(t, policy.ShouldRelabel(label.DriftSignal{MeanL2Drift: 0.5, MembershipChangeRatio: 0}))
	assert.True(t, policy.ShouldRelabel(label.DriftSignal{MeanL2Drift: 0, MembershipChangeRatio: 0.25}))
	assert.False(t, policy.ShouldRelabel(label.DriftSignal{MeanL2Drift: 0.49, MembershipChangeRatio: 0.24}))
}

func TestDecideRelabel(t *testing.T) {
	policy := label.DefaultUpdatePolicy()

	// no existing record -> relabel
	assert.True(t, label.DecideRelabel(nil, false, label.DriftSignal{}, policy, 10))

	// existing record, no previous batch -> relabel iff existing predates batch
	older := &label.Record{SnapshotTime: 5}
	assert.True(t, label.DecideRelabel(older, false, label.DriftSignal{}, policy, 10))
	newer := &label.Record{SnapshotTime: 15}
	assert.False(t, label.DecideRelabel(newer, false, label.DriftSignal{}, policy, 10))

	// both present -> consult drift
	assert.True(t, label.DecideRelabel(older, true, label.DriftSignal{MeanL2Drift: 1.0}, policy, 10))
	assert.False(t, label.DecideRelabel(older, true, label.DriftSignal{MeanL2Drift: 0, MembershipChangeRatio: 0}, policy, 10))
}

func TestHeuristicProviderHandleSynthesis(t *testing.T) {
	p := label.NewHeuristicProvider()
	out, err := p.GenerateLabel(context.Background(), label.ProviderInput{
		CategoryID: 2,
		Summary:    summary.CategorySummary{AvgDegree: 4.0, AvgClustering: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "connected-clustered-trust-cluster-2", out.Handle)

	out, err = p.GenerateLabel(context.Background(), label.ProviderInput{
		CategoryID: 3,
		Summary:    summary.CategorySummary{AvgDegree: 1.0, AvgClustering: 0.1},
	})
	require.NoError(t, err)
	assert.Equal(t, "peripheral-diffuse-trust-cluster-3", out.Handle)
}
