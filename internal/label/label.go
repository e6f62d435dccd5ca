// Package label implements the persistent category->handle mapping and
// the drift signal that gates when a category needs relabeling.
package label

import (
	"context"
	"fmt"
	"math"

	"github.com/cathexis-net/cathexis/internal/summary"
)

// Record is a long-lived label attached to a category: a short handle,
// a one-sentence gloss, optional operational guidance, and the
// snapshot time it was produced for.
type Record struct {
	CategoryID   int
	Handle       string
	Gloss        string
	Guidance     *string
	SnapshotTime uint64
}

// Store maps category id to label record. At most one record exists
// per category id; Upsert replaces any existing one.
type Store interface {
	Get(categoryID int) (Record, bool)
	Upsert(record Record)
}

// InMemoryStore is the default, process-local Store implementation.
type InMemoryStore struct {
	records map[int]Record
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[int]Record)}
}

// Get implements Store.
func (s *InMemoryStore) Get(categoryID int) (Record, bool) {
	r, ok := s.records[categoryID]
	return r, ok
}

// Upsert implements Store.
func (s *InMemoryStore) Upsert(record Record) {
	s.records[record.CategoryID] = record
}

// DriftSignal compares a category's current summary against its
// previous batch's summary: the L2 distance between mean vectors, and
// the member-set turnover ratio.
type DriftSignal struct {
	MeanL2Drift           float64
	MembershipChangeRatio float64
}

// ComputeDrift builds a DriftSignal from the previous and current
// CategorySummary for the same category id. Mean vectors are truncated
// to the shorter length if they differ in length (which should not
// happen in practice, since all features in a batch share a dimension).
func ComputeDrift(prev, curr summary.CategorySummary) DriftSignal {
	n := len(prev.Mean)
	if len(curr.Mean) < n {
		n = len(curr.Mean)
	}
	var sumSq float64
	for i := 0; i < n; i++ {
		d := curr.Mean[i] - prev.Mean[i]
		sumSq += d * d
	}
	l2 := math.Sqrt(sumSq)

	ratio := membershipChangeRatio(prev.Members, curr.Members)

	return DriftSignal{MeanL2Drift: l2, MembershipChangeRatio: ratio}
}

func membershipChangeRatio(prev, curr []string) float64 {
	prevSet := make(map[string]struct{}, len(prev))
	for _, m := range prev {
		prevSet[m] = struct{}{}
	}
	currSet := make(map[string]struct{}, len(curr))
	for _, m := range curr {
		currSet[m] = struct{}{}
	}
	union := make(map[string]struct{}, len(prevSet)+len(currSet))
	for m := range prevSet {
		union[m] = struct{}{}
	}
	for m := range currSet {
		union[m] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	var symDiff int
	for m := range union {
		_, inPrev := prevSet[m]
		_, inCurr := currSet[m]
		if inPrev != inCurr {
			symDiff++
		}
	}
	return float64(symDiff) / float64(len(union))
}

// UpdatePolicy gates relabeling on a DriftSignal via two disjunctive
// thresholds: a category relabels when either its centroid drifts far
// enough or its membership turns over enough. Disjunction is
// intentional — a category can shift meaning by either mechanism.
type UpdatePolicy struct {
	MeanL2DriftThreshold           float64
	MembershipChangeRatioThreshold float64
}

// DefaultUpdatePolicy returns the reference thresholds (0.5, 0.25).
func DefaultUpdatePolicy() UpdatePolicy {
	return UpdatePolicy{MeanL2DriftThreshold: 0.5, MembershipChangeRatioThreshold: 0.25}
}

// ShouldRelabel reports whether d crosses either threshold.
func (p UpdatePolicy) ShouldRelabel(d DriftSignal) bool {
	return d.MeanL2Drift >= p.MeanL2DriftThreshold || d.MembershipChangeRatio >= p.MembershipChangeRatioThreshold
}

// DecideRelabel implements the upsert decision of §4.8: no existing
// record relabels unconditionally; an existing record with no previous
// batch relabels only if it is older than the current batch; and when
// both a record and a previous batch exist, the drift signal decides.
func DecideRelabel(existing *Record, hasPrevBatch bool, drift DriftSignal, policy UpdatePolicy, batchSnapshotTime uint64) bool {
	if existing == nil {
		return true
	}
	if !hasPrevBatch {
		return existing.SnapshotTime < batchSnapshotTime
	}
	return policy.ShouldRelabel(drift)
}

// ProviderInput is what the engine hands a LabelProvider for one
// category during refresh_labels.
type ProviderInput struct {
	CategoryID   int
	Summary      summary.CategorySummary
	SnapshotTime uint64
}

// ProviderOutput is the label text a LabelProvider authors.
type ProviderOutput struct {
	Handle   string
	Gloss    string
	Guidance *string
}

// Provider is the external (or heuristic) text-generation capability
// consumed by refresh_labels. It is never invoked by the core except
// through this interface — the core does not define how labels are
// produced, only how they are consumed.
type Provider interface {
	GenerateLabel(ctx context.Context, input ProviderInput) (ProviderOutput, error)
}

// HeuristicProvider is the in-repo fallback Provider used when no
// external text-generation service is configured. It synthesizes a
// handle from the category's average degree and clustering
// coefficient: "{density}-{cohesion}-trust-cluster-{category_id}".
type HeuristicProvider struct {
	DensityThreshold    float64
	ClusteringThreshold float64
}

// NewHeuristicProvider returns a HeuristicProvider using the reference
// thresholds (avg_degree >= 3.0 is "connected", avg_clustering >= 0.3
// is "clustered").
func NewHeuristicProvider() HeuristicProvider {
	return HeuristicProvider{DensityThreshold: 3.0, ClusteringThreshold: 0.3}
}

// GenerateLabel implements Provider.
func (h HeuristicProvider) GenerateLabel(_ context.Context, input ProviderInput) (ProviderOutput, error) {
	density := "peripheral"
	if input.Summary.AvgDegree >= h.DensityThreshold {
		density = "connected"
	}
	cohesion := "diffuse"
	if input.Summary.AvgClustering >= h.ClusteringThreshold {
		cohesion = "clustered"
	}
	handle := fmt.Sprintf("%s-%s-trust-cluster-%d", density, cohesion, input.CategoryID)
	gloss := fmt.Sprintf("Agents with %s interaction density and %s neighborhood structure.", density, cohesion)
	return ProviderOutput{Handle: handle, Gloss: gloss}, nil
}
