// Package extractor composes trust-state, graph, and behavioural
// signals into a dense feature vector per agent.
package extractor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cathexis-net/cathexis/internal/model"
)

// EqbslView is the opaque per-node trust view the engine hands to
// extractors: a trust embedding, a scalar global reputation, and a
// scalar uncertainty, each keyed by agent id.
type EqbslView struct {
	TrustEmbedding   map[string][]float64
	GlobalReputation map[string]float64
	Uncertainty      map[string]float64
}

// Context carries everything an extractor needs: the graph snapshot,
// the EQBSL view, and the snapshot time.
type Context struct {
	Graph        *model.GraphSnapshot
	Eqbsl        EqbslView
	SnapshotTime uint64
}

// FeatureState is the extractor's output for one agent: its id and a
// non-empty dense feature vector.
type FeatureState struct {
	AgentID string
	Vector  []float64
}

// FeatureExtractor is the polymorphic capability every concrete
// extractor implements. ComputeFeatures must be deterministic: the
// same (agentID, ctx) must always yield the same vector.
type FeatureExtractor interface {
	ComputeFeatures(agentID string, ctx Context) (FeatureState, error)
}

// Composite concatenates the outputs of a non-empty ordered list of
// extractors, in order.
type Composite struct {
	extractors []FeatureExtractor
}

// NewComposite builds a Composite. An empty extractor list fails.
func NewComposite(extractors ...FeatureExtractor) (*Composite, error) {
	if len(extractors) == 0 {
		return nil, model.EmptyInput("composite_extractor.extractors")
	}
	return &Composite{extractors: extractors}, nil
}

// ComputeFeatures runs each sub-extractor in order and concatenates
// their vectors.
func (c *Composite) ComputeFeatures(agentID string, ctx Context) (FeatureState, error) {
	vec := make([]float64, 0)
	for _, e := range c.extractors {
		fs, err := e.ComputeFeatures(agentID, ctx)
		if err != nil {
			return FeatureState{}, err
		}
		vec = append(vec, fs.Vector...)
	}
	return FeatureState{AgentID: agentID, Vector: vec}, nil
}

// Static is the canonical extractor: trust embedding, global
// reputation, uncertainty, and optionally graph and hypergraph stats.
// Missing nodes are fatal, never silently zero-filled.
type Static struct {
	IncludeGraphStats      bool
	IncludeHypergraphStats bool
}

// NewStatic returns a Static extractor producing only the trust
// embedding / reputation / uncertainty portion.
func NewStatic() Static {
	return Static{}
}

// WithGraphStats returns a copy of s with degree and clustering
// coefficient appended to its output vector.
func (s Static) WithGraphStats() Static {
	s.IncludeGraphStats = true
	return s
}

// WithHypergraphStats returns a copy of s with hyperedge count and mean
// hyperedge size appended to its output vector. Implies graph stats,
// since hypergraph membership without adjacency context is not
// meaningful for this extractor's fixed column layout.
func (s Static) WithHypergraphStats() Static {
	s.IncludeGraphStats = true
	s.IncludeHypergraphStats = true
	return s
}

// ComputeFeatures implements FeatureExtractor.
func (s Static) ComputeFeatures(agentID string, ctx Context) (FeatureState, error) {
	embedding, ok := ctx.Eqbsl.TrustEmbedding[agentID]
	if !ok {
		return FeatureState{}, model.MissingNode(agentID)
	}
	rep, ok := ctx.Eqbsl.GlobalReputation[agentID]
	if !ok {
		return FeatureState{}, model.MissingNode(agentID)
	}
	unc, ok := ctx.Eqbsl.Uncertainty[agentID]
	if !ok {
		return FeatureState{}, model.MissingNode(agentID)
	}

	vec := make([]float64, 0, len(embedding)+2+4)
	vec = append(vec, embedding...)
	vec = append(vec, rep, unc)

	if s.IncludeGraphStats {
		if ctx.Graph == nil {
			return FeatureState{}, model.MissingNode(agentID)
		}
		vec = append(vec, float64(ctx.Graph.Degree(agentID)), ctx.Graph.ClusteringCoefficient(agentID))
	}
	if s.IncludeHypergraphStats {
		if ctx.Graph == nil {
			return FeatureState{}, model.MissingNode(agentID)
		}
		vec = append(vec, float64(ctx.Graph.HyperedgeCountFor(agentID)), ctx.Graph.MeanHyperedgeSizeFor(agentID))
	}

	return FeatureState{AgentID: agentID, Vector: vec}, nil
}

// BatchExtract computes features for every agent id in order, fanning
// the (read-only, stateless) per-agent work out across a bounded
// errgroup and reassembling results in the caller's order. The call
// itself remains synchronous: it returns only once every agent's
// features are computed or the first error is hit.
func BatchExtract(ctx context.Context, fe FeatureExtractor, agentIDs []string, extractCtx Context, maxConcurrency int) ([]FeatureState, error) {
	if len(agentIDs) == 0 {
		return nil, model.EmptyInput("batch_extract.agent_ids")
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	out := make([]FeatureState, len(agentIDs))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, id := range agentIDs {
		i, id := i, id
		g.Go(func() error {
			fs, err := fe.ComputeFeatures(id, extractCtx)
			if err != nil {
				return err
			}
			out[i] = fs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
