package cathexis

import (
	"fmt"

	"github.com/cathexis-net/cathexis/internal/model"
)

// TrustState exposes the engine's internal, mutable trust state so
// callers can install edge and hyperedge evidence before advancing it.
// Mutation here is exactly the (a) case of §5's concurrency contract:
// the trust state during decay/attribution.
func (e *Engine) TrustState() *model.TrustState {
	return e.trust
}

// SetEdgeEvidence installs or replaces the evidence tensor for the
// ordered pair (from, to) in the engine's trust state.
func (e *Engine) SetEdgeEvidence(from, to string, tensor model.EvidenceTensor) error {
	return e.trust.SetEdge(from, to, tensor)
}

// AddHyperedgeEvidence installs a hyperedge's evidence tensor in the
// engine's trust state.
func (e *Engine) AddHyperedgeEvidence(h model.Hyperedge) error {
	return e.trust.AddHyperedge(h)
}

// AdvanceTrustState runs the four trust-state operators in spec order
// (decay, hyperedge attribution, opinion lift, depth-1 witness
// propagation) against the engine's internal trust state, mutating it,
// and derives the per-node EqbslView a batch or query needs from the
// resulting propagated opinions. dt is the elapsed tick count since the
// state's last advance; dt=0 skips decay only.
func (e *Engine) AdvanceTrustState(dt int) (EqbslView, error) {
	if err := model.Decay(e.trust, e.params, dt); err != nil {
		return EqbslView{}, fmt.Errorf("cathexis: advance_trust_state: decay: %w", err)
	}
	e.trust.T += uint64(dt)

	if err := model.AttributeHyperedgesToPairs(e.trust); err != nil {
		return EqbslView{}, fmt.Errorf("cathexis: advance_trust_state: attribute hyperedges: %w", err)
	}

	opinions, err := model.ComputeOpinions(e.trust, e.params)
	if err != nil {
		return EqbslView{}, fmt.Errorf("cathexis: advance_trust_state: compute opinions: %w", err)
	}

	propagated, err := model.Depth1WitnessPropagation(e.trust, e.params, opinions)
	if err != nil {
		return EqbslView{}, fmt.Errorf("cathexis: advance_trust_state: propagate: %w", err)
	}

	propagatedOpinions := make(map[model.PairKey]model.Opinion, len(propagated))
	for pair, rs := range propagated {
		propagatedOpinions[pair] = model.EBSLOpinion(rs[0], rs[1], e.params.K, e.params.BaseRate)
	}

	nodes := e.trust.Nodes()
	embeddings := model.ComputeBasicEmbeddings(nodes, propagatedOpinions)

	view := EqbslView{
		TrustEmbedding:   make(map[string][]float64, len(nodes)),
		GlobalReputation: make(map[string]float64, len(nodes)),
		Uncertainty:      make(map[string]float64, len(nodes)),
	}
	for _, n := range nodes {
		emb := embeddings[n]
		view.TrustEmbedding[n] = emb.Vector()
		view.GlobalReputation[n] = emb.OutExpectMean
		view.Uncertainty[n] = emb.OutUMean
	}
	return view, nil
}
