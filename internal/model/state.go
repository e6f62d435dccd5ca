package model

import (
	"math"
	"sort"
)

// Params bundles the trust-state engine's tunables. K, WPos, WNeg,
// DecayBeta, DampingLambda, and WitnessTopK are validated at
// construction (NewParams) and are immutable thereafter. BaseRate is
// the global base rate used for opinion lift (§4.4).
type Params struct {
	K             float64
	WPos          []float64
	WNeg          []float64
	DecayBeta     []float64
	DampingLambda float64
	WitnessTopK   int
	BaseRate      float64
}

// NewParams validates p against the constraints in spec §3: K > 0,
// weights non-negative, each decay beta in (0, 1], damping lambda in
// (0, 1], witness_top_k >= 1, and all channel-indexed slices share a
// length m.
func NewParams(p Params) (Params, error) {
	m := len(p.WPos)
	if len(p.WNeg) != m {
		return Params{}, DimensionMismatch("params.w_neg", m, len(p.WNeg))
	}
	if len(p.DecayBeta) != m {
		return Params{}, DimensionMismatch("params.decay_beta", m, len(p.DecayBeta))
	}
	if p.K <= 0 {
		return Params{}, EmptyInput("params.k must be > 0")
	}
	for _, w := range p.WPos {
		if w < 0 {
			return Params{}, EmptyInput("params.w_pos must be non-negative")
		}
	}
	for _, w := range p.WNeg {
		if w < 0 {
			return Params{}, EmptyInput("params.w_neg must be non-negative")
		}
	}
	for _, beta := range p.DecayBeta {
		if beta <= 0 || beta > 1 {
			return Params{}, EmptyInput("params.decay_beta must be in (0, 1]")
		}
	}
	if p.DampingLambda <= 0 || p.DampingLambda > 1 {
		return Params{}, EmptyInput("params.damping_lambda must be in (0, 1]")
	}
	if p.WitnessTopK < 1 {
		return Params{}, EmptyInput("params.witness_top_k must be >= 1")
	}
	return p, nil
}

// M returns the evidence channel count this Params was validated against.
func (p Params) M() int { return len(p.WPos) }

// PairKey identifies an ordered directed pair (From, To) with From != To.
type PairKey struct {
	From, To string
}

// TrustState is the mutable per-pair and per-hyperedge evidence store:
// a monotonically advancing timestamp, the map of directed pairs to
// evidence tensors, and the map of hyperedge ids to hyperedges. All
// tensors share the same channel count M.
type TrustState struct {
	T       uint64
	Edges   map[PairKey]EvidenceTensor
	Hypers  map[string]Hyperedge
	M       int
}

// NewTrustState returns an empty trust state with channel count m.
func NewTrustState(m int) *TrustState {
	return &TrustState{
		Edges:  make(map[PairKey]EvidenceTensor),
		Hypers: make(map[string]Hyperedge),
		M:      m,
	}
}

// SetEdge installs or replaces the evidence tensor for the ordered pair
// (from, to). Dimension is validated against s.M.
func (s *TrustState) SetEdge(from, to string, tensor EvidenceTensor) error {
	if len(tensor) != s.M {
		return DimensionMismatch("trust_state.edge", s.M, len(tensor))
	}
	s.Edges[PairKey{From: from, To: to}] = tensor
	return nil
}

// AddHyperedge installs h, which must already carry a tensor of length s.M.
func (s *TrustState) AddHyperedge(h Hyperedge) error {
	if len(h.Tensor) != s.M {
		return DimensionMismatch("trust_state.hyperedge", s.M, len(h.Tensor))
	}
	s.Hypers[h.ID] = h
	return nil
}

// Nodes returns the sorted set of node ids appearing as either endpoint
// of any directed pair currently in the state.
func (s *TrustState) Nodes() []string {
	set := make(map[string]struct{})
	for k := range s.Edges {
		set[k.From] = struct{}{}
		set[k.To] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Decay scales every edge tensor and every hyperedge tensor componentwise
// by decay_beta[c]^dt, per-channel. dt = 0 is a no-op. Decay is
// multiplicative: Decay(a) then Decay(b) equals one Decay(a+b) call.
func Decay(state *TrustState, params Params, dt int) error {
	if dt == 0 {
		return nil
	}
	if params.M() != state.M {
		return DimensionMismatch("decay.params", state.M, params.M())
	}
	factors := make([]float64, state.M)
	for c, beta := range params.DecayBeta {
		factors[c] = math.Pow(beta, float64(dt))
	}
	for k, t := range state.Edges {
		state.Edges[k] = scaleComponentwise(t, factors)
	}
	for id, h := range state.Hypers {
		h.Tensor = scaleComponentwise(h.Tensor, factors)
		state.Hypers[id] = h
	}
	return nil
}

func scaleComponentwise(t EvidenceTensor, factors []float64) EvidenceTensor {
	out := make(EvidenceTensor, len(t))
	for i, v := range t {
		out[i] = v * factors[i]
	}
	return out
}

// AttributeHyperedgesToPairs distributes every hyperedge's tensor to the
// ordered pairs drawn from its member set, weight alpha = 1/(n*(n-1)),
// adding to any existing pair tensor. Hyperedge tensors are not
// consumed; repeat calls compound (attribution is a pure read of Hypers
// and a write to Edges).
func AttributeHyperedgesToPairs(state *TrustState) error {
	additions := make(map[PairKey]EvidenceTensor)
	ids := make([]string, 0, len(state.Hypers))
	for id := range state.Hypers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		h := state.Hypers[id]
		n := len(h.Nodes)
		if n < 2 {
			continue
		}
		if len(h.Tensor) != state.M {
			return DimensionMismatch("hyperedge."+id, state.M, len(h.Tensor))
		}
		alpha := 1.0 / float64(n*(n-1))
		share := h.Tensor.Scale(alpha)
		for _, i := range h.Nodes {
			for _, j := range h.Nodes {
				if i == j {
					continue
				}
				key := PairKey{From: i, To: j}
				if existing, ok := additions[key]; ok {
					additions[key] = existing.Add(share)
				} else {
					additions[key] = share.Clone()
				}
			}
		}
	}
	for key, add := range additions {
		if existing, ok := state.Edges[key]; ok {
			state.Edges[key] = existing.Add(add)
		} else {
			state.Edges[key] = add
		}
	}
	return nil
}

// ComputeOpinions lifts every pair tensor in state to an Opinion via the
// EBSL mapping (§4.2), using params' weighted projection and a shared
// base rate.
func ComputeOpinions(state *TrustState, params Params) (map[PairKey]Opinion, error) {
	if params.M() != state.M {
		return nil, DimensionMismatch("compute_opinions.params", state.M, params.M())
	}
	out := make(map[PairKey]Opinion, len(state.Edges))
	for key, t := range state.Edges {
		r, s := t.Project(params.WPos, params.WNeg)
		out[key] = EBSLOpinion(r, s, params.K, params.BaseRate)
	}
	return out, nil
}

type witness struct {
	node  string
	delta float64
}

// Depth1WitnessPropagation computes, for every ordered pair (i, j) with
// i != j over the nodes present in state, the propagated (r, s)
// evidence pair per §4.4: direct evidence plus a damped, top-k-witness
// indirect contribution. Propagation is depth-1 only — witnesses are
// never themselves propagated through.
func Depth1WitnessPropagation(state *TrustState, params Params, opinions map[PairKey]Opinion) (map[PairKey][2]float64, error) {
	if params.M() != state.M {
		return nil, DimensionMismatch("propagation.params", state.M, params.M())
	}
	nodes := state.Nodes()

	witnessByI := make(map[string][]witness, len(nodes))
	for _, i := range nodes {
		var ws []witness
		for _, k := range nodes {
			if k == i {
				continue
			}
			op, ok := opinions[PairKey{From: i, To: k}]
			if !ok {
				continue
			}
			ws = append(ws, witness{node: k, delta: op.Expectation()})
		}
		sort.SliceStable(ws, func(a, b int) bool {
			if ws[a].delta != ws[b].delta {
				return ws[a].delta > ws[b].delta
			}
			return ws[a].node < ws[b].node
		})
		if len(ws) > params.WitnessTopK {
			ws = ws[:params.WitnessTopK]
		}
		witnessByI[i] = ws
	}

	out := make(map[PairKey][2]float64)
	for _, i := range nodes {
		for _, j := range nodes {
			if i == j {
				continue
			}
			var r0, s0 float64
			if t, ok := state.Edges[PairKey{From: i, To: j}]; ok {
				r0, s0 = t.Project(params.WPos, params.WNeg)
			}
			var rInd, sInd float64
			for _, w := range witnessByI[i] {
				t, ok := state.Edges[PairKey{From: w.node, To: j}]
				if !ok {
					continue
				}
				rkj, skj := t.Project(params.WPos, params.WNeg)
				if rkj == 0 && skj == 0 {
					continue
				}
				rInd += params.DampingLambda * w.delta * rkj
				sInd += params.DampingLambda * w.delta * skj
			}
			out[PairKey{From: i, To: j}] = [2]float64{r0 + rInd, s0 + sInd}
		}
	}
	return out, nil
}
