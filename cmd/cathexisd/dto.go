package main

import (
	"github.com/cathexis-net/cathexis"
	"github.com/cathexis-net/cathexis/internal/model"
)

// graphPayload is the wire shape of a graph snapshot. The core mandates
// no wire format (spec §6); this is this binary's own convention.
type graphPayload struct {
	Nodes      []string          `json:"nodes"`
	Edges      [][2]string       `json:"edges"`
	Hyperedges []hyperedgePayload `json:"hyperedges,omitempty"`
}

type hyperedgePayload struct {
	ID     string            `json:"id"`
	Nodes  []string          `json:"nodes"`
	Roles  map[string]string `json:"roles,omitempty"`
	Tensor []float64         `json:"tensor"`
}

type eqbslPayload struct {
	TrustEmbedding   map[string][]float64 `json:"trust_embedding"`
	GlobalReputation map[string]float64   `json:"global_reputation"`
	Uncertainty      map[string]float64   `json:"uncertainty"`
}

func (g graphPayload) toSnapshot() *model.GraphSnapshot {
	snap := model.NewGraphSnapshot()
	for _, n := range g.Nodes {
		snap.AddNode(n)
	}
	for _, e := range g.Edges {
		snap.AddEdge(e[0], e[1])
	}
	for _, h := range g.Hyperedges {
		snap.AddHyperedge(h.ID, h.Nodes, h.Roles, model.EvidenceTensor(h.Tensor))
	}
	return snap
}

func (e eqbslPayload) toView() cathexis.EqbslView {
	return cathexis.EqbslView{
		TrustEmbedding:   e.TrustEmbedding,
		GlobalReputation: e.GlobalReputation,
		Uncertainty:      e.Uncertainty,
	}
}

// batchRequest is the body of POST /v1/batch.
type batchRequest struct {
	SnapshotTime uint64       `json:"snapshot_time"`
	Graph        graphPayload `json:"graph"`
	Eqbsl        eqbslPayload `json:"eqbsl"`
}

// queryRequest is the body of POST /v1/agents/{id}/handle.
type queryRequest struct {
	Now   uint64       `json:"now"`
	Graph graphPayload `json:"graph"`
	Eqbsl eqbslPayload `json:"eqbsl"`
}

// assignmentPayload mirrors cathexis.Assignment for JSON responses.
type assignmentPayload struct {
	AgentID       string    `json:"agent_id"`
	CategoryID    int       `json:"category_id"`
	Probabilities []float64 `json:"probabilities"`
}

type categorySummaryPayload struct {
	CategoryID        int         `json:"category_id"`
	Members           []string    `json:"members"`
	Mean              []float64   `json:"mean"`
	Covariance        [][]float64 `json:"covariance,omitempty"`
	TopFeatureIndices []int       `json:"top_feature_indices"`
	AvgDegree         float64     `json:"avg_degree"`
	AvgClustering     float64     `json:"avg_clustering"`
	ProvenanceTags    []string    `json:"provenance_tags"`
}

type batchResponse struct {
	SnapshotTime uint64                   `json:"snapshot_time"`
	Assignments  []assignmentPayload      `json:"assignments"`
	GlobalMean   []float64                `json:"global_mean"`
	Summaries    []categorySummaryPayload `json:"summaries"`
}

func toBatchResponse(out cathexis.BatchOutput) batchResponse {
	assignments := make([]assignmentPayload, len(out.Assignments))
	for i, a := range out.Assignments {
		assignments[i] = assignmentPayload{AgentID: a.AgentID, CategoryID: a.CategoryID, Probabilities: a.Probabilities}
	}
	summaries := make([]categorySummaryPayload, len(out.Summaries))
	for i, s := range out.Summaries {
		summaries[i] = categorySummaryPayload{
			CategoryID:        s.CategoryID,
			Members:           s.Members,
			Mean:              s.Mean,
			Covariance:        s.Covariance,
			TopFeatureIndices: s.TopFeatureIndices,
			AvgDegree:         s.AvgDegree,
			AvgClustering:     s.AvgClustering,
			ProvenanceTags:    s.ProvenanceTags,
		}
	}
	return batchResponse{
		SnapshotTime: out.SnapshotTime,
		Assignments:  assignments,
		GlobalMean:   out.GlobalMean,
		Summaries:    summaries,
	}
}

type queryResponse struct {
	CategoryID    int       `json:"category_id"`
	Probabilities []float64 `json:"probabilities"`
	Label         string    `json:"label"`
	Description   string    `json:"description"`
	Guidance      *string   `json:"guidance,omitempty"`
}

func toQueryResponse(r cathexis.QueryAgentHandleResponse) queryResponse {
	return queryResponse{
		CategoryID:    r.CategoryID,
		Probabilities: r.Probabilities,
		Label:         r.Label,
		Description:   r.Description,
		Guidance:      r.Guidance,
	}
}
