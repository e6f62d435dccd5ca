package cathexis

// Assignment is one agent's categorizer output within a batch: the
// winning category id, tie-broken to the lowest index, and the full
// probability vector it was derived from.
type Assignment struct {
	AgentID       string
	CategoryID    int
	Probabilities []float64
}

// FeatureVector is one agent's extracted feature vector within a
// batch, alongside the agent id it belongs to.
type FeatureVector struct {
	AgentID string
	Vector  []float64
}

// CategorySummary mirrors internal/summary.CategorySummary at the
// public boundary: membership, mean, optional covariance, the
// top-deviating feature indices, member-averaged graph stats, and
// provenance tags for one category produced by a batch.
type CategorySummary struct {
	CategoryID        int
	Members           []string
	Mean              []float64
	Covariance        [][]float64
	TopFeatureIndices []int
	AvgDegree         float64
	AvgClustering     float64
	ProvenanceTags    []string
}

// BatchOutput is the full result of one RunBatch call: every agent's
// extracted features and categorizer assignment, plus the per-category
// summaries built from them. Assignments follow the graph's sorted
// node order; summaries follow ascending category id. Both orderings
// are part of the contract — downstream consumers may rely on them to
// compare batches deterministically.
type BatchOutput struct {
	SnapshotTime uint64
	Features     []FeatureVector
	Assignments  []Assignment
	GlobalMean   []float64
	Summaries    []CategorySummary
}

// QueryAgentHandleResponse is the result of a single-agent online
// query: the assigned category, its probability vector, and whatever
// label text is currently on record for that category.
type QueryAgentHandleResponse struct {
	CategoryID    int
	Probabilities []float64
	Label         string
	Description   string
	Guidance      *string
}

// RefreshResult reports, per category, whether refresh_labels relabeled
// it and with what record.
type RefreshResult struct {
	CategoryID int
	Relabeled  bool
	Handle     string
	Gloss      string
	Guidance   *string
}
