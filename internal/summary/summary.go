// Package summary builds per-category statistical summaries from a
// batch's features and assignments.
package summary

import (
	"sort"

	"github.com/cathexis-net/cathexis/internal/model"
)

// ProvenanceTags is the fixed tag set attached to every summary.
var ProvenanceTags = []string{"eqbsl", "graph", "behavioural"}

// AgentFeature pairs an agent id with its feature vector.
type AgentFeature struct {
	AgentID string
	Vector  []float64
}

// AgentAssignment pairs an agent id with its assigned category.
type AgentAssignment struct {
	AgentID    string
	CategoryID int
}

// CategorySummary is the per-category statistical digest: membership,
// mean vector, optional sample covariance, the top-8 most-deviating
// feature indices, member-averaged graph stats, and provenance tags.
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

// Collection is the full set of category summaries for one batch, plus
// the global mean they were compared against.
type Collection struct {
	GlobalMean []float64
	Summaries  []CategorySummary
}

// Build validates the inputs, computes the global mean, groups
// features by assigned category, and produces one CategorySummary per
// category in ascending category id order. includeCovariance controls
// whether the (more expensive) sample covariance matrix is computed
// per category.
func Build(features []AgentFeature, assignments []AgentAssignment, graph *model.GraphSnapshot, includeCovariance bool) (*Collection, error) {
	if len(features) == 0 {
		return nil, model.EmptyInput("summary.features")
	}
	if len(assignments) == 0 {
		return nil, model.EmptyInput("summary.assignments")
	}
	dim := len(features[0].Vector)
	if dim == 0 {
		return nil, model.EmptyInput("summary.features[0].vector")
	}
	featureByAgent := make(map[string][]float64, len(features))
	for _, f := range features {
		if len(f.Vector) != dim {
			return nil, model.DimensionMismatch("summary.features["+f.AgentID+"]", dim, len(f.Vector))
		}
		featureByAgent[f.AgentID] = f.Vector
	}

	globalMean := make([]float64, dim)
	for _, f := range features {
		for i, v := range f.Vector {
			globalMean[i] += v
		}
	}
	for i := range globalMean {
		globalMean[i] /= float64(len(features))
	}

	groups := make(map[int][]string)
	for _, a := range assignments {
		groups[a.CategoryID] = append(groups[a.CategoryID], a.AgentID)
	}

	categoryIDs := make([]int, 0, len(groups))
	for id := range groups {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Ints(categoryIDs)

	summaries := make([]CategorySummary, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		members := append([]string(nil), groups[id]...)
		sort.Strings(members)

		vectors := make([][]float64, 0, len(members))
		for _, m := range members {
			v, ok := featureByAgent[m]
			if !ok {
				return nil, model.MissingNode(m)
			}
			vectors = append(vectors, v)
		}

		mean := meanVector(vectors, dim)

		var covariance [][]float64
		if includeCovariance {
			covariance = covarianceMatrix(vectors, mean, dim)
		}

		topIdx := topDeviatingIndices(mean, globalMean, 8)

		var degreeSum, clusteringSum float64
		if graph != nil {
			for _, m := range members {
				degreeSum += float64(graph.Degree(m))
				clusteringSum += graph.ClusteringCoefficient(m)
			}
		}
		n := float64(len(members))
		var avgDegree, avgClustering float64
		if n > 0 {
			avgDegree = degreeSum / n
			avgClustering = clusteringSum / n
		}

		summaries = append(summaries, CategorySummary{
			CategoryID:        id,
			Members:           members,
			Mean:              mean,
			Covariance:        covariance,
			TopFeatureIndices: topIdx,
			AvgDegree:         avgDegree,
			AvgClustering:     avgClustering,
			ProvenanceTags:    append([]string(nil), ProvenanceTags...),
		})
	}

	return &Collection{GlobalMean: globalMean, Summaries: summaries}, nil
}

func meanVector(vectors [][]float64, dim int) []float64 {
	mean := make([]float64, dim)
	if len(vectors) == 0 {
		return mean
	}
	for _, v := range vectors {
		for i, x := range v {
			mean[i] += x
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}
	return mean
}

// covarianceMatrix computes the sample covariance (denominator n-1),
// returning a zero matrix when n <= 1.
func covarianceMatrix(vectors [][]float64, mean []float64, dim int) [][]float64 {
	cov := make([][]float64, dim)
	for i := range cov {
		cov[i] = make([]float64, dim)
	}
	n := len(vectors)
	if n <= 1 {
		return cov
	}
	for _, v := range vectors {
		for i := 0; i < dim; i++ {
			di := v[i] - mean[i]
			for j := 0; j < dim; j++ {
				dj := v[j] - mean[j]
				cov[i][j] += di * dj
			}
		}
	}
	denom := float64(n - 1)
	for i := range cov {
		for j := range cov[i] {
			cov[i][j] /= denom
		}
	}
	return cov
}

// topDeviatingIndices ranks feature indices by |mean[i] - global[i]|
// descending and keeps the top k (or fewer, if dim < k).
func topDeviatingIndices(mean, global []float64, k int) []int {
	type dev struct {
		idx   int
		delta float64
	}
	devs := make([]dev, len(mean))
	for i := range mean {
		d := mean[i] - global[i]
		if d < 0 {
			d = -d
		}
		devs[i] = dev{idx: i, delta: d}
	}
	sort.SliceStable(devs, func(a, b int) bool {
		if devs[a].delta != devs[b].delta {
			return devs[a].delta > devs[b].delta
		}
		return devs[a].idx < devs[b].idx
	})
	if len(devs) > k {
		devs = devs[:k]
	}
	out := make([]int, len(devs))
	for i, d := range devs {
		out[i] = d.idx
	}
	return out
}
