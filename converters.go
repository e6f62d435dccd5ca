package cathexis

import (
	"github.com/cathexis-net/cathexis/internal/categorizer"
	"github.com/cathexis-net/cathexis/internal/summary"
)

// categorizerAssign wraps internal/categorizer.Assign so engine.go does
// not need to import that package directly for a single call site.
func categorizerAssign(c Categorizer, x []float64) (int, []float64, error) {
	return categorizer.Assign(c, x)
}

// toPublicSummaries converts internal summary.CategorySummary values
// to the public CategorySummary.
func toPublicSummaries(in []summary.CategorySummary) []CategorySummary {
	out := make([]CategorySummary, len(in))
	for i, s := range in {
		out[i] = CategorySummary{
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
	return out
}

// fromPublicSummary converts a public CategorySummary back to the
// internal representation, for callers (like RefreshLabels) that need
// to hand it to internal/label functions.
func fromPublicSummary(s CategorySummary) summary.CategorySummary {
	return summary.CategorySummary{
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
