package cathexis

import (
	"context"

	"github.com/cathexis-net/cathexis/internal/categorizer"
	"github.com/cathexis-net/cathexis/internal/extractor"
	"github.com/cathexis-net/cathexis/internal/label"
)

// FeatureExtractor is the public alias for the capability an Engine
// consumes to turn an agent id plus trust context into a feature
// vector. Concrete implementations live in internal/extractor, but
// embedders may supply their own.
type FeatureExtractor = extractor.FeatureExtractor

// EqbslView is the public alias for the per-node trust view an Engine
// is handed on every batch or query call.
type EqbslView = extractor.EqbslView

// Categorizer is the public alias for the capability mapping a feature
// vector to a category probability distribution.
type Categorizer = categorizer.Categorizer

// LabelStore is the public alias for the category->handle persistence
// capability.
type LabelStore = label.Store

// LabelProvider is the public alias for the capability that authors
// label text during RefreshLabels.
type LabelProvider = label.Provider

// EventHook receives lifecycle notifications for batch and refresh
// operations. Embedders register hooks via WithEventHook; the core
// never requires one.
type EventHook interface {
	OnBatchComplete(ctx context.Context, output BatchOutput) error
	OnLabelsRefreshed(ctx context.Context, results []RefreshResult) error
}
