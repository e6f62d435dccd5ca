package cathexis

import (
	"log/slog"
)

// Option configures an Engine at construction time.
type Option func(*resolvedOptions)

// resolvedOptions holds every extension point after applying defaults.
// Unexported — callers use the With* functions.
type resolvedOptions struct {
	logger                *slog.Logger
	labelStore            LabelStore
	labelProvider         LabelProvider
	maxExtractConcurrency int
	includeCovariance     bool
	eventHooks            []EventHook
}

// WithLogger sets the structured logger for the Engine. If not set,
// the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithLabelStore replaces the default in-memory label store.
func WithLabelStore(store LabelStore) Option {
	return func(o *resolvedOptions) { o.labelStore = store }
}

// WithLabelProvider replaces the default heuristic label provider used
// by RefreshLabels.
func WithLabelProvider(provider LabelProvider) Option {
	return func(o *resolvedOptions) { o.labelProvider = provider }
}

// WithMaxExtractConcurrency bounds the number of agents feature-extracted
// concurrently within a single RunBatch call. Defaults to 1 (fully
// sequential) if unset or non-positive.
func WithMaxExtractConcurrency(n int) Option {
	return func(o *resolvedOptions) { o.maxExtractConcurrency = n }
}

// WithCovariance enables computing the (more expensive) per-category
// sample covariance matrix during summary building.
func WithCovariance(enabled bool) Option {
	return func(o *resolvedOptions) { o.includeCovariance = enabled }
}

// WithEventHook registers a hook to receive batch/refresh lifecycle
// notifications. Multiple hooks may be registered; all receive every
// event.
func WithEventHook(hook EventHook) Option {
	return func(o *resolvedOptions) { o.eventHooks = append(o.eventHooks, hook) }
}
