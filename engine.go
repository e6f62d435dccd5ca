// Package cathexis is the public API for the hypergraph trust-and-behavioural
// categorization engine.
//
// Embedders construct an Engine with pre-trained parameters and a categorizer,
// then drive it through its trust-state lifecycle and batch pipeline:
//
//	eng, err := cathexis.New(params, mlp, extractor, cathexis.WithLabelStore(store))
//	if err != nil { ... }
//	output, err := eng.RunBatch(ctx, snapshotTime, graph, eqbsl)
//	if err != nil { ... }
//	results, err := eng.RefreshLabels(ctx, output)
//	resp, err := eng.QueryAgentHandle(ctx, now, "alice", graph, eqbsl)
//
// The import graph enforces a strict no-cycle rule: cathexis (root) imports
// internal/*, but internal/* never imports cathexis (root). Public types
// (BatchOutput, Assignment, etc.) are standalone structs with no internal
// imports; the conversion helpers between public and internal types live in
// converters.go.
package cathexis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cathexis-net/cathexis/internal/extractor"
	"github.com/cathexis-net/cathexis/internal/label"
	"github.com/cathexis-net/cathexis/internal/model"
	"github.com/cathexis-net/cathexis/internal/summary"
)

// Engine is the trust-state lifecycle and categorization pipeline. It
// owns its extractor, categorizer, label store, and last-batch cache.
// Construct with New(); an Engine has no exported fields.
type Engine struct {
	params        model.Params
	trust         *model.TrustState
	extractor     FeatureExtractor
	categorizer   Categorizer
	labelStore    LabelStore
	labelProvider LabelProvider

	maxExtractConcurrency int
	includeCovariance     bool

	eventHooks []EventHook
	logger     *slog.Logger

	lastBatch map[int]summary.CategorySummary // keyed by category_id
}

// New constructs an Engine from validated trust-propagation parameters
// and a categorizer. The categorizer and the FeatureExtractor are
// required; a nil value for either fails construction. If no label
// store or provider is supplied, an in-memory store and the heuristic
// provider are used.
func New(params model.Params, categorizer Categorizer, fe FeatureExtractor, opts ...Option) (*Engine, error) {
	if categorizer == nil {
		return nil, fmt.Errorf("cathexis: categorizer is required")
	}
	if fe == nil {
		return nil, fmt.Errorf("cathexis: feature extractor is required")
	}

	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	labelStore := o.labelStore
	if labelStore == nil {
		labelStore = label.NewInMemoryStore()
	}
	labelProvider := o.labelProvider
	if labelProvider == nil {
		labelProvider = label.NewHeuristicProvider()
	}

	maxConcurrency := o.maxExtractConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	return &Engine{
		params:                params,
		trust:                 model.NewTrustState(params.M()),
		extractor:             fe,
		categorizer:           categorizer,
		labelStore:            labelStore,
		labelProvider:         labelProvider,
		maxExtractConcurrency: maxConcurrency,
		includeCovariance:     o.includeCovariance,
		eventHooks:            o.eventHooks,
		logger:                logger,
		lastBatch:             make(map[int]summary.CategorySummary),
	}, nil
}

// RunBatch iterates the graph's nodes in deterministic (sorted) order,
// extracts features and assigns a category for each, then builds the
// per-category summary collection. It never mutates the label store;
// call RefreshLabels separately to persist new label records.
func (e *Engine) RunBatch(ctx context.Context, snapshotTime uint64, graph *model.GraphSnapshot, eqbsl EqbslView) (BatchOutput, error) {
	nodes := graph.Nodes()
	if len(nodes) == 0 {
		return BatchOutput{}, model.EmptyInput("engine.run_batch.graph.nodes")
	}

	extractCtx := extractor.Context{Graph: graph, Eqbsl: eqbsl, SnapshotTime: snapshotTime}
	states, err := extractor.BatchExtract(ctx, e.extractor, nodes, extractCtx, e.maxExtractConcurrency)
	if err != nil {
		return BatchOutput{}, fmt.Errorf("cathexis: run_batch: extract features: %w", err)
	}

	inputDim := e.categorizer.InputDim()
	features := make([]FeatureVector, len(states))
	summaryFeatures := make([]summary.AgentFeature, len(states))
	assignments := make([]Assignment, len(states))
	summaryAssignments := make([]summary.AgentAssignment, len(states))

	for i, fs := range states {
		if len(fs.Vector) != inputDim {
			return BatchOutput{}, fmt.Errorf("cathexis: run_batch: agent %q: %w",
				fs.AgentID, model.DimensionMismatch("engine.run_batch.feature_vector", inputDim, len(fs.Vector)))
		}
		categoryID, probs, assignErr := categorizerAssign(e.categorizer, fs.Vector)
		if assignErr != nil {
			return BatchOutput{}, fmt.Errorf("cathexis: run_batch: agent %q: %w", fs.AgentID, assignErr)
		}

		features[i] = FeatureVector{AgentID: fs.AgentID, Vector: fs.Vector}
		summaryFeatures[i] = summary.AgentFeature{AgentID: fs.AgentID, Vector: fs.Vector}
		assignments[i] = Assignment{AgentID: fs.AgentID, CategoryID: categoryID, Probabilities: probs}
		summaryAssignments[i] = summary.AgentAssignment{AgentID: fs.AgentID, CategoryID: categoryID}
	}

	coll, err := summary.Build(summaryFeatures, summaryAssignments, graph, e.includeCovariance)
	if err != nil {
		return BatchOutput{}, fmt.Errorf("cathexis: run_batch: build summary: %w", err)
	}

	out := BatchOutput{
		SnapshotTime: snapshotTime,
		Features:     features,
		Assignments:  assignments,
		GlobalMean:   coll.GlobalMean,
		Summaries:    toPublicSummaries(coll.Summaries),
	}

	for _, hook := range e.eventHooks {
		if hookErr := hook.OnBatchComplete(ctx, out); hookErr != nil {
			e.logger.Warn("cathexis: batch-complete hook failed", "error", hookErr)
		}
	}

	return out, nil
}

// RefreshLabels consults the upsert decision of §4.8 for every category
// in output, invoking the configured LabelProvider only for categories
// that need relabeling, and persists the result to the label store. It
// then records output's per-category summaries as the new last-batch
// baseline for future drift comparisons.
func (e *Engine) RefreshLabels(ctx context.Context, output BatchOutput) ([]RefreshResult, error) {
	policy := label.DefaultUpdatePolicy()
	results := make([]RefreshResult, 0, len(output.Summaries))

	for _, pub := range output.Summaries {
		curr := fromPublicSummary(pub)

		existingRecord, hasRecord := e.labelStore.Get(curr.CategoryID)
		var existingPtr *label.Record
		if hasRecord {
			existingPtr = &existingRecord
		}

		prev, hasPrevBatch := e.lastBatch[curr.CategoryID]
		var drift label.DriftSignal
		if hasPrevBatch {
			drift = label.ComputeDrift(prev, curr)
		}

		relabel := label.DecideRelabel(existingPtr, hasPrevBatch, drift, policy, output.SnapshotTime)

		result := RefreshResult{CategoryID: curr.CategoryID}
		if relabel {
			genOutput, err := e.labelProvider.GenerateLabel(ctx, label.ProviderInput{
				CategoryID:   curr.CategoryID,
				Summary:      curr,
				SnapshotTime: output.SnapshotTime,
			})
			if err != nil {
				return nil, fmt.Errorf("cathexis: refresh_labels: category %d: %w", curr.CategoryID, err)
			}
			record := label.Record{
				CategoryID:   curr.CategoryID,
				Handle:       genOutput.Handle,
				Gloss:        genOutput.Gloss,
				Guidance:     genOutput.Guidance,
				SnapshotTime: output.SnapshotTime,
			}
			e.labelStore.Upsert(record)
			result.Relabeled = true
			result.Handle = record.Handle
			result.Gloss = record.Gloss
			result.Guidance = record.Guidance
		} else {
			result.Handle = existingRecord.Handle
			result.Gloss = existingRecord.Gloss
			result.Guidance = existingRecord.Guidance
		}
		results = append(results, result)

		e.lastBatch[curr.CategoryID] = curr
	}

	for _, hook := range e.eventHooks {
		if hookErr := hook.OnLabelsRefreshed(ctx, results); hookErr != nil {
			e.logger.Warn("cathexis: labels-refreshed hook failed", "error", hookErr)
		}
	}

	return results, nil
}

// QueryAgentHandle extracts features for a single agent against the
// current snapshot, assigns it via the categorizer, and looks up the
// label record for the assigned category. Absence of a label for the
// assigned category is a recoverable error (model.MissingLabel), not a
// crash — the caller may retry after RefreshLabels.
func (e *Engine) QueryAgentHandle(ctx context.Context, now uint64, agentID string, graph *model.GraphSnapshot, eqbsl EqbslView) (QueryAgentHandleResponse, error) {
	if _, ok := eqbsl.TrustEmbedding[agentID]; !ok {
		return QueryAgentHandleResponse{}, model.MissingNode(agentID)
	}

	extractCtx := extractor.Context{Graph: graph, Eqbsl: eqbsl, SnapshotTime: now}
	fs, err := e.extractor.ComputeFeatures(agentID, extractCtx)
	if err != nil {
		return QueryAgentHandleResponse{}, fmt.Errorf("cathexis: query_agent_handle: %w", err)
	}

	categoryID, probs, err := categorizerAssign(e.categorizer, fs.Vector)
	if err != nil {
		return QueryAgentHandleResponse{}, fmt.Errorf("cathexis: query_agent_handle: %w", err)
	}

	record, ok := e.labelStore.Get(categoryID)
	if !ok {
		return QueryAgentHandleResponse{}, model.MissingLabel(categoryID)
	}

	return QueryAgentHandleResponse{
		CategoryID:    categoryID,
		Probabilities: probs,
		Label:         record.Handle,
		Description:   record.Gloss,
		Guidance:      record.Guidance,
	}, nil
}
