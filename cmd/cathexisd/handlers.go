package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cathexis-net/cathexis"
	"github.com/cathexis-net/cathexis/internal/auth"
	"github.com/cathexis-net/cathexis/internal/model"
	"github.com/cathexis-net/cathexis/internal/search"
)

// api bundles the engine and auth manager the HTTP handlers close over.
// trustIndex is optional: nil disables post-batch embedding persistence.
type api struct {
	engine     *cathexis.Engine
	jwtMgr     *auth.JWTManager
	trustIndex *search.TrustVectorIndex
	logger     *slog.Logger
}

func (a *api) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("POST /v1/batch", a.requireAuth(a.handleRunBatch))
	mux.HandleFunc("POST /v1/agents/{id}/handle", a.requireAuth(a.handleQueryAgentHandle))
	return mux
}

func (a *api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// requireAuth wraps next with bearer-token JWT validation.
func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := a.jwtMgr.ValidateToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func (a *api) handleRunBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	graph := req.Graph.toSnapshot()
	eqbsl := req.Eqbsl.toView()

	out, err := a.engine.RunBatch(r.Context(), req.SnapshotTime, graph, eqbsl)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}

	if _, err := a.engine.RefreshLabels(r.Context(), out); err != nil {
		a.logger.Warn("cathexisd: refresh_labels failed", "error", err)
	}

	a.persistTrustEmbeddings(r.Context(), req.Eqbsl.TrustEmbedding)

	writeJSON(w, http.StatusOK, toBatchResponse(out))
}

// persistTrustEmbeddings upserts the batch's EQBSL view embeddings into
// the trust vector index, when one is configured. Failures are logged,
// not surfaced: the index is an external enrichment, not part of the
// batch's correctness.
func (a *api) persistTrustEmbeddings(ctx context.Context, embeddings map[string][]float64) {
	if a.trustIndex == nil {
		return
	}
	for agentID, vec := range embeddings {
		emb := make([]float32, len(vec))
		for i, v := range vec {
			emb[i] = float32(v)
		}
		if err := a.trustIndex.Upsert(ctx, agentID, emb); err != nil {
			a.logger.Warn("cathexisd: trust embedding upsert failed", "agent_id", agentID, "error", err)
		}
	}
}

func (a *api) handleQueryAgentHandle(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("id")
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	graph := req.Graph.toSnapshot()
	eqbsl := req.Eqbsl.toView()

	resp, err := a.engine.QueryAgentHandle(r.Context(), req.Now, agentID, graph, eqbsl)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQueryResponse(resp))
}

// writeEngineError maps the core's error taxonomy to HTTP status codes.
func (a *api) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case model.IsKind(err, model.KindMissingNode):
		writeError(w, http.StatusNotFound, err.Error())
	case model.IsKind(err, model.KindMissingLabel):
		writeError(w, http.StatusConflict, err.Error())
	case model.IsKind(err, model.KindEmptyInput), model.IsKind(err, model.KindDimensionMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		var modelErr *model.Error
		if errors.As(err, &modelErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.logger.Error("cathexisd: unexpected engine error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
