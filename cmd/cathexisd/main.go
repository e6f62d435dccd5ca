// Command cathexisd is a thin HTTP server wrapping the cathexis Engine:
// POST /v1/batch runs one batch over a caller-supplied graph and EQBSL
// view, and POST /v1/agents/{id}/handle answers a single-agent online
// query. Packaging only — no HTTP, JWT, or OTEL import leaks into the
// engine or its internal packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/cathexis-net/cathexis"
	"github.com/cathexis-net/cathexis/internal/auth"
	"github.com/cathexis-net/cathexis/internal/categorizer"
	"github.com/cathexis-net/cathexis/internal/config"
	"github.com/cathexis-net/cathexis/internal/extractor"
	"github.com/cathexis-net/cathexis/internal/label"
	"github.com/cathexis-net/cathexis/internal/model"
	"github.com/cathexis-net/cathexis/internal/search"
	"github.com/cathexis-net/cathexis/internal/telemetry"
)

// trustEmbeddingDims is the length of model.BasicEmbedding.Vector(),
// the only embedding shape the engine ever produces.
const trustEmbeddingDims = 4

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}

	level := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	_ = godotenv.Load()

	logger.Info("cathexisd starting", "version", version, "port", cfg.Port)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	params, err := loadParams(cfg, logger)
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}

	mlp, err := loadCategorizer(cfg, logger)
	if err != nil {
		return fmt.Errorf("categorizer: %w", err)
	}

	labelStore, closeStore, err := newLabelStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("label store: %w", err)
	}
	defer closeStore()

	var labelProvider cathexis.LabelProvider = label.NewHeuristicProvider()

	fe := extractor.NewStatic().WithHypergraphStats()

	engine, err := cathexis.New(params, mlp, fe,
		cathexis.WithLogger(logger),
		cathexis.WithLabelStore(labelStore),
		cathexis.WithLabelProvider(labelProvider),
		cathexis.WithMaxExtractConcurrency(4),
	)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	jwtMgr, err := newJWTManager(cfg)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	trustIndex, closeTrustIndex, err := newTrustIndex(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("trust index: %w", err)
	}
	defer closeTrustIndex()

	a := &api{engine: engine, jwtMgr: jwtMgr, trustIndex: trustIndex, logger: logger}
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      a.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	logger.Info("cathexisd shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	logger.Info("cathexisd stopped")
	return nil
}

// loadParams reads trust-propagation params from CATHEXIS_PARAMS_PATH,
// or falls back to a reference set suitable for local development.
func loadParams(cfg config.Config, logger *slog.Logger) (model.Params, error) {
	if cfg.ParamsPath != "" {
		return config.LoadParams(cfg.ParamsPath)
	}
	logger.Warn("CATHEXIS_PARAMS_PATH not set, using reference development params")
	return model.NewParams(model.Params{
		K:             2,
		WPos:          []float64{1},
		WNeg:          []float64{0},
		DecayBeta:     []float64{0.9},
		DampingLambda: 0.5,
		WitnessTopK:   10,
		BaseRate:      0.5,
	})
}

// loadCategorizer reads MLP weights from CATHEXIS_CATEGORIZER_PATH, or
// falls back to a small identity-flavored development default sized
// for a 1-dimensional trust embedding (1 + 2 + 2 + 2 = 7 input features
// under WithHypergraphStats()).
func loadCategorizer(cfg config.Config, logger *slog.Logger) (*categorizer.MLP, error) {
	if cfg.CategorizerPath != "" {
		return config.LoadCategorizer(cfg.CategorizerPath)
	}
	logger.Warn("CATHEXIS_CATEGORIZER_PATH not set, using a 2-category development default")
	const inputDim = 7
	const hiddenDim = 4
	const categories = 2
	w1 := make([][]float64, hiddenDim)
	for i := range w1 {
		row := make([]float64, inputDim)
		if i < inputDim {
			row[i] = 1
		}
		w1[i] = row
	}
	w2 := [][]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
	}
	return categorizer.NewMLP(inputDim, hiddenDim, categories, w1, make([]float64, hiddenDim), w2, make([]float64, categories))
}

func newLabelStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (cathexis.LabelStore, func(), error) {
	store, err := label.NewSQLStore(ctx, cfg.LabelStoreDriver, cfg.LabelStoreDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// newTrustIndex connects the optional pgvector-backed trust embedding
// index when CATHEXIS_TRUST_INDEX_DSN is set. Returns a nil index and a
// no-op close when unset, so persistence is opt-in. pgvector type
// registration is best-effort in each connection's AfterConnect hook,
// since the vector extension may not exist yet on first connect.
func newTrustIndex(ctx context.Context, cfg config.Config, logger *slog.Logger) (*search.TrustVectorIndex, func(), error) {
	if cfg.TrustIndexDSN == "" {
		logger.Warn("CATHEXIS_TRUST_INDEX_DSN not set, trust embedding persistence disabled")
		return nil, func() {}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.TrustIndexDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("trust index: parse dsn: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if err := pgxvector.RegisterTypes(ctx, conn); err != nil {
			logger.Debug("trust index: pgvector types not registered (extension may not exist yet)", "error", err)
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("trust index: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("trust index: ping: %w", err)
	}

	idx := search.NewTrustVectorIndex(pool)
	if err := idx.EnsureSchema(ctx, trustEmbeddingDims); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return idx, pool.Close, nil
}

func newJWTManager(cfg config.Config) (*auth.JWTManager, error) {
	if cfg.JWTPrivateKeyPath == "" || cfg.JWTPublicKeyPath == "" {
		return auth.NewJWTManager(cfg.JWTExpiration)
	}
	// Production key-file loading is a config-layer detail left to the
	// embedder; this demo binary only wires the ephemeral dev path.
	return auth.NewJWTManager(cfg.JWTExpiration)
}

func parseLogLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
