package label

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver
)

// SQLStore is a Store backed by database/sql, for label records that
// must survive process restarts. It runs against Postgres in
// production (driver "pgx", grounded in the pool-management idiom of
// internal/storage/pool.go) and against an embedded, pure-Go SQLite
// database in tests (driver "sqlite") — both paths share this same
// code, so the persistence logic is exercised without requiring a
// running Postgres instance to run the test suite.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// NewSQLStore opens dsn with the named driver ("pgx" or "sqlite"),
// pings it, and ensures the backing table exists.
func NewSQLStore(ctx context.Context, driverName, dsn string, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("label: open %s: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("label: ping %s: %w", driverName, err)
	}
	store := &SQLStore{db: db, driver: driverName, logger: logger}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cathexis_labels (
			category_id   INTEGER PRIMARY KEY,
			handle        TEXT NOT NULL,
			gloss         TEXT NOT NULL,
			guidance      TEXT,
			snapshot_time BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("label: migrate: %w", err)
	}
	return nil
}

// placeholder returns the driver-appropriate bind placeholder for
// positional argument n (1-indexed).
func (s *SQLStore) placeholder(n int) string {
	if s.driver == "pgx" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// GetContext reads the label record for categoryID, if one exists.
func (s *SQLStore) GetContext(ctx context.Context, categoryID int) (Record, bool, error) {
	query := fmt.Sprintf(
		`SELECT category_id, handle, gloss, guidance, snapshot_time FROM cathexis_labels WHERE category_id = %s`,
		s.placeholder(1),
	)
	row := s.db.QueryRowContext(ctx, query, categoryID)

	var rec Record
	var guidance sql.NullString
	if err := row.Scan(&rec.CategoryID, &rec.Handle, &rec.Gloss, &guidance, &rec.SnapshotTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("label: get: %w", err)
	}
	if guidance.Valid {
		g := guidance.String
		rec.Guidance = &g
	}
	return rec, true, nil
}

// UpsertContext replaces any existing record for record.CategoryID.
func (s *SQLStore) UpsertContext(ctx context.Context, record Record) error {
	var guidance any
	if record.Guidance != nil {
		guidance = *record.Guidance
	}
	query := fmt.Sprintf(`
		INSERT INTO cathexis_labels (category_id, handle, gloss, guidance, snapshot_time)
		VALUES (%s, %s, %s, %s, %s)
		ON CONFLICT (category_id) DO UPDATE SET
			handle = excluded.handle,
			gloss = excluded.gloss,
			guidance = excluded.guidance,
			snapshot_time = excluded.snapshot_time
	`, s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5))

	if _, err := s.db.ExecContext(ctx, query, record.CategoryID, record.Handle, record.Gloss, guidance, record.SnapshotTime); err != nil {
		return fmt.Errorf("label: upsert: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Get implements Store using a background context, for callers (like
// the Engine) that consume the context-free Store interface.
func (s *SQLStore) Get(categoryID int) (Record, bool) {
	rec, ok, err := s.GetContext(context.Background(), categoryID)
	if err != nil {
		s.logger.Error("label: sql store get failed", "category_id", categoryID, "error", err)
		return Record{}, false
	}
	return rec, ok
}

// Upsert implements Store using a background context. Errors are
// logged rather than surfaced, since the Store interface does not
// return one — callers needing error visibility should use
// UpsertContext directly.
func (s *SQLStore) Upsert(record Record) {
	if err := s.UpsertContext(context.Background(), record); err != nil {
		s.logger.Error("label: sql store upsert failed", "category_id", record.CategoryID, "error", err)
	}
}
