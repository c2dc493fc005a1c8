package out

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"siav/internal/modules/session/domain"
	"siav/internal/platform/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresLogSink delivers finished session logs to a shared Postgres
// database.
type PostgresLogSink struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgresLogSink(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresLogSink, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnIdleTime = 5 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	sink := &PostgresLogSink{pool: pool, log: logging.OrDiscard(logger)}
	if err := sink.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return sink, nil
}

// Migrate applies the embedded goose migrations.
func (s *PostgresLogSink) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	s.log.Info("applying migrations", "dir", "migrations")
	if err := goose.UpContext(runCtx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *PostgresLogSink) SaveSessionLog(ctx context.Context, log domain.SessionLog) (string, error) {
	summary, err := json.Marshal(log.Summary)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	entries, err := json.Marshal(log.Entries)
	if err != nil {
		return "", fmt.Errorf("marshal entries: %w", err)
	}
	const query = `
		INSERT INTO pcr_logs (session_id, schema_version, patient_name, started_at, ended_at, duration_seconds, shock_count, rosc, summary, entries)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (session_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			entries = EXCLUDED.entries,
			received_at = NOW()
		RETURNING session_id
	`
	var id string
	err = s.pool.QueryRow(ctx, query,
		log.SessionID,
		log.SchemaVersion,
		log.Patient.Name,
		log.StartedAt,
		log.EndedAt,
		log.Summary.DurationSeconds,
		log.Summary.ShockCount,
		log.Summary.ROSC,
		summary,
		entries,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert session log: %w", err)
	}
	return id, nil
}

func (s *PostgresLogSink) Close() {
	s.pool.Close()
}

// RemoteSink is a log sink holding a connection that Close releases.
type RemoteSink interface {
	SaveSessionLog(ctx context.Context, log domain.SessionLog) (string, error)
	Close()
}

// ReconnectingSink dials its remote on first use and again after every
// failed dial, so a database that comes back later is picked up without a
// restart. Dials are spaced by at least retryAfter.
type ReconnectingSink struct {
	dial       func(ctx context.Context) (RemoteSink, error)
	retryAfter time.Duration
	now        func() time.Time
	log        *slog.Logger

	mu       sync.Mutex
	sink     RemoteSink
	lastDial time.Time
	lastErr  error
}

func NewReconnectingSink(dial func(ctx context.Context) (RemoteSink, error), retryAfter time.Duration, logger *slog.Logger) *ReconnectingSink {
	return &ReconnectingSink{dial: dial, retryAfter: retryAfter, now: time.Now, log: logging.OrDiscard(logger)}
}

// NewPostgresReconnectingSink reconnects to databaseURL on demand.
func NewPostgresReconnectingSink(databaseURL string, retryAfter time.Duration, logger *slog.Logger) *ReconnectingSink {
	return NewReconnectingSink(func(ctx context.Context) (RemoteSink, error) {
		return NewPostgresLogSink(ctx, databaseURL, logger)
	}, retryAfter, logger)
}

// Connect dials now unless a connection is already held.
func (s *ReconnectingSink) Connect(ctx context.Context) error {
	_, err := s.current(ctx, true)
	return err
}

func (s *ReconnectingSink) SaveSessionLog(ctx context.Context, log domain.SessionLog) (string, error) {
	sink, err := s.current(ctx, false)
	if err != nil {
		return "", err
	}
	return sink.SaveSessionLog(ctx, log)
}

func (s *ReconnectingSink) current(ctx context.Context, force bool) (RemoteSink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink != nil {
		return s.sink, nil
	}
	now := s.now()
	if !force && s.lastErr != nil && now.Sub(s.lastDial) < s.retryAfter {
		return nil, fmt.Errorf("log sink unavailable: %w", s.lastErr)
	}
	s.lastDial = now
	sink, err := s.dial(ctx)
	if err != nil {
		s.lastErr = err
		return nil, fmt.Errorf("log sink unavailable: %w", err)
	}
	if s.lastErr != nil {
		s.log.Info("remote log sink reconnected")
	}
	s.sink, s.lastErr = sink, nil
	return sink, nil
}

func (s *ReconnectingSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink != nil {
		s.sink.Close()
		s.sink = nil
	}
}
