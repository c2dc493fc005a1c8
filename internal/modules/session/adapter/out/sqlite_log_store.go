package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"siav/internal/modules/session/domain"
	"siav/internal/platform/tx"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteLogStore is the local archive of finished sessions and the queue of
// logs still owed to the remote sink.
type SQLiteLogStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteLogStore(dbPath string) (*SQLiteLogStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteLogStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteLogStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteLogStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS pcr_logs (
  session_id TEXT PRIMARY KEY,
  patient_name TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  rosc INTEGER NOT NULL,
  payload TEXT NOT NULL,
  synced INTEGER NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS offline_logs (
  session_id TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  queued_at TEXT NOT NULL,
  attempts INTEGER NOT NULL DEFAULT 1,
  synced INTEGER NOT NULL DEFAULT 0,
  synced_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_offline_logs_pending ON offline_logs (synced, queued_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create log tables: %w", err)
	}
	return nil
}

func (s *SQLiteLogStore) PutLog(ctx context.Context, log domain.SessionLog, synced bool) error {
	payload, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal session log: %w", err)
	}
	const stmt = `
INSERT INTO pcr_logs (session_id, patient_name, started_at, ended_at, rosc, payload, synced, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
  patient_name=excluded.patient_name,
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  rosc=excluded.rosc,
  payload=excluded.payload,
  synced=excluded.synced,
  updated_at=excluded.updated_at;
`
	_, err = s.db.ExecContext(ctx, stmt,
		log.SessionID,
		log.Patient.Name,
		log.StartedAt.UTC().Format(timeLayout),
		log.EndedAt.UTC().Format(timeLayout),
		boolInt(log.Summary.ROSC),
		string(payload),
		boolInt(synced),
		s.now().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert session log: %w", err)
	}
	return nil
}

func (s *SQLiteLogStore) ListLogs(ctx context.Context, limit int) ([]domain.LogRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT payload, synced FROM pcr_logs ORDER BY started_at DESC, session_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query session logs: %w", err)
	}
	defer rows.Close()

	var out []domain.LogRecord
	for rows.Next() {
		var payload string
		var synced int
		if err := rows.Scan(&payload, &synced); err != nil {
			return nil, fmt.Errorf("scan session log: %w", err)
		}
		var log domain.SessionLog
		if err := json.Unmarshal([]byte(payload), &log); err != nil {
			return nil, fmt.Errorf("decode session log: %w", err)
		}
		out = append(out, domain.LogRecord{Log: log, Synced: synced == 1})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session logs: %w", err)
	}
	return out, nil
}

func (s *SQLiteLogStore) Enqueue(ctx context.Context, log domain.SessionLog) error {
	payload, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal session log: %w", err)
	}
	return tx.Within(ctx, s.db, func(txn *sql.Tx) error {
		const stmt = `
INSERT INTO offline_logs (session_id, payload, queued_at, attempts, synced)
VALUES (?, ?, ?, 1, 0)
ON CONFLICT(session_id) DO UPDATE SET
  payload=excluded.payload,
  attempts=offline_logs.attempts + 1,
  synced=0,
  synced_at=NULL;
`
		if _, err := txn.ExecContext(ctx, stmt, log.SessionID, string(payload), s.now().Format(timeLayout)); err != nil {
			return fmt.Errorf("enqueue session log: %w", err)
		}
		if _, err := txn.ExecContext(ctx, `UPDATE pcr_logs SET synced = 0 WHERE session_id = ?`, log.SessionID); err != nil {
			return fmt.Errorf("flag session log pending: %w", err)
		}
		return nil
	})
}

func (s *SQLiteLogStore) Pending(ctx context.Context) ([]domain.SessionLog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM offline_logs WHERE synced = 0 ORDER BY queued_at ASC, session_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query pending logs: %w", err)
	}
	defer rows.Close()

	var out []domain.SessionLog
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan pending log: %w", err)
		}
		var log domain.SessionLog
		if err := json.Unmarshal([]byte(payload), &log); err != nil {
			return nil, fmt.Errorf("decode pending log: %w", err)
		}
		out = append(out, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending logs: %w", err)
	}
	return out, nil
}

func (s *SQLiteLogStore) MarkSynced(ctx context.Context, sessionID string) error {
	return tx.Within(ctx, s.db, func(txn *sql.Tx) error {
		now := s.now().Format(timeLayout)
		res, err := txn.ExecContext(ctx, `UPDATE offline_logs SET synced = 1, synced_at = ? WHERE session_id = ?`, now, sessionID)
		if err != nil {
			return fmt.Errorf("mark log synced: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("mark log synced: session %s is not queued", sessionID)
		}
		if _, err := txn.ExecContext(ctx, `UPDATE pcr_logs SET synced = 1, updated_at = ? WHERE session_id = ?`, now, sessionID); err != nil {
			return fmt.Errorf("flag session log synced: %w", err)
		}
		return nil
	})
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
