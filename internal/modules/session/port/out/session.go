package out

import (
	"context"

	"siav/internal/modules/session/domain"
	"siav/internal/modules/session/dto"
)

type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.ActiveSession) error
	LoadActive(ctx context.Context) (domain.ActiveSession, error)
	ClearActive(ctx context.Context) error
}

// SessionLogSink is the remote record of finished sessions.
type SessionLogSink interface {
	SaveSessionLog(ctx context.Context, log domain.SessionLog) (string, error)
}

// LogIndex is the local archive every finished session lands in.
type LogIndex interface {
	PutLog(ctx context.Context, log domain.SessionLog, synced bool) error
	ListLogs(ctx context.Context, limit int) ([]domain.LogRecord, error)
}

// OfflineQueue holds logs the sink rejected until a later sync succeeds.
type OfflineQueue interface {
	Enqueue(ctx context.Context, log domain.SessionLog) error
	Pending(ctx context.Context) ([]domain.SessionLog, error)
	MarkSynced(ctx context.Context, sessionID string) error
}

type ReportWriter interface {
	WriteReport(ctx context.Context, log domain.SessionLog) (string, error)
}

// Notifier delivers cues. Implementations must not block the caller for long
// and their errors are only logged.
type Notifier interface {
	Notify(ctx context.Context, sessionID string, cue domain.Cue) error
}

type Renderer interface {
	Render(ctx context.Context, snapshot dto.SnapshotOutput) error
}

// TickSource calls fn at a fixed cadence until Stop returns. Stop waits for
// an in-flight call to finish.
type TickSource interface {
	Start(ctx context.Context, fn func(context.Context)) error
	Stop()
}
