package out_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sessionout "siav/internal/modules/session/adapter/out"
	"siav/internal/modules/session/domain"
)

type memoryRemote struct {
	saved  []string
	closed bool
}

func (m *memoryRemote) SaveSessionLog(_ context.Context, log domain.SessionLog) (string, error) {
	m.saved = append(m.saved, log.SessionID)
	return log.SessionID, nil
}

func (m *memoryRemote) Close() { m.closed = true }

func TestReconnectingSinkRecoversAfterOutage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	refused := errors.New("dial tcp: connection refused")
	remote := &memoryRemote{}
	dials := 0
	online := false
	sink := sessionout.NewReconnectingSink(func(context.Context) (sessionout.RemoteSink, error) {
		dials++
		if !online {
			return nil, refused
		}
		return remote, nil
	}, 30*time.Second, nil)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	sink.SetNow(func() time.Time { return now })

	if err := sink.Connect(ctx); !errors.Is(err, refused) {
		t.Fatalf("connect while offline: %v", err)
	}
	if _, err := sink.SaveSessionLog(ctx, domain.SessionLog{SessionID: "s1"}); !errors.Is(err, refused) {
		t.Fatalf("save while offline must wrap the dial error, got %v", err)
	}
	if dials != 1 {
		t.Fatalf("redial must wait for the retry interval, dials=%d", dials)
	}

	online = true
	now = now.Add(31 * time.Second)
	if _, err := sink.SaveSessionLog(ctx, domain.SessionLog{SessionID: "s1"}); err != nil {
		t.Fatalf("save after recovery: %v", err)
	}
	if _, err := sink.SaveSessionLog(ctx, domain.SessionLog{SessionID: "s2"}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if dials != 2 || len(remote.saved) != 2 {
		t.Fatalf("connection must be reused, dials=%d saved=%v", dials, remote.saved)
	}

	sink.Close()
	if !remote.closed {
		t.Fatalf("close must release the remote")
	}
}

func TestReconnectingSinkConnectIgnoresRetryInterval(t *testing.T) {
	t.Parallel()
	dials := 0
	sink := sessionout.NewReconnectingSink(func(context.Context) (sessionout.RemoteSink, error) {
		dials++
		if dials == 1 {
			return nil, errors.New("timeout")
		}
		return &memoryRemote{}, nil
	}, time.Hour, nil)

	_ = sink.Connect(context.Background())
	if err := sink.Connect(context.Background()); err != nil {
		t.Fatalf("explicit connect must redial: %v", err)
	}
}
