package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"siav/internal/modules/session/domain"
	sessionout "siav/internal/modules/session/port/out"
	"siav/internal/platform/logging"
)

const CueChannel = "siav:cues"

// CueMessage is the wire form of a cue on redis and websockets.
type CueMessage struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Cue       string    `json:"cue"`
	At        time.Time `json:"at"`
}

func newCueMessage(sessionID string, cue domain.Cue) CueMessage {
	return CueMessage{Type: "cue", SessionID: sessionID, Cue: string(cue), At: time.Now().UTC()}
}

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{log: logging.OrDiscard(logger)}
}

func (n *LogNotifier) Notify(_ context.Context, sessionID string, cue domain.Cue) error {
	n.log.Info("cue", "session_id", sessionID, "cue", string(cue))
	return nil
}

// RedisNotifier publishes cues so displays attached to other processes can
// sound them.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = CueChannel
	}
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, sessionID string, cue domain.Cue) error {
	data, err := json.Marshal(newCueMessage(sessionID, cue))
	if err != nil {
		return fmt.Errorf("marshal cue: %w", err)
	}
	pubCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := n.client.Publish(pubCtx, n.channel, string(data)).Err(); err != nil {
		return fmt.Errorf("publish cue: %w", err)
	}
	return nil
}

// ChannelNotifier hands cues to an in-process consumer such as the TUI.
// Cues are dropped when the consumer falls behind.
type ChannelNotifier struct {
	ch chan CueMessage
}

func NewChannelNotifier(size int) *ChannelNotifier {
	if size <= 0 {
		size = 16
	}
	return &ChannelNotifier{ch: make(chan CueMessage, size)}
}

func (n *ChannelNotifier) Notify(_ context.Context, sessionID string, cue domain.Cue) error {
	select {
	case n.ch <- newCueMessage(sessionID, cue):
	default:
	}
	return nil
}

func (n *ChannelNotifier) Cues() <-chan CueMessage {
	return n.ch
}

// MultiNotifier calls every notifier and joins their errors.
type MultiNotifier []sessionout.Notifier

func (m MultiNotifier) Notify(ctx context.Context, sessionID string, cue domain.Cue) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, sessionID, cue); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
