package out

import (
	"context"
	"encoding/json"
	"fmt"

	"siav/internal/modules/session/domain"
	"siav/internal/modules/session/dto"
)

// Broadcaster is the part of the realtime hub the session needs.
type Broadcaster interface {
	Broadcast(data []byte)
}

type snapshotMessage struct {
	Type string             `json:"type"`
	Data dto.SnapshotOutput `json:"data"`
}

// WSBroadcaster pushes snapshots and cues to websocket clients. It is both
// the rendering sink and a notifier.
type WSBroadcaster struct {
	hub Broadcaster
}

func NewWSBroadcaster(hub Broadcaster) *WSBroadcaster {
	return &WSBroadcaster{hub: hub}
}

func (b *WSBroadcaster) Render(_ context.Context, snapshot dto.SnapshotOutput) error {
	data, err := json.Marshal(snapshotMessage{Type: "snapshot", Data: snapshot})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	b.hub.Broadcast(data)
	return nil
}

func (b *WSBroadcaster) Notify(_ context.Context, sessionID string, cue domain.Cue) error {
	data, err := json.Marshal(newCueMessage(sessionID, cue))
	if err != nil {
		return fmt.Errorf("marshal cue: %w", err)
	}
	b.hub.Broadcast(data)
	return nil
}
