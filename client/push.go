package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

// EventKind classifies a push delivery for the session client.
type EventKind int

const (
	// EventOpponentJoined - the second participant took its seat.
	EventOpponentJoined EventKind = iota + 1
	// EventBoardUpdated - a move was accepted (or the room finished).
	EventBoardUpdated
	// EventRoomReset - a rematch started in the same room.
	EventRoomReset
	// EventReconnected - the channel re-established its connection; the
	// consumer must reconcile via getStatus because deliveries may have
	// been missed while disconnected.
	EventReconnected
)

// Event - one push delivery. Snapshot is nil for EventReconnected.
type Event struct {
	Kind     EventKind
	Snapshot *protocol.Snapshot
}

// PushChannel is the persistent topic-addressed subscription to a room's
// events. Delivery is at-least-once and unordered; consumers must apply
// events idempotently.
type PushChannel interface {
	Subscribe(ctx context.Context, roomID string) (<-chan Event, error)
}

// WebSocketPushChannel subscribes through the push gateway and owns its
// own reconnect-with-resubscribe behavior beneath the session protocol.
type WebSocketPushChannel struct {
	logger     *slog.Logger
	gatewayURL string
	tokenFunc  func() string
	dialer     *websocket.Dialer

	maxBackoff time.Duration
}

// NewPushChannel - gatewayURL is the ws:// base of the push gateway;
// tokenFunc supplies the current session token at (re)dial time.
func NewPushChannel(logger *slog.Logger, gatewayURL string, tokenFunc func() string) *WebSocketPushChannel {
	return &WebSocketPushChannel{
		logger:     logger.With("component", "push-channel"),
		gatewayURL: gatewayURL,
		tokenFunc:  tokenFunc,
		dialer:     websocket.DefaultDialer,
		maxBackoff: 30 * time.Second,
	}
}

// Subscribe - delivers the room's events until ctx is cancelled. The
// returned channel is closed on cancellation.
func (that *WebSocketPushChannel) Subscribe(ctx context.Context, roomID string) (<-chan Event, error) {
	events := make(chan Event)

	go that.run(ctx, roomID, events)

	return events, nil
}

func (that *WebSocketPushChannel) run(ctx context.Context, roomID string, events chan<- Event) {
	log := that.logger.With("roomID", roomID)

	defer close(events)

	backoff := time.Second
	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := that.dial(ctx, roomID)
		if err != nil {
			log.Info("push dial failed, retrying", "error", err, "backoff", backoff)
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, that.maxBackoff)
			continue
		}

		backoff = time.Second

		if attempt > 0 {
			if !emit(ctx, events, Event{Kind: EventReconnected}) {
				conn.Close()
				return
			}
		}
		attempt++

		that.readLoop(ctx, conn, events, log)
		conn.Close()
	}
}

func (that *WebSocketPushChannel) dial(ctx context.Context, roomID string) (*websocket.Conn, error) {
	url := that.gatewayURL + "/push?room=" + roomID + "&token=" + that.tokenFunc()

	conn, _, err := that.dialer.DialContext(ctx, url, nil)

	return conn, err
}

// readLoop - decodes envelopes until the connection breaks or ctx ends.
func (that *WebSocketPushChannel) readLoop(ctx context.Context, conn *websocket.Conn, events chan<- Event, log *slog.Logger) {
	done := make(chan struct{})
	defer close(done)

	// unblocks the read below on cancellation; exits with the loop so each
	// connection's watchdog ends with it.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var envelope protocol.Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if ctx.Err() == nil {
				log.Info("push connection lost", "error", err)
			}
			return
		}

		event, ok := decodeEnvelope(envelope)
		if !ok {
			log.Info("dropping unrecognized push envelope", "topic", envelope.Topic)
			continue
		}

		if !emit(ctx, events, event) {
			return
		}
	}
}

// decodeEnvelope - classifies the topic and unpacks the snapshot payload.
func decodeEnvelope(envelope protocol.Envelope) (Event, bool) {
	category, _, found := strings.Cut(envelope.Topic, "/")
	if !found {
		return Event{}, false
	}

	var kind EventKind
	switch category + "/" {
	case protocol.TopicOpponentJoined(""):
		kind = EventOpponentJoined
	case protocol.TopicBoardUpdated(""):
		kind = EventBoardUpdated
	case protocol.TopicRoomReset(""):
		kind = EventRoomReset
	default:
		return Event{}, false
	}

	var snapshot protocol.Snapshot
	if err := json.Unmarshal(envelope.Payload, &snapshot); err != nil {
		return Event{}, false
	}

	return Event{Kind: kind, Snapshot: &snapshot}, true
}

func emit(ctx context.Context, events chan<- Event, event Event) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
