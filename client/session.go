package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

// SessionClient drives one participant's session: it owns the control
// channel, the push subscription and the persisted slot, and funnels every
// authoritative snapshot through a single guarded apply path. UI code reads
// State and calls the operations; it never touches the wire itself.
type SessionClient struct {
	logger  *slog.Logger
	control *ControlClient
	push    PushChannel
	store   SlotStore
	gate    TurnGate

	mu            sync.Mutex
	participantID string
	state         SessionState
	pushCancel    context.CancelFunc
}

func NewSessionClient(logger *slog.Logger, control *ControlClient, push PushChannel, store SlotStore) *SessionClient {
	return &SessionClient{
		logger:  logger.With("component", "session-client"),
		control: control,
		push:    push,
		store:   store,
		state:   SessionState{Phase: PhaseIdle},
	}
}

// State - the current session view. Snapshots are replaced wholesale and
// never mutated in place, so the returned pointer is safe to read.
func (that *SessionClient) State() SessionState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

// Snapshot - the latest authoritative room snapshot, nil outside a room.
func (that *SessionClient) Snapshot() *protocol.Snapshot {
	return that.State().Snapshot
}

// Bootstrap - establishes identity and the session token. Reuses the
// persisted participant id when one exists so stats and room membership
// survive restarts.
func (that *SessionClient) Bootstrap(ctx context.Context, name string) (*protocol.BootstrapResponse, error) {
	identity, err := that.store.Identity()
	if err != nil && !errors.Is(err, ErrNoPersistedSession) {
		return nil, err
	}

	resp, err := that.control.Bootstrap(ctx, identity.ParticipantID, name)
	if err != nil {
		return nil, fmt.Errorf("bootstrap failed: %w", err)
	}

	identity = Identity{ParticipantID: resp.Profile.ID, Name: resp.Profile.Name}
	if err = that.store.SaveIdentity(identity); err != nil {
		return nil, err
	}

	that.mu.Lock()
	that.participantID = resp.Profile.ID
	that.mu.Unlock()

	return resp, nil
}

// CreateRoom - opens a fresh room with the caller seated on the first side.
// Refused with ErrAlreadyInRoom while a room is attached.
func (that *SessionClient) CreateRoom(ctx context.Context, variant protocol.Variant, roomType string) (SessionState, error) {
	if err := that.ensureDetached(); err != nil {
		return SessionState{}, err
	}

	that.setPhase(PhaseConnecting)

	snapshot, err := that.control.StartRoom(ctx, variant, roomType)
	if err != nil {
		that.setPhase(PhaseIdle)
		return SessionState{}, err
	}

	return that.attach(ctx, snapshot)
}

// JoinRoom - takes the second seat of an existing room. Rejoining a room
// the caller already occupies is a no-op server-side and converges here.
// Refused with ErrAlreadyInRoom while a room is attached.
func (that *SessionClient) JoinRoom(ctx context.Context, roomID string) (SessionState, error) {
	if err := that.ensureDetached(); err != nil {
		return SessionState{}, err
	}

	that.setPhase(PhaseConnecting)

	snapshot, err := that.control.JoinRoom(ctx, roomID)
	if err != nil {
		that.setPhase(PhaseIdle)
		return SessionState{}, err
	}

	return that.attach(ctx, snapshot)
}

// RestoreSession - resumes the room persisted for the variant, if any. A
// slot pointing at a vanished room is cleared and reported as
// ErrPersistedRoomGone so the caller can fall back to a fresh start.
// Refused with ErrAlreadyInRoom while a room is attached.
func (that *SessionClient) RestoreSession(ctx context.Context, variant protocol.Variant) (SessionState, error) {
	if err := that.ensureDetached(); err != nil {
		return SessionState{}, err
	}

	slot, err := that.store.Slot(variant)
	if err != nil {
		return SessionState{}, err
	}

	that.setPhase(PhaseReconnecting)

	snapshot, err := that.control.GetStatus(ctx, slot.RoomID)
	if err != nil {
		that.setPhase(PhaseIdle)
		if IsRoomGone(err) {
			if clearErr := that.store.ClearSlot(variant); clearErr != nil {
				return SessionState{}, clearErr
			}
			return SessionState{}, ErrPersistedRoomGone
		}
		return SessionState{}, err
	}

	return that.attach(ctx, snapshot)
}

// SubmitMove - submits the move at UI coordinates. The gate enforces local
// legality and single-flight; the server stays the arbiter. A recoverable
// rejection leaves local state untouched.
func (that *SessionClient) SubmitMove(ctx context.Context, row, col int) (SessionState, error) {
	that.mu.Lock()
	state := that.state
	that.mu.Unlock()

	if state.Snapshot == nil {
		return SessionState{}, ErrNotPlayable
	}

	cell := NewBoardCodec(state.Snapshot.Variant).EncodeMove(row, col)

	if err := that.gate.Admit(state, cell); err != nil {
		return SessionState{}, err
	}
	defer that.gate.Release()

	snapshot, err := that.control.SubmitMove(ctx, state.Snapshot.RoomID, cell)
	if err != nil {
		return SessionState{}, err
	}

	return that.applySnapshot(snapshot), nil
}

// ResetRoom - starts a rematch on the finished room.
func (that *SessionClient) ResetRoom(ctx context.Context) (SessionState, error) {
	that.mu.Lock()
	state := that.state
	that.mu.Unlock()

	if state.Snapshot == nil {
		return SessionState{}, ErrNotPlayable
	}

	snapshot, err := that.control.ResetRoom(ctx, state.Snapshot.RoomID)
	if err != nil {
		return SessionState{}, err
	}

	return that.applySnapshot(snapshot), nil
}

// ExitRoom - leaves the room, forfeiting an ongoing game, and clears the
// persisted slot. Always detaches locally, even if the room is already
// gone server-side.
func (that *SessionClient) ExitRoom(ctx context.Context) error {
	that.mu.Lock()
	snapshot := that.state.Snapshot
	that.mu.Unlock()

	if snapshot == nil {
		return nil
	}

	_, err := that.control.LeaveRoom(ctx)
	if err != nil && !IsRoomGone(err) {
		return err
	}

	if err = that.store.ClearSlot(snapshot.Variant); err != nil {
		return err
	}

	that.detach()

	return nil
}

// attach - adopts an authoritative snapshot as the session's room: resolves
// the local side, persists the slot and starts the push pump.
func (that *SessionClient) attach(ctx context.Context, snapshot *protocol.Snapshot) (SessionState, error) {
	that.mu.Lock()
	participantID := that.participantID
	that.mu.Unlock()

	if participantID == "" {
		that.setPhase(PhaseIdle)
		return SessionState{}, ErrNotBootstrapped
	}

	side := protocol.SideNone
	if player := snapshot.PlayerByID(participantID); player != nil {
		side = player.Side
	}

	slot := Slot{RoomID: snapshot.RoomID, Side: side}
	if err := that.store.SaveSlot(snapshot.Variant, slot); err != nil {
		that.setPhase(PhaseIdle)
		return SessionState{}, err
	}

	that.mu.Lock()
	if that.pushCancel != nil {
		that.pushCancel()
	}
	pushCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	that.pushCancel = cancel
	that.state = SessionState{
		Phase:     phaseForStatus(snapshot.Status),
		LocalSide: side,
		Snapshot:  snapshot,
	}
	that.mu.Unlock()

	events, err := that.push.Subscribe(pushCtx, snapshot.RoomID)
	if err != nil {
		cancel()
		return SessionState{}, fmt.Errorf("push subscribe failed: %w", err)
	}

	go that.pump(pushCtx, snapshot.RoomID, events)

	return that.State(), nil
}

// ensureDetached - room entry is only valid while no room is attached, so
// a live session is never clobbered by a rejected entry attempt.
func (that *SessionClient) ensureDetached() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state.Snapshot != nil {
		return ErrAlreadyInRoom
	}

	return nil
}

func (that *SessionClient) detach() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.pushCancel != nil {
		that.pushCancel()
		that.pushCancel = nil
	}

	that.state = SessionState{Phase: PhaseIdle}
}

// pump - drains push events into the apply funnel. After a reconnect the
// push channel may have missed deliveries, so the pump reconciles with a
// fresh getStatus before trusting pushes again.
func (that *SessionClient) pump(ctx context.Context, roomID string, events <-chan Event) {
	log := that.logger.With("roomID", roomID)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			if event.Kind == EventReconnected {
				that.reconcile(ctx, roomID, log)
				continue
			}

			if event.Snapshot != nil {
				that.applySnapshot(event.Snapshot)
			}
		}
	}
}

func (that *SessionClient) reconcile(ctx context.Context, roomID string, log *slog.Logger) {
	that.setPhase(PhaseReconnecting)

	snapshot, err := that.control.GetStatus(ctx, roomID)
	if err != nil {
		if IsRoomGone(err) {
			log.Info("room disappeared while reconnecting")
			that.detach()
			return
		}
		log.Error("reconciliation failed", "error", err)
		return
	}

	that.applyAuthoritative(snapshot)
}

// applySnapshot - the single mutation path for room state. Snapshots for
// another room or with a revision at or below the current one are dropped,
// which makes duplicate and reordered deliveries harmless.
func (that *SessionClient) applySnapshot(snapshot *protocol.Snapshot) SessionState {
	that.mu.Lock()
	defer that.mu.Unlock()

	current := that.state.Snapshot
	if current != nil {
		if snapshot.RoomID != current.RoomID {
			return that.state
		}
		if snapshot.Revision <= current.Revision {
			return that.state
		}
	}

	that.adopt(snapshot)

	return that.state
}

// applyAuthoritative - like applySnapshot but without the staleness check;
// used for reconciliation responses, which are authoritative by definition.
func (that *SessionClient) applyAuthoritative(snapshot *protocol.Snapshot) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state.Snapshot != nil && snapshot.RoomID != that.state.Snapshot.RoomID {
		return
	}

	that.adopt(snapshot)
}

// adopt - caller holds the mutex.
func (that *SessionClient) adopt(snapshot *protocol.Snapshot) {
	side := that.state.LocalSide
	if player := snapshot.PlayerByID(that.participantID); player != nil {
		side = player.Side
	}

	that.state = SessionState{
		Phase:     phaseForStatus(snapshot.Status),
		LocalSide: side,
		Snapshot:  snapshot,
	}
}

func (that *SessionClient) setPhase(phase Phase) {
	that.mu.Lock()
	that.state.Phase = phase
	that.mu.Unlock()
}
