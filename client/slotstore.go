package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

// Identity is the durable participant identity, shared across variants.
type Identity struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
}

// Slot remembers the room a participant occupied for one variant, so a
// reloaded client can offer to resume it.
type Slot struct {
	RoomID string        `json:"room_id"`
	Side   protocol.Side `json:"side"`
}

// SlotStore persists identity and per-variant room slots across process
// restarts.
type SlotStore interface {
	Identity() (Identity, error)
	SaveIdentity(identity Identity) error
	Slot(variant protocol.Variant) (Slot, error)
	SaveSlot(variant protocol.Variant, slot Slot) error
	ClearSlot(variant protocol.Variant) error
}

type slotFile struct {
	Identity Identity                  `json:"identity"`
	Slots    map[protocol.Variant]Slot `json:"slots"`
}

// FileSlotStore keeps the whole store in one JSON file, rewritten on every
// mutation. Session data is a handful of fields; atomicity via rename is
// all the durability it needs.
type FileSlotStore struct {
	mu   sync.Mutex
	path string
}

func NewFileSlotStore(path string) *FileSlotStore {
	return &FileSlotStore{path: path}
}

func (that *FileSlotStore) Identity() (Identity, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	file, err := that.load()
	if err != nil {
		return Identity{}, err
	}

	if file.Identity.ParticipantID == "" {
		return Identity{}, ErrNoPersistedSession
	}

	return file.Identity, nil
}

func (that *FileSlotStore) SaveIdentity(identity Identity) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	file, err := that.load()
	if err != nil {
		return err
	}

	file.Identity = identity

	return that.save(file)
}

func (that *FileSlotStore) Slot(variant protocol.Variant) (Slot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	file, err := that.load()
	if err != nil {
		return Slot{}, err
	}

	slot, ok := file.Slots[variant]
	if !ok || slot.RoomID == "" {
		return Slot{}, ErrNoPersistedSession
	}

	return slot, nil
}

func (that *FileSlotStore) SaveSlot(variant protocol.Variant, slot Slot) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	file, err := that.load()
	if err != nil {
		return err
	}

	file.Slots[variant] = slot

	return that.save(file)
}

func (that *FileSlotStore) ClearSlot(variant protocol.Variant) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	file, err := that.load()
	if err != nil {
		return err
	}

	delete(file.Slots, variant)

	return that.save(file)
}

func (that *FileSlotStore) load() (slotFile, error) {
	file := slotFile{Slots: map[protocol.Variant]Slot{}}

	raw, err := os.ReadFile(that.path)
	if os.IsNotExist(err) {
		return file, nil
	}
	if err != nil {
		return file, fmt.Errorf("read slot store: %w", err)
	}

	if err = json.Unmarshal(raw, &file); err != nil {
		return file, fmt.Errorf("decode slot store: %w", err)
	}

	if file.Slots == nil {
		file.Slots = map[protocol.Variant]Slot{}
	}

	return file, nil
}

func (that *FileSlotStore) save(file slotFile) error {
	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode slot store: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(that.path), 0o700); err != nil {
		return fmt.Errorf("create slot store dir: %w", err)
	}

	tmp := that.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write slot store: %w", err)
	}

	if err = os.Rename(tmp, that.path); err != nil {
		return fmt.Errorf("replace slot store: %w", err)
	}

	return nil
}

// MemorySlotStore is the in-memory store used by tests and throwaway
// sessions.
type MemorySlotStore struct {
	mu       sync.Mutex
	identity Identity
	slots    map[protocol.Variant]Slot
}

func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{slots: map[protocol.Variant]Slot{}}
}

func (that *MemorySlotStore) Identity() (Identity, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.identity.ParticipantID == "" {
		return Identity{}, ErrNoPersistedSession
	}

	return that.identity, nil
}

func (that *MemorySlotStore) SaveIdentity(identity Identity) error {
	that.mu.Lock()
	that.identity = identity
	that.mu.Unlock()

	return nil
}

func (that *MemorySlotStore) Slot(variant protocol.Variant) (Slot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	slot, ok := that.slots[variant]
	if !ok || slot.RoomID == "" {
		return Slot{}, ErrNoPersistedSession
	}

	return slot, nil
}

func (that *MemorySlotStore) SaveSlot(variant protocol.Variant, slot Slot) error {
	that.mu.Lock()
	that.slots[variant] = slot
	that.mu.Unlock()

	return nil
}

func (that *MemorySlotStore) ClearSlot(variant protocol.Variant) error {
	that.mu.Lock()
	delete(that.slots, variant)
	that.mu.Unlock()

	return nil
}

// DefaultSlotPath - a per-user location for the slot store file.
func DefaultSlotPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}

	return filepath.Join(dir, "gridroom", "session.json"), nil
}
