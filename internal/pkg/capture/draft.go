package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fixthesign/fixthesign/internal/pkg/keyval"
)

// Storage key formats. One active draft pointer per device, one record per
// draft id.
const (
	DraftKeyFormat  = "capture:draft:%s"
	ActiveKeyFormat = "capture:active:%s"
)

var ErrNoDraft = errors.New("capture: no active draft")

// Draft is the in-progress, not-yet-submitted report. It exists only between
// capture and submit-or-discard; nothing of it survives a discard.
type Draft struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"device_id"`
	State       State     `json:"state"`
	Image       []byte    `json:"image,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	Reason      Reason    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasImage reports whether a photo has been attached.
func (d *Draft) HasImage() bool { return len(d.Image) > 0 }

// HasLocation reports whether a location has been picked.
func (d *Draft) HasLocation() bool { return d.Lat != nil && d.Lng != nil }

// Manager owns draft records. A device has at most one active draft; starting
// a new one replaces it.
type Manager struct {
	store keyval.Store
}

func NewManager(store keyval.Store) *Manager {
	return &Manager{store: store}
}

// Begin creates a fresh draft for the device, discarding any active one.
func (m *Manager) Begin(deviceID string) (*Draft, error) {
	if old, err := m.Active(deviceID); err == nil && old != nil {
		m.remove(old)
	}

	now := time.Now().UTC()
	draft := &Draft{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		State:     StateInitial,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.save(draft); err != nil {
		return nil, err
	}
	if err := m.store.Set(fmt.Sprintf(ActiveKeyFormat, deviceID), draft.ID); err != nil {
		return nil, fmt.Errorf("failed to set active draft: %w", err)
	}
	return draft, nil
}

// Active returns the device's current draft, or ErrNoDraft.
func (m *Manager) Active(deviceID string) (*Draft, error) {
	id, err := m.store.Get(fmt.Sprintf(ActiveKeyFormat, deviceID))
	if err != nil {
		return nil, ErrNoDraft
	}
	return m.Get(id)
}

// Get loads a draft by id, or ErrNoDraft.
func (m *Manager) Get(draftID string) (*Draft, error) {
	raw, err := m.store.Get(fmt.Sprintf(DraftKeyFormat, draftID))
	if err != nil {
		return nil, ErrNoDraft
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &draft, nil
}

// Transition moves the draft to the next state, enforcing the state machine.
// Terminal transitions clear the stored draft: discard persists nothing and
// submit has already persisted its UUID elsewhere.
func (m *Manager) Transition(draft *Draft, next State) error {
	if !next.Valid() {
		return fmt.Errorf("unknown capture state %q", next)
	}
	if !draft.State.CanTransition(next) {
		return fmt.Errorf("illegal capture transition %s -> %s", draft.State, next)
	}

	draft.State = next
	draft.UpdatedAt = time.Now().UTC()

	if next.Terminal() {
		m.remove(draft)
		return nil
	}
	return m.save(draft)
}

// Deny records a failed initial->streaming attempt with its reason.
func (m *Manager) Deny(draft *Draft, reason Reason) error {
	draft.Reason = reason
	return m.Transition(draft, StatePermissionDenied)
}

// AttachImage stores the captured photo and moves the draft to captured.
func (m *Manager) AttachImage(draft *Draft, data []byte, contentType string) error {
	if len(data) == 0 {
		return errors.New("capture: empty image")
	}
	draft.Image = data
	draft.ContentType = contentType
	return m.Transition(draft, StateCaptured)
}

// ReplaceImage swaps the photo on a captured draft without changing state.
// Used by the rotate control.
func (m *Manager) ReplaceImage(draft *Draft, data []byte, contentType string) error {
	if len(data) == 0 {
		return errors.New("capture: empty image")
	}
	draft.Image = data
	draft.ContentType = contentType
	draft.UpdatedAt = time.Now().UTC()
	return m.save(draft)
}

// SetLocation records the picked location on a captured draft.
func (m *Manager) SetLocation(draft *Draft, lat, lng float64) error {
	draft.Lat = &lat
	draft.Lng = &lng
	draft.UpdatedAt = time.Now().UTC()
	return m.save(draft)
}

// SetDetails records the optional description and resolved address.
func (m *Manager) SetDetails(draft *Draft, description, address string) error {
	draft.Description = description
	draft.Address = address
	draft.UpdatedAt = time.Now().UTC()
	return m.save(draft)
}

func (m *Manager) save(draft *Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := m.store.Set(fmt.Sprintf(DraftKeyFormat, draft.ID), string(raw)); err != nil {
		return fmt.Errorf("failed to persist draft: %w", err)
	}
	return nil
}

func (m *Manager) remove(draft *Draft) {
	m.store.Delete(fmt.Sprintf(DraftKeyFormat, draft.ID))
	m.store.Delete(fmt.Sprintf(ActiveKeyFormat, draft.DeviceID))
}
