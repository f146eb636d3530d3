package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixthesign/fixthesign/internal/pkg/keyval"
)

func TestStateTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to State
		ok       bool
	}{
		{StateInitial, StateStreaming, true},
		{StateInitial, StatePermissionDenied, true},
		{StateInitial, StateCaptured, true}, // file-upload fallback
		{StateStreaming, StateCaptured, true},
		{StateStreaming, StateInitial, true},
		{StateCaptured, StateSubmitted, true},
		{StateCaptured, StateDiscarded, true},
		{StateCaptured, StateStreaming, true}, // retake
		{StatePermissionDenied, StateCaptured, true},
		{StateStreaming, StatePermissionDenied, false},
		{StateCaptured, StatePermissionDenied, false},
		{StateSubmitted, StateCaptured, false},
		{StateDiscarded, StateStreaming, false},
		{StateInitial, StateSubmitted, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestReasonFromBrowserError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ReasonPermissionDenied, ReasonFromBrowserError("NotAllowedError"))
	assert.Equal(t, ReasonDeviceUnavailable, ReasonFromBrowserError("NotFoundError"))
	assert.Equal(t, ReasonDeviceUnavailable, ReasonFromBrowserError("NotReadableError"))
	assert.Equal(t, ReasonTimeout, ReasonFromBrowserError("AbortError"))
	assert.Equal(t, ReasonUnknown, ReasonFromBrowserError("SomethingElse"))
}

func TestBegin_ReplacesActiveDraft(t *testing.T) {
	t.Parallel()

	m := NewManager(keyval.NewMemory())

	first, err := m.Begin("dev-1")
	require.NoError(t, err)

	second, err := m.Begin("dev-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// The first draft is gone; only the second is active.
	_, err = m.Get(first.ID)
	assert.ErrorIs(t, err, ErrNoDraft)

	active, err := m.Active("dev-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestAttachImage_MovesToCaptured(t *testing.T) {
	t.Parallel()

	m := NewManager(keyval.NewMemory())
	draft, err := m.Begin("dev-1")
	require.NoError(t, err)

	require.NoError(t, m.AttachImage(draft, []byte{0xFF, 0xD8}, "image/jpeg"))
	assert.Equal(t, StateCaptured, draft.State)
	assert.True(t, draft.HasImage())

	// The stored copy carries the image too.
	loaded, err := m.Get(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, loaded.Image)
}

func TestDiscard_ClearsDraftWithoutTrace(t *testing.T) {
	t.Parallel()

	m := NewManager(keyval.NewMemory())
	draft, err := m.Begin("dev-1")
	require.NoError(t, err)
	require.NoError(t, m.AttachImage(draft, []byte{1}, "image/jpeg"))

	require.NoError(t, m.Transition(draft, StateDiscarded))

	_, err = m.Get(draft.ID)
	assert.ErrorIs(t, err, ErrNoDraft)
	_, err = m.Active("dev-1")
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestDeny_OnlyFromInitial(t *testing.T) {
	t.Parallel()

	m := NewManager(keyval.NewMemory())
	draft, err := m.Begin("dev-1")
	require.NoError(t, err)

	require.NoError(t, m.Deny(draft, ReasonPermissionDenied))
	assert.Equal(t, StatePermissionDenied, draft.State)
	assert.Equal(t, ReasonPermissionDenied, draft.Reason)

	// Once captured, a deny is an illegal transition.
	draft2, err := m.Begin("dev-2")
	require.NoError(t, err)
	require.NoError(t, m.AttachImage(draft2, []byte{1}, "image/jpeg"))
	assert.Error(t, m.Deny(draft2, ReasonPermissionDenied))
}

func TestLocationAndDetailsPersist(t *testing.T) {
	t.Parallel()

	m := NewManager(keyval.NewMemory())
	draft, err := m.Begin("dev-1")
	require.NoError(t, err)
	require.NoError(t, m.AttachImage(draft, []byte{1}, "image/jpeg"))
	require.NoError(t, m.SetLocation(draft, 40.0, -3.0))
	require.NoError(t, m.SetDetails(draft, "bent pole", "Calle Mayor 1"))

	loaded, err := m.Get(draft.ID)
	require.NoError(t, err)
	require.True(t, loaded.HasLocation())
	assert.Equal(t, 40.0, *loaded.Lat)
	assert.Equal(t, -3.0, *loaded.Lng)
	assert.Equal(t, "bent pole", loaded.Description)
}

func TestReplaceImage_KeepsState(t *testing.T) {
	t.Parallel()

	m := NewManager(keyval.NewMemory())
	draft, err := m.Begin("dev-1")
	require.NoError(t, err)
	require.NoError(t, m.AttachImage(draft, []byte{1, 2}, "image/png"))

	require.NoError(t, m.ReplaceImage(draft, []byte{3, 4, 5}, "image/jpeg"))
	assert.Equal(t, StateCaptured, draft.State)

	loaded, err := m.Get(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5}, loaded.Image)
	assert.Equal(t, "image/jpeg", loaded.ContentType)

	assert.Error(t, m.ReplaceImage(draft, nil, "image/jpeg"))
}
