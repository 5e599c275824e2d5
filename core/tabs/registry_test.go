package tabs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/core/domain"
	coreerrors "webclipper-api/core/errors"
)

// mockReceiver is a mock implementation of the Receiver interface
type mockReceiver struct {
	deliverFunc func(ctx context.Context, msg domain.Message) (domain.Response, error)
	received    []domain.Message
}

func (m *mockReceiver) Deliver(ctx context.Context, msg domain.Message) (domain.Response, error) {
	m.received = append(m.received, msg)
	if m.deliverFunc != nil {
		return m.deliverFunc(ctx, msg)
	}
	return domain.EmptyResponse(), nil
}

func TestRegistry_UpsertAndList(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Upsert("b", "https://b.com", StatusComplete)
	require.NoError(t, err)
	_, err = r.Upsert("a", "https://a.com", StatusLoading)
	require.NoError(t, err)
	updated, err := r.Upsert("b", "https://b.com/next", StatusLoading)
	require.NoError(t, err)

	assert.Equal(t, "https://b.com/next", updated.URL)
	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID, "registration order is kept")
	assert.Equal(t, "a", list[1].ID)
}

func TestRegistry_UpsertValidation(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Upsert("", "https://a.com", StatusComplete)
	assert.True(t, coreerrors.IsValidation(err))

	_, err = r.Upsert("a", "https://a.com", "sleeping")
	assert.True(t, coreerrors.IsValidation(err))

	tab, err := r.Upsert("a", "https://a.com", "")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, tab.Status)
}

func TestRegistry_Events(t *testing.T) {
	r := NewRegistry(nil)
	var events []EventType
	r.OnEvent(func(ev Event) { events = append(events, ev.Type) })

	_, _ = r.Upsert("1", "https://a.com", StatusLoading)
	_, _ = r.Upsert("1", "https://a.com", StatusComplete)
	_, _ = r.Upsert("1", "https://a.com", StatusComplete)
	_, _ = r.Upsert("1", "https://a.com/other", StatusComplete)
	_, _ = r.Activate("1")
	_ = r.Remove("1")

	assert.Equal(t, []EventType{EventCompleted, EventCompleted, EventActivated, EventRemoved}, events)
}

func TestRegistry_ActivateIsExclusive(t *testing.T) {
	r := NewRegistry(nil)
	_, _ = r.Upsert("1", "https://a.com", StatusComplete)
	_, _ = r.Upsert("2", "https://b.com", StatusComplete)

	_, err := r.Activate("1")
	require.NoError(t, err)
	_, err = r.Activate("2")
	require.NoError(t, err)

	one, _ := r.Get("1")
	two, _ := r.Get("2")
	assert.False(t, one.Active)
	assert.True(t, two.Active)

	_, err = r.Activate("missing")
	assert.True(t, coreerrors.IsNotFound(err))
}

func TestRegistry_DeliverRequiresReceiver(t *testing.T) {
	r := NewRegistry(nil)
	_, _ = r.Upsert("1", "https://a.com", StatusComplete)

	_, err := r.Deliver(context.Background(), "1", domain.Message{Action: domain.ActionUpdateToolWindow})
	assert.True(t, coreerrors.IsUnreachable(err))

	_, err = r.Deliver(context.Background(), "missing", domain.Message{})
	assert.True(t, coreerrors.IsUnreachable(err))

	rcv := &mockReceiver{}
	require.NoError(t, r.Attach("1", rcv))
	tab, _ := r.Get("1")
	assert.True(t, tab.Reachable)

	_, err = r.Deliver(context.Background(), "1", domain.Message{Action: domain.ActionUpdateToolWindow})
	require.NoError(t, err)
	assert.Len(t, rcv.received, 1)
}

func TestRegistry_DeliverWrapsReceiverFailure(t *testing.T) {
	r := NewRegistry(nil)
	_, _ = r.Upsert("1", "https://a.com", StatusComplete)
	cause := errors.New("stream closed")
	require.NoError(t, r.Attach("1", &mockReceiver{
		deliverFunc: func(ctx context.Context, msg domain.Message) (domain.Response, error) {
			return domain.Response{}, cause
		},
	}))

	_, err := r.Deliver(context.Background(), "1", domain.Message{})

	assert.True(t, coreerrors.IsUnreachable(err))
	assert.ErrorIs(t, err, cause)
}

func TestRegistry_DetachOnlyCurrentReceiver(t *testing.T) {
	r := NewRegistry(nil)
	_, _ = r.Upsert("1", "https://a.com", StatusComplete)
	old, current := &mockReceiver{}, &mockReceiver{}
	require.NoError(t, r.Attach("1", old))
	require.NoError(t, r.Attach("1", current))

	r.Detach("1", old)
	tab, _ := r.Get("1")
	assert.True(t, tab.Reachable)

	r.Detach("1", current)
	tab, _ = r.Get("1")
	assert.False(t, tab.Reachable)
}

func TestRegistry_BadgeAndOpen(t *testing.T) {
	r := NewRegistry(nil)
	tab, err := r.Open("https://frame.example.com/embed")
	require.NoError(t, err)
	assert.NotEmpty(t, tab.ID)
	assert.Equal(t, StatusLoading, tab.Status)

	badge := domain.NewBadge("frame.example.com", 2)
	require.NoError(t, r.SetBadge(tab.ID, badge))
	got, _ := r.Get(tab.ID)
	assert.Equal(t, badge, got.Badge)

	assert.True(t, coreerrors.IsNotFound(r.SetBadge("missing", badge)))
	assert.True(t, coreerrors.IsNotFound(r.Remove("missing")))
	assert.True(t, coreerrors.IsNotFound(r.Attach("missing", &mockReceiver{})))
}
