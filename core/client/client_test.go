package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/core/domain"
)

// mockHandler is a mock implementation of the MessageHandler interface
type mockHandler struct {
	handleFunc func(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error)
	tabID      string
	messages   []domain.Message
}

func (m *mockHandler) Handle(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error) {
	m.tabID = tabID
	m.messages = append(m.messages, msg)
	if m.handleFunc != nil {
		return m.handleFunc(ctx, tabID, msg)
	}
	return domain.EmptyResponse(), nil
}

func sample() domain.IndexedItem {
	return domain.IndexedItem{
		Item:  domain.Item{Text: "The quick brown fox jumps over the lazy dog.", URL: "https://example.com/", Domain: "example.com"},
		Index: 3,
	}
}

func TestClient_MessageShapes(t *testing.T) {
	h := &mockHandler{}
	c := New(Local(h, "tab-1"), nil)
	ctx := context.Background()
	item := sample().Item

	c.GetItems(ctx, "example.com")
	c.AddItem(ctx, item)
	c.RemoveItem(ctx, 3, "example.com")
	c.ClearAll(ctx)

	assert.Equal(t, "tab-1", h.tabID)
	require.Len(t, h.messages, 4)
	assert.Equal(t, domain.Message{Action: domain.ActionGetTexts, Domain: "example.com"}, h.messages[0])
	assert.Equal(t, domain.ActionAddText, h.messages[1].Action)
	assert.Equal(t, &item, h.messages[1].Data)
	assert.Equal(t, "example.com", h.messages[1].Domain)
	assert.Equal(t, domain.Message{Action: domain.ActionRemoveText, Index: 3, Domain: "example.com"}, h.messages[2])
	assert.Equal(t, domain.Message{Action: domain.ActionClearAll}, h.messages[3])
}

func TestClient_ReturnsItems(t *testing.T) {
	h := &mockHandler{handleFunc: func(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error) {
		return domain.Response{Items: []domain.IndexedItem{sample()}}, nil
	}}
	c := New(Local(h, "tab-1"), nil)

	got := c.GetItems(context.Background(), "example.com")

	assert.Equal(t, []domain.IndexedItem{sample()}, got)
}

func TestClient_FailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name   string
		handle func(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error)
	}{
		{
			name: "transport error",
			handle: func(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error) {
				return domain.Response{}, errors.New("receiving end does not exist")
			},
		},
		{
			name: "missing items",
			handle: func(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error) {
				return domain.Response{}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Local(&mockHandler{handleFunc: tt.handle}, "tab"), nil)
			ctx := context.Background()

			for _, got := range [][]domain.IndexedItem{
				c.GetItems(ctx, "example.com"),
				c.AddItem(ctx, sample().Item),
				c.RemoveItem(ctx, 0, "example.com"),
				c.ClearAll(ctx),
			} {
				assert.NotNil(t, got)
				assert.Empty(t, got)
			}
		})
	}
}

func TestClient_SummarizeIsFireAndForget(t *testing.T) {
	got := make(chan domain.Message, 1)
	c := New(TransportFunc(func(ctx context.Context, msg domain.Message) (domain.Response, error) {
		got <- msg
		return domain.Response{}, errors.New("no summarizer")
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := c.Summarize(ctx, "some selected text")
	cancel()
	<-done

	msg := <-got
	assert.Equal(t, domain.ActionSummarize, msg.Action)
	assert.Equal(t, "some selected text", msg.Text)
}
