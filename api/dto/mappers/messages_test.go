package mappers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/api/dto/requests"
	"webclipper-api/core/domain"
	"webclipper-api/core/tabs"
)

func TestToMessage_AddText(t *testing.T) {
	msg := ToMessage(requests.MessageRequest{
		Action: "addText",
		Domain: "example.com",
		Data: &requests.ItemRequest{
			Text:     "The quick brown fox jumps over the lazy dog.",
			URL:      "https://example.com/post",
			Position: &requests.PositionRequest{X: 3, Y: 4},
		},
	})

	assert.Equal(t, domain.ActionAddText, msg.Action)
	require.NotNil(t, msg.Data)
	assert.Equal(t, domain.Position{X: 3, Y: 4}, msg.Data.Position)
	assert.Equal(t, "https://example.com/post", msg.Data.URL)
}

func TestToMessage_WithoutPosition(t *testing.T) {
	msg := ToMessage(requests.MessageRequest{
		Action: "addText",
		Data:   &requests.ItemRequest{Text: "some captured text", URL: "https://a.com"},
	})

	assert.Equal(t, domain.Position{}, msg.Data.Position)
}

func TestToMessageRequest_InvertsToMessage(t *testing.T) {
	original := domain.Message{
		Action: domain.ActionRemoveText,
		Domain: "example.com",
		Index:  3,
	}
	assert.Equal(t, original, ToMessage(ToMessageRequest(original)))
}

func TestToMessageResponse_NeverNil(t *testing.T) {
	resp := ToMessageResponse(domain.Response{})

	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestToTabResponse(t *testing.T) {
	resp := ToTabResponse(tabs.Tab{
		ID:        "1",
		URL:       "https://example.com",
		Status:    tabs.StatusComplete,
		Reachable: true,
		Badge:     domain.NewBadge("example.com", 2),
	})

	assert.Equal(t, "complete", resp.Status)
	assert.Equal(t, 2, resp.Badge.Count)
	assert.Equal(t, " 2 ", resp.Badge.Text)
	assert.True(t, resp.Reachable)
}
