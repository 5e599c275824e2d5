// ABOUTME: Runtime message endpoint used by remote content scripts
// ABOUTME: Forwards getTexts/addText/removeText/clearAll/summarize/toggleCollector to the host

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"webclipper-api/api/dto/mappers"
	"webclipper-api/api/dto/requests"
	"webclipper-api/api/dto/responses"
	"webclipper-api/core/interfaces"
)

// MessageHandler handles runtime messages
type MessageHandler struct {
	host interfaces.MessageHandler
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(host interfaces.MessageHandler) *MessageHandler {
	return &MessageHandler{host: host}
}

// RegisterRoutes registers the message route
func (h *MessageHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "sendMessage",
		Method:      http.MethodPost,
		Path:        "/messages",
		Summary:     "Send a runtime message",
		Description: "Delivers a content script message to the background and returns its answer",
		Tags:        []string{"Messages"},
	}, h.SendMessage)
}

// SendMessageInput defines the input for the SendMessage operation
type SendMessageInput struct {
	TabID string                  `header:"X-Tab-ID" doc:"Id of the sending tab, if any"`
	Body  requests.MessageRequest `json:"body"`
}

// SendMessageOutput defines the output for the SendMessage operation
type SendMessageOutput struct {
	Body responses.MessageResponse
}

// SendMessage handles POST /messages
func (h *MessageHandler) SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
	resp, err := h.host.Handle(ctx, input.TabID, mappers.ToMessage(input.Body))
	if err != nil {
		return nil, toHumaError(err)
	}
	return &SendMessageOutput{Body: mappers.ToMessageResponse(resp)}, nil
}
