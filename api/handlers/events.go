// ABOUTME: Server-sent event stream that makes a remote content script a tab receiver
// ABOUTME: Each push to the tab is written as one event; the receiver detaches when the stream ends

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"webclipper-api/core/domain"
	"webclipper-api/core/interfaces"
)

// ErrStreamClosed is returned to senders once the event stream has ended
var ErrStreamClosed = errors.New("event stream closed")

// ReceiverRegistry binds receivers to tabs
type ReceiverRegistry interface {
	Attach(id string, receiver interfaces.Receiver) error
	Detach(id string, receiver interfaces.Receiver)
}

// StreamError is sent when the stream cannot be bound to the tab
type StreamError struct {
	Message string `json:"message"`
}

// EventsHandler serves tab event streams
type EventsHandler struct {
	tabs   ReceiverRegistry
	logger interfaces.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(registry ReceiverRegistry, logger interfaces.Logger) *EventsHandler {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &EventsHandler{tabs: registry, logger: logger}
}

// RegisterRoutes registers the event stream route
func (h *EventsHandler) RegisterRoutes(api huma.API) {
	sse.Register(api, huma.Operation{
		OperationID: "tabEvents",
		Method:      http.MethodGet,
		Path:        "/tabs/{id}/events",
		Summary:     "Stream pushes to a tab",
		Description: "Delivers updateToolWindow, toggleCollector, addClip, summarizeSelection and showSummary messages",
		Tags:        []string{"Tabs"},
	}, map[string]any{
		"message": domain.Message{},
		"error":   StreamError{},
	}, h.Stream)
}

type delivery struct {
	msg    domain.Message
	result chan error
}

// streamReceiver hands deliveries to the goroutine that owns the stream
type streamReceiver struct {
	out  chan delivery
	done chan struct{}
}

func (r *streamReceiver) Deliver(ctx context.Context, msg domain.Message) (domain.Response, error) {
	d := delivery{msg: msg, result: make(chan error, 1)}
	select {
	case r.out <- d:
	case <-r.done:
		return domain.Response{}, ErrStreamClosed
	case <-ctx.Done():
		return domain.Response{}, ctx.Err()
	}

	select {
	case err := <-d.result:
		if err != nil {
			return domain.Response{}, err
		}
		return domain.EmptyResponse(), nil
	case <-r.done:
		return domain.Response{}, ErrStreamClosed
	case <-ctx.Done():
		return domain.Response{}, ctx.Err()
	}
}

// Stream handles GET /tabs/{id}/events
func (h *EventsHandler) Stream(ctx context.Context, input *TabPathInput, send sse.Sender) {
	rcv := &streamReceiver{
		out:  make(chan delivery),
		done: make(chan struct{}),
	}
	if err := h.tabs.Attach(input.ID, rcv); err != nil {
		_ = send.Data(StreamError{Message: err.Error()})
		return
	}
	h.logger.Info("Content script connected", map[string]interface{}{"tab": input.ID})

	defer func() {
		close(rcv.done)
		h.tabs.Detach(input.ID, rcv)
		h.logger.Info("Content script disconnected", map[string]interface{}{"tab": input.ID})
	}()

	for {
		select {
		case d := <-rcv.out:
			err := send.Data(d.msg)
			d.result <- err
			if err != nil {
				h.logger.Debug("Event stream write failed", map[string]interface{}{
					"tab":   input.ID,
					"error": err.Error(),
				})
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
