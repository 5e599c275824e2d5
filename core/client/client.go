// ABOUTME: Store client is the content-script side of the collection message contract
// ABOUTME: Turns missing or failed responses into an empty collection instead of errors

package client

import (
	"context"

	"webclipper-api/core/domain"
	"webclipper-api/core/interfaces"
)

// Transport carries one message to the background and returns its answer
type Transport interface {
	Send(ctx context.Context, msg domain.Message) (domain.Response, error)
}

// TransportFunc adapts a function to Transport
type TransportFunc func(ctx context.Context, msg domain.Message) (domain.Response, error)

// Send calls f
func (f TransportFunc) Send(ctx context.Context, msg domain.Message) (domain.Response, error) {
	return f(ctx, msg)
}

// Local sends messages straight to an in-process handler on behalf of tabID
func Local(handler interfaces.MessageHandler, tabID string) Transport {
	return TransportFunc(func(ctx context.Context, msg domain.Message) (domain.Response, error) {
		return handler.Handle(ctx, tabID, msg)
	})
}

// Client issues collection requests. None of its methods fail: a request
// that cannot be answered yields an empty collection.
type Client struct {
	transport Transport
	logger    interfaces.Logger
}

// New creates a client over transport
func New(transport Transport, logger interfaces.Logger) *Client {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Client{transport: transport, logger: logger}
}

// GetItems returns the items stored for domain
func (c *Client) GetItems(ctx context.Context, domainName string) []domain.IndexedItem {
	return c.request(ctx, domain.Message{Action: domain.ActionGetTexts, Domain: domainName})
}

// AddItem stores item and returns the items of its domain
func (c *Client) AddItem(ctx context.Context, item domain.Item) []domain.IndexedItem {
	return c.request(ctx, domain.Message{Action: domain.ActionAddText, Data: &item, Domain: item.Domain})
}

// RemoveItem removes the item at a global index and returns the items of domain
func (c *Client) RemoveItem(ctx context.Context, index int, domainName string) []domain.IndexedItem {
	return c.request(ctx, domain.Message{Action: domain.ActionRemoveText, Index: index, Domain: domainName})
}

// ClearAll empties the collection
func (c *Client) ClearAll(ctx context.Context) []domain.IndexedItem {
	return c.request(ctx, domain.Message{Action: domain.ActionClearAll})
}

// Summarize hands text to the background without waiting for an answer.
// The returned channel is closed once the message has been sent.
func (c *Client) Summarize(ctx context.Context, text string) <-chan struct{} {
	sent := make(chan struct{})
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(sent)
		if _, err := c.transport.Send(ctx, domain.Message{Action: domain.ActionSummarize, Text: text}); err != nil {
			c.logger.Warn("Error sending text for summarization", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
	return sent
}

func (c *Client) request(ctx context.Context, msg domain.Message) []domain.IndexedItem {
	resp, err := c.transport.Send(ctx, msg)
	if err != nil {
		c.logger.Warn("Error sending message", map[string]interface{}{
			"action": string(msg.Action),
			"error":  err.Error(),
		})
		return []domain.IndexedItem{}
	}
	if resp.Items == nil {
		c.logger.Debug("Response carried no items", map[string]interface{}{
			"action": string(msg.Action),
		})
		return []domain.IndexedItem{}
	}
	return resp.Items
}
