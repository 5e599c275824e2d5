// ABOUTME: Receiver interface for delivering messages into a tab
// ABOUTME: Implemented by in-process content scripts and remote event streams

package interfaces

import (
	"context"

	"webclipper-api/core/domain"
)

// Receiver accepts messages pushed to a tab's content script.
// Push-only receivers return an empty response.
type Receiver interface {
	Deliver(ctx context.Context, msg domain.Message) (domain.Response, error)
}
