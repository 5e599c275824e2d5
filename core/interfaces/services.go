// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts for collaborators consumed by the capture pipeline

package interfaces

import (
	"context"

	"webclipper-api/core/domain"
)

// ImageResolver turns an image source into an inline data URI.
// Implementations may fail; callers fall back to the source URL.
type ImageResolver interface {
	Resolve(ctx context.Context, src string) (string, error)
}

// Summarizer produces a summary of captured text.
// It is an external collaborator and may be absent.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// MessageHandler answers runtime messages on the background side
type MessageHandler interface {
	Handle(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error)
}
