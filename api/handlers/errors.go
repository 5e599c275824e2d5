// ABOUTME: Maps core and store errors onto RFC 7807 problem responses
// ABOUTME: Shared by the message, tab and event handlers

package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"webclipper-api/core/collection"
	coreerrors "webclipper-api/core/errors"
)

// toHumaError picks the status for err; unknown errors are 500s with the cause attached
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case coreerrors.IsValidation(err):
		return huma.Error400BadRequest(err.Error())
	case coreerrors.IsNotFound(err):
		return huma.Error404NotFound(err.Error())
	case coreerrors.IsRejected(err):
		return huma.Error422UnprocessableEntity(err.Error())
	case coreerrors.IsUnreachable(err):
		return huma.Error502BadGateway(err.Error())
	case errors.Is(err, collection.ErrStopped):
		return huma.Error503ServiceUnavailable("Collection store is shutting down")
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout("Request timed out")
	}

	return huma.Error500InternalServerError("Internal server error", err)
}
