package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"webclipper-api/pkg/featureflags"
)

// HealthOutput reports liveness and the active feature flags
type HealthOutput struct {
	Body struct {
		Status string          `json:"status"`
		Flags  map[string]bool `json:"flags"`
	}
}

// RegisterHealth registers GET /health
func RegisterHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"System"},
	}, func(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
		out := &HealthOutput{}
		out.Body.Status = "ok"
		out.Body.Flags = map[string]bool{}
		for flag, on := range featureflags.FromContext(ctx).GetAllFlags() {
			out.Body.Flags[string(flag)] = on
		}
		return out, nil
	})
}
