// ABOUTME: Tab lifecycle endpoints standing in for the browser's tab events
// ABOUTME: Registers tabs, reports badges and forwards toolbar and context-menu clicks

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"webclipper-api/api/dto/mappers"
	"webclipper-api/api/dto/requests"
	"webclipper-api/api/dto/responses"
	"webclipper-api/core/host"
	"webclipper-api/core/tabs"
)

// TabRegistry is the tab enumeration facility
type TabRegistry interface {
	Upsert(id, url string, status tabs.Status) (tabs.Tab, error)
	Get(id string) (tabs.Tab, error)
	Activate(id string) (tabs.Tab, error)
	Remove(id string) error
}

// TabActions are the background reactions to browser chrome clicks
type TabActions interface {
	Toggle(ctx context.Context, tabID string) (bool, error)
	MenuClick(ctx context.Context, tabID string, click host.MenuClick) (*tabs.Tab, error)
}

// TabHandler handles tab-related HTTP requests
type TabHandler struct {
	tabs    TabRegistry
	actions TabActions
}

// NewTabHandler creates a new tab handler
func NewTabHandler(registry TabRegistry, actions TabActions) *TabHandler {
	return &TabHandler{tabs: registry, actions: actions}
}

// RegisterRoutes registers all tab routes
func (h *TabHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "upsertTab",
		Method:      http.MethodPut,
		Path:        "/tabs/{id}",
		Summary:     "Register or update a tab",
		Description: "Records the tab's address; status complete fires navigation completion",
		Tags:        []string{"Tabs"},
	}, h.UpsertTab)

	huma.Register(api, huma.Operation{
		OperationID: "getTab",
		Method:      http.MethodGet,
		Path:        "/tabs/{id}",
		Summary:     "Get a tab and its badge",
		Tags:        []string{"Tabs"},
	}, h.GetTab)

	huma.Register(api, huma.Operation{
		OperationID:   "removeTab",
		Method:        http.MethodDelete,
		Path:          "/tabs/{id}",
		Summary:       "Forget a closed tab",
		Tags:          []string{"Tabs"},
		DefaultStatus: http.StatusNoContent,
	}, h.RemoveTab)

	huma.Register(api, huma.Operation{
		OperationID: "activateTab",
		Method:      http.MethodPost,
		Path:        "/tabs/{id}/activate",
		Summary:     "Activate a tab",
		Description: "Marks the tab active and refreshes its badge",
		Tags:        []string{"Tabs"},
	}, h.ActivateTab)

	huma.Register(api, huma.Operation{
		OperationID: "toggleCollector",
		Method:      http.MethodPost,
		Path:        "/tabs/{id}/toggle",
		Summary:     "Toggle the collector panel",
		Description: "Toolbar click: flips panel visibility for the tab's domain",
		Tags:        []string{"Tabs"},
	}, h.Toggle)

	huma.Register(api, huma.Operation{
		OperationID: "menuClick",
		Method:      http.MethodPost,
		Path:        "/tabs/{id}/menu",
		Summary:     "Context-menu click",
		Description: "Captures or summarizes the selection, or opens a frame in a new tab",
		Tags:        []string{"Tabs"},
	}, h.MenuClick)
}

// TabPathInput identifies a tab
type TabPathInput struct {
	ID string `path:"id" minLength:"1" doc:"Tab id"`
}

// UpsertTabInput defines the input for UpsertTab
type UpsertTabInput struct {
	ID   string `path:"id" minLength:"1" doc:"Tab id"`
	Body requests.UpsertTabRequest
}

// MenuClickInput defines the input for MenuClick
type MenuClickInput struct {
	ID   string `path:"id" minLength:"1" doc:"Tab id"`
	Body requests.MenuClickRequest
}

// TabOutput returns one tab
type TabOutput struct {
	Body responses.TabResponse
}

// ToggleOutput returns the new visibility
type ToggleOutput struct {
	Body responses.ToggleResponse
}

// MenuClickOutput returns a tab opened by the click
type MenuClickOutput struct {
	Body responses.MenuClickResponse
}

// UpsertTab handles PUT /tabs/{id}
func (h *TabHandler) UpsertTab(ctx context.Context, input *UpsertTabInput) (*TabOutput, error) {
	tab, err := h.tabs.Upsert(input.ID, input.Body.URL, tabs.Status(input.Body.Status))
	if err != nil {
		return nil, toHumaError(err)
	}
	return &TabOutput{Body: mappers.ToTabResponse(tab)}, nil
}

// GetTab handles GET /tabs/{id}
func (h *TabHandler) GetTab(ctx context.Context, input *TabPathInput) (*TabOutput, error) {
	tab, err := h.tabs.Get(input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &TabOutput{Body: mappers.ToTabResponse(tab)}, nil
}

// RemoveTab handles DELETE /tabs/{id}
func (h *TabHandler) RemoveTab(ctx context.Context, input *TabPathInput) (*struct{}, error) {
	if err := h.tabs.Remove(input.ID); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}

// ActivateTab handles POST /tabs/{id}/activate
func (h *TabHandler) ActivateTab(ctx context.Context, input *TabPathInput) (*TabOutput, error) {
	if _, err := h.tabs.Activate(input.ID); err != nil {
		return nil, toHumaError(err)
	}
	// listeners have refreshed the badge by now
	tab, err := h.tabs.Get(input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &TabOutput{Body: mappers.ToTabResponse(tab)}, nil
}

// Toggle handles POST /tabs/{id}/toggle
func (h *TabHandler) Toggle(ctx context.Context, input *TabPathInput) (*ToggleOutput, error) {
	visible, err := h.actions.Toggle(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ToggleOutput{Body: responses.ToggleResponse{Visible: visible}}, nil
}

// MenuClick handles POST /tabs/{id}/menu
func (h *TabHandler) MenuClick(ctx context.Context, input *MenuClickInput) (*MenuClickOutput, error) {
	opened, err := h.actions.MenuClick(ctx, input.ID, mappers.ToMenuClick(input.Body))
	if err != nil {
		return nil, toHumaError(err)
	}
	out := &MenuClickOutput{}
	if opened != nil {
		resp := mappers.ToTabResponse(*opened)
		out.Body.Opened = &resp
	}
	return out, nil
}
