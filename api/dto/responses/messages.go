// ABOUTME: Response DTOs for the runtime message and tab endpoints
// ABOUTME: Items always serialize as an array, never null

package responses

import "webclipper-api/core/domain"

// MessageResponse answers a runtime message
type MessageResponse struct {
	Items   []domain.IndexedItem `json:"items" doc:"Items of the requested domain with their global indices"`
	Visible *bool                `json:"visible,omitempty" doc:"Panel visibility for the domain"`
}

// BadgeResponse is a tab's toolbar decoration
type BadgeResponse struct {
	Count int    `json:"count"`
	Text  string `json:"text"`
	Title string `json:"title"`
}

// TabResponse describes one registered tab
type TabResponse struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Status    string        `json:"status"`
	Active    bool          `json:"active"`
	Reachable bool          `json:"reachable" doc:"Whether a content script is attached"`
	Badge     BadgeResponse `json:"badge"`
}

// ToggleResponse reports the new panel visibility
type ToggleResponse struct {
	Visible bool `json:"visible"`
}

// MenuClickResponse reports a tab opened by the click, if any
type MenuClickResponse struct {
	Opened *TabResponse `json:"opened,omitempty"`
}
