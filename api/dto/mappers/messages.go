// ABOUTME: Mappers for converting between domain models and API DTOs
// ABOUTME: Keeps the wire shapes independent from core types

package mappers

import (
	"webclipper-api/api/dto/requests"
	"webclipper-api/api/dto/responses"
	"webclipper-api/core/domain"
	"webclipper-api/core/host"
	"webclipper-api/core/tabs"
)

// ToMessage converts a message request into a domain message
func ToMessage(req requests.MessageRequest) domain.Message {
	msg := domain.Message{
		Action: domain.Action(req.Action),
		Domain: req.Domain,
		Index:  req.Index,
		Text:   req.Text,
	}
	if req.Data != nil {
		item := domain.Item{
			Text:   req.Data.Text,
			URL:    req.Data.URL,
			Domain: req.Data.Domain,
		}
		if req.Data.Position != nil {
			item.Position = domain.Position{X: req.Data.Position.X, Y: req.Data.Position.Y}
		}
		msg.Data = &item
	}
	return msg
}

// ToMessageRequest is the inverse of ToMessage, used by clients
func ToMessageRequest(msg domain.Message) requests.MessageRequest {
	req := requests.MessageRequest{
		Action: string(msg.Action),
		Domain: msg.Domain,
		Index:  msg.Index,
		Text:   msg.Text,
	}
	if msg.Data != nil {
		req.Data = &requests.ItemRequest{
			Text:     msg.Data.Text,
			URL:      msg.Data.URL,
			Domain:   msg.Data.Domain,
			Position: &requests.PositionRequest{X: msg.Data.Position.X, Y: msg.Data.Position.Y},
		}
	}
	return req
}

// ToMessageResponse converts a domain response, never leaving items nil
func ToMessageResponse(resp domain.Response) responses.MessageResponse {
	items := resp.Items
	if items == nil {
		items = []domain.IndexedItem{}
	}
	return responses.MessageResponse{Items: items, Visible: resp.Visible}
}

// ToTabResponse converts a registry snapshot
func ToTabResponse(tab tabs.Tab) responses.TabResponse {
	return responses.TabResponse{
		ID:        tab.ID,
		URL:       tab.URL,
		Status:    string(tab.Status),
		Active:    tab.Active,
		Reachable: tab.Reachable,
		Badge: responses.BadgeResponse{
			Count: tab.Badge.Count,
			Text:  tab.Badge.Text,
			Title: tab.Badge.Title,
		},
	}
}

// ToMenuClick converts a context-menu request
func ToMenuClick(req requests.MenuClickRequest) host.MenuClick {
	return host.MenuClick{
		MenuItemID:    req.MenuItemID,
		SelectionText: req.SelectionText,
		FrameURL:      req.FrameURL,
	}
}
