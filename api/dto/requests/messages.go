// ABOUTME: Request DTOs for the runtime message and tab endpoints
// ABOUTME: Mirrors the cross-context message contract with lenient optional fields

package requests

// PositionRequest is a document-relative capture position
type PositionRequest struct {
	X float64 `json:"x" doc:"Horizontal document offset"`
	Y float64 `json:"y" doc:"Vertical document offset"`
}

// ItemRequest is a captured item sent with addText
type ItemRequest struct {
	Text     string           `json:"text" minLength:"1" doc:"Normalized captured text"`
	URL      string           `json:"url" minLength:"1" doc:"Page URL at capture time"`
	Domain   string           `json:"domain,omitempty" doc:"Ignored; the domain is derived from url"`
	Position *PositionRequest `json:"position,omitempty" doc:"Capture position, 0,0 when unknown"`
}

// MessageRequest is a runtime message from a content script
type MessageRequest struct {
	Action string       `json:"action" enum:"getTexts,addText,removeText,clearAll,summarize,toggleCollector" doc:"Message action"`
	Domain string       `json:"domain,omitempty" doc:"Domain whose items are requested or returned"`
	Index  int          `json:"index,omitempty" doc:"Global index for removeText"`
	Data   *ItemRequest `json:"data,omitempty" doc:"Item for addText"`
	Text   string       `json:"text,omitempty" doc:"Text for summarize"`
}

// UpsertTabRequest registers or updates a tab
type UpsertTabRequest struct {
	URL    string `json:"url" minLength:"1" doc:"Address shown in the tab"`
	Status string `json:"status,omitempty" enum:"loading,complete" default:"complete" doc:"Loading state; complete fires navigation completion"`
}

// MenuClickRequest is a context-menu click
type MenuClickRequest struct {
	MenuItemID    string `json:"menuItemId" enum:"addClip,summarizeSelection,openIframe,openIframeWindow" doc:"Clicked menu entry"`
	SelectionText string `json:"selectionText,omitempty" doc:"Selected text, if any"`
	FrameURL      string `json:"frameUrl,omitempty" doc:"Address of the clicked frame"`
}
