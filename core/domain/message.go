// ABOUTME: Message types exchanged between the background store and content scripts
// ABOUTME: Defines the action names, request/response shapes and the frame relay envelope

package domain

// Action names a cross-context message
type Action string

const (
	// ActionGetTexts requests the items of a domain
	ActionGetTexts Action = "getTexts"

	// ActionAddText appends an item and returns its domain's items
	ActionAddText Action = "addText"

	// ActionRemoveText removes the item at a global index
	ActionRemoveText Action = "removeText"

	// ActionClearAll empties the collection
	ActionClearAll Action = "clearAll"

	// ActionToggleCollector flips panel visibility for the tab's domain
	ActionToggleCollector Action = "toggleCollector"

	// ActionSummarizeSelection asks a frame to summarize its selection
	ActionSummarizeSelection Action = "summarizeSelection"

	// ActionAddClip asks a frame to capture its current selection
	ActionAddClip Action = "addClip"

	// ActionUpdateToolWindow pushes a fresh per-domain view to a tab
	ActionUpdateToolWindow Action = "updateToolWindow"

	// ActionSummarize hands selected text to the summarizer
	ActionSummarize Action = "summarize"

	// ActionShowSummary pushes a summary to the top frame of a tab
	ActionShowSummary Action = "showSummary"
)

// Message is a request or push notification between execution contexts
type Message struct {
	Action  Action        `json:"action"`
	Domain  string        `json:"domain,omitempty"`
	Index   int           `json:"index,omitempty"`
	Data    *Item         `json:"data,omitempty"`
	Items   []IndexedItem `json:"items,omitempty"`
	Text    string        `json:"text,omitempty"`
	Summary string        `json:"summary,omitempty"`
	Visible *bool         `json:"visible,omitempty"`
}

// Response answers a Message. Items is always present for collection actions.
type Response struct {
	Items   []IndexedItem `json:"items"`
	Visible *bool         `json:"visible,omitempty"`
}

// EmptyResponse is what a requester falls back to when no usable answer arrives
func EmptyResponse() Response {
	return Response{Items: []IndexedItem{}}
}

// FrameEnvelope carries a message from a nested frame up to the top frame.
// Offset accumulates the iframe element offsets of every frame it passes.
type FrameEnvelope struct {
	// Origin is the id of the frame that produced the message
	Origin string `json:"origin"`

	// Path lists the frames the envelope has left so far, origin first
	Path []string `json:"path"`

	// Offset is the summed top/left of the iframe elements crossed so far
	Offset Position `json:"offset"`

	// Message is the relayed request
	Message Message `json:"message"`
}

// Hop records a frame crossing: the envelope enters the parent of frameID,
// whose iframe element sits at offset inside that parent.
func (e FrameEnvelope) Hop(frameID string, offset Position) FrameEnvelope {
	path := make([]string, len(e.Path), len(e.Path)+1)
	copy(path, e.Path)
	e.Path = append(path, frameID)
	e.Offset.X += offset.X
	e.Offset.Y += offset.Y
	return e
}
