// ABOUTME: Tab registry tracks open tabs, their badges and their content script receivers
// ABOUTME: Emits activation and navigation-complete events to listeners

package tabs

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"webclipper-api/core/domain"
	coreerrors "webclipper-api/core/errors"
	"webclipper-api/core/interfaces"
)

// Status is a tab's loading state
type Status string

const (
	StatusLoading  Status = "loading"
	StatusComplete Status = "complete"
)

// EventType names a tab lifecycle event
type EventType string

const (
	EventActivated EventType = "activated"
	EventCompleted EventType = "complete"
	EventRemoved   EventType = "removed"
)

// Tab is a snapshot of one open tab
type Tab struct {
	ID        string       `json:"id"`
	URL       string       `json:"url"`
	Status    Status       `json:"status"`
	Active    bool         `json:"active"`
	Badge     domain.Badge `json:"badge"`
	Reachable bool         `json:"reachable"`
}

// Event is passed to listeners after the registry changed
type Event struct {
	Type EventType
	Tab  Tab
}

// Listener observes tab events. Listeners run synchronously, outside the registry lock.
type Listener func(Event)

type entry struct {
	tab      Tab
	seq      int
	receiver interfaces.Receiver
}

// Registry is the tab enumeration facility
type Registry struct {
	mu        sync.RWMutex
	tabs      map[string]*entry
	seq       int
	listeners []Listener
	logger    interfaces.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger interfaces.Logger) *Registry {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Registry{
		tabs:   make(map[string]*entry),
		logger: logger,
	}
}

// OnEvent registers a listener
func (r *Registry) OnEvent(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Upsert registers a tab or updates its address and status. Reaching
// StatusComplete fires EventCompleted.
func (r *Registry) Upsert(id, url string, status Status) (Tab, error) {
	if id == "" {
		return Tab{}, &coreerrors.ValidationError{Field: "id", Message: "tab id cannot be empty"}
	}
	if status == "" {
		status = StatusComplete
	}
	if status != StatusLoading && status != StatusComplete {
		return Tab{}, &coreerrors.ValidationError{Field: "status", Message: "must be loading or complete"}
	}

	r.mu.Lock()
	e, ok := r.tabs[id]
	if !ok {
		r.seq++
		e = &entry{tab: Tab{ID: id}, seq: r.seq}
		r.tabs[id] = e
	}
	completed := status == StatusComplete && (e.tab.Status != StatusComplete || e.tab.URL != url)
	e.tab.URL = url
	e.tab.Status = status
	snapshot := e.snapshot()
	r.mu.Unlock()

	if completed {
		r.emit(Event{Type: EventCompleted, Tab: snapshot})
	}
	return snapshot, nil
}

// Open registers a new tab under a generated id
func (r *Registry) Open(url string) (Tab, error) {
	return r.Upsert(uuid.NewString(), url, StatusLoading)
}

// Activate marks id as the active tab and fires EventActivated
func (r *Registry) Activate(id string) (Tab, error) {
	r.mu.Lock()
	e, ok := r.tabs[id]
	if !ok {
		r.mu.Unlock()
		return Tab{}, &coreerrors.NotFoundError{Resource: "tab", ID: id}
	}
	for _, other := range r.tabs {
		other.tab.Active = false
	}
	e.tab.Active = true
	snapshot := e.snapshot()
	r.mu.Unlock()

	r.emit(Event{Type: EventActivated, Tab: snapshot})
	return snapshot, nil
}

// Remove forgets a tab
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	e, ok := r.tabs[id]
	if !ok {
		r.mu.Unlock()
		return &coreerrors.NotFoundError{Resource: "tab", ID: id}
	}
	delete(r.tabs, id)
	snapshot := e.snapshot()
	r.mu.Unlock()

	r.emit(Event{Type: EventRemoved, Tab: snapshot})
	return nil
}

// Get returns one tab
func (r *Registry) Get(id string) (Tab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tabs[id]
	if !ok {
		return Tab{}, &coreerrors.NotFoundError{Resource: "tab", ID: id}
	}
	return e.snapshot(), nil
}

// List returns every tab in registration order
func (r *Registry) List() []Tab {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.tabs))
	for _, e := range r.tabs {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	list := make([]Tab, len(entries))
	for i, e := range entries {
		list[i] = e.snapshot()
	}
	r.mu.RUnlock()
	return list
}

// SetBadge stores the badge shown for a tab
func (r *Registry) SetBadge(id string, badge domain.Badge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tabs[id]
	if !ok {
		return &coreerrors.NotFoundError{Resource: "tab", ID: id}
	}
	e.tab.Badge = badge
	return nil
}

// Attach binds the tab's content script
func (r *Registry) Attach(id string, receiver interfaces.Receiver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tabs[id]
	if !ok {
		return &coreerrors.NotFoundError{Resource: "tab", ID: id}
	}
	e.receiver = receiver
	return nil
}

// Detach unbinds receiver if it is still the tab's content script
func (r *Registry) Detach(id string, receiver interfaces.Receiver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.tabs[id]; ok && e.receiver == receiver {
		e.receiver = nil
	}
}

// Deliver sends msg to the tab's content script. Tabs without one are unreachable.
func (r *Registry) Deliver(ctx context.Context, id string, msg domain.Message) (domain.Response, error) {
	r.mu.RLock()
	e, ok := r.tabs[id]
	var receiver interfaces.Receiver
	if ok {
		receiver = e.receiver
	}
	r.mu.RUnlock()

	if receiver == nil {
		return domain.Response{}, &coreerrors.UnreachableError{Target: "tab " + id}
	}
	resp, err := receiver.Deliver(ctx, msg)
	if err != nil {
		return domain.Response{}, &coreerrors.UnreachableError{Target: "tab " + id, Cause: err}
	}
	return resp, nil
}

func (r *Registry) emit(ev Event) {
	r.mu.RLock()
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.RUnlock()

	r.logger.Debug("Tab event", map[string]interface{}{
		"type": string(ev.Type),
		"tab":  ev.Tab.ID,
	})
	for _, l := range listeners {
		l(ev)
	}
}

func (e *entry) snapshot() Tab {
	tab := e.tab
	tab.Reachable = e.receiver != nil
	return tab
}
