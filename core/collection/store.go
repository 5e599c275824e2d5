// ABOUTME: Collection store is the single writer of the canonical item sequence
// ABOUTME: Applies requests in arrival order, persists every mutation and broadcasts per-domain views

package collection

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/jinzhu/copier"

	"webclipper-api/core/domain"
	coreerrors "webclipper-api/core/errors"
	"webclipper-api/core/interfaces"
	"webclipper-api/core/tabs"
)

// StorageKey is where the item sequence is persisted
const StorageKey = "collectedItems"

// ErrStopped is returned when the store is not running
var ErrStopped = errors.New("collection: store is stopped")

// TabDirectory enumerates open tabs and decorates them
type TabDirectory interface {
	List() []tabs.Tab
	Get(id string) (tabs.Tab, error)
	SetBadge(id string, badge domain.Badge) error
}

// Broadcaster queues a push to a tab without waiting for it
type Broadcaster interface {
	Dispatch(ctx context.Context, tabID string, msg domain.Message) error
}

// Config holds the store collaborators
type Config struct {
	// Cache is the key-value persistence facility
	Cache interfaces.Cache

	// Tabs and Broadcaster are optional; without them nothing is pushed
	Tabs        TabDirectory
	Broadcaster Broadcaster

	Logger interfaces.Logger

	// QueueSize bounds pending requests, 64 when zero
	QueueSize int
}

type opKind int

const (
	opGet opKind = iota
	opAdd
	opRemove
	opClear
	opSnapshot
	opBadge
)

type request struct {
	ctx    context.Context
	op     opKind
	domain string
	item   domain.Item
	index  int
	tabID  string
	reply  chan []domain.IndexedItem
}

// Store owns the ordered item sequence. Only its loop goroutine touches items.
type Store struct {
	cfg      Config
	requests chan request
	quit     chan struct{}
	done     chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool

	items []domain.Item
}

// New creates a store; call Start to load persisted state and begin serving
func New(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = interfaces.NopLogger{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Store{
		cfg:      cfg,
		requests: make(chan request, cfg.QueueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start loads the persisted sequence and runs the loop
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.items = s.load(ctx)
		s.cfg.Logger.Info("Collection store started", map[string]interface{}{
			"items": len(s.items),
		})
		s.started.Store(true)
		go s.run()
	})
}

// Stop ends the loop after the request being applied
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	if s.started.Load() {
		<-s.done
	}
}

// Get returns the items of d with their global indices
func (s *Store) Get(ctx context.Context, d string) ([]domain.IndexedItem, error) {
	return s.call(ctx, request{op: opGet, domain: d})
}

// Add appends item and returns its domain's items. The domain is always
// derived from the item URL.
func (s *Store) Add(ctx context.Context, item domain.Item) ([]domain.IndexedItem, error) {
	derived, err := domain.DomainOf(item.URL)
	if err != nil {
		return nil, &coreerrors.ValidationError{Field: "url", Message: err.Error()}
	}
	item.Domain = derived
	if err := item.Validate(); err != nil {
		return nil, &coreerrors.ValidationError{Field: "text", Message: err.Error()}
	}
	return s.call(ctx, request{op: opAdd, item: item, domain: derived})
}

// Remove splices out the item at a global index and returns d's items.
// An index outside the sequence changes nothing.
func (s *Store) Remove(ctx context.Context, index int, d string) ([]domain.IndexedItem, error) {
	return s.call(ctx, request{op: opRemove, index: index, domain: d})
}

// Clear empties the collection
func (s *Store) Clear(ctx context.Context) ([]domain.IndexedItem, error) {
	return s.call(ctx, request{op: opClear})
}

// Snapshot returns the whole sequence in order
func (s *Store) Snapshot(ctx context.Context) ([]domain.Item, error) {
	indexed, err := s.call(ctx, request{op: opSnapshot})
	if err != nil {
		return nil, err
	}
	return domain.Items(indexed), nil
}

// RefreshBadge recomputes the badge of one tab. An empty domain is taken
// from the tab's address.
func (s *Store) RefreshBadge(ctx context.Context, tabID, d string) error {
	_, err := s.call(ctx, request{op: opBadge, tabID: tabID, domain: d})
	return err
}

func (s *Store) call(ctx context.Context, req request) ([]domain.IndexedItem, error) {
	if !s.started.Load() {
		return nil, ErrStopped
	}
	select {
	case <-s.quit:
		return nil, ErrStopped
	default:
	}
	req.ctx = ctx
	req.reply = make(chan []domain.IndexedItem, 1)

	select {
	case s.requests <- req:
	case <-s.quit:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case items := <-req.reply:
		return items, nil
	case <-s.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case req := <-s.requests:
			req.reply <- s.apply(req)
		case <-s.quit:
			return
		}
	}
}

// apply runs one request against the sequence
func (s *Store) apply(req request) []domain.IndexedItem {
	ctx := context.WithoutCancel(req.ctx)

	switch req.op {
	case opGet:
		return s.view(req.domain)

	case opAdd:
		s.items = append(s.items, req.item)
		s.cfg.Logger.Info("Item collected", map[string]interface{}{
			"domain": req.item.Domain,
			"total":  len(s.items),
		})
		s.commit(ctx)
		return s.view(req.domain)

	case opRemove:
		if req.index < 0 || req.index >= len(s.items) {
			s.cfg.Logger.Debug("Remove index out of range, ignoring", map[string]interface{}{
				"index": req.index,
				"total": len(s.items),
			})
			return s.view(req.domain)
		}
		s.items = append(s.items[:req.index:req.index], s.items[req.index+1:]...)
		s.commit(ctx)
		return s.view(req.domain)

	case opClear:
		s.items = nil
		s.commit(ctx)
		return []domain.IndexedItem{}

	case opSnapshot:
		all := make([]domain.IndexedItem, len(s.items))
		for i, item := range s.items {
			all[i] = domain.IndexedItem{Item: item, Index: i}
		}
		return s.deepCopy(all)

	case opBadge:
		s.refreshBadge(req.tabID, req.domain)
		return nil
	}
	return nil
}

// commit persists the sequence and then pushes fresh views to every tab
func (s *Store) commit(ctx context.Context) {
	s.persist(ctx)
	s.broadcast(ctx)
}

func (s *Store) persist(ctx context.Context) {
	if s.cfg.Cache == nil {
		return
	}
	items := s.items
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.cfg.Logger.Error("Failed to encode collected items", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.cfg.Cache.Set(ctx, StorageKey, data, 0); err != nil {
		s.cfg.Logger.Error("Failed to persist collected items", map[string]interface{}{
			"error": err.Error(),
			"items": len(items),
		})
	}
}

func (s *Store) load(ctx context.Context) []domain.Item {
	if s.cfg.Cache == nil {
		return nil
	}
	data, err := s.cfg.Cache.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.cfg.Logger.Warn("Failed to read collected items, starting empty", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.cfg.Logger.Warn("Persisted items are unreadable, starting empty", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return items
}

// broadcast pushes each web-page tab the view of its own domain
func (s *Store) broadcast(ctx context.Context) {
	if s.cfg.Tabs == nil {
		return
	}
	// tabs on the same domain share one filtered view per commit
	views := make(map[string][]domain.IndexedItem)
	for _, tab := range s.cfg.Tabs.List() {
		if !domain.IsWebPage(tab.URL) {
			continue
		}
		d, err := domain.DomainOf(tab.URL)
		if err != nil {
			s.cfg.Logger.Debug("Invalid URL or internal page", map[string]interface{}{"url": tab.URL})
			continue
		}

		view, ok := views[d]
		if !ok {
			view = domain.FilterByDomain(s.items, d)
			views[d] = view
		}
		if err := s.cfg.Tabs.SetBadge(tab.ID, domain.NewBadge(d, len(view))); err != nil {
			continue
		}
		if s.cfg.Broadcaster == nil {
			continue
		}
		msg := domain.Message{Action: domain.ActionUpdateToolWindow, Domain: d, Items: slices.Clone(view)}
		if err := s.cfg.Broadcaster.Dispatch(ctx, tab.ID, msg); err != nil {
			s.cfg.Logger.Debug("Error sending message to tab", map[string]interface{}{
				"tab":   tab.ID,
				"error": err.Error(),
			})
		}
	}
}

func (s *Store) refreshBadge(tabID, d string) {
	if s.cfg.Tabs == nil {
		return
	}
	if d == "" {
		tab, err := s.cfg.Tabs.Get(tabID)
		if err != nil || !domain.IsWebPage(tab.URL) {
			return
		}
		if d, err = domain.DomainOf(tab.URL); err != nil {
			return
		}
	}
	_ = s.cfg.Tabs.SetBadge(tabID, domain.NewBadge(d, domain.CountForDomain(s.items, d)))
}

// view is a fresh slice of d's items. Items hold only values, so the
// filtered copy never aliases the canonical sequence.
func (s *Store) view(d string) []domain.IndexedItem {
	return domain.FilterByDomain(s.items, d)
}

// deepCopy backs Snapshot, which hands out the whole sequence
func (s *Store) deepCopy(src []domain.IndexedItem) []domain.IndexedItem {
	dst := make([]domain.IndexedItem, 0, len(src))
	if err := copier.CopyWithOption(&dst, &src, copier.Option{DeepCopy: true}); err != nil {
		s.cfg.Logger.Error("Failed to copy snapshot", map[string]interface{}{"error": err.Error()})
		return append([]domain.IndexedItem{}, src...)
	}
	return dst
}
