// ABOUTME: Visibility tracks the domains whose panel the user has hidden
// ABOUTME: Persists the hidden set as a JSON array through the key-value facility

package visibility

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"webclipper-api/core/interfaces"
)

// StorageKey is where the hidden domains are persisted
const StorageKey = "hiddenDomains"

// Store holds the hidden domain set. A domain is visible unless it is hidden.
type Store struct {
	mu     sync.Mutex
	cache  interfaces.Cache
	logger interfaces.Logger
	hidden map[string]struct{}
	loaded bool
}

// New creates a visibility store backed by cache, which may be nil
func New(cache interfaces.Cache, logger interfaces.Logger) *Store {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Store{
		cache:  cache,
		logger: logger,
		hidden: make(map[string]struct{}),
	}
}

// Visible reports whether the panel should be shown on domain
func (s *Store) Visible(ctx context.Context, domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	_, hidden := s.hidden[domain]
	return !hidden
}

// Toggle flips domain and returns its new visibility
func (s *Store) Toggle(ctx context.Context, domain string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	_, hidden := s.hidden[domain]
	if hidden {
		delete(s.hidden, domain)
	} else {
		s.hidden[domain] = struct{}{}
	}
	visible := hidden

	if err := s.persist(ctx); err != nil {
		return visible, err
	}
	s.logger.Info("Panel visibility toggled", map[string]interface{}{
		"domain":  domain,
		"visible": visible,
	})
	return visible, nil
}

// Hidden lists the hidden domains in lexical order
func (s *Store) Hidden(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return s.sorted()
}

func (s *Store) sorted() []string {
	list := make([]string, 0, len(s.hidden))
	for d := range s.hidden {
		list = append(list, d)
	}
	sort.Strings(list)
	return list
}

func (s *Store) ensureLoaded(ctx context.Context) {
	if s.loaded || s.cache == nil {
		s.loaded = true
		return
	}
	s.loaded = true

	data, err := s.cache.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.logger.Warn("Failed to read hidden domains", map[string]interface{}{"error": err.Error()})
		}
		return
	}
	var domains []string
	if err := json.Unmarshal(data, &domains); err != nil {
		s.logger.Warn("Hidden domains are unreadable, showing everywhere", map[string]interface{}{"error": err.Error()})
		return
	}
	for _, d := range domains {
		s.hidden[d] = struct{}{}
	}
}

func (s *Store) persist(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(s.sorted())
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, StorageKey, data, 0); err != nil {
		s.logger.Error("Failed to persist hidden domains", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}
