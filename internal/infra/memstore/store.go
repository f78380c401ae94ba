// Package memstore is the in-memory MemoryItemStore backend, used by
// default and in tests. A single mutex covers all state, which keeps the
// revoke transition an atomic check-and-set.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"recall/internal/domain"
)

type Store struct {
	mu    sync.Mutex
	items map[string]domain.MemoryItem
	now   func() time.Time
}

func New() *Store {
	return &Store{
		items: make(map[string]domain.MemoryItem),
		now:   time.Now,
	}
}

func (s *Store) Write(_ context.Context, item domain.MemoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.Tags = append([]string(nil), item.Tags...)
	s.items[item.ID] = item
	return nil
}

func (s *Store) Search(_ context.Context, query string, tags []string, limit int) ([]domain.SearchResult, error) {
	limit = clampLimit(limit)
	q := strings.ToLower(query)
	now := s.now()

	s.mu.Lock()
	matched := make([]domain.MemoryItem, 0)
	for _, item := range s.items {
		if item.Revoked {
			continue
		}
		if item.ExpiresAt != nil && now.After(*item.ExpiresAt) {
			continue
		}
		if matches(item, q, tags) {
			matched = append(matched, item)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([]domain.SearchResult, 0, len(matched))
	for _, item := range matched {
		results = append(results, domain.SearchResult{
			ID:        item.ID,
			Snippet:   snippet(item.Text),
			Tags:      append([]string(nil), item.Tags...),
			CreatedAt: item.CreatedAt,
		})
	}
	return results, nil
}

// Revoke flips revoked under the store lock. The first caller to observe
// revoked=false wins; everyone else gets "" back.
func (s *Store) Revoke(_ context.Context, itemID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok || item.Revoked {
		return "", nil
	}
	item.Revoked = true
	s.items[itemID] = item
	return item.ReceiptID, nil
}

func matches(item domain.MemoryItem, loweredQuery string, tags []string) bool {
	// An empty query is a substring of every text, matching the OR contract.
	if strings.Contains(strings.ToLower(item.Text), loweredQuery) {
		return true
	}
	for _, want := range tags {
		for _, have := range item.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

func snippet(text string) string {
	if len(text) <= domain.SnippetLength {
		return text
	}
	return text[:domain.SnippetLength]
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > domain.SearchLimitMax {
		return domain.SearchLimitMax
	}
	return limit
}

var _ domain.MemoryItemStore = (*Store)(nil)
