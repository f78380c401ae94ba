package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"recall/internal/domain"
)

func seedItem(t *testing.T, s *Store, id, text string, tags []string, createdAt time.Time) {
	t.Helper()
	err := s.Write(context.Background(), domain.MemoryItem{
		ID:        id,
		Text:      text,
		Tags:      tags,
		Scope:     domain.ScopePrivate,
		Consent:   domain.ConsentExplicit,
		CreatedAt: createdAt,
		ReceiptID: "rcpt-" + id,
	})
	if err != nil {
		t.Fatalf("write %s: %v", id, err)
	}
}

func TestSearchMatchesSubstringOrTag(t *testing.T) {
	s := New()
	base := time.Now()
	seedItem(t, s, "1", "the quick brown fox", nil, base)
	seedItem(t, s, "2", "unrelated text", []string{"fox", "animal"}, base.Add(time.Second))
	seedItem(t, s, "3", "nothing here", []string{"bird"}, base.Add(2*time.Second))

	results, err := s.Search(context.Background(), "Quick", []string{"fox"}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Newest first.
	if results[0].ID != "2" || results[1].ID != "1" {
		t.Fatalf("got order %s,%s; want 2,1", results[0].ID, results[1].ID)
	}
}

func TestSearchEmptyQueryMatchesEverything(t *testing.T) {
	s := New()
	base := time.Now()
	for i := 0; i < 3; i++ {
		seedItem(t, s, fmt.Sprintf("%d", i), fmt.Sprintf("note %d", i), nil, base.Add(time.Duration(i)*time.Second))
	}

	results, err := s.Search(context.Background(), "", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
}

func TestSearchSkipsRevokedAndExpired(t *testing.T) {
	s := New()
	now := time.Now()
	s.now = func() time.Time { return now }

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	seedItem(t, s, "live", "keep me", nil, now)
	s.Write(context.Background(), domain.MemoryItem{ID: "expired", Text: "keep me too", CreatedAt: now, ExpiresAt: &past})
	s.Write(context.Background(), domain.MemoryItem{ID: "fresh", Text: "keep me three", CreatedAt: now, ExpiresAt: &future})
	seedItem(t, s, "gone", "keep me four", nil, now)
	if _, err := s.Revoke(context.Background(), "gone"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	results, err := s.Search(context.Background(), "keep", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	ids := make(map[string]bool)
	for _, r := range results {
		ids[r.ID] = true
	}
	if len(ids) != 2 || !ids["live"] || !ids["fresh"] {
		t.Fatalf("got ids %v, want live and fresh only", ids)
	}
}

func TestSearchClampsLimitAndTruncatesSnippets(t *testing.T) {
	s := New()
	base := time.Now()
	long := strings.Repeat("x", domain.SnippetLength+100)
	for i := 0; i < domain.SearchLimitMax+10; i++ {
		seedItem(t, s, fmt.Sprintf("%03d", i), long, nil, base.Add(time.Duration(i)*time.Second))
	}

	results, err := s.Search(context.Background(), "x", nil, 1000)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != domain.SearchLimitMax {
		t.Fatalf("got %d results, want %d", len(results), domain.SearchLimitMax)
	}
	if len(results[0].Snippet) != domain.SnippetLength {
		t.Fatalf("snippet length %d, want %d", len(results[0].Snippet), domain.SnippetLength)
	}

	results, err = s.Search(context.Background(), "x", nil, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results for limit 0, want 1", len(results))
	}
}

func TestRevokeReturnsReceiptExactlyOnce(t *testing.T) {
	s := New()
	seedItem(t, s, "a", "text", nil, time.Now())

	id, err := s.Revoke(context.Background(), "a")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if id != "rcpt-a" {
		t.Fatalf("got receipt %q, want rcpt-a", id)
	}

	id, err = s.Revoke(context.Background(), "a")
	if err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if id != "" {
		t.Fatalf("second revoke returned %q, want empty", id)
	}

	if id, _ := s.Revoke(context.Background(), "missing"); id != "" {
		t.Fatalf("unknown item returned %q, want empty", id)
	}
}

func TestConcurrentRevokeHasOneWinner(t *testing.T) {
	s := New()
	seedItem(t, s, "a", "text", nil, time.Now())

	const n = 16
	var wg sync.WaitGroup
	wins := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Revoke(context.Background(), "a")
			if err != nil {
				t.Errorf("revoke: %v", err)
				return
			}
			if id != "" {
				wins <- id
			}
		}()
	}
	wg.Wait()
	close(wins)

	var count int
	for id := range wins {
		count++
		if id != "rcpt-a" {
			t.Errorf("winner got receipt %q, want rcpt-a", id)
		}
	}
	if count != 1 {
		t.Fatalf("got %d winners, want exactly 1", count)
	}
}
