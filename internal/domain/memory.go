package domain

import (
	"context"
	"time"
)

type Scope string

const (
	ScopePrivate Scope = "private"
	ScopeTeam    Scope = "team"
	ScopePublic  Scope = "public"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopePrivate, ScopeTeam, ScopePublic:
		return true
	}
	return false
}

type Consent string

const (
	ConsentExplicit Consent = "explicit"
	ConsentInferred Consent = "inferred"
	ConsentNone     Consent = "none"
)

func (c Consent) Valid() bool {
	switch c {
	case ConsentExplicit, ConsentInferred, ConsentNone:
		return true
	}
	return false
}

// MemoryItem is one stored memory. Revoked is monotonic: once set it never
// reverts, and revoked items never appear in search results.
type MemoryItem struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Tags      []string   `json:"tags"`
	Scope     Scope      `json:"scope"`
	Consent   Consent    `json:"consent"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	ReceiptID string     `json:"receiptId"`
	Revoked   bool       `json:"revoked"`
}

// SearchResult is the trimmed view the store returns for matches.
type SearchResult struct {
	ID        string    `json:"id"`
	Snippet   string    `json:"snippet"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// SearchLimitMax bounds how many results a single search may return.
const SearchLimitMax = 20

// SnippetLength bounds the text excerpt returned by search.
const SnippetLength = 240

// MemoryItemStore persists items and their revocation flags. Revoke must be
// an atomic check-and-set: of N concurrent revokes for the same id, exactly
// one observes revoked=false and wins; it returns the receipt id that
// recorded the item's creation, or "" when the item is unknown or already
// revoked.
type MemoryItemStore interface {
	Write(ctx context.Context, item MemoryItem) error
	Search(ctx context.Context, query string, tags []string, limit int) ([]SearchResult, error)
	Revoke(ctx context.Context, itemID string) (priorReceiptID string, err error)
}
