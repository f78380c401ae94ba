// Package discovery resolves issuer identifiers to public key material.
//
// Resolution is an explicit two-branch policy: the local issuer
// short-circuits to the process identity and never touches the network;
// every other issuer goes through did:web discovery or fails with
// domain.ErrKeyNotFound. The local key is never substituted for a foreign
// issuer's.
package discovery

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"recall/internal/domain"
	"recall/internal/infra/cachemem"
)

const didWebPrefix = "did:web:"

// maxDocumentBytes bounds how much of a discovery document is read. A
// hostile endpoint must not be able to exhaust memory.
const maxDocumentBytes = 1 << 20

type LocalIdentity interface {
	Issuer() string
	KeyID() string
	KeyRecord() domain.KeyRecord
}

type Resolver struct {
	local    LocalIdentity
	client   *http.Client
	cache    *cachemem.Cache
	cacheTTL time.Duration

	// baseURL rewrites the discovery origin; tests point it at httptest
	// servers. Empty means the did:web derivation is used as-is.
	baseURL string
}

type Option func(*Resolver)

// WithCache enables bounded caching of successful resolutions.
func WithCache(cache *cachemem.Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

// WithBaseURL overrides the https origin derived from the issuer.
func WithBaseURL(base string) Option {
	return func(r *Resolver) {
		r.baseURL = strings.TrimSuffix(base, "/")
	}
}

func NewResolver(local LocalIdentity, timeout time.Duration, opts ...Option) *Resolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	r := &Resolver{
		local:  local,
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps (issuer, keyID) to a key record. Fetch failures, timeouts
// and malformed documents are all reported as domain.ErrKeyNotFound; they
// are recoverable conditions, never crashes.
func (r *Resolver) Resolve(ctx context.Context, issuer, keyID string) (domain.KeyRecord, error) {
	if issuer == "" {
		return domain.KeyRecord{}, fmt.Errorf("%w: empty issuer", domain.ErrKeyNotFound)
	}

	// Local issuer short-circuit: the process holds a single key, which is
	// returned for any requested keyID. A stale keyID then fails at the
	// signature check rather than here.
	if r.local != nil && issuer == r.local.Issuer() {
		return r.local.KeyRecord(), nil
	}

	cacheKey := issuer + "|" + keyID
	if record, ok := r.cache.Get(cacheKey); ok {
		return record, nil
	}

	doc, err := r.fetchDocument(ctx, issuer)
	if err != nil {
		return domain.KeyRecord{}, err
	}
	record, err := pickKey(doc, keyID)
	if err != nil {
		return domain.KeyRecord{}, err
	}
	r.cache.Put(cacheKey, record, r.cacheTTL)
	return record, nil
}

// WellKnownURL derives the discovery address from a did:web identifier:
// did:web:<host[:port][/path]> maps to
// https://<host[:port][/path]>/.well-known/receipts.json. Other schemes are
// unsupported.
func WellKnownURL(issuer string) (string, bool) {
	rest, ok := strings.CutPrefix(issuer, didWebPrefix)
	if !ok || rest == "" {
		return "", false
	}
	return "https://" + strings.TrimSuffix(rest, "/") + "/.well-known/receipts.json", true
}

func (r *Resolver) fetchDocument(ctx context.Context, issuer string) (domain.DiscoveryDocument, error) {
	url, ok := WellKnownURL(issuer)
	if !ok {
		return domain.DiscoveryDocument{}, fmt.Errorf("%w: unsupported issuer scheme %q", domain.ErrKeyNotFound, issuer)
	}
	if r.baseURL != "" {
		url = r.baseURL + "/.well-known/receipts.json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.DiscoveryDocument{}, fmt.Errorf("%w: %v", domain.ErrKeyNotFound, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return domain.DiscoveryDocument{}, fmt.Errorf("%w: fetch %s: %v", domain.ErrKeyNotFound, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.DiscoveryDocument{}, fmt.Errorf("%w: fetch %s: status %d", domain.ErrKeyNotFound, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return domain.DiscoveryDocument{}, fmt.Errorf("%w: read %s: %v", domain.ErrKeyNotFound, url, err)
	}
	var doc domain.DiscoveryDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.DiscoveryDocument{}, fmt.Errorf("%w: malformed document: %v", domain.ErrKeyNotFound, err)
	}
	if len(doc.Keys) == 0 {
		return domain.DiscoveryDocument{}, fmt.Errorf("%w: document has no keys", domain.ErrKeyNotFound)
	}
	return doc, nil
}

// pickKey matches by keyId when one is requested, falling back to the first
// published key when there is no exact match.
func pickKey(doc domain.DiscoveryDocument, keyID string) (domain.KeyRecord, error) {
	chosen := doc.Keys[0]
	if keyID != "" {
		for _, k := range doc.Keys {
			if k.KeyID == keyID {
				chosen = k
				break
			}
		}
	}
	pub, err := base64.StdEncoding.DecodeString(chosen.PublicKeyBase64)
	if err != nil {
		return domain.KeyRecord{}, fmt.Errorf("%w: key %q: %v", domain.ErrKeyNotFound, chosen.KeyID, err)
	}
	keyType := chosen.KeyType
	if keyType == "" {
		keyType = domain.KeyTypeEd25519
	}
	return domain.KeyRecord{
		KeyID:     chosen.KeyID,
		KeyType:   keyType,
		PublicKey: pub,
	}, nil
}
