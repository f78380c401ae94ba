package domain

import "context"

// KeyRecord is one published verification key. The service's own record is
// loaded once at process start and immutable afterwards; foreign records are
// ephemeral, fetched per verification, never persisted.
type KeyRecord struct {
	KeyID     string
	KeyType   string
	PublicKey []byte
}

// KeyTypeEd25519 is the only key type issued or accepted.
const KeyTypeEd25519 = "Ed25519"

// KeyResolver maps an issuer identifier and key id to key material. Local
// issuers short-circuit to the process identity; foreign did:web issuers go
// through discovery. Resolution failure is ErrKeyNotFound, never a crash.
type KeyResolver interface {
	Resolve(ctx context.Context, issuer, keyID string) (KeyRecord, error)
}

// DiscoveryDocument is the JSON body served at /.well-known/receipts.json.
type DiscoveryDocument struct {
	Issuer        string         `json:"issuer"`
	Keys          []DiscoveryKey `json:"keys"`
	SchemaVersion string         `json:"schemaVersion"`
}

type DiscoveryKey struct {
	KeyID           string `json:"keyId"`
	KeyType         string `json:"keyType"`
	PublicKeyBase64 string `json:"publicKeyBase64"`
}
