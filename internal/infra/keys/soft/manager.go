// Package soft holds the process-local software signing identity. The key
// is loaded once at startup and read-only afterwards, which makes it safe
// for unsynchronized concurrent use.
package soft

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"recall/internal/config"
	"recall/internal/domain"
)

// Identity is the issuer identity this process signs receipts with.
type Identity struct {
	issuer string
	keyID  string
	priv   ed25519.PrivateKey
	pub    ed25519.PublicKey
}

// NewIdentityFromConfig loads the signing key from configuration. A missing
// or unparseable key is an error: the issuer cannot function without one,
// and callers are expected to treat this as fatal at startup.
func NewIdentityFromConfig(cfg config.Config) (*Identity, error) {
	if cfg.IssuerDID == "" {
		return nil, errors.New("issuer identifier is required")
	}
	if cfg.KeyID == "" {
		return nil, errors.New("key id is required")
	}
	priv := readPrivateKeyBase64(cfg.SigningPrivateKeyBase64)
	if priv == nil {
		priv = readPrivateKeyHex(cfg.SigningPrivateKeySeedHex)
	}
	if priv == nil {
		return nil, errors.New("signing key is not configured")
	}
	return &Identity{
		issuer: cfg.IssuerDID,
		keyID:  cfg.KeyID,
		priv:   priv,
		pub:    priv.Public().(ed25519.PublicKey),
	}, nil
}

// NewIdentity builds an identity from an already-parsed private key. Used by
// tests and the CLI.
func NewIdentity(issuer, keyID string, priv ed25519.PrivateKey) (*Identity, error) {
	if issuer == "" || keyID == "" {
		return nil, errors.New("issuer and key id are required")
	}
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid ed25519 private key length")
	}
	key := append(ed25519.PrivateKey(nil), priv...)
	return &Identity{
		issuer: issuer,
		keyID:  keyID,
		priv:   key,
		pub:    key.Public().(ed25519.PublicKey),
	}, nil
}

func (id *Identity) Issuer() string { return id.issuer }
func (id *Identity) KeyID() string  { return id.keyID }

func (id *Identity) Sign(payload []byte) []byte {
	return ed25519.Sign(id.priv, payload)
}

// KeyRecord returns the public half as published in the discovery document.
func (id *Identity) KeyRecord() domain.KeyRecord {
	return domain.KeyRecord{
		KeyID:     id.keyID,
		KeyType:   domain.KeyTypeEd25519,
		PublicKey: append([]byte(nil), id.pub...),
	}
}

func readPrivateKeyBase64(value string) ed25519.PrivateKey {
	if value == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	key, err := parsePrivateKey(raw)
	if err != nil {
		return nil
	}
	return key
}

func readPrivateKeyHex(value string) ed25519.PrivateKey {
	if value == "" {
		return nil
	}
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil
	}
	key, err := parsePrivateKey(raw)
	if err != nil {
		return nil
	}
	return key
}

func parsePrivateKey(raw []byte) (ed25519.PrivateKey, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, errors.New("invalid ed25519 private key length")
	}
}
