package soft

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"recall/internal/config"
)

func testSeed() []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func TestNewIdentityFromConfigSeedHex(t *testing.T) {
	seed := testSeed()
	cfg := config.Config{
		IssuerDID:                "did:web:localhost",
		KeyID:                    "dev-1",
		SigningPrivateKeySeedHex: hex.EncodeToString(seed),
	}
	id, err := NewIdentityFromConfig(cfg)
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}
	if id.Issuer() != "did:web:localhost" || id.KeyID() != "dev-1" {
		t.Fatalf("unexpected identity: %s %s", id.Issuer(), id.KeyID())
	}

	want := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	record := id.KeyRecord()
	if !bytes.Equal(record.PublicKey, want) {
		t.Fatal("public key does not match seed")
	}

	payload := []byte("payload")
	if !ed25519.Verify(want, payload, id.Sign(payload)) {
		t.Fatal("signature does not verify against published key")
	}
}

func TestNewIdentityFromConfigBase64FullKey(t *testing.T) {
	priv := ed25519.NewKeyFromSeed(testSeed())
	cfg := config.Config{
		IssuerDID:               "did:web:localhost",
		KeyID:                   "dev-1",
		SigningPrivateKeyBase64: base64.StdEncoding.EncodeToString(priv),
	}
	id, err := NewIdentityFromConfig(cfg)
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}
	if !bytes.Equal(id.KeyRecord().PublicKey, priv.Public().(ed25519.PublicKey)) {
		t.Fatal("public key mismatch")
	}
}

func TestNewIdentityFromConfigMissingKey(t *testing.T) {
	cfg := config.Config{IssuerDID: "did:web:localhost", KeyID: "dev-1"}
	if _, err := NewIdentityFromConfig(cfg); err == nil {
		t.Fatal("expected error when no signing key is configured")
	}
}

func TestNewIdentityFromConfigGarbageKey(t *testing.T) {
	cfg := config.Config{
		IssuerDID:                "did:web:localhost",
		KeyID:                    "dev-1",
		SigningPrivateKeySeedHex: "zzzz",
	}
	if _, err := NewIdentityFromConfig(cfg); err == nil {
		t.Fatal("expected error for undecodable key material")
	}
}
