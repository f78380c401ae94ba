package crypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"recall/internal/domain"
)

func sampleReceipt() domain.Receipt {
	return domain.Receipt{
		ReceiptID:     "r-1",
		Issuer:        "did:web:localhost",
		KeyID:         "dev-1",
		IssuedAt:      "2026-01-02T03:04:05Z",
		LocationHint:  "none",
		Badge:         domain.BadgeGreen,
		Flags:         []string{"mem.write"},
		SchemaVersion: domain.SchemaVersion,
	}
}

func TestCanonicalizeReceiptExcludesSig(t *testing.T) {
	svc := NewService()
	r := sampleReceipt()

	without, err := svc.CanonicalizeReceipt(r)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	r.Sig = "ed25519:AAAA"
	with, err := svc.CanonicalizeReceipt(r)
	if err != nil {
		t.Fatalf("canonicalize with sig: %v", err)
	}
	if string(without) != string(with) {
		t.Fatal("sig field must not affect the canonical payload")
	}
	if strings.Contains(string(without), "sig") {
		t.Fatalf("canonical payload contains sig: %s", without)
	}
}

func TestCanonicalizeReceiptRevokeOfOnlyWhenSet(t *testing.T) {
	svc := NewService()
	r := sampleReceipt()

	plain, err := svc.CanonicalizeReceipt(r)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if strings.Contains(string(plain), "revokeOf") {
		t.Fatalf("revokeOf present for a plain write: %s", plain)
	}

	r.RevokeOf = "r-0"
	revoking, err := svc.CanonicalizeReceipt(r)
	if err != nil {
		t.Fatalf("canonicalize revocation: %v", err)
	}
	if !strings.Contains(string(revoking), `"revokeOf":"r-0"`) {
		t.Fatalf("revokeOf missing from revocation payload: %s", revoking)
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	svc := NewService()
	canonical, err := svc.CanonicalizeReceipt(sampleReceipt())
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}

	tagged := EncodeSignature(ed25519.Sign(priv, canonical))
	if !strings.HasPrefix(tagged, "ed25519:") {
		t.Fatalf("unexpected signature tag: %s", tagged)
	}
	sig, err := DecodeSignature(tagged)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	if err := svc.VerifySignature(canonical, sig, pub); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestDecodeSignatureRejectsUnknown(t *testing.T) {
	valid := base64.StdEncoding.EncodeToString(make([]byte, ed25519.SignatureSize))
	tests := []string{
		"",
		"nota-signature",
		"rsa:" + valid,
		"ed25519:!!!not-base64!!!",
		"ed25519:" + base64.StdEncoding.EncodeToString([]byte("short")),
	}
	for _, in := range tests {
		if _, err := DecodeSignature(in); !errors.Is(err, domain.ErrUnsupportedSignature) {
			t.Errorf("DecodeSignature(%q): got %v, want ErrUnsupportedSignature", in, err)
		}
	}
}

func TestVerifySignatureMismatch(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	svc := NewService()
	canonical, err := svc.CanonicalizeReceipt(sampleReceipt())
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	sig := ed25519.Sign(priv, canonical)

	tampered := sampleReceipt()
	tampered.Badge = domain.BadgeRed
	tamperedCanonical, err := svc.CanonicalizeReceipt(tampered)
	if err != nil {
		t.Fatalf("canonicalize tampered: %v", err)
	}
	if err := svc.VerifySignature(tamperedCanonical, sig, pub); err == nil {
		t.Fatal("expected verification failure for tampered payload")
	}
}
