package usecase

import (
	"crypto/ed25519"
	"strings"
	"testing"
	"time"

	"recall/internal/domain"
	"recall/internal/infra/crypto"
	"recall/internal/infra/keys/soft"
)

func testIdentity(t *testing.T) *soft.Identity {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	id, err := soft.NewIdentity("did:web:localhost", "dev-1", ed25519.NewKeyFromSeed(seed))
	if err != nil {
		t.Fatalf("build identity: %v", err)
	}
	return id
}

func testIssuer(t *testing.T) *ReceiptIssuer {
	t.Helper()
	issuer := NewReceiptIssuer(testIdentity(t), crypto.NewService(), "eu-central")
	issuer.Clock = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 589, time.UTC) }
	return issuer
}

func TestIssueWriteReceipt(t *testing.T) {
	issuer := testIssuer(t)

	receipt, err := issuer.Issue([]string{domain.FlagMemWrite}, domain.BadgeGreen, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if receipt.ReceiptID == "" {
		t.Error("receipt id is empty")
	}
	if receipt.Issuer != "did:web:localhost" || receipt.KeyID != "dev-1" {
		t.Errorf("issuer identity %s/%s", receipt.Issuer, receipt.KeyID)
	}
	if receipt.IssuedAt != "2026-03-14T09:26:53Z" {
		t.Errorf("issuedAt = %q, want second-resolution RFC 3339 UTC", receipt.IssuedAt)
	}
	if receipt.LocationHint != "eu-central" {
		t.Errorf("locationHint = %q", receipt.LocationHint)
	}
	if receipt.Badge != domain.BadgeGreen {
		t.Errorf("badge = %q, want green", receipt.Badge)
	}
	if len(receipt.Flags) != 1 || receipt.Flags[0] != domain.FlagMemWrite {
		t.Errorf("flags = %v", receipt.Flags)
	}
	if receipt.SchemaVersion != domain.SchemaVersion {
		t.Errorf("schemaVersion = %q", receipt.SchemaVersion)
	}
	if receipt.RevokeOf != "" {
		t.Errorf("write receipt carries revokeOf %q", receipt.RevokeOf)
	}
	if !strings.HasPrefix(receipt.Sig, "ed25519:") {
		t.Errorf("sig = %q, want ed25519 tag", receipt.Sig)
	}
}

func TestIssueRevokeReceiptChains(t *testing.T) {
	issuer := testIssuer(t)

	receipt, err := issuer.Issue([]string{domain.FlagMemRevoke, "item-7"}, domain.BadgeAmber, "rcpt-prior")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if receipt.Badge != domain.BadgeAmber {
		t.Errorf("badge = %q, want amber", receipt.Badge)
	}
	if len(receipt.Flags) != 2 || receipt.Flags[0] != domain.FlagMemRevoke || receipt.Flags[1] != "item-7" {
		t.Errorf("flags = %v", receipt.Flags)
	}
	if receipt.RevokeOf != "rcpt-prior" {
		t.Errorf("revokeOf = %q", receipt.RevokeOf)
	}
}

func TestIssueSignatureVerifiesAgainstCanonicalPayload(t *testing.T) {
	identity := testIdentity(t)
	svc := crypto.NewService()
	issuer := NewReceiptIssuer(identity, svc, "none")

	receipt, err := issuer.Issue([]string{domain.FlagMemWrite}, domain.BadgeGreen, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	canonical, err := svc.CanonicalizeReceipt(receipt)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	sig, err := crypto.DecodeSignature(receipt.Sig)
	if err != nil {
		t.Fatalf("decode sig: %v", err)
	}
	if err := svc.VerifySignature(canonical, sig, identity.KeyRecord().PublicKey); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestIssueRejectsBadInput(t *testing.T) {
	issuer := testIssuer(t)

	if _, err := issuer.Issue(nil, domain.BadgeGreen, ""); err == nil {
		t.Error("expected error for empty flags")
	}
	if _, err := issuer.Issue([]string{domain.FlagMemWrite}, domain.Badge("purple"), ""); err == nil {
		t.Error("expected error for invalid badge")
	}
}
