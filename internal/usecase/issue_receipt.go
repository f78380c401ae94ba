package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recall/internal/domain"
	"recall/internal/infra/crypto"
)

// ReceiptIssuer builds and signs receipts with the process identity. It has
// no side effects: signing key material is read-only during Issue.
type ReceiptIssuer struct {
	Identity     Signer
	Crypto       CryptoService
	LocationHint string
	Clock        Clock
	NewID        func() string
}

func NewReceiptIssuer(identity Signer, svc CryptoService, locationHint string) *ReceiptIssuer {
	if locationHint == "" {
		locationHint = "none"
	}
	return &ReceiptIssuer{
		Identity:     identity,
		Crypto:       svc,
		LocationHint: locationHint,
		Clock:        time.Now,
		NewID:        uuid.NewString,
	}
}

// Issue signs a receipt for one action. The badge is caller-supplied: a
// plain write is green, a revocation amber; red badges come from metrics
// pipelines outside this service. revokeOf links a revocation receipt to
// the receipt it supersedes and is included in the signed payload only when
// non-empty.
func (i *ReceiptIssuer) Issue(flags []string, badge domain.Badge, revokeOf string) (domain.Receipt, error) {
	if i.Identity == nil || i.Crypto == nil {
		return domain.Receipt{}, errors.New("issuer is not configured")
	}
	if len(flags) == 0 {
		return domain.Receipt{}, errors.New("at least one action flag is required")
	}
	if !badge.Valid() {
		return domain.Receipt{}, fmt.Errorf("invalid badge %q", badge)
	}

	receipt := domain.Receipt{
		ReceiptID:     i.NewID(),
		Issuer:        i.Identity.Issuer(),
		KeyID:         i.Identity.KeyID(),
		IssuedAt:      i.Clock().UTC().Truncate(time.Second).Format(time.RFC3339),
		LocationHint:  i.LocationHint,
		Badge:         badge,
		Flags:         append([]string(nil), flags...),
		SchemaVersion: domain.SchemaVersion,
		RevokeOf:      revokeOf,
	}

	canonical, err := i.Crypto.CanonicalizeReceipt(receipt)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("canonicalize receipt: %w", err)
	}
	receipt.Sig = crypto.EncodeSignature(i.Identity.Sign(canonical))
	return receipt, nil
}
