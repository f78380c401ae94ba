package usecase

import (
	"context"

	"recall/internal/domain"
	"recall/internal/infra/crypto"
)

// ReceiptVerifier validates arbitrary receipts. It is pure apart from the
// resolver's possible network fetch, never mutates store state, and never
// trusts the receipt's claimed issuer/keyId without resolving them.
type ReceiptVerifier struct {
	Resolver domain.KeyResolver
	Crypto   CryptoService
}

func NewReceiptVerifier(resolver domain.KeyResolver, svc CryptoService) *ReceiptVerifier {
	return &ReceiptVerifier{Resolver: resolver, Crypto: svc}
}

// Verify walks a fixed check sequence, each step an early exit with a
// typed reason. Failures are results, not errors: hostile input must not
// crash the caller.
func (v *ReceiptVerifier) Verify(ctx context.Context, receipt domain.Receipt) domain.VerificationResult {
	if reason, ok := structuralCheck(receipt); !ok {
		return failure(reason)
	}

	sig, err := crypto.DecodeSignature(receipt.Sig)
	if err != nil {
		return failure(domain.ReasonUnsupportedSignature)
	}

	canonical, err := v.Crypto.CanonicalizeReceipt(receipt)
	if err != nil {
		return failure(domain.ReasonMalformedReceipt)
	}

	key, err := v.Resolver.Resolve(ctx, receipt.Issuer, receipt.KeyID)
	if err != nil {
		return failure(domain.ReasonKeyUnavailable)
	}

	if err := v.Crypto.VerifySignature(canonical, sig, key.PublicKey); err != nil {
		return failure(domain.ReasonInvalidSignature)
	}

	return domain.VerificationResult{
		Valid:  true,
		Issuer: receipt.Issuer,
		KeyID:  key.KeyID,
	}
}

func structuralCheck(r domain.Receipt) (domain.FailureReason, bool) {
	switch {
	case r.ReceiptID == "",
		r.Issuer == "",
		r.KeyID == "",
		r.IssuedAt == "",
		r.LocationHint == "",
		r.SchemaVersion == "",
		r.Flags == nil,
		r.Sig == "":
		return domain.ReasonMalformedReceipt, false
	}
	if !r.Badge.Valid() {
		return domain.ReasonMalformedReceipt, false
	}
	return "", true
}

func failure(reason domain.FailureReason) domain.VerificationResult {
	return domain.VerificationResult{Valid: false, Reason: reason}
}
