package usecase

import (
	"context"
	"time"

	"recall/internal/domain"
	"recall/internal/infra/policyrego"
)

type Clock func() time.Time

// Signer is the process-local signing identity. Key material stays behind
// this interface; nothing else reads it.
type Signer interface {
	Issuer() string
	KeyID() string
	Sign(payload []byte) []byte
}

// CryptoService canonicalizes receipt payloads and checks signatures. The
// issuer and verifier share one implementation so their bytes can never
// diverge.
type CryptoService interface {
	CanonicalizeReceipt(r domain.Receipt) ([]byte, error)
	VerifySignature(canonical, sig, pubKey []byte) error
}

// PolicyEngine gates memory writes.
type PolicyEngine interface {
	Evaluate(ctx context.Context, input policyrego.WriteInput) (policyrego.Result, error)
}

// AuditEventRepository appends audit events.
type AuditEventRepository interface {
	Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error)
}
