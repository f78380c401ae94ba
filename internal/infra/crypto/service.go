package crypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"recall/internal/domain"
)

// Service owns canonical payload construction and ed25519 operations for
// receipts. It is stateless; the signing key lives with its manager.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// CanonicalizeReceipt produces the exact bytes covered by a receipt's
// signature: every field except sig, with revokeOf present only when
// non-empty. The issuer and the verifier must agree on these bytes
// bit-for-bit, so both route through here.
func (s *Service) CanonicalizeReceipt(r domain.Receipt) ([]byte, error) {
	return Canonicalize(receiptSigningFields(r))
}

func receiptSigningFields(r domain.Receipt) map[string]any {
	flags := make([]any, len(r.Flags))
	for i, f := range r.Flags {
		flags[i] = f
	}
	fields := map[string]any{
		"receiptId":     r.ReceiptID,
		"issuer":        r.Issuer,
		"keyId":         r.KeyID,
		"issuedAt":      r.IssuedAt,
		"locationHint":  r.LocationHint,
		"badge":         string(r.Badge),
		"flags":         flags,
		"schemaVersion": r.SchemaVersion,
	}
	if r.RevokeOf != "" {
		fields["revokeOf"] = r.RevokeOf
	}
	return fields
}

// EncodeSignature renders the detached signature with its algorithm tag.
func EncodeSignature(sig []byte) string {
	return domain.SignatureAlgEd25519 + ":" + base64.StdEncoding.EncodeToString(sig)
}

// DecodeSignature splits "<alg>:<base64>" and rejects unknown algorithms
// and undecodable payloads.
func DecodeSignature(tagged string) ([]byte, error) {
	alg, encoded, found := strings.Cut(tagged, ":")
	if !found {
		return nil, fmt.Errorf("%w: missing algorithm tag", domain.ErrUnsupportedSignature)
	}
	if alg != domain.SignatureAlgEd25519 {
		return nil, fmt.Errorf("%w: algorithm %q", domain.ErrUnsupportedSignature, alg)
	}
	sig, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedSignature, err)
	}
	if len(sig) != ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: signature length %d", domain.ErrUnsupportedSignature, len(sig))
	}
	return sig, nil
}

// VerifySignature checks a decoded signature over the canonical payload.
func (s *Service) VerifySignature(canonical, sig, pubKey []byte) error {
	if len(pubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid ed25519 public key length: %d", len(pubKey))
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid ed25519 signature length: %d", len(sig))
	}
	if !ed25519.Verify(pubKey, canonical, sig) {
		return errors.New("signature verification failed")
	}
	return nil
}
