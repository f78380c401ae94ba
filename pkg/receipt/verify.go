// Package receipt offers offline helpers for third parties that hold a
// receipt and the issuer's public key and want to check the signature
// without talking to the issuing service.
package receipt

import (
	"errors"

	"recall/internal/domain"
	cryptoinfra "recall/internal/infra/crypto"
)

// Receipt re-exports the wire type for external consumers.
type Receipt = domain.Receipt

// CanonicalPayload returns the exact bytes the receipt's signature covers.
func CanonicalPayload(r Receipt) ([]byte, error) {
	service := cryptoinfra.NewService()
	return service.CanonicalizeReceipt(r)
}

// VerifyWithKey checks the receipt's detached signature against a known
// ed25519 public key, bypassing issuer discovery entirely.
func VerifyWithKey(r Receipt, publicKey []byte) error {
	if r.Sig == "" {
		return errors.New("receipt has no signature")
	}
	sig, err := cryptoinfra.DecodeSignature(r.Sig)
	if err != nil {
		return err
	}
	canonical, err := CanonicalPayload(r)
	if err != nil {
		return err
	}
	service := cryptoinfra.NewService()
	return service.VerifySignature(canonical, sig, publicKey)
}
