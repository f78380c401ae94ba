package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

type keygenOutput struct {
	KeyID           string `json:"keyId"`
	SeedHex         string `json:"seedHex"`
	PublicKeyBase64 string `json:"publicKeyBase64"`
}

// runKeygen emits a fresh ed25519 identity. The seed goes into
// SIGNING_PRIVATE_KEY_SEED_HEX; the public key into a discovery document.
func runKeygen(args []string) int {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var keyID string
	var outPath string
	fs.StringVar(&keyID, "key-id", "dev-1", "key id to publish")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
		return 1
	}

	out := keygenOutput{
		KeyID:           keyID,
		SeedHex:         hex.EncodeToString(priv.Seed()),
		PublicKeyBase64: base64.StdEncoding.EncodeToString(pub),
	}
	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
