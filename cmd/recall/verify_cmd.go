package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"recall/pkg/receipt"
)

type verifyOutput struct {
	Valid  bool   `json:"valid"`
	Issuer string `json:"issuer,omitempty"`
	KeyID  string `json:"keyId,omitempty"`
	Error  string `json:"error,omitempty"`
}

// runVerify checks a receipt offline against a caller-supplied public key.
func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var pubHex string
	var pubBase64 string
	var outPath string

	fs.StringVar(&inPath, "in", "", "receipt JSON path")
	fs.StringVar(&pubHex, "pubkey-hex", "", "ed25519 public key hex")
	fs.StringVar(&pubBase64, "pubkey-base64", "", "ed25519 public key base64")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "verify requires --in")
		return 1
	}
	if (pubHex == "" && pubBase64 == "") || (pubHex != "" && pubBase64 != "") {
		fmt.Fprintln(os.Stderr, "verify requires exactly one of --pubkey-hex or --pubkey-base64")
		return 1
	}

	receiptBytes, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read receipt: %v\n", err)
		return 1
	}
	var r receipt.Receipt
	if err := json.Unmarshal(receiptBytes, &r); err != nil {
		fmt.Fprintf(os.Stderr, "decode receipt: %v\n", err)
		return 1
	}

	pubKey, err := parsePublicKey(pubHex, pubBase64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse public key: %v\n", err)
		return 1
	}

	out := verifyOutput{Valid: true, Issuer: r.Issuer, KeyID: r.KeyID}
	if err := receipt.VerifyWithKey(r, pubKey); err != nil {
		out = verifyOutput{Valid: false, Error: err.Error()}
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
	if !out.Valid {
		return 1
	}
	return 0
}

func parsePublicKey(pubHex, pubBase64 string) ([]byte, error) {
	var raw []byte
	var err error
	if pubHex != "" {
		raw, err = hex.DecodeString(pubHex)
	} else {
		raw, err = base64.StdEncoding.DecodeString(pubBase64)
	}
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("invalid ed25519 public key length")
	}
	return raw, nil
}
