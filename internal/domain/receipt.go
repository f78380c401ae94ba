package domain

// SchemaVersion identifies the receipt field layout. Verifiers reject
// nothing based on it today, but it is part of the signed payload.
const SchemaVersion = "proof.v1"

// SignatureAlgEd25519 is the only supported algorithm tag. The sig field
// carries "<alg>:<base64 signature>".
const SignatureAlgEd25519 = "ed25519"

type Badge string

const (
	BadgeGreen Badge = "green"
	BadgeAmber Badge = "amber"
	BadgeRed   Badge = "red"
)

func (b Badge) Valid() bool {
	switch b {
	case BadgeGreen, BadgeAmber, BadgeRed:
		return true
	}
	return false
}

// Action flags recorded in receipts.
const (
	FlagMemWrite  = "mem.write"
	FlagMemRevoke = "mem.revoke"
)

// Receipt is a signed attestation of one action against the memory item
// store. Immutable once issued; the signature covers every field except Sig,
// with RevokeOf included only when non-empty.
type Receipt struct {
	ReceiptID     string   `json:"receiptId"`
	Issuer        string   `json:"issuer"`
	KeyID         string   `json:"keyId"`
	IssuedAt      string   `json:"issuedAt"`
	LocationHint  string   `json:"locationHint"`
	Badge         Badge    `json:"badge"`
	Flags         []string `json:"flags"`
	SchemaVersion string   `json:"schemaVersion"`
	RevokeOf      string   `json:"revokeOf,omitempty"`
	Sig           string   `json:"sig"`
}

// VerificationResult reports the outcome of verifying a receipt. Failures
// are values, never panics: a malformed or hostile receipt must not crash
// the verifier.
type VerificationResult struct {
	Valid  bool          `json:"valid"`
	Issuer string        `json:"issuer,omitempty"`
	KeyID  string        `json:"keyId,omitempty"`
	Reason FailureReason `json:"reason,omitempty"`
}

type FailureReason string

const (
	ReasonMalformedReceipt     FailureReason = "MalformedReceipt"
	ReasonUnsupportedSignature FailureReason = "UnsupportedSignature"
	ReasonKeyUnavailable       FailureReason = "KeyUnavailable"
	ReasonInvalidSignature     FailureReason = "InvalidSignature"
)
