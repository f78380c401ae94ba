package domain

import "errors"

var (
	ErrMalformedReceipt     = errors.New("malformed receipt")
	ErrUnsupportedSignature = errors.New("unsupported signature")
	ErrKeyNotFound          = errors.New("key not found")
	ErrSignatureInvalid     = errors.New("signature invalid")
	ErrItemNotFound         = errors.New("item not found or already revoked")
	ErrWriteDenied          = errors.New("write denied by policy")
)
