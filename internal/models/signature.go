package models

import "time"

// SignatureMetadata is created once per sign action and never modified.
type SignatureMetadata struct {
	SignedBy  string    `json:"signedBy"`
	SignedAt  time.Time `json:"signedAt"`
	Exception bool      `json:"exception"`
}

func NewSignatureMetadata(signer string, at time.Time, exception bool) *SignatureMetadata {
	return &SignatureMetadata{
		SignedBy:  signer,
		SignedAt:  at,
		Exception: exception,
	}
}
