package models

import "time"

// PendingLogin is what the session remembers between sending a browser to the
// identity provider and receiving its callback.
type PendingLogin struct {
	State        string
	Nonce        string
	CodeVerifier string
	ReturnTo     string
}

// LoginResult is a redeemed authorization code.
type LoginResult struct {
	User      *User
	ExpiresAt time.Time
	ReturnTo  string
}
