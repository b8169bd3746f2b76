package release

import "errors"

var (
	ErrNotSigned      = errors.New("certificate is not signed")
	ErrAlreadySigned  = errors.New("certificate is already signed")
	ErrSessionClosed  = errors.New("viewer session is closed")
	ErrSignInProgress = errors.New("certificate is being signed")
	ErrNoSigner       = errors.New("signer identity is required")
	ErrPrintBlocked   = errors.New("print blocked")
	ErrViewerNotFound = errors.New("viewer session not found")
)

const (
	NoticeCannotPrint  = "cannot print"
	NoticePrintBlocked = "print blocked"
)
