package models

type ReleaseState string

const (
	StateUnsigned ReleaseState = "unsigned"
	// StateSigned also means printable.
	StateSigned ReleaseState = "signed"
)

func (s ReleaseState) CanPrint() bool {
	return s == StateSigned
}
