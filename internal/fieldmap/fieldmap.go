package fieldmap

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindPlainText        Kind = "plainText"
	KindFormattedDate    Kind = "formattedDate"
	KindMarkedIdentity   Kind = "markedIdentity"
	KindConditionalGlyph Kind = "conditionalGlyph"
	KindSigningTime      Kind = "signingTime"
)

const (
	// MarkedIdentityPrefix precedes the signer on the signature line.
	MarkedIdentityPrefix = "Digitally signed by "

	// GlyphSize is the edge length of the checkmark in points.
	GlyphSize = 10.0

	// GlyphFalseOffset moves the checkmark from the "exception" box down to
	// the "no exception" box.
	GlyphFalseOffset = 14.0
)

func (k Kind) valid() bool {
	switch k {
	case KindPlainText, KindFormattedDate, KindMarkedIdentity, KindConditionalGlyph, KindSigningTime:
		return true
	}
	return false
}

func (k Kind) isText() bool {
	return k != KindConditionalGlyph
}

// Placement says where and how one field is drawn. Y is measured from the
// top of the page.
type Placement struct {
	Key      string  `json:"key" yaml:"key"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Kind     Kind    `json:"kind" yaml:"kind"`
	FontSize float64 `json:"fontSize,omitempty" yaml:"font_size"`
}

type Map []Placement

var (
	ErrDuplicateKey = errors.New("duplicate placement key")
	ErrUnknownKind  = errors.New("unknown placement kind")
	ErrFontSize     = errors.New("font size must be positive")
)

func (m Map) Validate() error {
	seen := make(map[string]struct{}, len(m))
	for _, p := range m {
		if p.Key == "" {
			return fmt.Errorf("placement at (%g, %g) has no key", p.X, p.Y)
		}
		if _, ok := seen[p.Key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, p.Key)
		}
		seen[p.Key] = struct{}{}

		if !p.Kind.valid() {
			return fmt.Errorf("%w: %q for %s", ErrUnknownKind, p.Kind, p.Key)
		}
		if p.Kind.isText() && p.FontSize <= 0 {
			return fmt.Errorf("%w: %s", ErrFontSize, p.Key)
		}
	}
	return nil
}

// Lookup returns the placement for key.
func (m Map) Lookup(key string) (Placement, bool) {
	for _, p := range m {
		if p.Key == key {
			return p, true
		}
	}
	return Placement{}, false
}

var defaultMap = Map{
	{Key: "patientName", X: 210, Y: 187, Kind: KindPlainText, FontSize: 7},
	{Key: "patientDOB", X: 210, Y: 205, Kind: KindFormattedDate, FontSize: 7},
	{Key: "cquenceDIN", X: 210, Y: 220, Kind: KindPlainText, FontSize: 7},
	{Key: "cquenceOrderId", X: 210, Y: 237, Kind: KindPlainText, FontSize: 7},
	{Key: "patientWeight", X: 210, Y: 255, Kind: KindPlainText, FontSize: 7},
	{Key: "batchNumber", X: 100, Y: 315, Kind: KindPlainText, FontSize: 7},
	{Key: "coicBagId", X: 215, Y: 315, Kind: KindPlainText, FontSize: 7},
	{Key: "totalVolume", X: 350, Y: 315, Kind: KindPlainText, FontSize: 7},
	{Key: "productDose", X: 450, Y: 315, Kind: KindPlainText, FontSize: 7},
	{Key: "expirationDate", X: 210, Y: 335, Kind: KindFormattedDate, FontSize: 7},
	{Key: "productNDC", X: 210, Y: 365, Kind: KindPlainText, FontSize: 7},
	{Key: "pccNumber", X: 210, Y: 380, Kind: KindPlainText, FontSize: 7},
	{Key: "nameAndAddress", X: 210, Y: 420, Kind: KindPlainText, FontSize: 7},
	{Key: "marketAuthorizationNumber", X: 210, Y: 435, Kind: KindPlainText, FontSize: 7},
	{Key: "country", X: 210, Y: 450, Kind: KindPlainText, FontSize: 7},
	{Key: "exception", X: 419, Y: 647, Kind: KindConditionalGlyph},
	{Key: "username", X: 260, Y: 680, Kind: KindPlainText, FontSize: 12},
	{Key: "signedAt", X: 350, Y: 690, Kind: KindSigningTime, FontSize: 8},
	{Key: "signedBy", X: 350, Y: 680, Kind: KindMarkedIdentity, FontSize: 8},
}

// Default returns a copy of the production form layout.
func Default() Map {
	return append(Map(nil), defaultMap...)
}
