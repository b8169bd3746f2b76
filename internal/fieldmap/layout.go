package fieldmap

import (
	"strconv"
	"strings"
	"time"
)

type StampKind int

const (
	StampText StampKind = iota
	StampGlyph
)

// Stamp is one mark on the page in PDF user space (origin bottom-left).
type Stamp struct {
	Key      string
	Kind     StampKind
	X        float64
	Y        float64
	FontSize float64
	Text     string
	// Size is the glyph edge length.
	Size float64
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the timestamp shapes produced by the tracking API.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders DD/MM/YYYY in the timestamp's own zone.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func FormatSigningTime(t time.Time) string {
	return "Date " + t.Format("02/01/2006") + " at " + t.Format("15:04:05")
}

// Layout resolves placements against values. Missing, empty, or unparsable
// values produce no stamp. The result follows placement order.
func Layout(values map[string]string, placements Map, pageHeight float64) []Stamp {
	stamps := make([]Stamp, 0, len(placements))

	for _, p := range placements {
		raw, ok := values[p.Key]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}

		stamp := Stamp{
			Key:      p.Key,
			Kind:     StampText,
			X:        p.X,
			Y:        pageHeight - p.Y,
			FontSize: p.FontSize,
		}

		switch p.Kind {
		case KindPlainText:
			stamp.Text = raw
		case KindFormattedDate:
			t, ok := ParseDate(raw)
			if !ok {
				continue
			}
			stamp.Text = FormatDate(t)
		case KindMarkedIdentity:
			stamp.Text = MarkedIdentityPrefix + raw
		case KindSigningTime:
			t, ok := ParseDate(raw)
			if !ok {
				continue
			}
			stamp.Text = FormatSigningTime(t)
		case KindConditionalGlyph:
			flag, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			stamp.Kind = StampGlyph
			stamp.FontSize = 0
			stamp.Size = GlyphSize
			if !flag {
				stamp.Y += GlyphFalseOffset
			}
		default:
			continue
		}

		stamps = append(stamps, stamp)
	}

	return stamps
}
