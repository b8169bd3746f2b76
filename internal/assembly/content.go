package assembly

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"batch-release/internal/fieldmap"
)

const lineHeightFactor = 1.2

// encodeText maps s to WinAnsi bytes. Runes the standard fonts cannot show
// become '?'.
func encodeText(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// buildOverlay produces the content stream that draws stamps on top of the
// original page content.
func buildOverlay(stamps []fieldmap.Stamp, fontName, imageName string, origin [2]float64) []byte {
	var b bytes.Buffer

	b.WriteString("q\n")
	if origin[0] != 0 || origin[1] != 0 {
		b.WriteString("1 0 0 1 " + formatNumber(origin[0]) + " " + formatNumber(origin[1]) + " cm\n")
	}
	b.WriteString("0 g\n")

	for _, s := range stamps {
		switch s.Kind {
		case fieldmap.StampText:
			writeText(&b, s, fontName)
		case fieldmap.StampGlyph:
			b.WriteString("q " + formatNumber(s.Size) + " 0 0 " + formatNumber(s.Size) + " ")
			b.WriteString(formatNumber(s.X) + " " + formatNumber(s.Y) + " cm ")
			writeName(&b, imageName)
			b.WriteString(" Do Q\n")
		}
	}

	b.WriteString("Q\n")
	return b.Bytes()
}

func writeText(b *bytes.Buffer, s fieldmap.Stamp, fontName string) {
	lines := splitLines(s.Text)

	b.WriteString("BT ")
	writeName(b, fontName)
	b.WriteString(" " + formatNumber(s.FontSize) + " Tf ")
	if len(lines) > 1 {
		b.WriteString(formatNumber(s.FontSize*lineHeightFactor) + " TL ")
	}
	b.WriteString(formatNumber(s.X) + " " + formatNumber(s.Y) + " Td ")

	for i, line := range lines {
		if i > 0 {
			b.WriteString(" T* ")
		}
		writeLiteralString(b, encodeText(line))
		b.WriteString(" Tj")
	}
	b.WriteString(" ET\n")
}
