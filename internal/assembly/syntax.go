package assembly

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/digitorus/pdf"
)

const maxValueDepth = 64

type ref struct {
	id  uint32
	gen uint16
}

func (r ref) String() string {
	return fmt.Sprintf("%d %d R", r.id, r.gen)
}

func refOf(v pdf.Value) ref {
	ptr := v.GetPtr()
	return ref{id: ptr.GetID(), gen: ptr.GetGen()}
}

// isIndirect reports whether child was reached through a reference rather
// than stored inline in parent.
func isIndirect(child, parent pdf.Value) bool {
	c, p := refOf(child), refOf(parent)
	return c.id != 0 && c != p
}

// writeValue serialises v as it appears inside parent, keeping references
// to indirect objects as references.
func writeValue(b *bytes.Buffer, v, parent pdf.Value) error {
	return writeValueDepth(b, v, parent, 0)
}

func writeValueDepth(b *bytes.Buffer, v, parent pdf.Value, depth int) error {
	if depth > maxValueDepth {
		return fmt.Errorf("object nesting exceeds %d levels", maxValueDepth)
	}
	if v.Kind() != pdf.Null && isIndirect(v, parent) {
		b.WriteString(refOf(v).String())
		return nil
	}

	switch v.Kind() {
	case pdf.Null:
		b.WriteString("null")
	case pdf.Bool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case pdf.Integer:
		b.WriteString(strconv.FormatInt(v.Int64(), 10))
	case pdf.Real:
		b.WriteString(formatNumber(v.Float64()))
	case pdf.String:
		writeHexString(b, []byte(v.RawString()))
	case pdf.Name:
		writeName(b, v.Name())
	case pdf.Array:
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			if err := writeValueDepth(b, v.Index(i), v, depth+1); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case pdf.Dict:
		b.WriteString("<<")
		for _, key := range sortedKeys(v) {
			b.WriteByte(' ')
			writeName(b, key)
			b.WriteByte(' ')
			if err := writeValueDepth(b, v.Key(key), v, depth+1); err != nil {
				return err
			}
		}
		b.WriteString(" >>")
	case pdf.Stream:
		return fmt.Errorf("stream stored inline")
	default:
		return fmt.Errorf("unsupported object kind %v", v.Kind())
	}
	return nil
}

func sortedKeys(v pdf.Value) []string {
	keys := append([]string(nil), v.Keys()...)
	sort.Strings(keys)
	return keys
}

func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

func writeName(b *bytes.Buffer, name string) {
	b.WriteByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x21 || c > 0x7e || bytes.IndexByte([]byte("#()<>[]{}/%"), c) >= 0 {
			fmt.Fprintf(b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
}

func writeHexString(b *bytes.Buffer, s []byte) {
	b.WriteByte('<')
	b.WriteString(hex.EncodeToString(s))
	b.WriteByte('>')
}

// writeLiteralString writes already encoded bytes as a PDF literal string.
func writeLiteralString(b *bytes.Buffer, s []byte) {
	b.WriteByte('(')
	for _, c := range s {
		switch {
		case c == '\\' || c == '(' || c == ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
}
