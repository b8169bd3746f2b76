package assembly

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/digitorus/pdf"
)

const maxTreeDepth = 32

// Template is a parsed certificate form. Only the first page is used.
type Template struct {
	raw     []byte
	trailer pdf.Value
	page    pdf.Value

	// MediaBox of the first page, inherited through the page tree.
	MediaBox [4]float64

	size       int64
	startxref  int64
	xrefStream bool
}

// ParseTemplate checks that raw is an unencrypted PDF with at least one page.
func ParseTemplate(raw []byte) (t *Template, err error) {
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = loadError("malformed document", fmt.Errorf("%v", r))
		}
	}()

	if len(raw) == 0 {
		return nil, loadError("empty template", nil)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		return nil, loadError("missing PDF header", nil)
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, loadError("unreadable document", err)
	}

	trailer := reader.Trailer()
	if !trailer.Key("Encrypt").IsNull() {
		return nil, loadError("encrypted documents are not supported", nil)
	}
	if trailer.Key("Root").Kind() != pdf.Dict {
		return nil, loadError("document has no catalog", nil)
	}

	if reader.NumPage() < 1 {
		return nil, loadError("document has no pages", nil)
	}
	page := reader.Page(1).V
	if page.Kind() != pdf.Dict || refOf(page).id == 0 {
		return nil, loadError("first page is not an indirect dictionary", nil)
	}

	box := inherited(page, "MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return nil, loadError("first page has no media box", nil)
	}

	t = &Template{
		raw:     raw,
		trailer: trailer,
		page:    page,
	}
	for i := range t.MediaBox {
		v, ok := number(box.Index(i))
		if !ok {
			return nil, loadError("media box is not numeric", nil)
		}
		t.MediaBox[i] = v
	}
	if t.Height() <= 0 || t.Width() <= 0 {
		return nil, loadError("media box is empty", nil)
	}

	t.size = trailer.Key("Size").Int64()
	if t.size <= 0 {
		return nil, loadError("trailer has no size", nil)
	}

	t.startxref, err = lastStartXref(raw)
	if err != nil {
		return nil, loadError("cannot locate cross-reference section", err)
	}
	section := bytes.TrimLeft(raw[t.startxref:], " \t\r\n")
	t.xrefStream = !bytes.HasPrefix(section, []byte("xref"))

	return t, nil
}

func (t *Template) Width() float64 {
	return t.MediaBox[2] - t.MediaBox[0]
}

func (t *Template) Height() float64 {
	return t.MediaBox[3] - t.MediaBox[1]
}

// inherited looks up an inheritable page attribute, walking up /Parent.
func inherited(page pdf.Value, key string) pdf.Value {
	v := page
	for i := 0; i < maxTreeDepth && v.Kind() == pdf.Dict; i++ {
		if attr := v.Key(key); !attr.IsNull() {
			return attr
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

func number(v pdf.Value) (float64, bool) {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64()), true
	case pdf.Real:
		return v.Float64(), true
	}
	return 0, false
}

func lastStartXref(raw []byte) (int64, error) {
	idx := bytes.LastIndex(raw, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}

	rest := bytes.TrimLeft(raw[idx+len("startxref"):], " \t\r\n")
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}

	pos, err := strconv.ParseInt(string(rest[:end]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref offset: %w", err)
	}
	if pos <= 0 || pos >= int64(len(raw)) {
		return 0, fmt.Errorf("startxref offset %d out of range", pos)
	}
	return pos, nil
}
