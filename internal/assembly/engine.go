// Package assembly stamps certificate values onto the first page of a PDF
// template. The output is the unchanged template followed by one
// incremental update, so the same inputs always give the same bytes.
package assembly

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/digitorus/pdf"

	"batch-release/internal/fieldmap"
)

const (
	fontPrefix  = "BRF"
	imagePrefix = "BRIm"
)

const helvetica = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Render parses template and stamps values at placements.
func (e *Engine) Render(template []byte, values map[string]string, placements fieldmap.Map) ([]byte, error) {
	t, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	return e.RenderTemplate(t, values, placements)
}

// RenderTemplate stamps values onto an already parsed template.
func (e *Engine) RenderTemplate(t *Template, values map[string]string, placements fieldmap.Map) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = loadError("malformed document", fmt.Errorf("%v", r))
		}
	}()

	stamps := fieldmap.Layout(values, placements, t.Height())

	var hasText, hasGlyph bool
	for _, s := range stamps {
		switch s.Kind {
		case fieldmap.StampText:
			hasText = true
		case fieldmap.StampGlyph:
			hasGlyph = true
		}
	}

	u := newUpdate(t)
	resources := inherited(t.page, "Resources")

	saveRef, restoreRef, overlayRef := u.allocate(), u.allocate(), u.allocate()

	var fontName, imageName string
	var fontRef, imageRef ref
	if hasText {
		fontName = uniqueName(resources.Key("Font"), fontPrefix)
		fontRef = u.allocate()
		u.put(fontRef, []byte(helvetica))
	}
	if hasGlyph {
		imageName = uniqueName(resources.Key("XObject"), imagePrefix)
		imageRef = u.allocate()
		maskRef := u.allocate()
		glyph := checkmark()
		u.put(maskRef, streamObject(imageDict(), glyph.alpha))
		u.put(imageRef, streamObject(imageDict()+" /SMask "+maskRef.String(), glyph.color))
	}

	u.put(saveRef, streamObject("", []byte("q\n")))
	u.put(restoreRef, streamObject("", []byte("Q\n")))
	u.put(overlayRef, streamObject("", buildOverlay(stamps, fontName, imageName, [2]float64{t.MediaBox[0], t.MediaBox[1]})))

	page, err := rewritePage(t, resources, pageParts{
		save:      saveRef,
		restore:   restoreRef,
		overlay:   overlayRef,
		fontName:  fontName,
		font:      fontRef,
		imageName: imageName,
		image:     imageRef,
	})
	if err != nil {
		return nil, loadError("cannot rewrite first page", err)
	}
	u.put(refOf(t.page), page)

	out, err = u.bytes()
	if err != nil {
		return nil, loadError("cannot write update", err)
	}
	return out, nil
}

func imageDict() string {
	n := strconv.Itoa(glyphPixels)
	return "/Type /XObject /Subtype /Image /Width " + n + " /Height " + n +
		" /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode"
}

// uniqueName returns the first prefixN not already used in dict.
func uniqueName(dict pdf.Value, prefix string) string {
	for i := 1; ; i++ {
		name := prefix + strconv.Itoa(i)
		if dict.Key(name).IsNull() {
			return name
		}
	}
}

type namedRef struct {
	name string
	ref  ref
}

type pageParts struct {
	save, restore, overlay ref
	fontName               string
	font                   ref
	imageName              string
	image                  ref
}

// rewritePage writes a replacement for the first page. The original content
// is wrapped in q/Q so its graphics state cannot leak into the overlay.
func rewritePage(t *Template, resources pdf.Value, parts pageParts) ([]byte, error) {
	entries := map[string][]byte{}

	for _, key := range sortedKeys(t.page) {
		switch key {
		case "Contents", "Resources", "MediaBox":
			continue
		}
		var b bytes.Buffer
		if err := writeValue(&b, t.page.Key(key), t.page); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		entries[key] = b.Bytes()
	}

	var contents bytes.Buffer
	contents.WriteString("[" + parts.save.String())
	original := t.page.Key("Contents")
	switch original.Kind() {
	case pdf.Stream:
		contents.WriteString(" " + refOf(original).String())
	case pdf.Array:
		for i := 0; i < original.Len(); i++ {
			item := original.Index(i)
			if item.Kind() != pdf.Stream {
				return nil, fmt.Errorf("contents entry %d is not a stream", i)
			}
			contents.WriteString(" " + refOf(item).String())
		}
	case pdf.Null:
	default:
		return nil, fmt.Errorf("unexpected contents kind %v", original.Kind())
	}
	contents.WriteString(" " + parts.restore.String() + " " + parts.overlay.String() + "]")
	entries["Contents"] = contents.Bytes()

	var box bytes.Buffer
	box.WriteByte('[')
	for i, v := range t.MediaBox {
		if i > 0 {
			box.WriteByte(' ')
		}
		box.WriteString(formatNumber(v))
	}
	box.WriteByte(']')
	entries["MediaBox"] = box.Bytes()

	res, err := mergeResources(resources, parts)
	if err != nil {
		return nil, fmt.Errorf("resources: %w", err)
	}
	entries["Resources"] = res

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b bytes.Buffer
	b.WriteString("<<")
	for _, k := range keys {
		b.WriteByte(' ')
		writeName(&b, k)
		b.WriteByte(' ')
		b.Write(entries[k])
	}
	b.WriteString(" >>")
	return b.Bytes(), nil
}

// mergeResources copies the page resources inline and adds the stamp font
// and checkmark image under fresh names.
func mergeResources(resources pdf.Value, parts pageParts) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("<<")

	keys := []string{}
	if resources.Kind() == pdf.Dict {
		keys = sortedKeys(resources)
	}
	hasKey := func(k string) bool {
		for _, key := range keys {
			if key == k {
				return true
			}
		}
		return false
	}

	added := map[string]namedRef{}
	if parts.fontName != "" {
		added["Font"] = namedRef{name: parts.fontName, ref: parts.font}
	}
	if parts.imageName != "" {
		added["XObject"] = namedRef{name: parts.imageName, ref: parts.image}
	}

	for _, k := range []string{"Font", "XObject"} {
		if _, ok := added[k]; ok && !hasKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		b.WriteByte(' ')
		writeName(&b, key)
		b.WriteByte(' ')

		extra, ok := added[key]
		if !ok {
			if err := writeValue(&b, resources.Key(key), resources); err != nil {
				return nil, err
			}
			continue
		}

		sub := resources.Key(key)
		b.WriteString("<<")
		if sub.Kind() == pdf.Dict {
			for _, name := range sortedKeys(sub) {
				b.WriteByte(' ')
				writeName(&b, name)
				b.WriteByte(' ')
				if err := writeValue(&b, sub.Key(name), sub); err != nil {
					return nil, err
				}
			}
		}
		b.WriteByte(' ')
		writeName(&b, extra.name)
		b.WriteString(" " + extra.ref.String() + " >>")
	}

	b.WriteString(" >>")
	return b.Bytes(), nil
}
