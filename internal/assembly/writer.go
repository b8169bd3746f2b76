package assembly

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
)

type object struct {
	ref  ref
	body []byte
}

func streamObject(dict string, data []byte) []byte {
	var b bytes.Buffer
	b.WriteString("<<")
	if dict != "" {
		b.WriteString(" " + dict)
	}
	b.WriteString(" /Length " + strconv.Itoa(len(data)) + " >>\nstream\n")
	b.Write(data)
	b.WriteString("\nendstream")
	return b.Bytes()
}

// update appends new and replaced objects to the template as an incremental
// update section. Object ids below the template's /Size replace existing
// objects.
type update struct {
	tmpl    *Template
	nextID  uint32
	objects []object
}

func newUpdate(t *Template) *update {
	return &update{tmpl: t, nextID: uint32(t.size)}
}

func (u *update) allocate() ref {
	r := ref{id: u.nextID}
	u.nextID++
	return r
}

func (u *update) put(r ref, body []byte) {
	u.objects = append(u.objects, object{ref: r, body: body})
}

type xrefEntry struct {
	ref    ref
	offset int64
}

func (u *update) bytes() ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(u.tmpl.raw) + 4096)
	out.Write(u.tmpl.raw)
	if last := u.tmpl.raw[len(u.tmpl.raw)-1]; last != '\n' && last != '\r' {
		out.WriteByte('\n')
	}

	objects := append([]object(nil), u.objects...)
	sort.Slice(objects, func(i, j int) bool { return objects[i].ref.id < objects[j].ref.id })

	entries := make([]xrefEntry, 0, len(objects)+1)
	for _, o := range objects {
		entries = append(entries, xrefEntry{ref: o.ref, offset: int64(out.Len())})
		fmt.Fprintf(&out, "%d %d obj\n", o.ref.id, o.ref.gen)
		out.Write(o.body)
		out.WriteString("\nendobj\n")
	}

	trailer, err := u.trailerEntries()
	if err != nil {
		return nil, err
	}

	if u.tmpl.xrefStream {
		u.writeXrefStream(&out, entries, trailer)
	} else {
		u.writeXrefTable(&out, entries, trailer)
	}
	return out.Bytes(), nil
}

// trailerEntries carries /Root, /Info and /ID forward and links the
// previous cross-reference section.
func (u *update) trailerEntries() (string, error) {
	var b bytes.Buffer
	src := u.tmpl.trailer

	for _, key := range []string{"Root", "Info", "ID"} {
		v := src.Key(key)
		if v.IsNull() {
			continue
		}
		b.WriteByte(' ')
		writeName(&b, key)
		b.WriteByte(' ')
		if err := writeValue(&b, v, src); err != nil {
			return "", fmt.Errorf("trailer %s: %w", key, err)
		}
	}
	b.WriteString(" /Prev " + strconv.FormatInt(u.tmpl.startxref, 10))
	return b.String(), nil
}

// subsections groups sorted entries into runs of consecutive object ids.
func subsections(entries []xrefEntry) [][]xrefEntry {
	var runs [][]xrefEntry
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i == len(entries) || entries[i].ref.id != entries[i-1].ref.id+1 {
			runs = append(runs, entries[start:i])
			start = i
		}
	}
	return runs
}

func (u *update) writeXrefTable(out *bytes.Buffer, entries []xrefEntry, trailer string) {
	xrefPos := out.Len()
	out.WriteString("xref\n")
	for _, run := range subsections(entries) {
		fmt.Fprintf(out, "%d %d\n", run[0].ref.id, len(run))
		for _, e := range run {
			fmt.Fprintf(out, "%010d %05d n\r\n", e.offset, e.ref.gen)
		}
	}
	fmt.Fprintf(out, "trailer\n<< /Size %d%s >>\n", u.nextID, trailer)
	fmt.Fprintf(out, "startxref\n%d\n%%%%EOF\n", xrefPos)
}

func (u *update) writeXrefStream(out *bytes.Buffer, entries []xrefEntry, trailer string) {
	self := u.allocate()
	xrefPos := int64(out.Len())
	entries = append(entries, xrefEntry{ref: self, offset: xrefPos})

	var index bytes.Buffer
	var rows bytes.Buffer
	for i, run := range subsections(entries) {
		if i > 0 {
			index.WriteByte(' ')
		}
		fmt.Fprintf(&index, "%d %d", run[0].ref.id, len(run))
		for _, e := range run {
			rows.WriteByte(1)
			_ = binary.Write(&rows, binary.BigEndian, uint32(e.offset))
			_ = binary.Write(&rows, binary.BigEndian, e.ref.gen)
		}
	}

	dict := fmt.Sprintf("/Type /XRef /Size %d /W [1 4 2] /Index [%s]%s", u.nextID, index.String(), trailer)
	fmt.Fprintf(out, "%d %d obj\n", self.id, self.gen)
	out.Write(streamObject(dict, rows.Bytes()))
	out.WriteString("\nendobj\n")
	fmt.Fprintf(out, "startxref\n%d\n%%%%EOF\n", xrefPos)
}
