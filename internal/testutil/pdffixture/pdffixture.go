// Package pdffixture builds small single-page PDF files for tests.
package pdffixture

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

type Options struct {
	// XrefStream writes a cross-reference stream instead of a table.
	XrefStream bool
	// PageMediaBox puts the MediaBox on the page instead of the page tree root.
	PageMediaBox bool
	// FontName is the resource name of the page's existing font.
	FontName string
	// NoPages produces a document with an empty page tree.
	NoPages bool
	// Encrypted adds a standard security handler to the trailer.
	Encrypted bool
	// Height of the media box, 792 when zero.
	Height float64
}

// MinimalPDF returns a template with one page carrying a title line.
func MinimalPDF(opts Options) []byte {
	fontName := opts.FontName
	if fontName == "" {
		fontName = "F1"
	}
	height := opts.Height
	if height == 0 {
		height = 792
	}
	mediaBox := fmt.Sprintf("/MediaBox [0 0 612 %g]", height)

	content := fmt.Sprintf("BT /%s 12 Tf 72 720 Td (Certificate of Release) Tj ET", fontName)

	var objects []string
	if opts.NoPages {
		objects = []string{
			"<< /Type /Catalog /Pages 2 0 R >>",
			"<< /Type /Pages /Kids [] /Count 0 >>",
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
			"<< /Type /Font /Subtype /Type1 /BaseFont /Times-Roman >>",
			"<< /Producer (pdffixture) >>",
		}
	} else {
		treeBox, pageBox := mediaBox, ""
		if opts.PageMediaBox {
			treeBox, pageBox = "", " "+mediaBox
		}
		objects = []string{
			"<< /Type /Catalog /Pages 2 0 R >>",
			fmt.Sprintf("<< /Type /Pages /Kids [3 0 R] /Count 1 %s >>", treeBox),
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R%s /Resources << /Font << /%s 5 0 R >> /ProcSet [/PDF /Text] >> /Contents 4 0 R >>", pageBox, fontName),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
			"<< /Type /Font /Subtype /Type1 /BaseFont /Times-Roman >>",
			"<< /Producer (pdffixture) >>",
		}
	}

	rootRef, infoRef := 1, len(objects)
	if opts.Encrypted {
		objects = append(objects, "<< /Filter /Standard /V 1 /R 2 /O <"+repeatHex("28", 32)+"> /U <"+repeatHex("55", 32)+"> /P -44 >>")
	}
	encryptRef := len(objects)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	id := "<" + repeatHex("a1", 16) + ">"
	trailerEntries := fmt.Sprintf("/Root %d 0 R /Info %d 0 R /ID [%s %s]", rootRef, infoRef, id, id)
	if opts.Encrypted {
		trailerEntries += fmt.Sprintf(" /Encrypt %d 0 R", encryptRef)
	}

	if opts.XrefStream {
		xrefID := len(objects) + 1
		offsets = append(offsets, buf.Len())

		var rows bytes.Buffer
		rows.Write([]byte{0, 0, 0, 0, 0, 0xff, 0xff})
		for _, off := range offsets[1:] {
			rows.WriteByte(1)
			_ = binary.Write(&rows, binary.BigEndian, uint32(off))
			rows.Write([]byte{0, 0})
		}

		fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] %s /Length %d >>\nstream\n",
			xrefID, xrefID+1, trailerEntries, rows.Len())
		buf.Write(rows.Bytes())
		buf.WriteString("\nendstream\nendobj\n")
		fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", offsets[xrefID])
		return buf.Bytes()
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, trailerEntries, xrefPos)

	return buf.Bytes()
}

func repeatHex(pair string, n int) string {
	return string(bytes.Repeat([]byte(pair), n))
}
