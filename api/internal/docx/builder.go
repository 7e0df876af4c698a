package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// Twips per inch.
const Inch = 1440

// Run is a piece of text with uniform formatting. Tab emits a tab stop instead of text.
type Run struct {
	Text string
	Bold bool
	// Size in points; 0 keeps the document default.
	Size int
	Tab  bool
}

// Paragraph alignment values.
const (
	AlignLeft   = ""
	AlignCenter = "center"
	AlignRight  = "right"
)

type Paragraph struct {
	Runs  []Run
	Align string
	// Indent is the left indent in twips.
	Indent int
	// RightTab adds a right-aligned tab stop at this position (twips).
	RightTab int
}

type Cell struct {
	Paragraphs []Paragraph
	Width      int
}

// Builder assembles a minimal WordprocessingML package.
type Builder struct {
	font     string
	fontSize int
	margin   int
	body     strings.Builder
}

func NewBuilder() *Builder {
	return &Builder{font: "Calibri", fontSize: 11, margin: Inch}
}

// Font sets the default font family (all scripts) and size in points.
func (b *Builder) Font(name string, size int) *Builder {
	b.font, b.fontSize = name, size
	return b
}

// Margins sets all page margins in twips.
func (b *Builder) Margins(twips int) *Builder {
	b.margin = twips
	return b
}

func (b *Builder) Add(p Paragraph) *Builder {
	writeParagraph(&b.body, p)
	return b
}

// Text adds a plain paragraph.
func (b *Builder) Text(s string) *Builder {
	return b.Add(Paragraph{Runs: []Run{{Text: s}}})
}

// Bold adds a paragraph with one bold run.
func (b *Builder) Bold(s string) *Builder {
	return b.Add(Paragraph{Runs: []Run{{Text: s, Bold: true}}})
}

// Action adds a paragraph-level control action, e.g. Action("range $s := list (get . \"sections\")").
func (b *Builder) Action(a string) *Builder {
	return b.Text("{{p " + a + "}}")
}

func (b *Builder) Table(rows [][]Cell) *Builder {
	if len(rows) == 0 {
		return b
	}
	w := &b.body
	w.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/><w:tblLook w:val="0000"/></w:tblPr><w:tblGrid>`)
	for _, c := range rows[0] {
		fmt.Fprintf(w, `<w:gridCol w:w="%d"/>`, c.Width)
	}
	w.WriteString(`</w:tblGrid>`)
	for _, row := range rows {
		w.WriteString(`<w:tr>`)
		for _, c := range row {
			fmt.Fprintf(w, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr>`, c.Width)
			if len(c.Paragraphs) == 0 {
				w.WriteString(`<w:p/>`)
			}
			for _, p := range c.Paragraphs {
				writeParagraph(w, p)
			}
			w.WriteString(`</w:tc>`)
		}
		w.WriteString(`</w:tr>`)
	}
	w.WriteString(`</w:tbl>`)
	return b
}

func writeParagraph(w *strings.Builder, p Paragraph) {
	w.WriteString(`<w:p>`)
	if p.Align != "" || p.Indent > 0 || p.RightTab > 0 {
		w.WriteString(`<w:pPr>`)
		if p.RightTab > 0 {
			fmt.Fprintf(w, `<w:tabs><w:tab w:val="right" w:pos="%d"/></w:tabs>`, p.RightTab)
		}
		if p.Indent > 0 {
			fmt.Fprintf(w, `<w:ind w:left="%d"/>`, p.Indent)
		}
		if p.Align != "" {
			fmt.Fprintf(w, `<w:jc w:val="%s"/>`, p.Align)
		}
		w.WriteString(`</w:pPr>`)
	}
	for _, r := range p.Runs {
		w.WriteString(`<w:r>`)
		if r.Bold || r.Size > 0 {
			w.WriteString(`<w:rPr>`)
			if r.Bold {
				w.WriteString(`<w:b/><w:bCs/>`)
			}
			if r.Size > 0 {
				fmt.Fprintf(w, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.Size*2, r.Size*2)
			}
			w.WriteString(`</w:rPr>`)
		}
		if r.Tab {
			w.WriteString(`<w:tab/>`)
		} else {
			w.WriteString(`<w:t xml:space="preserve">`)
			_ = xml.EscapeText(w, []byte(r.Text))
			w.WriteString(`</w:t>`)
		}
		w.WriteString(`</w:r>`)
	}
	w.WriteString(`</w:p>`)
}

const (
	nsMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	xmlHdr = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

	contentTypes = xmlHdr + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
		`</Types>`

	packageRels = xmlHdr + `<Relationships xmlns="` + nsRels + `">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`

	documentRels = xmlHdr + `<Relationships xmlns="` + nsRels + `">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
		`</Relationships>`
)

func (b *Builder) styles() string {
	var font bytes.Buffer
	_ = xml.EscapeText(&font, []byte(b.font))
	f := font.String()
	return xmlHdr + `<w:styles xmlns:w="` + nsMain + `"><w:docDefaults><w:rPrDefault><w:rPr>` +
		fmt.Sprintf(`<w:rFonts w:ascii="%s" w:hAnsi="%s" w:eastAsia="%s" w:cs="%s"/>`, f, f, f, f) +
		fmt.Sprintf(`<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, b.fontSize*2, b.fontSize*2) +
		`</w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:after="60"/></w:pPr></w:pPrDefault></w:docDefaults>` +
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
		`</w:styles>`
}

func (b *Builder) document() string {
	return xmlHdr + `<w:document xmlns:w="` + nsMain + `"><w:body>` + b.body.String() +
		fmt.Sprintf(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`,
			b.margin, b.margin, b.margin, b.margin) +
		`</w:body></w:document>`
}

// Bytes returns the DOCX archive.
func (b *Builder) Bytes() ([]byte, error) {
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", packageRels},
		{"word/_rels/document.xml.rels", documentRels},
		{"word/styles.xml", b.styles()},
		{"word/document.xml", b.document()},
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the archive to path.
func (b *Builder) WriteFile(path string) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
