package compose

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// cell is one styled table cell for the document writer.
type cell struct {
	text  string
	fill  string // hex shading color, "" for none
	bold  bool
	color string // hex font color, "" for automatic
}

// docWriter accumulates WordprocessingML body content and zips it into
// a minimal but valid .docx package. Only the features the composed
// report needs are supported: headings, paragraphs and shaded tables.
type docWriter struct {
	body bytes.Buffer
}

func escape(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails on a failing writer; bytes.Buffer never does.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// heading writes a styled heading paragraph (level 1-3).
func (w *docWriter) heading(level int, text string) {
	fmt.Fprintf(&w.body,
		`<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		level, escape(text))
}

// paragraph writes a plain body paragraph.
func (w *docWriter) paragraph(text string) {
	fmt.Fprintf(&w.body,
		`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		escape(text))
}

// table writes a bordered table; row zero is styled as the header.
func (w *docWriter) table(rows [][]cell) {
	w.body.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4"/><w:left w:val="single" w:sz="4"/>` +
		`<w:bottom w:val="single" w:sz="4"/><w:right w:val="single" w:sz="4"/>` +
		`<w:insideH w:val="single" w:sz="4"/><w:insideV w:val="single" w:sz="4"/>` +
		`</w:tblBorders></w:tblPr>`)
	for _, row := range rows {
		w.body.WriteString("<w:tr>")
		for _, c := range row {
			w.body.WriteString("<w:tc><w:tcPr>")
			if c.fill != "" {
				fmt.Fprintf(&w.body, `<w:shd w:val="clear" w:fill="%s"/>`, c.fill)
			}
			w.body.WriteString("</w:tcPr><w:p><w:r><w:rPr>")
			if c.bold {
				w.body.WriteString("<w:b/>")
			}
			if c.color != "" {
				fmt.Fprintf(&w.body, `<w:color w:val="%s"/>`, c.color)
			}
			fmt.Fprintf(&w.body, `</w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:tc>`,
				escape(c.text))
		}
		w.body.WriteString("</w:tr>")
	}
	w.body.WriteString("</w:tbl>")
}

// save zips the accumulated body into a .docx package at path.
func (w *docWriter) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	zw := zip.NewWriter(f)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", w.documentXML()},
	}
	for _, part := range parts {
		pw, err := zw.Create(part.name)
		if err != nil {
			zw.Close()
			f.Close()
			return fmt.Errorf("failed to create %s: %w", part.name, err)
		}
		if _, err := pw.Write([]byte(part.content)); err != nil {
			zw.Close()
			f.Close()
			return fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return f.Close()
}

func (w *docWriter) documentXML() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	sb.Write(w.body.Bytes())
	sb.WriteString(`<w:sectPr/></w:body></w:document>`)
	return sb.String()
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:pPr><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="28"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:pPr><w:outlineLvl w:val="2"/></w:pPr><w:rPr><w:b/><w:sz w:val="24"/></w:rPr></w:style>
</w:styles>`
