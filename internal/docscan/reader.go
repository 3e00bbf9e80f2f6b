// Package docscan walks the tables of a raw word-processor document and
// classifies what it finds into a stream of events: parameter lines,
// section markers and data rows. It is a pure read over the document;
// building the measurement hierarchy from the events belongs to the
// extractor.
package docscan

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	pipeerrors "emicli/internal/errors"
)

// BlockKind distinguishes the two structures read from a document body.
type BlockKind int

const (
	// BlockParagraph is free-standing paragraph text between tables.
	BlockParagraph BlockKind = iota
	// BlockTable is one table as an ordered sequence of cell-text rows.
	BlockTable
)

// Block is one body-level element of the source document, in document
// order. Tables carry Rows; paragraphs carry Text.
type Block struct {
	Kind BlockKind
	Text string
	Rows [][]string
}

// ReadBlocks opens a .docx file and returns its body as an ordered
// sequence of paragraph and table blocks. The document XML is streamed
// token by token; only textual content and table structure are kept.
// Any failure to open or parse the archive is a DocumentFormatError.
func ReadBlocks(path string) ([]Block, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, pipeerrors.NewDocumentFormatError(path, fmt.Errorf("opening archive: %w", err))
	}
	defer zr.Close()

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, pipeerrors.NewDocumentFormatError(path, fmt.Errorf("word/document.xml not found in archive"))
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, pipeerrors.NewDocumentFormatError(path, fmt.Errorf("opening document.xml: %w", err))
	}
	defer rc.Close()

	blocks, err := parseBody(rc)
	if err != nil {
		return nil, pipeerrors.NewDocumentFormatError(path, err)
	}
	return blocks, nil
}

// parseBody walks the WordprocessingML token stream. Tables nest cells,
// cells nest paragraphs, so a small stack of states tracks where text
// should accumulate. Nested tables are flattened into their parent cell.
func parseBody(r io.Reader) ([]Block, error) {
	decoder := xml.NewDecoder(r)

	var blocks []Block

	var tableDepth int
	var rows [][]string
	var cells []string
	var cellText strings.Builder
	var inCell bool

	var paraText strings.Builder
	var inPara bool

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					rows = nil
				}
			case "tr":
				if tableDepth == 1 {
					cells = nil
				}
			case "tc":
				if tableDepth == 1 {
					inCell = true
					cellText.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inPara = true
					paraText.Reset()
				} else if inCell && cellText.Len() > 0 {
					// Paragraph break inside a cell reads as a space.
					cellText.WriteByte(' ')
				}
			}

		case xml.CharData:
			if inCell {
				cellText.Write(t)
			} else if inPara {
				paraText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth == 1 && len(rows) > 0 {
					blocks = append(blocks, Block{Kind: BlockTable, Rows: rows})
				}
				tableDepth--
			case "tr":
				if tableDepth == 1 && len(cells) > 0 {
					rows = append(rows, cells)
				}
			case "tc":
				if tableDepth == 1 {
					cells = append(cells, cellText.String())
					inCell = false
				}
			case "p":
				if tableDepth == 0 && inPara {
					if text := strings.TrimSpace(paraText.String()); text != "" {
						blocks = append(blocks, Block{Kind: BlockParagraph, Text: text})
					}
					inPara = false
				}
			}
		}
	}

	return blocks, nil
}
