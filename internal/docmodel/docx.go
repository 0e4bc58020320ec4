package docmodel

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"docfill/internal/domain"
)

const documentPath = "word/document.xml"

// Parse reads a .docx archive into a Document. The input bytes are never
// modified; rendering always produces a fresh copy.
func Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening archive: %v", domain.ErrMalformedDocument, err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != documentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrMalformedDocument, documentPath, err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrMalformedDocument, documentPath, err)
		}
		break
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrMalformedDocument, documentPath)
	}

	blocks, err := parseBlocks(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrMalformedDocument, documentPath, err)
	}

	return &Document{
		source:  data,
		docXML:  docXML,
		docPath: documentPath,
		Blocks:  blocks,
	}, nil
}

// parseBlocks walks the document XML once, recording byte spans for every
// paragraph and run so rendering can splice edits into the original markup.
func parseBlocks(docXML []byte) ([]Block, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var blocks []Block
	var cur *Block
	var run *Run
	inText := false

	for {
		prev := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if cur == nil {
					blocks = append(blocks, Block{Start: int(prev)})
					cur = &blocks[len(blocks)-1]
				}
			case "r":
				if cur != nil && run == nil {
					run = &Run{Start: int(prev), TextStart: len(cur.Text)}
				}
			case "rPr":
				if run != nil && run.Props == nil {
					if err := dec.Skip(); err != nil {
						return nil, err
					}
					run.Props = docXML[prev:dec.InputOffset()]
				}
			case "t":
				if run != nil {
					inText = true
				}
			case "tab":
				if run != nil && !inText {
					run.Text += "\t"
				}
			case "br":
				if run != nil && !inText {
					run.Text += "\n"
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				if run != nil {
					run.End = int(dec.InputOffset())
					run.TextEnd = run.TextStart + len(run.Text)
					cur.Text += run.Text
					cur.Runs = append(cur.Runs, *run)
					run = nil
				}
			case "p":
				if cur != nil {
					cur.End = int(dec.InputOffset())
					cur = nil
				}
			}
		case xml.CharData:
			if inText && run != nil {
				run.Text += string(t)
			}
		}
	}

	return blocks, nil
}
