// Package docmodel parses word processing documents into addressable text
// blocks and renders position-exact replacements back into them without
// disturbing untouched content.
package docmodel

import "docfill/internal/domain"

// Run is a contiguous span of identically formatted text inside a block.
// Byte offsets address the raw document XML so rendering can splice edits
// around untouched markup.
type Run struct {
	// Start and End delimit the run element in the document XML.
	Start int
	End   int
	// Props is the raw formatting element of the run, empty when the run
	// carries no explicit formatting.
	Props []byte
	// Text is the decoded text content. Tabs and line breaks appear as
	// "\t" and "\n".
	Text string
	// TextStart and TextEnd delimit the run's text within the block text.
	TextStart int
	TextEnd   int
}

// Block is one paragraph of the document.
type Block struct {
	// Start and End delimit the paragraph element in the document XML.
	Start int
	End   int
	Runs  []Run
	// Text is the concatenation of all run texts.
	Text string
}

// RunAt returns the index of the run containing the character offset, or
// the last run when the offset sits at the end of the block.
func (b *Block) RunAt(offset int) int {
	for i, r := range b.Runs {
		if offset >= r.TextStart && offset < r.TextEnd {
			return i
		}
	}
	if n := len(b.Runs); n > 0 {
		return n - 1
	}
	return 0
}

// Document is a parsed word processing document. The original bytes are
// retained so rendering can copy every untouched archive entry verbatim.
type Document struct {
	source  []byte
	docXML  []byte
	docPath string
	Blocks  []Block
}

// Text returns the full plain text of the document, blocks joined with
// newlines.
func (d *Document) Text() string {
	if len(d.Blocks) == 0 {
		return ""
	}
	n := len(d.Blocks) - 1
	for _, b := range d.Blocks {
		n += len(b.Text)
	}
	buf := make([]byte, 0, n)
	for i, b := range d.Blocks {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, b.Text...)
	}
	return string(buf)
}

// Replacement substitutes the text span [Start, End) of a block with Value,
// formatted like the run identified by Format.
type Replacement struct {
	Block  int
	Start  int
	End    int
	Value  string
	Format domain.RunRef
}
