package docmodel

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// segment is a stretch of block text tied to the formatting of the run it
// came from.
type segment struct {
	props []byte
	text  string
}

// splice replaces the byte range [start, end) of the document XML.
type splice struct {
	start int
	end   int
	data  []byte
}

// Render produces a new archive with the replacements applied. Untouched
// runs, paragraphs, and archive entries are carried over byte for byte.
// Replacements within one block must not overlap.
func (d *Document) Render(reps []Replacement) ([]byte, error) {
	newXML, err := d.renderXML(reps)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(d.source), int64(len(d.source)))
	if err != nil {
		return nil, fmt.Errorf("reopening archive: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		hdr := f.FileHeader
		w, err := zw.CreateHeader(&hdr)
		if err != nil {
			return nil, fmt.Errorf("writing archive entry %s: %w", f.Name, err)
		}
		if f.Name == d.docPath {
			if _, err := w.Write(newXML); err != nil {
				return nil, fmt.Errorf("writing %s: %w", d.docPath, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("copying archive entry %s: %w", f.Name, err)
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("copying archive entry %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) renderXML(reps []Replacement) ([]byte, error) {
	byBlock := make(map[int][]Replacement)
	for _, r := range reps {
		if r.Block < 0 || r.Block >= len(d.Blocks) {
			return nil, fmt.Errorf("replacement block %d out of range", r.Block)
		}
		b := &d.Blocks[r.Block]
		if r.Start < 0 || r.End < r.Start || r.End > len(b.Text) {
			return nil, fmt.Errorf("replacement span [%d, %d) out of range for block %d", r.Start, r.End, r.Block)
		}
		if len(b.Runs) == 0 {
			return nil, fmt.Errorf("replacement targets block %d with no runs", r.Block)
		}
		if r.Format.Block < 0 || r.Format.Block >= len(d.Blocks) {
			return nil, fmt.Errorf("format reference block %d out of range", r.Format.Block)
		}
		fb := &d.Blocks[r.Format.Block]
		if r.Format.Run < 0 || r.Format.Run >= len(fb.Runs) {
			return nil, fmt.Errorf("format reference run %d out of range for block %d", r.Format.Run, r.Format.Block)
		}
		byBlock[r.Block] = append(byBlock[r.Block], r)
	}

	var splices []splice
	for blockIdx, blockReps := range byBlock {
		sp, err := d.renderBlock(blockIdx, blockReps)
		if err != nil {
			return nil, err
		}
		splices = append(splices, sp)
	}

	// Back to front so earlier byte offsets stay valid as edits land.
	sort.Slice(splices, func(i, j int) bool { return splices[i].start > splices[j].start })

	out := d.docXML
	for _, sp := range splices {
		patched := make([]byte, 0, len(out)-(sp.end-sp.start)+len(sp.data))
		patched = append(patched, out[:sp.start]...)
		patched = append(patched, sp.data...)
		patched = append(patched, out[sp.end:]...)
		out = patched
	}
	return out, nil
}

// renderBlock rebuilds the run range touched by the block's replacements
// and returns it as a single byte splice into the document XML.
func (d *Document) renderBlock(blockIdx int, reps []Replacement) (splice, error) {
	b := &d.Blocks[blockIdx]

	// Later offsets first so each edit leaves earlier spans untouched.
	sort.Slice(reps, func(i, j int) bool { return reps[i].Start > reps[j].Start })
	for i := 1; i < len(reps); i++ {
		if reps[i].End > reps[i-1].Start {
			return splice{}, fmt.Errorf("overlapping replacements in block %d", blockIdx)
		}
	}

	first, last := len(b.Runs)-1, 0
	for _, r := range reps {
		if lo := b.RunAt(r.Start); lo < first {
			first = lo
		}
		end := r.End
		if end > r.Start {
			end--
		}
		if hi := b.RunAt(end); hi > last {
			last = hi
		}
	}
	if first > last {
		first, last = last, first
	}

	segs := make([]segment, 0, last-first+1)
	for i := first; i <= last; i++ {
		segs = append(segs, segment{props: b.Runs[i].Props, text: b.Runs[i].Text})
	}
	base := b.Runs[first].TextStart

	for _, r := range reps {
		fb := &d.Blocks[r.Format.Block]
		repl := segment{props: fb.Runs[r.Format.Run].Props, text: r.Value}
		segs = spliceSegments(segs, r.Start-base, r.End-base, repl)
	}

	var buf bytes.Buffer
	for _, s := range segs {
		if s.text == "" {
			continue
		}
		writeRun(&buf, s)
	}
	return splice{start: b.Runs[first].Start, end: b.Runs[last].End, data: buf.Bytes()}, nil
}

// spliceSegments replaces the text span [start, end) of the segment list
// with repl, splitting edge segments so their own formatting survives.
func spliceSegments(segs []segment, start, end int, repl segment) []segment {
	out := make([]segment, 0, len(segs)+2)
	pos := 0
	inserted := false
	for _, s := range segs {
		segStart := pos
		segEnd := pos + len(s.text)
		pos = segEnd

		switch {
		case segEnd <= start:
			out = append(out, s)
		case segStart >= end:
			if !inserted {
				out = append(out, repl)
				inserted = true
			}
			out = append(out, s)
		default:
			if segStart < start {
				out = append(out, segment{props: s.props, text: s.text[:start-segStart]})
			}
			if !inserted {
				out = append(out, repl)
				inserted = true
			}
			if segEnd > end {
				out = append(out, segment{props: s.props, text: s.text[end-segStart:]})
			}
		}
	}
	if !inserted {
		out = append(out, repl)
	}
	return out
}

// writeRun emits one run element. Tabs and line breaks inside the text are
// restored to their element forms.
func writeRun(buf *bytes.Buffer, s segment) {
	buf.WriteString("<w:r>")
	buf.Write(s.props)
	rest := s.text
	for rest != "" {
		i := strings.IndexAny(rest, "\t\n")
		if i < 0 {
			writeText(buf, rest)
			break
		}
		if i > 0 {
			writeText(buf, rest[:i])
		}
		if rest[i] == '\t' {
			buf.WriteString("<w:tab/>")
		} else {
			buf.WriteString("<w:br/>")
		}
		rest = rest[i+1:]
	}
	buf.WriteString("</w:r>")
}

func writeText(buf *bytes.Buffer, text string) {
	buf.WriteString(`<w:t xml:space="preserve">`)
	xml.EscapeText(buf, []byte(text))
	buf.WriteString("</w:t>")
}
