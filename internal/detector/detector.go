// Package detector locates placeholder sites in parsed documents. Explicit
// delimiter syntax and implicit label blanks run as separate passes, with
// explicit matches winning whenever spans overlap.
package detector

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"docfill/internal/docmodel"
	"docfill/internal/domain"
)

// contextRadius is how many bytes of surrounding block text accompany each
// occurrence.
const contextRadius = 100

const inner = `[a-zA-Z0-9_\s,.\-/():;&'@#%+?!=]+?`

// innerTight is inner without whitespace. Underscore delimiters are too
// weak to bridge whitespace: allowing it would fuse separate blanks on
// one line into a single match.
const innerTight = `[a-zA-Z0-9_,.\-/():;&'@#%+?!=]+?`

// explicitPatterns are tried in order. Earlier kinds claim their spans
// first, so "__x__" never doubles as "_x_".
var explicitPatterns = []struct {
	kind domain.DetectionKind
	re   *regexp.Regexp
}{
	{domain.KindDoubleUnderscore, regexp.MustCompile(`__(` + innerTight + `)__`)},
	{domain.KindUnderscore, regexp.MustCompile(`_(` + innerTight + `)_`)},
	{domain.KindBracket, regexp.MustCompile(`\[(` + inner + `)\]`)},
	{domain.KindCurly, regexp.MustCompile(`\{(` + inner + `)\}`)},
	{domain.KindDoubleCurly, regexp.MustCompile(`\{\{(` + inner + `)\}\}`)},
	{domain.KindAngle, regexp.MustCompile(`<(` + inner + `)>`)},
}

// blankFieldRe matches a label whose value area is a row of underscores,
// for example "Tenant: ___". The replacement span covers the underscores
// only so the label survives filling.
var blankFieldRe = regexp.MustCompile(`([A-Z][a-zA-Z ]*?):[ \t]+(_{2,})`)

// trailingLabelRe matches a label with nothing after the colon before the
// line ends. Multiline mode: a block may hold several lines because soft
// breaks decode to "\n". The fill span is a zero-width insertion point.
var trailingLabelRe = regexp.MustCompile(`(?m)([A-Z][a-zA-Z ]*?):[ \t]*$`)

// Detect scans every block of the document and returns occurrences in
// document order.
func Detect(doc *docmodel.Document) []domain.Occurrence {
	var all []domain.Occurrence
	for i := range doc.Blocks {
		all = append(all, detectBlock(doc, i)...)
	}
	return all
}

func detectBlock(doc *docmodel.Document, blockIdx int) []domain.Occurrence {
	b := &doc.Blocks[blockIdx]
	text := b.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var occs []domain.Occurrence
	var claimed []span

	for _, p := range explicitPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			s := span{m[0], m[1]}
			if overlapsAny(claimed, s) {
				continue
			}
			claimed = append(claimed, s)
			occs = append(occs, occurrence(b, blockIdx, s.start, s.end, text[m[0]:m[1]], text[m[2]:m[3]], p.kind))
		}
	}

	for _, m := range blankFieldRe.FindAllStringSubmatchIndex(text, -1) {
		s := span{m[4], m[5]}
		if overlapsAny(claimed, s) {
			continue
		}
		claimed = append(claimed, s)
		occs = append(occs, occurrence(b, blockIdx, s.start, s.end, text[m[4]:m[5]], text[m[2]:m[3]], domain.KindBlankField))
	}

	for _, m := range trailingLabelRe.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(claimed, span{m[0], m[1]}) {
			continue
		}
		claimed = append(claimed, span{m[0], m[1]})
		occs = append(occs, occurrence(b, blockIdx, m[1], m[1], text[m[0]:m[1]], text[m[2]:m[3]], domain.KindBlankField))
	}

	sort.SliceStable(occs, func(i, j int) bool { return occs[i].CharOffset < occs[j].CharOffset })
	return occs
}

func occurrence(b *docmodel.Block, blockIdx, start, end int, raw, name string, kind domain.DetectionKind) domain.Occurrence {
	return domain.Occurrence{
		RawText:    raw,
		Name:       strings.TrimSpace(name),
		Kind:       kind,
		BlockIndex: blockIdx,
		CharOffset: start,
		EndOffset:  end,
		FormatRef:  domain.RunRef{Block: blockIdx, Run: b.RunAt(start)},
		Context:    contextAround(b.Text, start, end),
	}
}

type span struct{ start, end int }

func overlapsAny(claimed []span, s span) bool {
	for _, c := range claimed {
		if s.start < c.end && c.start < s.end {
			return true
		}
	}
	return false
}

// contextAround trims to rune boundaries so multibyte text never splits.
func contextAround(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}
