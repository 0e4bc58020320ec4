// Package filler writes resolved values back into a parsed document. The
// source document is never mutated; every fill renders a fresh artifact.
package filler

import (
	"log"
	"strings"

	"docfill/internal/docmodel"
	"docfill/internal/domain"
)

// Fill replaces every occurrence of every field that has a resolved value
// and returns the new document bytes plus a report. Fields without values
// are left verbatim and reported, never blanked. Value-map keys may be a
// field ID or a bare raw placeholder text; keys matching no field are
// logged and ignored.
func Fill(doc *docmodel.Document, occs []domain.Occurrence, fields []domain.FieldSchema, values map[string]string) ([]byte, domain.FillReport, error) {
	var report domain.FillReport
	var reps []docmodel.Replacement
	consumed := make(map[string]bool, len(values))

	for _, f := range fields {
		value, key, ok := resolveValue(f, values)
		if !ok {
			report.Skipped = append(report.Skipped, f.FieldID)
			continue
		}
		consumed[key] = true
		report.Filled = append(report.Filled, f.FieldID)

		for _, oi := range f.Occurrences {
			if oi < 0 || oi >= len(occs) {
				continue
			}
			occ := occs[oi]
			reps = append(reps, docmodel.Replacement{
				Block:  occ.BlockIndex,
				Start:  occ.CharOffset,
				End:    occ.EndOffset,
				Value:  insertionText(doc, occ, value),
				Format: occ.FormatRef,
			})
		}
	}

	for key := range values {
		if !consumed[key] {
			log.Printf("filler: value key %q matches no field, ignoring", key)
			report.Orphaned = append(report.Orphaned, key)
		}
	}

	out, err := doc.Render(reps)
	if err != nil {
		return nil, report, err
	}
	return out, report, nil
}

// resolveValue looks up a field's value. The exact field ID wins; a bare
// raw-text key covers every field split from that raw text.
func resolveValue(f domain.FieldSchema, values map[string]string) (value, key string, ok bool) {
	if v, found := values[f.FieldID]; found {
		return v, f.FieldID, true
	}
	if i := strings.LastIndex(f.FieldID, "#"); i > 0 {
		raw := f.FieldID[:i]
		if v, found := values[raw]; found {
			return v, raw, true
		}
	}
	return "", "", false
}

// insertionText pads a zero-width blank-field insertion so the value does
// not abut the label's colon.
func insertionText(doc *docmodel.Document, occ domain.Occurrence, value string) string {
	if occ.Kind != domain.KindBlankField || occ.CharOffset != occ.EndOffset {
		return value
	}
	text := doc.Blocks[occ.BlockIndex].Text
	if occ.CharOffset > 0 && text[occ.CharOffset-1] == ':' {
		return " " + value
	}
	return value
}
