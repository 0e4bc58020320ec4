package service

import (
	"log"

	"docfill/internal/docmodel"
	"docfill/internal/domain"
	"docfill/internal/filler"
)

// fill renders values into the document and logs the diagnostics both
// services share.
func fill(doc *docmodel.Document, occs []domain.Occurrence, fields []domain.FieldSchema, values map[string]string) ([]byte, *domain.FillReport, error) {
	out, report, err := filler.Fill(doc, occs, fields, values)
	if err != nil {
		return nil, nil, err
	}
	if len(report.Skipped) > 0 {
		log.Printf("service: %d fields left unfilled: %v", len(report.Skipped), report.Skipped)
	}
	return out, &report, nil
}
