package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"docfill/internal/analyzer"
	"docfill/internal/detector"
	"docfill/internal/docmodel"
	"docfill/internal/domain"
)

// noPlaceholderAssessment is reported when a document contains nothing to
// fill. Callers surface it instead of an empty field list with no context.
const noPlaceholderAssessment = "No placeholders were detected in this document. It may already be filled in, or it may not be a fillable template."

// DocxContentType is the MIME type for .docx uploads and artifacts.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// PipelineService runs the stateless detect-analyze-fill pipeline over
// uploaded document bytes. Nothing is persisted; every call stands alone.
type PipelineService struct {
	analyzer      *analyzer.Analyzer
	maxFileSizeMB int64
}

// NewPipelineService creates a PipelineService.
func NewPipelineService(a *analyzer.Analyzer, maxFileSizeMB int64) *PipelineService {
	return &PipelineService{analyzer: a, maxFileSizeMB: maxFileSizeMB}
}

// CheckUpload enforces the upload constraints shared by every entry point.
func (s *PipelineService) CheckUpload(fileName string, size int64) error {
	if !strings.HasSuffix(strings.ToLower(fileName), ".docx") {
		return domain.ErrUnsupportedFileType
	}
	if size == 0 {
		return domain.ErrEmptyFile
	}
	if s.maxFileSizeMB > 0 && size > s.maxFileSizeMB*1024*1024 {
		return domain.ErrFileTooLarge
	}
	return nil
}

// Process parses a document, detects placeholders, and disambiguates them
// into field schemas.
func (s *PipelineService) Process(ctx context.Context, fileName string, data []byte) (*domain.DocumentAnalysis, error) {
	if err := s.CheckUpload(fileName, int64(len(data))); err != nil {
		return nil, err
	}

	doc, err := docmodel.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", fileName, err)
	}

	occs := detector.Detect(doc)
	if len(occs) == 0 {
		return &domain.DocumentAnalysis{Assessment: noPlaceholderAssessment}, nil
	}

	fields := s.analyzer.Analyze(ctx, doc, occs)
	log.Printf("service.PipelineService: %s: %d occurrences, %d fields", fileName, len(occs), len(fields))

	return &domain.DocumentAnalysis{Occurrences: occs, Fields: fields}, nil
}

// Detect parses a document and returns raw placeholder occurrences without
// consulting the oracle.
func (s *PipelineService) Detect(_ context.Context, fileName string, data []byte) ([]domain.Occurrence, error) {
	if err := s.CheckUpload(fileName, int64(len(data))); err != nil {
		return nil, err
	}

	doc, err := docmodel.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("detecting in %s: %w", fileName, err)
	}
	return detector.Detect(doc), nil
}

// Fill runs the full pipeline and writes the supplied values back into a
// fresh copy of the document.
func (s *PipelineService) Fill(ctx context.Context, fileName string, data []byte, values map[string]string) ([]byte, *domain.FillReport, error) {
	if err := s.CheckUpload(fileName, int64(len(data))); err != nil {
		return nil, nil, err
	}

	doc, err := docmodel.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("filling %s: %w", fileName, err)
	}

	occs := detector.Detect(doc)
	fields := s.analyzer.Analyze(ctx, doc, occs)

	out, report, err := fill(doc, occs, fields, values)
	if err != nil {
		return nil, nil, fmt.Errorf("filling %s: %w", fileName, err)
	}
	return out, report, nil
}
