// Package analyzer turns detected placeholder occurrences into field
// schemas. A semantic oracle decides labels, data types, and which repeated
// placeholders share a value; when no oracle answers, a keyword heuristic
// takes over and keeps every duplicate distinct.
package analyzer

import (
	"context"
	"fmt"
	"log"

	"docfill/internal/docmodel"
	"docfill/internal/domain"
	"docfill/internal/port"
)

// fieldJudgment is the per-occurrence verdict either source produces.
type fieldJudgment struct {
	occurrence  int
	label       string
	dataType    domain.DataType
	question    string
	example     string
	required    bool
	sameFieldAs int
}

// Analyzer disambiguates occurrences into field schemas.
type Analyzer struct {
	oracle port.SemanticOracle
}

// New returns an Analyzer. A nil oracle is allowed; every document then
// goes through the heuristic.
func New(oracle port.SemanticOracle) *Analyzer {
	return &Analyzer{oracle: oracle}
}

// Analyze produces one FieldSchema per distinct logical field. Oracle
// failures are not fatal; the heuristic result is returned instead.
func (a *Analyzer) Analyze(ctx context.Context, doc *docmodel.Document, occs []domain.Occurrence) []domain.FieldSchema {
	if len(occs) == 0 {
		return nil
	}

	judgments, source := a.judge(ctx, doc, occs)
	return buildSchemas(occs, judgments, source)
}

func (a *Analyzer) judge(ctx context.Context, doc *docmodel.Document, occs []domain.Occurrence) ([]fieldJudgment, string) {
	fallback := heuristicFields(occs)
	if a.oracle == nil {
		return fallback, domain.SchemaSourceHeuristic
	}

	fields, err := a.oracle.Disambiguate(ctx, port.OracleRequest{
		DocumentText: doc.Text(),
		Occurrences:  occs,
	})
	if err != nil {
		log.Printf("analyzer.Analyzer: oracle unavailable, using heuristic: %v", err)
		return fallback, domain.SchemaSourceHeuristic
	}

	// Start from the heuristic so occurrences the oracle skipped still get
	// a judgment, then overlay what the oracle did return.
	judgments := fallback
	for _, f := range fields {
		if f.Occurrence < 0 || f.Occurrence >= len(occs) {
			continue
		}
		j := fieldJudgment{
			occurrence:  f.Occurrence,
			label:       f.Label,
			dataType:    f.DataType,
			question:    f.Question,
			example:     f.Example,
			required:    f.Required,
			sameFieldAs: f.SameFieldAs,
		}
		if j.label == "" {
			j.label = fallback[f.Occurrence].label
		}
		if !j.dataType.Valid() {
			j.dataType = fallback[f.Occurrence].dataType
		}
		if j.question == "" {
			j.question = fallback[f.Occurrence].question
		}
		if j.example == "" {
			j.example = typeExamples[j.dataType]
		}
		judgments[f.Occurrence] = j
	}
	return judgments, domain.SchemaSourceOracle
}

// buildSchemas clusters occurrences into fields and assigns stable field
// IDs. Occurrences may only merge when their raw text is identical; within
// a raw-text group, a lone field keeps the raw text as its ID and split
// fields get "#<i>" suffixes in document order.
func buildSchemas(occs []domain.Occurrence, judgments []fieldJudgment, source string) []domain.FieldSchema {
	parent := make([]int, len(occs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i, j := range judgments {
		other := j.sameFieldAs
		if other < 0 || other >= len(occs) || other == i {
			continue
		}
		if occs[other].RawText != occs[i].RawText {
			continue
		}
		parent[find(i)] = find(other)
	}

	// Cluster occurrence indices by root, keeping document order.
	clusterOf := make(map[int]int)
	var clusters [][]int
	for i := range occs {
		root := find(i)
		ci, ok := clusterOf[root]
		if !ok {
			ci = len(clusters)
			clusterOf[root] = ci
			clusters = append(clusters, nil)
		}
		clusters[ci] = append(clusters[ci], i)
	}

	// Count distinct clusters per raw text to decide ID suffixing.
	rawClusters := make(map[string]int)
	for _, members := range clusters {
		rawClusters[occs[members[0]].RawText]++
	}
	rawSeen := make(map[string]int)

	schemas := make([]domain.FieldSchema, 0, len(clusters))
	for _, members := range clusters {
		lead := members[0]
		raw := occs[lead].RawText
		id := raw
		if rawClusters[raw] > 1 {
			id = fmt.Sprintf("%s#%d", raw, rawSeen[raw])
		}
		rawSeen[raw]++

		j := judgments[lead]
		schemas = append(schemas, domain.FieldSchema{
			FieldID:     id,
			Label:       j.label,
			DataType:    j.dataType,
			Question:    j.question,
			Example:     j.example,
			Required:    j.required,
			Occurrences: members,
			Source:      source,
		})
	}
	return schemas
}
