package analyzer

import (
	"fmt"
	"strings"
	"unicode"

	"docfill/internal/domain"
)

// typeKeywords maps lowercase placeholder-name fragments to data types.
// First hit in iteration order wins, so more specific fragments come first.
var typeKeywords = []struct {
	fragment string
	dataType domain.DataType
}{
	{"email", domain.DataTypeEmail},
	{"e-mail", domain.DataTypeEmail},
	{"phone", domain.DataTypePhone},
	{"telephone", domain.DataTypePhone},
	{"fax", domain.DataTypePhone},
	{"date", domain.DataTypeDate},
	{"dated", domain.DataTypeDate},
	{"day of", domain.DataTypeDate},
	{"amount", domain.DataTypeCurrency},
	{"price", domain.DataTypeCurrency},
	{"rent", domain.DataTypeCurrency},
	{"salary", domain.DataTypeCurrency},
	{"fee", domain.DataTypeCurrency},
	{"payment", domain.DataTypeCurrency},
	{"deposit", domain.DataTypeCurrency},
	{"compensation", domain.DataTypeCurrency},
	{"address", domain.DataTypeAddress},
	{"street", domain.DataTypeAddress},
	{"city", domain.DataTypeAddress},
	{"state", domain.DataTypeState},
	{"company", domain.DataTypeCompany},
	{"corporation", domain.DataTypeCompany},
	{"employer", domain.DataTypeCompany},
	{"entity", domain.DataTypeCompany},
	{"organization", domain.DataTypeCompany},
	{"title", domain.DataTypeTitle},
	{"position", domain.DataTypeTitle},
	{"role", domain.DataTypeTitle},
	{"url", domain.DataTypeURL},
	{"website", domain.DataTypeURL},
	{"web site", domain.DataTypeURL},
	{"number", domain.DataTypeNumber},
	{"quantity", domain.DataTypeNumber},
	{"count", domain.DataTypeNumber},
	{"shares", domain.DataTypeNumber},
	{"name", domain.DataTypeName},
	{"tenant", domain.DataTypeName},
	{"landlord", domain.DataTypeName},
	{"buyer", domain.DataTypeName},
	{"seller", domain.DataTypeName},
	{"signatory", domain.DataTypeName},
}

// guessType infers a data type from a placeholder name. Unknown names fall
// back to free text.
func guessType(name string) domain.DataType {
	lower := strings.ToLower(name)
	for _, kw := range typeKeywords {
		if strings.Contains(lower, kw.fragment) {
			return kw.dataType
		}
	}
	return domain.DataTypeText
}

// heuristicLabel turns a raw placeholder name into a presentable label.
func heuristicLabel(occ domain.Occurrence) string {
	name := strings.TrimSpace(occ.Name)
	name = strings.Trim(name, "_")
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Blank field"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return titleCase(name)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// typeExamples are the sample values shown to users when the oracle did
// not supply one.
var typeExamples = map[domain.DataType]string{
	domain.DataTypeName:     "Jane Smith",
	domain.DataTypeDate:     "2025-01-31",
	domain.DataTypeCurrency: "$5,000.00",
	domain.DataTypeNumber:   "42",
	domain.DataTypeEmail:    "jane@example.com",
	domain.DataTypePhone:    "(555) 123-4567",
	domain.DataTypeAddress:  "123 Main St, Springfield",
	domain.DataTypeState:    "California",
	domain.DataTypeCompany:  "Acme Corp",
	domain.DataTypeTitle:    "Chief Executive Officer",
	domain.DataTypeURL:      "https://example.com",
}

// heuristicFields treats every occurrence as its own field. Merging
// identical placeholders requires semantic judgment the heuristic does not
// have, so duplicates always stay distinct.
func heuristicFields(occs []domain.Occurrence) []fieldJudgment {
	out := make([]fieldJudgment, len(occs))
	for i, occ := range occs {
		label := heuristicLabel(occ)
		dt := guessType(occ.Name)
		out[i] = fieldJudgment{
			occurrence:  i,
			label:       label,
			dataType:    dt,
			question:    fmt.Sprintf("What is the %s?", strings.ToLower(label)),
			example:     typeExamples[dt],
			required:    true,
			sameFieldAs: -1,
		}
	}
	return out
}
