package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"docfill/internal/domain"
	"docfill/internal/port"
)

// BuildPrompt renders the disambiguation request for a chat completion.
// One call covers every occurrence in the document so the model can judge
// which repeated placeholders refer to the same value.
func BuildPrompt(req port.OracleRequest) string {
	var b strings.Builder
	b.WriteString("You are analyzing placeholders in a legal or business document.\n")
	b.WriteString("For each placeholder below, determine what value it expects.\n\n")
	b.WriteString("Document text:\n---\n")
	b.WriteString(req.DocumentText)
	b.WriteString("\n---\n\nPlaceholders:\n")
	for i, occ := range req.Occurrences {
		fmt.Fprintf(&b, "%d. raw=%q kind=%s context=%q\n", i, occ.RawText, occ.Kind, occ.Context)
	}
	b.WriteString(`
Respond with ONLY a JSON object, no prose and no markdown fences:
{"fields":[{"occurrence":0,"label":"Tenant Name","data_type":"name","question":"What is the tenant's name?","example":"Jane Smith","required":true,"same_field_as":null}]}

Rules:
- Emit exactly one entry per placeholder, "occurrence" is its number above.
- "data_type" is one of: text, name, date, currency, number, email, phone, address, state, company, title, url.
- "same_field_as" is the number of an EARLIER placeholder that asks for the
  same value with identical raw text, or null when this placeholder is its
  own distinct field. Never link placeholders whose raw text differs.
- "question" is a short question a person could answer to supply the value.
`)
	return b.String()
}

// responseSchema rejects malformed model output before it reaches the
// analyzer. Anything that fails here falls back to the heuristic.
var responseSchema = jsonschema.MustCompileString("oracle_response.json", `{
	"type": "object",
	"required": ["fields"],
	"properties": {
		"fields": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["occurrence", "label", "data_type"],
				"properties": {
					"occurrence": {"type": "integer", "minimum": 0},
					"label": {"type": "string"},
					"data_type": {"type": "string"},
					"question": {"type": "string"},
					"example": {"type": "string"},
					"required": {"type": "boolean"},
					"same_field_as": {"type": ["integer", "null"]}
				}
			}
		}
	}
}`)

type responseField struct {
	Occurrence  int    `json:"occurrence"`
	Label       string `json:"label"`
	DataType    string `json:"data_type"`
	Question    string `json:"question"`
	Example     string `json:"example"`
	Required    *bool  `json:"required"`
	SameFieldAs *int   `json:"same_field_as"`
}

type response struct {
	Fields []responseField `json:"fields"`
}

// ParseJudgments validates and decodes a model completion into oracle
// fields. occurrenceCount bounds the occurrence references.
func ParseJudgments(raw string, occurrenceCount int) ([]port.OracleField, error) {
	cleaned := stripMarkdownFences(raw)

	var generic interface{}
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return nil, fmt.Errorf("decoding completion: %w", err)
	}
	if err := responseSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("completion failed schema validation: %w", err)
	}

	var resp response
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("decoding completion: %w", err)
	}

	fields := make([]port.OracleField, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		if f.Occurrence < 0 || f.Occurrence >= occurrenceCount {
			return nil, fmt.Errorf("completion references occurrence %d of %d", f.Occurrence, occurrenceCount)
		}
		same := -1
		if f.SameFieldAs != nil {
			if *f.SameFieldAs < 0 || *f.SameFieldAs >= occurrenceCount {
				return nil, fmt.Errorf("completion references occurrence %d of %d", *f.SameFieldAs, occurrenceCount)
			}
			same = *f.SameFieldAs
		}
		required := true
		if f.Required != nil {
			required = *f.Required
		}
		fields = append(fields, port.OracleField{
			Occurrence:  f.Occurrence,
			Label:       f.Label,
			DataType:    domain.DataType(f.DataType),
			Question:    f.Question,
			Example:     f.Example,
			Required:    required,
			SameFieldAs: same,
		})
	}
	return fields, nil
}

// stripMarkdownFences removes a surrounding ```json ... ``` block when the
// model ignores the no-fences instruction.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
