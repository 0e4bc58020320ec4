package export_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docfill/internal/domain"
	"docfill/internal/export"
)

func TestFieldReport(t *testing.T) {
	session := &domain.FillSession{
		FileName: "lease.docx",
		Fields: []domain.FieldSchema{
			{FieldID: "___#0", Label: "Tenant Name", DataType: domain.DataTypeName, Question: "Who is the tenant?", Required: true, Occurrences: []int{0}},
			{FieldID: "[Rent Amount]", Label: "Rent Amount", DataType: domain.DataTypeCurrency, Required: true, Occurrences: []int{1, 2}},
		},
	}
	attempts := []domain.ValidationAttempt{
		{FieldID: "___#0", Status: domain.StatusAccepted, SubmittedValue: "Alice", AcceptedValue: "Alice"},
	}

	out, err := export.FieldReport(session, attempts)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Fields")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Field ID", rows[0][0])
	assert.Equal(t, "Status", rows[0][7])

	assert.Equal(t, "___#0", rows[1][0])
	assert.Equal(t, "Tenant Name", rows[1][1])
	assert.Equal(t, "accepted", rows[1][7])
	assert.Equal(t, "Alice", rows[1][9])

	// Fields without an attempt report as pending.
	assert.Equal(t, "[Rent Amount]", rows[2][0])
	assert.Equal(t, "pending", rows[2][7])
	assert.Equal(t, "2", rows[2][6])
}

func TestFieldReport_EmptySession(t *testing.T) {
	out, err := export.FieldReport(&domain.FillSession{}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Fields")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
