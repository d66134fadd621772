package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/homesignal/leadscore/internal/model"
)

func TestWriteLeadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	recs := []model.LeadRecord{
		{
			ID:            "rec-1",
			HashedEmail:   "he",
			HashedPhone:   "hp",
			InitialScore:  60,
			RerankedScore: 75,
			IntentLevel:   model.IntentHigh,
			Explanation:   "score adjusted by +15 points: readiness: ready to buy",
			Comments:      "ready to buy",
			Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:            "rec-2",
			HashedEmail:   "he2",
			HashedPhone:   "hp2",
			InitialScore:  40,
			RerankedScore: 15,
			IntentLevel:   model.IntentVeryLow,
			Explanation:   "score adjusted by -25 points: disengagement: not interested, browsing: just browsing",
			Comments:      "just browsing, not interested",
			Timestamp:     time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		},
	}

	require.NoError(t, writeLeadWorkbook(path, recs))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	sheet := wb.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3) // header + 2 records

	assert.Equal(t, "ID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "rec-1", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "High", sheet.Rows[1].Cells[5].String())
	assert.Equal(t, "rec-2", sheet.Rows[2].Cells[0].String())

	score, err := sheet.Rows[1].Cells[4].Int()
	require.NoError(t, err)
	assert.Equal(t, 75, score)
}

func TestWriteLeadWorkbook_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, writeLeadWorkbook(path, nil))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Len(t, wb.Sheets[0].Rows, 1) // header only
}

func TestLeadFilterFromFlags_UnknownIntent(t *testing.T) {
	leadsIntent = "Extreme"
	t.Cleanup(func() { leadsIntent = "" })

	_, err := leadFilterFromFlags()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown intent level")
}

func TestSampleLeadAlwaysValid(t *testing.T) {
	for i := 0; i < 100; i++ {
		lead := sampleLead()
		assert.NoError(t, lead.Validate())
	}
}
