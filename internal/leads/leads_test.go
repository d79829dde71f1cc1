package leads

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/exec-enrich/internal/model"
)

func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	require.NoError(t, err)
	for _, data := range rows {
		r := sheet.AddRow()
		for _, v := range data {
			r.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	input := "Company Name,Lead Score,Priority,Website,Notes\n" +
		"Acme Plumbing Ltd,88,a,https://acmeplumbing.co.uk,hot\n" +
		" ,50,B,,\n" +
		"\"Smith & Sons, Builders\",61.5,B,,\n" +
		"Tiny Co,,,,\n"

	leads, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, leads, 3)

	assert.Equal(t, model.Lead{
		CompanyName:  "Acme Plumbing Ltd",
		LeadScore:    88,
		PriorityTier: model.PriorityA,
		Website:      "https://acmeplumbing.co.uk",
	}, leads[0])
	assert.Equal(t, "Smith & Sons, Builders", leads[1].CompanyName)
	assert.InDelta(t, 61.5, leads[1].LeadScore, 1e-9)
	assert.Equal(t, model.PriorityB, leads[1].PriorityTier)
	assert.Zero(t, leads[2].LeadScore)
	assert.Equal(t, model.PriorityC, leads[2].PriorityTier)
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "empty csv"},
		{"no company column", "score,website\n10,x\n", "missing company_name column"},
		{"bad score", "company_name,lead_score\nAcme,high\n", "lead_score \"high\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	path := writeXLSX(t, [][]string{
		{"company", "score", "priority_tier", "domain"},
		{"Acme Plumbing Ltd", "88", "A", "acmeplumbing.co.uk"},
		{"", "70", "A", ""},
		{"Jones Electrical", "45"},
	})

	leads, err := ReadXLSX(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "acmeplumbing.co.uk", leads[0].Website)
	assert.InDelta(t, 88, leads[0].LeadScore, 1e-9)
	assert.Equal(t, model.PriorityA, leads[0].PriorityTier)
	assert.Equal(t, "Jones Electrical", leads[1].CompanyName)
	assert.Equal(t, model.PriorityC, leads[1].PriorityTier)
	assert.Empty(t, leads[1].Website)
}

func TestRead_DispatchesOnExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "leads.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("company_name\nAcme Ltd\n"), 0o644))

	leads, err := Read(context.Background(), csvPath)
	require.NoError(t, err)
	require.Len(t, leads, 1)

	xlsxLeads, err := Read(context.Background(), writeXLSX(t, [][]string{{"company_name"}, {"Acme Ltd"}}))
	require.NoError(t, err)
	assert.Equal(t, leads, xlsxLeads)

	_, err = Read(context.Background(), filepath.Join(dir, "leads.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = Read(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	got := NormalizeHeader([]string{"\ufeffCompany Name", " LEAD-SCORE ", "Tier", "Website URL", "Notes"})
	assert.Equal(t, []string{"company_name", "lead_score", "priority_tier", "website", "notes"}, got)
}

func TestSummaryWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSummaryWriter(&buf)

	primary := model.ExecutiveProfile{Director: model.Director{
		FullName: "Sarah Jones",
		Title:    "Managing Director",
		Email:    "sarah@acmeplumbing.co.uk",
	}, OverallConfidence: 0.82}
	require.NoError(t, w.Write(&model.CompanyEnrichmentResult{
		CompanyName:          "Acme Plumbing Ltd",
		Status:               model.StatusPartial,
		TierDecision:         &model.TierDecision{Tier: model.TierA},
		ExecutiveProfiles:    []model.ExecutiveProfile{primary},
		PrimaryDecisionMaker: &primary,
		ConfidenceReport: model.ConfidenceReport{
			OverallConfidence: 0.82,
			SourcesFailed:     []string{"search_engine", "email_finder"},
		},
		TotalCost: 0.1,
	}))
	require.NoError(t, w.Write(&model.CompanyEnrichmentResult{CompanyName: "Tiny Co", Status: model.StatusSkipped}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "company_name,status,tier,profiles,primary_name"))
	assert.Contains(t, lines[1], "Acme Plumbing Ltd,partial,A,1,Sarah Jones,Managing Director,sarah@acmeplumbing.co.uk")
	assert.Contains(t, lines[1], "search_engine;email_finder")
	assert.True(t, strings.HasPrefix(lines[2], "Tiny Co,skipped,,0,"))
}
