// Package leads reads lead files for batch enrichment and writes result
// summaries.
package leads

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/model"
)

// Column names recognised in lead file headers.
const (
	ColCompanyName  = "company_name"
	ColLeadScore    = "lead_score"
	ColPriorityTier = "priority_tier"
	ColWebsite      = "website"
)

var headerAliases = map[string]string{
	"company":      ColCompanyName,
	"name":         ColCompanyName,
	"business":     ColCompanyName,
	"score":        ColLeadScore,
	"priority":     ColPriorityTier,
	"tier":         ColPriorityTier,
	"url":          ColWebsite,
	"domain":       ColWebsite,
	"website_url":  ColWebsite,
	"company_url":  ColWebsite,
	"company_site": ColWebsite,
}

// row is one lead line before type conversion.
type row struct {
	CompanyName  string `csv:"company_name"`
	LeadScore    string `csv:"lead_score"`
	PriorityTier string `csv:"priority_tier"`
	Website      string `csv:"website"`
}

// Read loads leads from a .csv or .xlsx file.
func Read(ctx context.Context, path string) ([]model.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "leads: read")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "leads: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, eris.Errorf("leads: unsupported file type %q", filepath.Ext(path))
	}
}

// ReadCSV decodes leads from CSV with a header row. Header names are
// matched case-insensitively and common aliases are accepted.
func ReadCSV(r io.Reader) ([]model.Lead, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, eris.New("leads: empty csv")
	}
	if err != nil {
		return nil, eris.Wrap(err, "leads: read csv header")
	}
	header = NormalizeHeader(header)
	if err := requireColumns(header); err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, eris.Wrap(err, "leads: csv decoder")
	}

	var out []model.Lead
	for line := 2; ; line++ {
		var rw row
		err := dec.Decode(&rw)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "leads: decode csv line %d", line)
		}
		lead, ok, err := rw.lead(line)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, lead)
		}
	}
	return out, nil
}

// ReadXLSX reads leads from the first sheet of a workbook. The first row is
// the header.
func ReadXLSX(path string) ([]model.Lead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "leads: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("leads: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("leads: empty sheet")
	}

	header := NormalizeHeader(cells(sheet.Rows[0]))
	if err := requireColumns(header); err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := col[h]; !dup {
			col[h] = i
		}
	}
	get := func(vals []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(vals) {
			return ""
		}
		return vals[i]
	}

	var out []model.Lead
	for i, xr := range sheet.Rows[1:] {
		if xr == nil {
			continue
		}
		vals := cells(xr)
		rw := row{
			CompanyName:  get(vals, ColCompanyName),
			LeadScore:    get(vals, ColLeadScore),
			PriorityTier: get(vals, ColPriorityTier),
			Website:      get(vals, ColWebsite),
		}
		lead, ok, err := rw.lead(i + 2)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, lead)
		}
	}
	return out, nil
}

// NormalizeHeader lowercases header cells, joins words with underscores and
// maps aliases onto canonical column names.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.Join(strings.FieldsFunc(h, func(r rune) bool {
			return r == ' ' || r == '-' || r == '_'
		}), "_")
		if canon, ok := headerAliases[h]; ok {
			h = canon
		}
		out[i] = h
	}
	return out
}

func requireColumns(header []string) error {
	for _, h := range header {
		if h == ColCompanyName {
			return nil
		}
	}
	return eris.Errorf("leads: missing %s column", ColCompanyName)
}

// lead converts a raw row. Rows without a company name are skipped.
func (r row) lead(line int) (model.Lead, bool, error) {
	name := strings.TrimSpace(r.CompanyName)
	if name == "" {
		zap.L().Warn("leads: skipping row without company name", zap.Int("line", line))
		return model.Lead{}, false, nil
	}

	var score float64
	if s := strings.TrimSpace(r.LeadScore); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Lead{}, false, eris.Wrapf(err, "leads: line %d: lead_score %q", line, s)
		}
		score = v
	}

	return model.Lead{
		CompanyName:  name,
		LeadScore:    score,
		PriorityTier: model.ParsePriorityTier(r.PriorityTier),
		Website:      strings.TrimSpace(r.Website),
	}, true, nil
}

func cells(r *xlsx.Row) []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = strings.TrimSpace(c.String())
	}
	return out
}
