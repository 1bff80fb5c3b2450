package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/baltlens/registry-cli/internal/model"
)

func TestFormatProfile(t *testing.T) {
	t.Parallel()

	registered := time.Date(2014, 3, 7, 0, 0, 0, 0, time.UTC)
	employees := 12
	turnover := 1_200_000.0
	profit := 120_000.0

	var buf bytes.Buffer
	formatProfile(&buf, &model.CompanyProfile{
		Regcode:      "40003000001",
		Name:         "Zaļā Zeme SIA",
		LegalForm:    "SIA",
		Status:       "active",
		RegisteredAt: &registered,
		NACECode:     "62.01",
		NACEText:     "Computer programming",
		Employees:    &employees,
		Financials: []model.FinancialReport{
			{Year: 2024, Turnover: &turnover, Profit: &profit},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "40003000001")
	assert.Contains(t, out, "Zaļā Zeme SIA")
	assert.Contains(t, out, "2014-03-07")
	assert.Contains(t, out, "62.01 Computer programming")
	assert.Contains(t, out, "2024")
	assert.Contains(t, out, "10.0%", "profit margin from the ratio table")
}

func TestFormatAnalytics(t *testing.T) {
	t.Parallel()

	score := 72.5
	var buf bytes.Buffer
	formatAnalytics(&buf, &model.CompanyAnalytics{
		TrustScore: &score,
		RedFlags: []model.RedFlag{
			{Code: "LATE_FILING", Severity: model.SeverityLow},
			{Code: "TAX_DEBT", Severity: model.SeverityHigh, Description: "outstanding tax debt"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Trust score: 72.5 (high)")
	// High severity sorts first.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("TAX_DEBT")), bytes.Index(buf.Bytes(), []byte("LATE_FILING")))
	assert.Contains(t, out, "outstanding tax debt")
}

func TestFmtEuro(t *testing.T) {
	t.Parallel()

	v := 1234.56
	assert.Equal(t, "1235", fmtEuro(&v))
	assert.Equal(t, "-", fmtEuro(nil))
}
