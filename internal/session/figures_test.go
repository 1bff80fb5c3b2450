package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baltlens/registry-cli/internal/model"
)

func TestOwnTotals(t *testing.T) {
	t.Parallel()

	employees := 12
	t2023 := 950_000.0
	t2024 := 1_200_000.0
	b2024 := 600_000.0

	totals := OwnTotals(&model.CompanyProfile{
		Employees: &employees,
		Financials: []model.FinancialReport{
			{Year: 2023, Turnover: &t2023},
			{Year: 2024, Turnover: &t2024, BalanceTotal: &b2024},
		},
	})

	assert.InDelta(t, 12, totals.Employees, 0.001)
	assert.InDelta(t, 1_200_000, totals.Turnover, 0.001, "latest year wins")
	assert.InDelta(t, 600_000, totals.Balance, 0.001)
}

func TestOwnTotals_FallsBackToReportHeadcount(t *testing.T) {
	t.Parallel()

	reported := 7
	totals := OwnTotals(&model.CompanyProfile{
		Financials: []model.FinancialReport{{Year: 2024, Employees: &reported}},
	})
	assert.InDelta(t, 7, totals.Employees, 0.001)
}

func TestOwnTotals_Nil(t *testing.T) {
	t.Parallel()

	totals := OwnTotals(nil)
	assert.Zero(t, totals.Employees)
	assert.Zero(t, totals.Turnover)
	assert.Zero(t, totals.Balance)
}
