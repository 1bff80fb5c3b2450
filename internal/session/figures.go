package session

import (
	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/mvk"
)

// OwnTotals derives a company's own size figures from its register profile:
// headcount from the card, turnover and balance from the latest filed
// report. Missing figures stay zero; classification still proceeds.
func OwnTotals(p *model.CompanyProfile) mvk.Totals {
	var t mvk.Totals
	if p == nil {
		return t
	}
	if p.Employees != nil {
		t.Employees = float64(*p.Employees)
	}

	var latest *model.FinancialReport
	for i := range p.Financials {
		if latest == nil || p.Financials[i].Year > latest.Year {
			latest = &p.Financials[i]
		}
	}
	if latest != nil {
		if latest.Turnover != nil {
			t.Turnover = *latest.Turnover
		}
		if latest.BalanceTotal != nil {
			t.Balance = *latest.BalanceTotal
		}
		if t.Employees == 0 && latest.Employees != nil {
			t.Employees = float64(*latest.Employees)
		}
	}
	return t
}
