// Package analytics derives display-side financial analytics from register
// payloads: per-year ratios from filed reports, red-flag ordering, and
// trust-score banding. Heavier scoring lives server-side and is consumed
// as-is.
package analytics

import "github.com/baltlens/registry-cli/internal/model"

// Ratios are the per-year display ratios derived from one annual report.
// A nil ratio means the report lacked the figures to compute it.
type Ratios struct {
	Year           int      `json:"year"`
	CurrentRatio   *float64 `json:"current_ratio,omitempty"`
	ProfitMargin   *float64 `json:"profit_margin,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	ReturnOnAssets *float64 `json:"return_on_assets,omitempty"`
}

// ComputeRatios derives ratios for each filed report, in input order.
// Missing figures and zero denominators yield nil ratios, never errors.
func ComputeRatios(reports []model.FinancialReport) []Ratios {
	if len(reports) == 0 {
		return nil
	}
	out := make([]Ratios, 0, len(reports))
	for _, r := range reports {
		out = append(out, Ratios{
			Year:           r.Year,
			CurrentRatio:   safeDiv(r.CurrentAssets, r.CurrentLiabilities),
			ProfitMargin:   safeDiv(r.Profit, r.Turnover),
			DebtToEquity:   safeDiv(r.Liabilities, r.Equity),
			ReturnOnAssets: safeDiv(r.Profit, r.BalanceTotal),
		})
	}
	return out
}

func safeDiv(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}
