package mvk

// Totals are the headcount and financial figures an SME size determination
// is made against, in staff units and euros.
type Totals struct {
	Employees float64 `json:"employees"`
	Turnover  float64 `json:"turnover"`
	Balance   float64 `json:"balance"`
}

// SizeClass is the EU Regulation 651/2014 Annex I size band.
type SizeClass string

const (
	SizeMicro  SizeClass = "MICRO"
	SizeSmall  SizeClass = "SMALL"
	SizeMedium SizeClass = "MEDIUM"
	SizeLarge  SizeClass = "LARGE"
)

// Annex I thresholds, euros.
const (
	microTurnover  = 2_000_000
	microBalance   = 2_000_000
	smallTurnover  = 10_000_000
	smallBalance   = 10_000_000
	mediumTurnover = 50_000_000
	mediumBalance  = 43_000_000
)

// AggregateTotals produces the displayed totals row for a scenario: the
// target company's own figures plus partner figures weighted by ownership
// percentage and linked-entity figures at 100%. The backend already
// aggregates per row; this is the display-side total over those rows.
func AggregateTotals(s *Scenario, own Totals) Totals {
	t := own
	if s == nil {
		return t
	}
	for _, p := range s.SectionA.Partners {
		share := p.OwnershipPercent / 100
		t.Employees += p.Employees * share
		t.Turnover += p.Turnover * share
		t.Balance += p.Balance * share
	}
	for _, e := range s.SectionB.Entities {
		t.Employees += e.Employees
		t.Turnover += e.Turnover
		t.Balance += e.Balance
	}
	return t
}

// ClassifySize bands aggregated totals per Annex I: the staff ceiling must
// hold, and at least one of the turnover or balance-sheet ceilings.
func ClassifySize(t Totals) SizeClass {
	switch {
	case t.Employees < 10 && (t.Turnover <= microTurnover || t.Balance <= microBalance):
		return SizeMicro
	case t.Employees < 50 && (t.Turnover <= smallTurnover || t.Balance <= smallBalance):
		return SizeSmall
	case t.Employees < 250 && (t.Turnover <= mediumTurnover || t.Balance <= mediumBalance):
		return SizeMedium
	default:
		return SizeLarge
	}
}
