package mvk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateTotals(t *testing.T) {
	t.Parallel()

	s := &Scenario{
		SectionA: SectionA{Partners: []RelatedEntity{
			{Regcode: "1", Employees: 100, Turnover: 1_000_000, Balance: 500_000, OwnershipPercent: 30},
		}},
		SectionB: SectionB{Entities: []RelatedEntity{
			{Regcode: "2", Employees: 10, Turnover: 200_000, Balance: 100_000, OwnershipPercent: 60},
		}},
	}
	own := Totals{Employees: 5, Turnover: 400_000, Balance: 300_000}

	got := AggregateTotals(s, own)

	// Partner weighted at 30%, linked at 100% regardless of its percentage.
	assert.InDelta(t, 5+30+10, got.Employees, 1e-9)
	assert.InDelta(t, 400_000+300_000+200_000, got.Turnover, 1e-9)
	assert.InDelta(t, 300_000+150_000+100_000, got.Balance, 1e-9)
}

func TestAggregateTotals_NilScenario(t *testing.T) {
	t.Parallel()

	own := Totals{Employees: 3, Turnover: 100, Balance: 200}
	assert.Equal(t, own, AggregateTotals(nil, own))
}

func TestClassifySize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		totals Totals
		want   SizeClass
	}{
		{"micro", Totals{Employees: 4, Turnover: 500_000, Balance: 300_000}, SizeMicro},
		{"micro by balance only", Totals{Employees: 9, Turnover: 3_000_000, Balance: 1_900_000}, SizeMicro},
		{"small", Totals{Employees: 30, Turnover: 8_000_000, Balance: 9_000_000}, SizeSmall},
		{"medium", Totals{Employees: 200, Turnover: 45_000_000, Balance: 60_000_000}, SizeMedium},
		{"medium by balance only", Totals{Employees: 200, Turnover: 60_000_000, Balance: 40_000_000}, SizeMedium},
		{"large by headcount", Totals{Employees: 300, Turnover: 1_000_000, Balance: 1_000_000}, SizeLarge},
		{"large by financials", Totals{Employees: 100, Turnover: 60_000_000, Balance: 50_000_000}, SizeLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifySize(tt.totals))
		})
	}
}
