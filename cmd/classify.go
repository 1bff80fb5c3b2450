package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/baltlens/registry-cli/internal/mvk"
	"github.com/baltlens/registry-cli/internal/session"
)

var (
	classifyConfirms []string
	classifyJSON     bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <regcode>",
	Short: "Run the SME (MVK) classification for a company",
	Long: `Fetches the company's classification scenario, builds the control-criteria
confirmation table, and prints the effective company type with aggregated
size figures.

Confirmations are applied with repeated --confirm flags:

  registry-cli classify 40003000001 \
    --confirm 40003000002:board_control=yes \
    --confirm 40003000002:explanation="shared board majority"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		regcode := args[0]

		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		client := initRegister()

		scenario, err := client.GetScenario(ctx, regcode)
		if err != nil {
			return eris.Wrap(err, "classify: fetch scenario")
		}

		criteria := mvk.BuildCriteria(scenario)
		for _, raw := range classifyConfirms {
			target, field, value, err := parseConfirm(raw)
			if err != nil {
				return err
			}
			criteria.Update(target, field, value)
		}

		var own mvk.Totals
		if profile, err := client.GetCompany(ctx, regcode); err == nil {
			own = session.OwnTotals(profile)
		} else {
			zap.L().Warn("profile unavailable, own figures default to zero",
				zap.String("regcode", regcode), zap.Error(err))
		}

		totals := mvk.AggregateTotals(scenario, own)
		result := session.Classification{
			Regcode:       regcode,
			BaselineType:  scenario.CompanyType,
			EffectiveType: criteria.EffectiveType(scenario.CompanyType),
			HasUnknown:    criteria.HasUnknown(),
			Criteria:      criteria.Records(),
			Totals:        totals,
			SizeClass:     mvk.ClassifySize(totals),
		}

		if classifyJSON {
			return json.NewEncoder(os.Stdout).Encode(result)
		}
		formatClassification(os.Stdout, result)
		return nil
	},
}

// parseConfirm splits a --confirm value of the form regcode:field=value.
func parseConfirm(raw string) (regcode string, field mvk.Field, value string, err error) {
	head, value, ok := strings.Cut(raw, "=")
	if !ok {
		return "", "", "", eris.Errorf("invalid --confirm %q: expected regcode:field=value", raw)
	}
	regcode, fieldName, ok := strings.Cut(head, ":")
	if !ok || regcode == "" {
		return "", "", "", eris.Errorf("invalid --confirm %q: expected regcode:field=value", raw)
	}

	field = mvk.Field(fieldName)
	switch field {
	case mvk.FieldBoardControl, mvk.FieldContractControl, mvk.FieldAgreementControl, mvk.FieldExplanation:
	default:
		return "", "", "", eris.Errorf("invalid --confirm field %q: one of board_control, contract_control, agreement_control, explanation", fieldName)
	}
	return regcode, field, value, nil
}

// formatClassification writes the classification result to w.
func formatClassification(out io.Writer, c session.Classification) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Regcode:\t%s\n", c.Regcode)
	_, _ = fmt.Fprintf(w, "Baseline type:\t%s\n", c.BaselineType)
	_, _ = fmt.Fprintf(w, "Effective type:\t%s\n", c.EffectiveType)
	_, _ = fmt.Fprintf(w, "Size class:\t%s\n", c.SizeClass)
	_, _ = fmt.Fprintf(w, "Employees:\t%.1f\n", c.Totals.Employees)
	_, _ = fmt.Fprintf(w, "Turnover:\t%.0f EUR\n", c.Totals.Turnover)
	_, _ = fmt.Fprintf(w, "Balance:\t%.0f EUR\n", c.Totals.Balance)
	if c.HasUnknown {
		_, _ = fmt.Fprintln(w, "Note:\tunanswered control criteria remain")
	}
	_ = w.Flush()

	if len(c.Criteria) == 0 {
		return
	}
	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGCODE\tNAME\tNACE\tSAME_MARKET\tCONFIRM\tBOARD\tCONTRACT\tAGREEMENT")
	for _, rec := range c.Criteria {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Regcode, truncate(rec.Name, 30), rec.NACECode,
			yesNo(rec.SameMarket), yesNo(rec.NeedsConfirmation),
			rec.BoardControl, rec.ContractControl, rec.AgreementControl)
	}
	_ = w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	classifyCmd.Flags().StringArrayVar(&classifyConfirms, "confirm", nil, "confirm a control criterion: regcode:field=value (repeatable)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output JSON")
	rootCmd.AddCommand(classifyCmd)
}
