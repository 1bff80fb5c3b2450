package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/baltlens/registry-cli/internal/analytics"
	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/mvk"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <regcode>",
	Short: "Show a company card with analytics and procurement history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		regcode := args[0]

		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		client := initRegister()

		var (
			profile *model.CompanyProfile
			stats   *model.CompanyAnalytics
			procs   []model.Procurement
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			profile, err = client.GetCompany(gctx, regcode)
			return err
		})
		g.Go(func() error {
			var err error
			stats, err = client.GetAnalytics(gctx, regcode)
			if err != nil {
				// Analytics are optional for the card view.
				zap.L().Warn("analytics unavailable", zap.String("regcode", regcode), zap.Error(err))
				stats = nil
			}
			return nil
		})
		g.Go(func() error {
			var err error
			procs, err = client.GetProcurements(gctx, regcode)
			if err != nil {
				zap.L().Warn("procurements unavailable", zap.String("regcode", regcode), zap.Error(err))
				procs = nil
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "lookup")
		}

		if lookupJSON {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"profile":      profile,
				"analytics":    stats,
				"procurements": procs,
			})
		}

		formatProfile(os.Stdout, profile)
		if stats != nil {
			formatAnalytics(os.Stdout, stats)
		}
		if len(procs) > 0 {
			formatProcurements(os.Stdout, procs)
		}
		return nil
	},
}

// formatProfile writes the company card to w.
func formatProfile(out io.Writer, p *model.CompanyProfile) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Regcode:\t%s\n", p.Regcode)
	_, _ = fmt.Fprintf(w, "Name:\t%s\n", p.Name)
	if p.LegalForm != "" {
		_, _ = fmt.Fprintf(w, "Legal form:\t%s\n", p.LegalForm)
	}
	if p.Status != "" {
		_, _ = fmt.Fprintf(w, "Status:\t%s\n", p.Status)
	}
	if p.RegisteredAt != nil {
		_, _ = fmt.Fprintf(w, "Registered:\t%s\n", p.RegisteredAt.Format("2006-01-02"))
	}
	if p.Address != "" {
		_, _ = fmt.Fprintf(w, "Address:\t%s\n", p.Address)
	}
	if p.NACECode != "" {
		text := p.NACEText
		if text == "" {
			text = mvk.DivisionName(p.NACECode)
		}
		_, _ = fmt.Fprintf(w, "NACE:\t%s %s\n", p.NACECode, text)
	}
	if p.Employees != nil {
		_, _ = fmt.Fprintf(w, "Employees:\t%d\n", *p.Employees)
	}
	_ = w.Flush()

	if len(p.Financials) > 0 {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "YEAR\tTURNOVER\tPROFIT\tBALANCE\tMARGIN")
		ratios := analytics.ComputeRatios(p.Financials)
		for i, fr := range p.Financials {
			margin := ""
			if i < len(ratios) && ratios[i].ProfitMargin != nil {
				margin = fmt.Sprintf("%.1f%%", *ratios[i].ProfitMargin*100)
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				fr.Year, fmtEuro(fr.Turnover), fmtEuro(fr.Profit), fmtEuro(fr.BalanceTotal), margin)
		}
		_ = w.Flush()
	}
}

// formatAnalytics writes trust score and red flags to w.
func formatAnalytics(out io.Writer, a *model.CompanyAnalytics) {
	fmt.Fprintln(out)
	if a.TrustScore != nil {
		fmt.Fprintf(out, "Trust score: %.1f (%s)\n", *a.TrustScore, analytics.Band(a.TrustScore))
	}
	if len(a.RedFlags) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FLAG\tSEVERITY\tDESCRIPTION")
	for _, fl := range analytics.SortFlags(a.RedFlags) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", fl.Code, fl.Severity, fl.Description)
	}
	_ = w.Flush()
}

// formatProcurements writes the procurement table to w.
func formatProcurements(out io.Writer, procs []model.Procurement) {
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROCUREMENT\tBUYER\tAMOUNT\tAWARDED\tROLE")
	for _, p := range procs {
		role := "buyer"
		if p.IsSupplier {
			role = "supplier"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\t%s\n",
			truncate(p.Title, 40), truncate(p.Buyer, 30), p.Amount, p.Currency, p.AwardedAt, role)
	}
	_ = w.Flush()
}

func fmtEuro(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *v)
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output JSON")
	rootCmd.AddCommand(lookupCmd)
}
