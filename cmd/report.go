package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/baltlens/registry-cli/internal/export"
	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/mvk"
	"github.com/baltlens/registry-cli/internal/session"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report <regcode>",
	Short: "Export a company report workbook (XLSX)",
	Long:  "Fetches the company card, analytics, procurement history and SME classification, and writes them as an XLSX workbook.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		regcode := args[0]

		if err := cfg.Validate("report"); err != nil {
			return err
		}
		client := initRegister()

		var (
			profile  *model.CompanyProfile
			stats    *model.CompanyAnalytics
			procs    []model.Procurement
			scenario *mvk.Scenario
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
		g.Go(func() error {
			var err error
			scenario, err = client.GetScenario(gctx, regcode)
			if err != nil {
				zap.L().Warn("scenario unavailable, report omits classification",
					zap.String("regcode", regcode), zap.Error(err))
				scenario = nil
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "report")
		}

		rep := export.Report{
			Profile:      profile,
			Analytics:    stats,
			Procurements: procs,
		}
		if scenario != nil {
			criteria := mvk.BuildCriteria(scenario)
			totals := mvk.AggregateTotals(scenario, session.OwnTotals(profile))
			rep.Classification = &session.Classification{
				Regcode:       regcode,
				BaselineType:  scenario.CompanyType,
				EffectiveType: criteria.EffectiveType(scenario.CompanyType),
				HasUnknown:    criteria.HasUnknown(),
				Criteria:      criteria.Records(),
				Totals:        totals,
				SizeClass:     mvk.ClassifySize(totals),
			}
		}

		out := reportOut
		if out == "" {
			out = filepath.Join(cfg.Report.OutputDir, regcode+".xlsx")
		}
		if err := export.SaveXLSX(out, rep); err != nil {
			return err
		}

		fmt.Printf("Report written to %s\n", out)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output path (default <output_dir>/<regcode>.xlsx)")
	rootCmd.AddCommand(reportCmd)
}
