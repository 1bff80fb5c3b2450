// Package export renders a company report as an XLSX workbook. The
// workbook mirrors what the portal shows on screen: a profile sheet, the
// SME classification sheet with the confirmation table, and an analytics
// sheet with red flags and procurement awards.
package export

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/session"
)

// Report bundles everything the workbook can render. Nil sections are
// skipped, so a report with only a profile still produces a valid file.
type Report struct {
	Profile        *model.CompanyProfile
	Classification *session.Classification
	Analytics      *model.CompanyAnalytics
	Procurements   []model.Procurement
}

// WriteXLSX writes the report workbook to w.
func WriteXLSX(w io.Writer, rep Report) error {
	f, err := buildWorkbook(rep)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

// SaveXLSX writes the report workbook to path.
func SaveXLSX(path string, rep Report) error {
	f, err := buildWorkbook(rep)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func buildWorkbook(rep Report) (*xlsx.File, error) {
	f := xlsx.NewFile()

	if rep.Profile != nil {
		if err := addProfileSheet(f, rep.Profile); err != nil {
			return nil, err
		}
	}
	if rep.Classification != nil {
		if err := addClassificationSheet(f, rep.Classification); err != nil {
			return nil, err
		}
	}
	if rep.Analytics != nil || len(rep.Procurements) > 0 {
		if err := addAnalyticsSheet(f, rep.Analytics, rep.Procurements); err != nil {
			return nil, err
		}
	}

	if len(f.Sheets) == 0 {
		return nil, eris.New("export: report has no sections")
	}
	return f, nil
}

func addProfileSheet(f *xlsx.File, p *model.CompanyProfile) error {
	sheet, err := f.AddSheet("Profile")
	if err != nil {
		return eris.Wrap(err, "export: add profile sheet")
	}

	addKV := func(key, val string) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		row.AddCell().SetString(val)
	}

	addKV("Registration number", p.Regcode)
	addKV("Name", p.Name)
	addKV("Legal form", p.LegalForm)
	addKV("Status", p.Status)
	if p.RegisteredAt != nil {
		addKV("Registered", p.RegisteredAt.Format("2006-01-02"))
	}
	addKV("Address", p.Address)
	if p.NACECode != "" {
		addKV("NACE", p.NACECode+" "+p.NACEText)
	}
	if p.Employees != nil {
		addKV("Employees", fmt.Sprintf("%d", *p.Employees))
	}

	if len(p.Financials) > 0 {
		sheet.AddRow() // spacer

		header := sheet.AddRow()
		for _, h := range []string{"Year", "Turnover", "Profit", "Balance total", "Equity", "Employees"} {
			header.AddCell().SetString(h)
		}
		for _, fr := range p.Financials {
			row := sheet.AddRow()
			row.AddCell().SetInt(fr.Year)
			addFloatCell(row, fr.Turnover)
			addFloatCell(row, fr.Profit)
			addFloatCell(row, fr.BalanceTotal)
			addFloatCell(row, fr.Equity)
			addIntCell(row, fr.Employees)
		}
	}

	if len(p.Officers) > 0 {
		sheet.AddRow()

		header := sheet.AddRow()
		for _, h := range []string{"Officer", "Role", "Since", "Active"} {
			header.AddCell().SetString(h)
		}
		for _, o := range p.Officers {
			row := sheet.AddRow()
			row.AddCell().SetString(o.Name)
			row.AddCell().SetString(o.Role)
			since := ""
			if o.Since != nil {
				since = o.Since.Format("2006-01-02")
			}
			row.AddCell().SetString(since)
			row.AddCell().SetString(yesNo(o.IsActive))
		}
	}

	return nil
}

func addClassificationSheet(f *xlsx.File, c *session.Classification) error {
	sheet, err := f.AddSheet("Classification")
	if err != nil {
		return eris.Wrap(err, "export: add classification sheet")
	}

	addKV := func(key, val string) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		row.AddCell().SetString(val)
	}

	addKV("Registration number", c.Regcode)
	addKV("Baseline type", string(c.BaselineType))
	addKV("Effective type", string(c.EffectiveType))
	addKV("Unanswered criteria", yesNo(c.HasUnknown))
	addKV("Size class", string(c.SizeClass))
	addKV("Aggregated employees", fmt.Sprintf("%.2f", c.Totals.Employees))
	addKV("Aggregated turnover (EUR)", fmt.Sprintf("%.2f", c.Totals.Turnover))
	addKV("Aggregated balance (EUR)", fmt.Sprintf("%.2f", c.Totals.Balance))

	if len(c.Criteria) > 0 {
		sheet.AddRow()

		header := sheet.AddRow()
		for _, h := range []string{
			"Regcode", "Name", "NACE", "Same market", "Needs confirmation",
			"Board control", "Contract control", "Agreement control", "Explanation",
		} {
			header.AddCell().SetString(h)
		}
		// Rows keep the working-list order: partners first, then linked,
		// then explicitly flagged entities.
		for _, rec := range c.Criteria {
			row := sheet.AddRow()
			row.AddCell().SetString(rec.Regcode)
			row.AddCell().SetString(rec.Name)
			row.AddCell().SetString(rec.NACECode)
			row.AddCell().SetString(yesNo(rec.SameMarket))
			row.AddCell().SetString(yesNo(rec.NeedsConfirmation))
			row.AddCell().SetString(string(rec.BoardControl))
			row.AddCell().SetString(string(rec.ContractControl))
			row.AddCell().SetString(string(rec.AgreementControl))
			row.AddCell().SetString(rec.Explanation)
		}
	}

	return nil
}

func addAnalyticsSheet(f *xlsx.File, a *model.CompanyAnalytics, procs []model.Procurement) error {
	sheet, err := f.AddSheet("Analytics")
	if err != nil {
		return eris.Wrap(err, "export: add analytics sheet")
	}

	if a != nil {
		row := sheet.AddRow()
		row.AddCell().SetString("Trust score")
		if a.TrustScore != nil {
			row.AddCell().SetFloat(*a.TrustScore)
		} else {
			row.AddCell().SetString("n/a")
		}

		if len(a.RedFlags) > 0 {
			sheet.AddRow()

			header := sheet.AddRow()
			for _, h := range []string{"Flag", "Severity", "Description"} {
				header.AddCell().SetString(h)
			}
			for _, fl := range a.RedFlags {
				row := sheet.AddRow()
				row.AddCell().SetString(fl.Code)
				row.AddCell().SetString(string(fl.Severity))
				row.AddCell().SetString(fl.Description)
			}
		}
	}

	if len(procs) > 0 {
		sheet.AddRow()

		header := sheet.AddRow()
		for _, h := range []string{"Procurement", "Buyer", "Amount", "Currency", "Awarded", "Status", "Role"} {
			header.AddCell().SetString(h)
		}
		for _, p := range procs {
			row := sheet.AddRow()
			row.AddCell().SetString(p.Title)
			row.AddCell().SetString(p.Buyer)
			row.AddCell().SetFloat(p.Amount)
			row.AddCell().SetString(p.Currency)
			row.AddCell().SetString(p.AwardedAt)
			row.AddCell().SetString(p.Status)
			role := "buyer"
			if p.IsSupplier {
				role = "supplier"
			}
			row.AddCell().SetString(role)
		}
	}

	return nil
}

func addFloatCell(row *xlsx.Row, v *float64) {
	if v == nil {
		row.AddCell().SetString("")
		return
	}
	row.AddCell().SetFloat(*v)
}

func addIntCell(row *xlsx.Row, v *int) {
	if v == nil {
		row.AddCell().SetString("")
		return
	}
	row.AddCell().SetInt(*v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
