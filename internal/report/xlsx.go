package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/bldg-intel/odcv-cli/internal/scoring"
)

var xlsxHeader = []string{
	"Rank", "BBL", "Address", "Score", "Tier", "Savings Potential",
	"Deployment Ease", "Annual Savings ($)", "Payback (years)", "NPV ($)",
	"Sensors", "Weeks", "Flags",
}

// WriteXLSX writes the ranked portfolio to an xlsx workbook at path.
// Buildings without a financial projection get blank dollar cells.
func WriteXLSX(path string, ranked []*scoring.Breakdown) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Portfolio")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	hdr := sheet.AddRow()
	for _, h := range xlsxHeader {
		hdr.AddCell().Value = h
	}

	for i, b := range ranked {
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().Value = string(b.BBL)
		row.AddCell().Value = b.Address
		row.AddCell().SetInt(b.TotalScore)
		row.AddCell().Value = string(b.Tier)
		row.AddCell().SetInt(b.SavingsPotential)
		row.AddCell().SetInt(b.DeploymentEase)

		if b.Financial != nil {
			row.AddCell().SetFloat(b.Financial.AnnualSavings)
			row.AddCell().SetFloat(b.Financial.SimplePaybackYears)
			row.AddCell().SetFloat(b.Financial.NPV)
		} else {
			row.AddCell()
			row.AddCell()
			row.AddCell()
		}

		if b.Plan != nil {
			row.AddCell().SetInt(b.Plan.SensorCount)
			row.AddCell().SetInt(b.Plan.DeploymentWeeks)
		} else {
			row.AddCell()
			row.AddCell()
		}

		flags := ""
		if len(b.Flags) > 0 {
			flags = b.Flags[0]
		}
		row.AddCell().Value = flags
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}
