package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/internal/query"
	"github.com/bldg-intel/odcv-cli/internal/report"
)

var (
	reportAddress string
	reportBBL     string
	reportType    string
	reportXLSX    string
	reportTop     int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate assessment reports",
	Long:  "Renders an executive, technical, or proposal report for one building, or a portfolio comparison across the whole dataset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if reportType == "portfolio" {
			return portfolioReport(app)
		}

		var bbl profile.BBL
		switch {
		case reportBBL != "":
			bbl, err = profile.ParseBBL(reportBBL)
			if err != nil {
				return eris.Wrap(err, "parse bbl")
			}
		case reportAddress != "":
			res, err := app.resolver.Resolve(ctx, reportAddress)
			if err != nil {
				return eris.Wrapf(err, "resolve %q", reportAddress)
			}
			bbl = res.BBL
		default:
			return eris.New("either --address or --bbl is required for single-building reports")
		}

		p, err := app.engine.Get(bbl)
		if err != nil {
			return err
		}
		b, err := app.engine.ScoreBBL(bbl)
		if err != nil {
			return err
		}

		switch reportType {
		case "exec":
			fmt.Print(app.reports.ExecutiveSummary(b, p))
		case "technical":
			fmt.Print(app.reports.TechnicalReport(b, p))
		case "proposal":
			fmt.Print(app.reports.ProposalOutline(b, p))
		default:
			return eris.Errorf("unknown report type %q (exec, technical, proposal, portfolio)", reportType)
		}
		return nil
	},
}

func portfolioReport(app *appEnv) error {
	ranked := app.engine.Opportunities(query.Filter{}, reportTop)

	if reportXLSX != "" {
		if err := report.WriteXLSX(reportXLSX, ranked); err != nil {
			return err
		}
		zap.L().Info("portfolio workbook written",
			zap.String("path", reportXLSX),
			zap.Int("buildings", len(ranked)),
		)
	}

	fmt.Print(app.reports.Portfolio(ranked))
	return nil
}

func init() {
	reportCmd.Flags().StringVar(&reportAddress, "address", "", "street address to resolve and report on")
	reportCmd.Flags().StringVar(&reportBBL, "bbl", "", "canonical BBL to report on")
	reportCmd.Flags().StringVar(&reportType, "type", "exec", "report type (exec, technical, proposal, portfolio)")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "also write the portfolio to an xlsx workbook at this path")
	reportCmd.Flags().IntVar(&reportTop, "top", 0, "portfolio: limit to the top N buildings (0 = all)")
	rootCmd.AddCommand(reportCmd)
}
