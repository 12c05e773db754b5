package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/internal/scoring"
)

var (
	scoreAddress string
	scoreBBL     string
	scoreFormat  string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one building by address or BBL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scoreAddress == "" && scoreBBL == "" {
			return eris.New("either --address or --bbl is required")
		}

		ctx := cmd.Context()
		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		var bbl profile.BBL
		if scoreBBL != "" {
			bbl, err = profile.ParseBBL(scoreBBL)
			if err != nil {
				return eris.Wrap(err, "parse bbl")
			}
		} else {
			res, err := app.resolver.Resolve(ctx, scoreAddress)
			if err != nil {
				return eris.Wrapf(err, "resolve %q", scoreAddress)
			}
			fmt.Fprintf(os.Stderr, "Resolved to %s via %s\n", res.BBL, res.Path)
			bbl = res.BBL
		}

		breakdown, err := app.engine.ScoreBBL(bbl)
		if err != nil {
			return err
		}

		if scoreFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(breakdown)
		}
		printBreakdown(breakdown)
		return nil
	},
}

func printBreakdown(b *scoring.Breakdown) {
	fmt.Printf("Building: %s (%s)\n", b.Address, b.BBL)
	fmt.Printf("Score:    %d/100 (%s)\n", b.TotalScore, b.Tier)
	fmt.Printf("Action:   %s\n\n", b.Action)

	fmt.Println("Savings Potential")
	fmt.Printf("  occupancy     %2d\n", b.Factors.Occupancy)
	fmt.Printf("  energy grade  %2d\n", b.Factors.EnergyGrade)
	fmt.Printf("  site EUI      %2d\n", b.Factors.SiteEUI)
	fmt.Printf("  building age  %2d\n", b.Factors.BuildingAge)
	fmt.Println("Deployment Ease")
	fmt.Printf("  BMS           %2d\n", b.Factors.BMS)
	fmt.Printf("  existing DCV  %2d\n", b.Factors.ExistingDCV)
	fmt.Printf("  owner type    %2d\n", b.Factors.OwnerType)
	fmt.Printf("  metering      %2d\n", b.Factors.Metering)

	if b.Financial != nil {
		fmt.Printf("\nAnnual savings: $%.0f  Payback: %.1f years  NPV: $%.0f\n",
			b.Financial.AnnualSavings, b.Financial.SimplePaybackYears, b.Financial.NPV)
	}
	if len(b.Flags) > 0 {
		fmt.Println("\nFlags:")
		for _, f := range b.Flags {
			fmt.Println("  - " + f)
		}
	}
	if len(b.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, r := range b.Recommendations {
			fmt.Println("  - " + r)
		}
	}
}

func init() {
	scoreCmd.Flags().StringVar(&scoreAddress, "address", "", "street address to resolve and score")
	scoreCmd.Flags().StringVar(&scoreBBL, "bbl", "", "canonical BBL to score directly")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "text", "output format (text or json)")
	rootCmd.AddCommand(scoreCmd)
}
