package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bldg-intel/odcv-cli/internal/query"
)

var (
	searchMinArea      float64
	searchMaxOccupancy float64
	searchGrade        string
	searchVAVOnly      bool
	searchOfficeOnly   bool
	searchMinYear      int
	searchMaxYear      int
	searchTop          int
	searchFormat       string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the dataset and rank matches by opportunity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		f := query.Filter{
			EnergyGrade: searchGrade,
			OfficeOnly:  searchOfficeOnly,
		}
		if cmd.Flags().Changed("min-area") {
			f.MinArea = &searchMinArea
		}
		if cmd.Flags().Changed("max-occupancy") {
			f.MaxOccupancy = &searchMaxOccupancy
		}
		if searchVAVOnly {
			v := true
			f.HasVAV = &v
		}
		if cmd.Flags().Changed("min-year") {
			f.MinYearBuilt = &searchMinYear
		}
		if cmd.Flags().Changed("max-year") {
			f.MaxYearBuilt = &searchMaxYear
		}

		ranked := app.engine.Opportunities(f, searchTop)

		if searchFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ranked)
		}

		fmt.Printf("%-12s %-35s %5s  %-11s\n", "BBL", "ADDRESS", "SCORE", "TIER")
		for _, b := range ranked {
			addr := b.Address
			if len(addr) > 35 {
				addr = addr[:32] + "..."
			}
			fmt.Printf("%-12s %-35s %5d  %-11s\n", b.BBL, addr, b.TotalScore, b.Tier)
		}
		fmt.Printf("\n%d buildings\n", len(ranked))
		return nil
	},
}

func init() {
	searchCmd.Flags().Float64Var(&searchMinArea, "min-area", 0, "minimum building area in sq ft")
	searchCmd.Flags().Float64Var(&searchMaxOccupancy, "max-occupancy", 0, "maximum occupancy percent")
	searchCmd.Flags().StringVar(&searchGrade, "grade", "", "energy grade letter (A-F)")
	searchCmd.Flags().BoolVar(&searchVAVOnly, "vav", false, "only buildings with a known VAV system")
	searchCmd.Flags().BoolVar(&searchOfficeOnly, "office", false, "only office-class buildings")
	searchCmd.Flags().IntVar(&searchMinYear, "min-year", 0, "earliest construction year")
	searchCmd.Flags().IntVar(&searchMaxYear, "max-year", 0, "latest construction year")
	searchCmd.Flags().IntVar(&searchTop, "top", 0, "limit to the top N results (0 = all)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "output format (text or json)")
	rootCmd.AddCommand(searchCmd)
}
