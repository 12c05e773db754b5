package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bldg-intel/odcv-cli/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List persisted bulk scoring runs, or show one by id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Path == "" {
			return eris.New("no store configured (set store.path)")
		}

		ctx := cmd.Context()
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck
		if err := s.Migrate(ctx); err != nil {
			return err
		}

		if len(args) == 1 {
			run, err := s.GetBulkRun(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		runs, err := s.ListBulkRuns(ctx, runsLimit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %d addresses\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, len(r.Addresses))
		}
		fmt.Printf("\n%d runs\n", len(runs))
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
