package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/dataset"
	"github.com/bldg-intel/odcv-cli/internal/store"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the raw dataset files and refresh the snapshot cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		snap, stats, err := dataset.LoadAll(ctx, cfg.Data, time.Now().Unix())
		if err != nil {
			return eris.Wrap(err, "load datasets")
		}

		if cfg.Store.Path != "" {
			s, err := store.NewSQLite(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			if err := s.Migrate(ctx); err != nil {
				return err
			}
			if err := s.SaveSnapshot(ctx, snap); err != nil {
				return err
			}
			zap.L().Info("snapshot cached", zap.String("path", cfg.Store.Path))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
