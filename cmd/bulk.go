package main

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var bulkFile string

var bulkCmd = &cobra.Command{
	Use:   "bulk [address ...]",
	Short: "Resolve and score many addresses concurrently",
	Long:  "Addresses come from arguments or, with --file, one per line. Results keep input order; the run is persisted to the cache store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addresses := args
		if bulkFile != "" {
			fromFile, err := readAddressFile(bulkFile)
			if err != nil {
				return err
			}
			addresses = append(addresses, fromFile...)
		}
		if len(addresses) == 0 {
			return eris.New("no addresses given (pass arguments or --file)")
		}

		ctx := cmd.Context()
		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		results, err := app.bulk.Score(ctx, addresses)
		if err != nil {
			return err
		}

		if app.store != nil {
			run, err := app.store.SaveBulkRun(ctx, addresses, results)
			if err != nil {
				zap.L().Warn("persisting bulk run failed", zap.Error(err))
			} else {
				zap.L().Info("bulk run saved", zap.String("run_id", run.ID))
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func readAddressFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, eris.Wrapf(sc.Err(), "read %s", path)
}

func init() {
	bulkCmd.Flags().StringVarP(&bulkFile, "file", "f", "", "file with one address per line")
	rootCmd.AddCommand(bulkCmd)
}
