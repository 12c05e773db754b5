// Package dataset normalizes the four raw municipal building files into
// per-source fragment maps keyed by canonical BBL, then hands them to the
// profile merger. Load-time data errors (bad identifiers, unrecognized
// columns, malformed rows) are counted and skipped, never fatal; only a load
// that produces zero merged profiles aborts startup.
package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/config"
	"github.com/bldg-intel/odcv-cli/internal/profile"
)

// SourceStats counts load outcomes for one source family.
type SourceStats struct {
	Rows           int      `json:"rows"`
	Kept           int      `json:"kept"`
	BadIdentifiers int      `json:"bad_identifiers"`
	MissingFields  []string `json:"missing_fields,omitempty"`
	FilesRead      int      `json:"files_read"`
}

// LoadStats aggregates per-source stats for a full load.
type LoadStats struct {
	Pluto    SourceStats `json:"pluto"`
	Energy   SourceStats `json:"energy"`
	Systems  SourceStats `json:"systems"`
	Grades   SourceStats `json:"grades"`
	Profiles int         `json:"profiles"`
}

// LoadAll normalizes every source, merges the fragments, and returns a fresh
// snapshot. Missing source files degrade coverage but do not abort; zero
// merged profiles is a fatal startup condition.
func LoadAll(ctx context.Context, cfg config.DataConfig, version int64) (*profile.Snapshot, *LoadStats, error) {
	log := zap.L().With(zap.Int64("version", version))
	stats := &LoadStats{}

	pluto, err := LoadPluto(ctx, cfg.PlutoDir, &stats.Pluto)
	if err != nil {
		return nil, nil, eris.Wrap(err, "dataset: load pluto")
	}
	log.Info("loaded physical records", zap.Int("kept", stats.Pluto.Kept), zap.Int("bad_identifiers", stats.Pluto.BadIdentifiers))

	energy, err := loadOptionalFile(ctx, cfg.EnergyFile, &stats.Energy, parseEnergy)
	if err != nil {
		return nil, nil, eris.Wrap(err, "dataset: load energy")
	}
	log.Info("loaded energy records", zap.Int("kept", stats.Energy.Kept), zap.Int("bad_identifiers", stats.Energy.BadIdentifiers))

	systems, err := loadOptionalFile(ctx, cfg.SystemsFile, &stats.Systems, parseSystems)
	if err != nil {
		return nil, nil, eris.Wrap(err, "dataset: load systems")
	}
	log.Info("loaded systems records", zap.Int("kept", stats.Systems.Kept), zap.Int("bad_identifiers", stats.Systems.BadIdentifiers))

	grades, err := loadOptionalFile(ctx, cfg.GradesFile, &stats.Grades, parseGrades)
	if err != nil {
		return nil, nil, eris.Wrap(err, "dataset: load grades")
	}
	log.Info("loaded grade records", zap.Int("kept", stats.Grades.Kept), zap.Int("bad_identifiers", stats.Grades.BadIdentifiers))

	table := profile.Merge(pluto, energy, systems, grades)
	stats.Profiles = len(table)
	if stats.Profiles == 0 {
		return nil, nil, eris.New("dataset: zero merged profiles, refusing to publish an empty table")
	}

	log.Info("merged building profiles", zap.Int("profiles", stats.Profiles))
	return profile.NewSnapshot(table, version), stats, nil
}

// parseFunc normalizes one open source file into frags.
type parseFunc func(r io.Reader, frags map[profile.BBL]profile.Fragment, stats *SourceStats) error

// loadOptionalFile opens a single-file source, skipping it with a warning
// when the file is absent (not every deployment carries every dataset).
func loadOptionalFile(ctx context.Context, path string, stats *SourceStats, parse parseFunc) (map[profile.BBL]profile.Fragment, error) {
	frags := make(map[profile.BBL]profile.Fragment)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return frags, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("source file not found, skipping", zap.String("path", path))
			return frags, nil
		}
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	stats.FilesRead++
	if err := parse(f, frags, stats); err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}
	return frags, nil
}

// newCSVReader returns a reader tolerant of ragged rows; per-row problems
// are handled at the field level, not by aborting the file.
func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// readHeader reads the header row and warns once per canonical field whose
// aliases are all absent from this release.
func readHeader(cr *csv.Reader, source profile.Source, stats *SourceStats, aliases map[string][]string) (map[string]int, error) {
	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}
	colIdx := mapColumnsNormalized(header)

	for field, names := range aliases {
		if !anyColumnPresent(colIdx, names...) {
			stats.MissingFields = append(stats.MissingFields, field)
			zap.L().Warn("no known column for field, skipping field",
				zap.String("source", string(source)),
				zap.String("field", field),
			)
		}
	}
	return colIdx, nil
}
