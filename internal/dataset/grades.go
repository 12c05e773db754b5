package dataset

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/profile"
)

// gradesAliases maps canonical grade fields to their column names across
// disclosure years. The grades file also repeats two benchmarking metrics;
// those are kept as gap fillers (the merge authority table prevents them
// from displacing benchmarking values).
var gradesAliases = map[string][]string{
	"bbl": {"CBL 10 Digit BBL", "10 Digit BBL", "BBL"},
	"energy_grade": {
		"Building Energy Efficiency Grade",
		"Energy Efficiency Grade",
		"Letter Grade",
	},
	"energy_star_score": {"ENERGY STAR Score", "Energy Star Score"},
	"site_eui": {
		"Site EUI (kBtu/ft²)",
		"Site EUI (kBtu/ft2)",
		"Site EUI",
	},
}

// parseGrades normalizes the efficiency-grade disclosure file.
func parseGrades(r io.Reader, frags map[profile.BBL]profile.Fragment, stats *SourceStats) error {
	cr := newCSVReader(r)
	colIdx, err := readHeader(cr, profile.SourceGrades, stats, gradesAliases)
	if err != nil {
		return err
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			zap.L().Debug("skipping malformed row", zap.Error(err))
			continue
		}
		stats.Rows++

		bbl, err := profile.ParseBBL(firstNonEmpty(record, colIdx, gradesAliases["bbl"]...))
		if err != nil {
			stats.BadIdentifiers++
			continue
		}

		// Last-seen row wins on duplicate identifiers.
		frags[bbl] = profile.Fragment{
			Source:          profile.SourceGrades,
			EnergyGrade:     normalizeGrade(firstNonEmpty(record, colIdx, gradesAliases["energy_grade"]...)),
			EnergyStarScore: parseFloatPtr(firstNonEmpty(record, colIdx, gradesAliases["energy_star_score"]...)),
			SiteEUI:         parseFloatPtr(firstNonEmpty(record, colIdx, gradesAliases["site_eui"]...)),
		}
		stats.Kept++
	}

	return nil
}

// normalizeGrade reduces a grade cell to a single letter A-F. The disclosure
// files use "N" / "Not Covered" for exempt buildings; those stay unknown.
func normalizeGrade(s string) string {
	g := strings.ToUpper(strings.TrimSpace(s))
	if len(g) != 1 || g[0] < 'A' || g[0] > 'F' {
		return ""
	}
	return g
}
