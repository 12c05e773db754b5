package dataset

import (
	"io"

	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/profile"
)

// systemsAliases maps canonical systems fields to their audit-file column
// names across filing cycles.
var systemsAliases = map[string][]string{
	"bbl": {"Borough/Block/Lot (BBL)", "BBL", "10 Digit BBL"},
	"bms": {
		"Building automation system? (Y/N)",
		"Building Automation System (Y/N)",
		"Building Automation System",
	},
	"distribution": {
		"Central Distribution Type: HVAC Sys 1",
		"Central Distribution Type",
		"HVAC Central Distribution Type",
	},
	"dcv": {
		"Demand Control Ventilation: HVAC Sys 1",
		"Demand Control Ventilation",
		"Demand Controlled Ventilation",
	},
}

// parseSystems normalizes the systems audit file. The boolean features keep
// their three-valued shape: an empty answer stays unknown rather than false.
func parseSystems(r io.Reader, frags map[profile.BBL]profile.Fragment, stats *SourceStats) error {
	cr := newCSVReader(r)
	colIdx, err := readHeader(cr, profile.SourceSystems, stats, systemsAliases)
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

		bbl, err := profile.ParseBBL(firstNonEmpty(record, colIdx, systemsAliases["bbl"]...))
		if err != nil {
			stats.BadIdentifiers++
			continue
		}

		// Last-seen row wins on duplicate identifiers.
		frags[bbl] = profile.Fragment{
			Source: profile.SourceSystems,
			HasVAV: vavFromDistribution(firstNonEmpty(record, colIdx, systemsAliases["distribution"]...)),
			HasDCV: parseBoolYes(firstNonEmpty(record, colIdx, systemsAliases["dcv"]...)),
			HasBMS: parseBoolYes(firstNonEmpty(record, colIdx, systemsAliases["bms"]...)),
		}
		stats.Kept++
	}

	return nil
}

// vavFromDistribution derives the variable-air-volume flag from the central
// distribution type free text. An empty answer is unknown, not false.
func vavFromDistribution(s string) *bool {
	if s == "" {
		return nil
	}
	v := containsFold(s, "Variable Air Volume") || containsFold(s, "VAV")
	return &v
}
