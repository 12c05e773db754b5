package dataset

import (
	"io"

	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/profile"
)

// energyAliases maps canonical energy fields to their historical column
// names across benchmarking release years.
var energyAliases = map[string][]string{
	"bbl": {
		"Borough/Block/Lot (BBL)",
		"NYC Borough, Block and Lot (BBL)",
		"BBL - 10 digits",
		"BBL",
	},
	"occupancy_percent": {"Occupancy", "Occupancy (%)", "Percent Occupied"},
	"site_eui": {
		"Site EUI (kBtu/ft²)",
		"Site EUI (kBtu/ft2)",
		"Site EUI (kBtu/sq ft)",
		"Site EUI",
	},
	"energy_star_score": {"ENERGY STAR Score", "Energy Star Score"},
	"peak_demand_kw": {
		"Annual Maximum Demand (kW)",
		"Annual Maximum Demand (KW)",
		"Peak Demand (kW)",
	},
	"meter_count": {
		"Number of Active Energy Meters - Total",
		"Total Active Energy Meters",
		"Active Energy Meters",
	},
}

// parseEnergy normalizes the energy benchmarking file.
func parseEnergy(r io.Reader, frags map[profile.BBL]profile.Fragment, stats *SourceStats) error {
	cr := newCSVReader(r)
	colIdx, err := readHeader(cr, profile.SourceEnergy, stats, energyAliases)
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

		bbl, err := profile.ParseBBL(firstNonEmpty(record, colIdx, energyAliases["bbl"]...))
		if err != nil {
			stats.BadIdentifiers++
			continue
		}

		// Last-seen row wins on duplicate identifiers.
		frags[bbl] = profile.Fragment{
			Source:           profile.SourceEnergy,
			OccupancyPercent: parseFloatPtr(firstNonEmpty(record, colIdx, energyAliases["occupancy_percent"]...)),
			SiteEUI:          parseFloatPtr(firstNonEmpty(record, colIdx, energyAliases["site_eui"]...)),
			EnergyStarScore:  parseFloatPtr(firstNonEmpty(record, colIdx, energyAliases["energy_star_score"]...)),
			PeakDemandKW:     parseFloatPtr(firstNonEmpty(record, colIdx, energyAliases["peak_demand_kw"]...)),
			MeterCount:       parseIntPtr(firstNonEmpty(record, colIdx, energyAliases["meter_count"]...)),
		}
		stats.Kept++
	}

	return nil
}
