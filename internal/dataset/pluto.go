package dataset

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/profile"
)

// boroughOrder is the fixed concatenation order for the per-borough physical
// files. Within the concatenated stream, a duplicate BBL keeps the last-seen
// row: the files are append/override ordered upstream.
var boroughOrder = []string{"MN", "BX", "BK", "QN", "SI"}

// plutoAliases maps canonical physical fields to their historical column
// names across yearly releases.
var plutoAliases = map[string][]string{
	"bbl":            {"BBL", "bbl"},
	"address":        {"Address", "address"},
	"zip_code":       {"ZipCode", "postcode", "zipcode"},
	"building_area":  {"BldgArea", "bldgarea", "Building Area"},
	"office_area":    {"OfficeArea", "officearea", "Office Area"},
	"floors":         {"NumFloors", "numfloors", "Floors"},
	"year_built":     {"YearBuilt", "yearbuilt", "Year Built"},
	"owner_name":     {"OwnerName", "ownername", "Owner Name"},
	"owner_type":     {"OwnerType", "ownertype", "Owner Type"},
	"building_class": {"BldgClass", "bldgclass", "Building Class"},
}

// LoadPluto concatenates the per-borough physical files found in dir and
// normalizes them into one fragment map. Missing borough files are skipped;
// an empty directory yields an empty map, which the caller treats as a
// coverage problem rather than a parse failure.
func LoadPluto(ctx context.Context, dir string, stats *SourceStats) (map[profile.BBL]profile.Fragment, error) {
	frags := make(map[profile.BBL]profile.Fragment)

	for _, borough := range boroughOrder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, borough+".csv")
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				zap.L().Warn("borough file not found, skipping", zap.String("path", path))
				continue
			}
			return nil, eris.Wrapf(err, "open %s", path)
		}

		stats.FilesRead++
		err = parsePluto(f, borough, frags, stats)
		f.Close() //nolint:errcheck
		if err != nil {
			return nil, eris.Wrapf(err, "parse %s", path)
		}
	}

	return frags, nil
}

// parsePluto normalizes one borough file into frags.
func parsePluto(r io.Reader, borough string, frags map[profile.BBL]profile.Fragment, stats *SourceStats) error {
	cr := newCSVReader(r)
	colIdx, err := readHeader(cr, profile.SourcePluto, stats, plutoAliases)
	if err != nil {
		return err
	}

	// Older releases omit the precomposed BBL column and carry the three
	// segments separately.
	hasBBLColumn := anyColumnPresent(colIdx, plutoAliases["bbl"]...)

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

		rawBBL := firstNonEmpty(record, colIdx, plutoAliases["bbl"]...)
		if !hasBBLColumn {
			rawBBL = composeBBL(record, colIdx)
		}

		bbl, err := profile.ParseBBL(rawBBL)
		if err != nil {
			stats.BadIdentifiers++
			continue
		}

		// Last-seen row wins on duplicate identifiers.
		frags[bbl] = profile.Fragment{
			Source:        profile.SourcePluto,
			Address:       firstNonEmpty(record, colIdx, plutoAliases["address"]...),
			ZipCode:       firstNonEmpty(record, colIdx, plutoAliases["zip_code"]...),
			Borough:       borough,
			BuildingArea:  parseFloatPtr(firstNonEmpty(record, colIdx, plutoAliases["building_area"]...)),
			OfficeArea:    parseFloatPtr(firstNonEmpty(record, colIdx, plutoAliases["office_area"]...)),
			Floors:        parseIntPtr(firstNonEmpty(record, colIdx, plutoAliases["floors"]...)),
			YearBuilt:     parseYearBuilt(firstNonEmpty(record, colIdx, plutoAliases["year_built"]...)),
			OwnerName:     firstNonEmpty(record, colIdx, plutoAliases["owner_name"]...),
			OwnerType:     firstNonEmpty(record, colIdx, plutoAliases["owner_type"]...),
			BuildingClass: firstNonEmpty(record, colIdx, plutoAliases["building_class"]...),
		}
		stats.Kept++
	}

	return nil
}

// composeBBL assembles a BBL from the separate BoroCode/Block/Lot columns.
func composeBBL(record []string, colIdx map[string]int) string {
	boro := getColN(record, colIdx, "BoroCode")
	block := getColN(record, colIdx, "Block")
	lot := getColN(record, colIdx, "Lot")
	if boro == "" || block == "" || lot == "" {
		return ""
	}
	return boro + leftPad(block, 5) + leftPad(lot, 4)
}

// leftPad zero-pads s to width, leaving longer strings alone.
func leftPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// parseYearBuilt drops the placeholder zero the physical files use for
// unknown construction years.
func parseYearBuilt(s string) *int {
	y := parseIntPtr(s)
	if y == nil || *y == 0 {
		return nil
	}
	return y
}
