package resolve

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bldg-intel/odcv-cli/internal/profile"
)

// fallbackEntry is one local address-to-BBL mapping.
type fallbackEntry struct {
	BBL     profile.BBL
	Address string
	Borough string
	ZipCode string
}

// builtinFallback covers a handful of well-known Manhattan office towers so
// the resolver works out of the box without API credentials.
var builtinFallback = map[string]fallbackEntry{
	"1155 avenue of the americas": {
		BBL:     "1010130029",
		Address: "1155 AVENUE OF THE AMERICAS",
		Borough: "MANHATTAN",
		ZipCode: "10036",
	},
	"80 maiden lane": {
		BBL:     "1000420031",
		Address: "80 MAIDEN LANE",
		Borough: "MANHATTAN",
		ZipCode: "10038",
	},
	"77 water street": {
		BBL:     "1000700001",
		Address: "77 WATER STREET",
		Borough: "MANHATTAN",
		ZipCode: "10005",
	},
	"140 broadway": {
		BBL:     "1000380001",
		Address: "140 BROADWAY",
		Borough: "MANHATTAN",
		ZipCode: "10005",
	},
	"200 e 42nd street": {
		BBL:     "1000730001",
		Address: "200 E 42ND STREET",
		Borough: "MANHATTAN",
		ZipCode: "10017",
	},
}

// fallbackFile is the YAML shape of an on-disk fallback table.
type fallbackFile struct {
	Addresses []struct {
		Address string `yaml:"address"`
		BBL     string `yaml:"bbl"`
		Borough string `yaml:"borough"`
		ZipCode string `yaml:"zip_code"`
	} `yaml:"addresses"`
}

// loadFallback merges optional file entries over the built-in table. File
// entries win on key collision. A missing file is not an error.
func loadFallback(path string) (map[string]fallbackEntry, error) {
	table := make(map[string]fallbackEntry, len(builtinFallback))
	for k, v := range builtinFallback {
		table[k] = v
	}
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("fallback file not found, using built-in table", zap.String("path", path))
			return table, nil
		}
		return nil, eris.Wrapf(err, "resolve: read fallback file %s", path)
	}

	var ff fallbackFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, eris.Wrapf(err, "resolve: parse fallback file %s", path)
	}

	for _, e := range ff.Addresses {
		bbl, err := profile.ParseBBL(e.BBL)
		if err != nil {
			zap.L().Warn("fallback entry has invalid identifier, skipping",
				zap.String("address", e.Address), zap.String("bbl", e.BBL))
			continue
		}
		table[normalizeAddress(e.Address)] = fallbackEntry{
			BBL:     bbl,
			Address: e.Address,
			Borough: e.Borough,
			ZipCode: e.ZipCode,
		}
	}
	return table, nil
}
