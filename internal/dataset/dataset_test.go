package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bldg-intel/odcv-cli/internal/config"
	"github.com/bldg-intel/odcv-cli/internal/profile"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testDataConfig(t *testing.T) config.DataConfig {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "pluto", "MN.csv"),
		"BBL,Address,BldgArea,NumFloors,YearBuilt,OwnerType\n"+
			"1000700001,77 WATER STREET,546882,26,1969,C\n")
	writeFile(t, filepath.Join(dir, "pluto", "BK.csv"),
		"BBL,Address,BldgArea,NumFloors,YearBuilt,OwnerType\n"+
			"3001230045,1 BROOKLYN WAY,80000,10,1980,P\n")
	writeFile(t, filepath.Join(dir, "ll84.csv"),
		`Borough/Block/Lot (BBL),Occupancy,Site EUI (kBtu/ft²),Number of Active Energy Meters - Total`+"\n"+
			"1000700001,55,120,4\n")
	writeFile(t, filepath.Join(dir, "ll87.csv"),
		`Borough/Block/Lot (BBL),Building automation system? (Y/N),Central Distribution Type: HVAC Sys 1,Demand Control Ventilation: HVAC Sys 1`+"\n"+
			"1000700001,Yes,Variable Air Volume,No\n")
	writeFile(t, filepath.Join(dir, "ll33.csv"),
		"CBL 10 Digit BBL,Building Energy Efficiency Grade\n"+
			"1000700001,F\n"+
			"2009990001,C\n")

	return config.DataConfig{
		PlutoDir:    filepath.Join(dir, "pluto"),
		EnergyFile:  filepath.Join(dir, "ll84.csv"),
		SystemsFile: filepath.Join(dir, "ll87.csv"),
		GradesFile:  filepath.Join(dir, "ll33.csv"),
	}
}

func TestLoadAll(t *testing.T) {
	snap, stats, err := LoadAll(context.Background(), testDataConfig(t), 1)
	require.NoError(t, err)

	// Outer union: two physical rows plus a grades-only building.
	assert.Equal(t, 3, stats.Profiles)
	assert.Equal(t, 2, stats.Pluto.FilesRead)

	p := snap.Get(profile.MustBBL("1000700001"))
	require.NotNil(t, p)
	assert.Equal(t, "77 WATER STREET", p.Address)
	require.NotNil(t, p.OccupancyPercent)
	assert.InDelta(t, 55, *p.OccupancyPercent, 0.001)
	require.NotNil(t, p.HasVAV)
	assert.True(t, *p.HasVAV)
	assert.Equal(t, "F", p.EnergyGrade)

	// Grades-only building exists with everything else unknown.
	g := snap.Get(profile.MustBBL("2009990001"))
	require.NotNil(t, g)
	assert.Equal(t, "C", g.EnergyGrade)
	assert.Nil(t, g.BuildingArea)
	assert.Nil(t, g.HasBMS)
}

func TestLoadAll_MissingOptionalSources(t *testing.T) {
	cfg := testDataConfig(t)
	cfg.SystemsFile = filepath.Join(t.TempDir(), "nope.csv")
	cfg.GradesFile = ""

	snap, stats, err := LoadAll(context.Background(), cfg, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Profiles)

	p := snap.Get(profile.MustBBL("1000700001"))
	require.NotNil(t, p)
	assert.Nil(t, p.HasVAV, "no systems coverage leaves flags unknown")
	assert.Empty(t, p.EnergyGrade)
}

func TestLoadAll_ZeroProfilesIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DataConfig{
		PlutoDir:    filepath.Join(dir, "pluto"), // no files at all
		EnergyFile:  filepath.Join(dir, "nope84.csv"),
		SystemsFile: filepath.Join(dir, "nope87.csv"),
		GradesFile:  filepath.Join(dir, "nope33.csv"),
	}

	_, _, err := LoadAll(context.Background(), cfg, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero merged profiles")
}

func TestLoadAll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := LoadAll(ctx, testDataConfig(t), 1)
	assert.Error(t, err)
}
