package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/bldg-intel/odcv-cli/internal/config"
	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/internal/scoring"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		ReferenceYear:     2025,
		MinBuildingSize:   75000,
		EnergyCostPerSqFt: 3.50,
		HVACShare:         0.40,
		SensorCost:        2000,
		DiscountRate:      0.05,
		NPVYears:          10,
		AHUPerFloors:      5,
	}
}

func testProfile() *profile.BuildingProfile {
	return &profile.BuildingProfile{
		BBL:              profile.MustBBL("1000700001"),
		Address:          "77 WATER STREET",
		OwnerType:        "C",
		EnergyGrade:      "F",
		BuildingArea:     profile.Ptr(100000.0),
		OccupancyPercent: profile.Ptr(55.0),
		SiteEUI:          profile.Ptr(120.0),
		Floors:           profile.Ptr(10),
		YearBuilt:        profile.Ptr(1965),
		MeterCount:       profile.Ptr(4),
		HasVAV:           profile.Ptr(true),
		HasDCV:           profile.Ptr(false),
		HasBMS:           profile.Ptr(true),
	}
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestExecutiveSummary(t *testing.T) {
	p := testProfile()
	b := scoring.New(testScoringConfig()).Score(p)
	out := New().WithClock(fixedClock()).ExecutiveSummary(b, p)

	assert.Contains(t, out, "EXECUTIVE SUMMARY")
	assert.Contains(t, out, "Building: 77 WATER STREET")
	assert.Contains(t, out, "Opportunity Score: 85/100 (HIGH)")
	assert.Contains(t, out, "Annual Savings: $42,000")
	assert.Contains(t, out, "immediate action recommended")
	assert.Contains(t, out, "Energy grade F indicates significant inefficiency")
	assert.Contains(t, out, "30% HVAC energy reduction achievable")
}

func TestExecutiveSummary_NoFinancial(t *testing.T) {
	p := testProfile()
	p.BuildingArea = nil
	b := scoring.New(testScoringConfig()).Score(p)
	require.Nil(t, b.Financial)

	out := New().WithClock(fixedClock()).ExecutiveSummary(b, p)
	assert.Contains(t, out, "dollar projection not available")
	assert.NotContains(t, out, "Annual Savings: $")
}

func TestTechnicalReport(t *testing.T) {
	p := testProfile()
	b := scoring.New(testScoringConfig()).Score(p)
	out := New().WithClock(fixedClock()).TechnicalReport(b, p)

	assert.Contains(t, out, "Date: March 15, 2026")
	assert.Contains(t, out, "HVAC Type: Variable Air Volume (VAV)")
	assert.Contains(t, out, "Building Automation: Yes - BACnet ready")
	assert.Contains(t, out, "Current DCV: New installation")
	assert.Contains(t, out, "Sensor Count: 4 units")
	assert.Contains(t, out, "Existing 4 energy meters enable precise tracking")
	assert.Contains(t, out, "centralized control via existing BMS")
}

func TestTechnicalReport_UnknownVAV(t *testing.T) {
	p := testProfile()
	p.HasVAV = nil
	b := scoring.New(testScoringConfig()).Score(p)
	out := New().WithClock(fixedClock()).TechnicalReport(b, p)

	assert.Contains(t, out, "Unverified - confirm distribution type on site")
}

func TestProposalOutline(t *testing.T) {
	p := testProfile()
	b := scoring.New(testScoringConfig()).Score(p)
	out := New().WithClock(fixedClock()).ProposalOutline(b, p)

	assert.Contains(t, out, "ODCV PROPOSAL OUTLINE")
	assert.Contains(t, out, "Building operates at 55% occupancy")
	assert.Contains(t, out, "Energy grade: F")
	assert.Contains(t, out, "Implementation cost: $8,000")
	assert.Contains(t, out, "ROI: 525.0%")
	assert.Contains(t, out, "Week 3-2: Installation")
}

func TestPortfolio(t *testing.T) {
	s := scoring.New(testScoringConfig())
	p1 := testProfile()
	p2 := testProfile()
	p2.BBL = profile.MustBBL("1000380001")
	p2.Address = "140 BROADWAY"
	p2.OccupancyPercent = profile.Ptr(95.0)
	p2.EnergyGrade = "A"

	ranked := []*scoring.Breakdown{s.Score(p1), s.Score(p2)}
	out := New().WithClock(fixedClock()).Portfolio(ranked)

	assert.Contains(t, out, "Buildings Analyzed: 2")
	assert.Contains(t, out, "1. 77 WATER STREET")
	assert.Contains(t, out, "2. 140 BROADWAY")
	assert.Contains(t, out, "Date: March 15, 2026")
	assert.Contains(t, out, "High-Priority Buildings (Score >=80): 1")
}

func TestWriteXLSX(t *testing.T) {
	s := scoring.New(testScoringConfig())
	p := testProfile()
	noArea := testProfile()
	noArea.BBL = profile.MustBBL("1000380001")
	noArea.BuildingArea = nil

	ranked := []*scoring.Breakdown{s.Score(p), s.Score(noArea)}
	path := filepath.Join(t.TempDir(), "portfolio.xlsx")
	require.NoError(t, WriteXLSX(path, ranked))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 3) // header + two buildings
	assert.Equal(t, "Rank", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "1000700001", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "85", sheet.Rows[1].Cells[3].String())

	// Unknown area leaves the dollar cells blank instead of zero.
	assert.Equal(t, "", sheet.Rows[2].Cells[7].String())
}
