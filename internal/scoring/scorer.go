// Package scoring evaluates building profiles for occupancy-driven control
// ventilation retrofit opportunity. Scoring is pure and total: every profile
// gets a breakdown, and an unknown field always lands in its factor's
// least-favorable-but-never-penalizing bucket.
package scoring

import (
	"fmt"

	"github.com/bldg-intel/odcv-cli/internal/config"
	"github.com/bldg-intel/odcv-cli/internal/profile"
)

// Tier is the opportunity band a total score falls in.
type Tier string

const (
	TierHigh       Tier = "HIGH"
	TierMediumHigh Tier = "MEDIUM-HIGH"
	TierMedium     Tier = "MEDIUM"
	TierLow        Tier = "LOW"
)

// Factors holds the eight per-factor point awards.
type Factors struct {
	Occupancy   int `json:"occupancy"`
	EnergyGrade int `json:"energy_grade"`
	SiteEUI     int `json:"site_eui"`
	BuildingAge int `json:"building_age"`
	BMS         int `json:"bms"`
	ExistingDCV int `json:"existing_dcv"`
	OwnerType   int `json:"owner_type"`
	Metering    int `json:"metering"`
}

// Breakdown is the full scoring output for one building.
type Breakdown struct {
	BBL              profile.BBL        `json:"bbl"`
	Address          string             `json:"address,omitempty"`
	TotalScore       int                `json:"total_score"`
	SavingsPotential int                `json:"savings_potential"`
	DeploymentEase   int                `json:"deployment_ease"`
	Factors          Factors            `json:"factors"`
	SavingsPercent   float64            `json:"savings_percent"`
	Tier             Tier               `json:"tier"`
	Action           string             `json:"action"`
	Compatible       bool               `json:"compatible"`
	Flags            []string           `json:"flags,omitempty"`
	Recommendations  []string           `json:"recommendations,omitempty"`
	Plan             *Plan              `json:"implementation_plan,omitempty"`
	Financial        *FinancialAnalysis `json:"financial_analysis,omitempty"`
}

// Scorer applies the configured scoring parameters.
type Scorer struct {
	cfg config.ScoringConfig
}

// New builds a Scorer from configuration.
func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score produces the breakdown for one profile. It never fails: unknown
// fields take their factor's default bucket.
func (s *Scorer) Score(p *profile.BuildingProfile) *Breakdown {
	b := &Breakdown{
		BBL:        p.BBL,
		Address:    p.Address,
		Compatible: true,
	}

	if !s.checkCompatibility(p, b) {
		b.Tier = TierLow
		b.Action = actionForTier(TierLow)
		return b
	}

	b.SavingsPotential = s.scoreSavingsPotential(p, b)
	b.DeploymentEase = s.scoreDeploymentEase(p, b)
	b.TotalScore = b.SavingsPotential + b.DeploymentEase
	if b.TotalScore > 100 {
		b.TotalScore = 100
	}

	b.Tier = tierFor(b.TotalScore)
	b.Action = actionForTier(b.Tier)
	b.Plan = s.buildPlan(p)
	b.Financial = s.projectFinancials(p, b)
	b.Recommendations = s.recommend(p, b)
	return b
}

// checkCompatibility gates on a known-absent variable-air-volume system.
// Unknown VAV only warns; a missing audit record must not zero a candidate.
func (s *Scorer) checkCompatibility(p *profile.BuildingProfile, b *Breakdown) bool {
	if p.HasVAV != nil && !*p.HasVAV {
		b.Compatible = false
		b.Flags = append(b.Flags, "INCOMPATIBLE: No VAV system")
		b.Recommendations = append(b.Recommendations,
			"Building has CAV system - VAV retrofit required before ODCV")
		return false
	}
	if p.HasVAV == nil {
		b.Flags = append(b.Flags, "WARNING: VAV status unknown, verify distribution type on site")
	}
	if p.BuildingArea != nil && *p.BuildingArea < s.cfg.MinBuildingSize {
		b.Flags = append(b.Flags, "WARNING: Below minimum size threshold")
	}
	return true
}

// scoreSavingsPotential awards the four savings factors (up to 50 points)
// and sets the savings percentage from the occupancy bucket.
func (s *Scorer) scoreSavingsPotential(p *profile.BuildingProfile, b *Breakdown) int {
	switch {
	case p.OccupancyPercent != nil && *p.OccupancyPercent < 60:
		b.Factors.Occupancy = 20
		b.SavingsPercent = 0.30
		b.Flags = append(b.Flags, fmt.Sprintf("MAJOR OPPORTUNITY: Only %.0f%% occupied", *p.OccupancyPercent))
	case p.OccupancyPercent != nil && *p.OccupancyPercent < 80:
		b.Factors.Occupancy = 12
		b.SavingsPercent = 0.20
		b.Flags = append(b.Flags, fmt.Sprintf("GOOD OPPORTUNITY: %.0f%% occupied", *p.OccupancyPercent))
	default:
		b.Factors.Occupancy = 5
		b.SavingsPercent = 0.10
	}

	switch p.EnergyGrade {
	case "D", "F":
		b.Factors.EnergyGrade = 15
		b.Flags = append(b.Flags, "Poor energy grade: "+p.EnergyGrade)
	case "C":
		b.Factors.EnergyGrade = 8
	default:
		b.Factors.EnergyGrade = 3
	}

	switch {
	case p.SiteEUI != nil && *p.SiteEUI > 100:
		b.Factors.SiteEUI = 10
		b.Flags = append(b.Flags, fmt.Sprintf("High EUI: %.0f kBtu/sq ft", *p.SiteEUI))
	case p.SiteEUI != nil && *p.SiteEUI > 80:
		b.Factors.SiteEUI = 5
	}

	if p.YearBuilt != nil {
		age := s.cfg.ReferenceYear - *p.YearBuilt
		switch {
		case age > 40:
			b.Factors.BuildingAge = 5
		case age > 20:
			b.Factors.BuildingAge = 3
		}
	}

	return b.Factors.Occupancy + b.Factors.EnergyGrade + b.Factors.SiteEUI + b.Factors.BuildingAge
}

// scoreDeploymentEase awards the four deployment factors (up to 50 points).
// Existing CO2-based demand control scores higher than none: the retrofit is
// an upgrade of controls already in place.
func (s *Scorer) scoreDeploymentEase(p *profile.BuildingProfile, b *Breakdown) int {
	if boolKnownTrue(p.HasBMS) {
		b.Factors.BMS = 20
		b.Flags = append(b.Flags, "BMS present - easy integration")
	} else {
		b.Factors.BMS = 5
		b.Flags = append(b.Flags, "No BMS - standalone system needed")
	}

	if boolKnownTrue(p.HasDCV) {
		b.Factors.ExistingDCV = 15
		b.Flags = append(b.Flags, "Has CO2 DCV - upgrade to ODCV")
	} else {
		b.Factors.ExistingDCV = 10
		b.Flags = append(b.Flags, "No DCV - new installation")
	}

	if p.OwnerType == "C" {
		b.Factors.OwnerType = 10
		b.Flags = append(b.Flags, "Corporate owner - faster decisions")
	} else {
		b.Factors.OwnerType = 5
	}

	if p.MeterCount != nil && *p.MeterCount >= 3 {
		b.Factors.Metering = 5
		b.Flags = append(b.Flags, fmt.Sprintf("%d active meters - good M&V", *p.MeterCount))
	}

	return b.Factors.BMS + b.Factors.ExistingDCV + b.Factors.OwnerType + b.Factors.Metering
}

// tierFor maps a total score to its band. Lower bounds are inclusive.
func tierFor(total int) Tier {
	switch {
	case total >= 80:
		return TierHigh
	case total >= 60:
		return TierMediumHigh
	case total >= 40:
		return TierMedium
	default:
		return TierLow
	}
}

func actionForTier(t Tier) string {
	switch t {
	case TierHigh:
		return "Immediate implementation recommended"
	case TierMediumHigh:
		return "Schedule detailed assessment"
	case TierMedium:
		return "Consider with other upgrades"
	default:
		return "Focus on other measures"
	}
}

func boolKnownTrue(b *bool) bool {
	return b != nil && *b
}
