package scoring

import (
	"math"
	"strconv"

	"github.com/bldg-intel/odcv-cli/internal/profile"
)

// assumedFloors stands in when the physical record has no floor count; the
// figure matches a mid-size NYC office building.
const assumedFloors = 10

// Plan describes the sensor deployment for one building.
type Plan struct {
	AHUCount        int     `json:"ahu_count"`
	SensorCount     int     `json:"sensor_count"`
	SensorLocations string  `json:"sensor_locations"`
	IntegrationType string  `json:"integration_type"`
	DeploymentWeeks int     `json:"deployment_weeks"`
	ControlPoints   string  `json:"control_points"`
	EstimatedCost   float64 `json:"estimated_cost"`
	CostPerSqFt     float64 `json:"cost_per_sqft,omitempty"`
}

// FinancialAnalysis projects savings against implementation cost.
type FinancialAnalysis struct {
	AnnualHVACCost     float64 `json:"estimated_annual_hvac_cost"`
	AnnualSavings      float64 `json:"annual_savings_dollars"`
	ImplementationCost float64 `json:"implementation_cost"`
	SimplePaybackYears float64 `json:"simple_payback_years"`
	ROIPercent         float64 `json:"roi_percent"`
	NPV                float64 `json:"npv"`
}

// buildPlan sizes the deployment from floor count and BMS presence. An
// unknown floor count falls back to assumedFloors.
func (s *Scorer) buildPlan(p *profile.BuildingProfile) *Plan {
	floors := assumedFloors
	if p.Floors != nil && *p.Floors > 0 {
		floors = *p.Floors
	}

	ahuCount := floors / s.cfg.AHUPerFloors
	if ahuCount < 1 {
		ahuCount = 1
	}

	plan := &Plan{
		AHUCount:        ahuCount,
		SensorLocations: "Mechanical rooms and lobbies only",
		ControlPoints:   controlPoints(ahuCount),
	}
	if boolKnownTrue(p.HasBMS) {
		plan.SensorCount = ahuCount + 2
		plan.IntegrationType = "BACnet integration with existing BMS"
		plan.DeploymentWeeks = 2
	} else {
		plan.SensorCount = ahuCount + floors/3
		plan.IntegrationType = "Standalone ODCV system with cloud connectivity"
		plan.DeploymentWeeks = 4
	}
	plan.EstimatedCost = float64(plan.SensorCount) * s.cfg.SensorCost
	if p.BuildingArea != nil && *p.BuildingArea > 0 {
		plan.CostPerSqFt = plan.EstimatedCost / *p.BuildingArea
	}
	return plan
}

// projectFinancials computes the projection, or nil when the building area
// is unknown: a dollar figure without a real area would be fabricated.
func (s *Scorer) projectFinancials(p *profile.BuildingProfile, b *Breakdown) *FinancialAnalysis {
	if b.Plan == nil || p.BuildingArea == nil || *p.BuildingArea <= 0 {
		return nil
	}

	annualHVACCost := *p.BuildingArea * s.cfg.EnergyCostPerSqFt * s.cfg.HVACShare
	annualSavings := annualHVACCost * b.SavingsPercent
	cost := b.Plan.EstimatedCost

	fa := &FinancialAnalysis{
		AnnualHVACCost:     math.Round(annualHVACCost),
		AnnualSavings:      math.Round(annualSavings),
		ImplementationCost: cost,
	}

	if annualSavings > 0 {
		fa.SimplePaybackYears = round1(cost / annualSavings)
	} else {
		fa.SimplePaybackYears = 999
	}
	if cost > 0 {
		fa.ROIPercent = round1(annualSavings / cost * 100)
	}
	fa.NPV = math.Round(npv(annualSavings, cost, s.cfg.DiscountRate, s.cfg.NPVYears))

	return fa
}

// npv discounts the level savings stream over years and nets out the upfront
// cost.
func npv(annualSavings, cost, rate float64, years int) float64 {
	var pv float64
	for t := 1; t <= years; t++ {
		pv += annualSavings / math.Pow(1+rate, float64(t))
	}
	return pv - cost
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func controlPoints(ahuCount int) string {
	if ahuCount == 1 {
		return "1 OA damper at AHU level"
	}
	return strconv.Itoa(ahuCount) + " OA dampers at AHU level"
}
