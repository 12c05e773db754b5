package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bldg-intel/odcv-cli/internal/profile"
)

func TestBuildPlan_WithBMS(t *testing.T) {
	s := New(testScoringConfig())
	plan := s.buildPlan(&profile.BuildingProfile{
		Floors:       profile.Ptr(26),
		BuildingArea: profile.Ptr(500000.0),
		HasBMS:       profile.Ptr(true),
	})

	assert.Equal(t, 5, plan.AHUCount)
	assert.Equal(t, 7, plan.SensorCount)
	assert.Equal(t, 2, plan.DeploymentWeeks)
	assert.Equal(t, "BACnet integration with existing BMS", plan.IntegrationType)
	assert.InDelta(t, 14000, plan.EstimatedCost, 0.001)
	assert.InDelta(t, 0.028, plan.CostPerSqFt, 0.0001)
}

func TestBuildPlan_WithoutBMS(t *testing.T) {
	s := New(testScoringConfig())
	plan := s.buildPlan(&profile.BuildingProfile{
		Floors: profile.Ptr(12),
	})

	assert.Equal(t, 2, plan.AHUCount)
	assert.Equal(t, 6, plan.SensorCount) // AHUs plus one per three floors
	assert.Equal(t, 4, plan.DeploymentWeeks)
	assert.Equal(t, "Standalone ODCV system with cloud connectivity", plan.IntegrationType)
	assert.Zero(t, plan.CostPerSqFt)
}

func TestBuildPlan_UnknownFloorsAssumesTen(t *testing.T) {
	s := New(testScoringConfig())
	plan := s.buildPlan(&profile.BuildingProfile{HasBMS: profile.Ptr(true)})

	assert.Equal(t, 2, plan.AHUCount)
	assert.Equal(t, 4, plan.SensorCount)
}

func TestBuildPlan_SingleAHUMinimum(t *testing.T) {
	s := New(testScoringConfig())
	plan := s.buildPlan(&profile.BuildingProfile{Floors: profile.Ptr(3)})

	assert.Equal(t, 1, plan.AHUCount)
	assert.Equal(t, "1 OA damper at AHU level", plan.ControlPoints)
}

func TestProjectFinancials(t *testing.T) {
	s := New(testScoringConfig())
	p := &profile.BuildingProfile{
		BuildingArea: profile.Ptr(100000.0),
		Floors:       profile.Ptr(10),
		HasBMS:       profile.Ptr(true),
	}
	b := &Breakdown{SavingsPercent: 0.30, Plan: s.buildPlan(p)}

	fa := s.projectFinancials(p, b)
	require.NotNil(t, fa)

	// 100k sqft at $3.50/sqft, 40% HVAC share.
	assert.InDelta(t, 140000, fa.AnnualHVACCost, 0.001)
	assert.InDelta(t, 42000, fa.AnnualSavings, 0.001)
	assert.InDelta(t, 8000, fa.ImplementationCost, 0.001)
	assert.InDelta(t, 0.2, fa.SimplePaybackYears, 0.001)
	assert.InDelta(t, 525.0, fa.ROIPercent, 0.001)

	// Ten years of $42k discounted at 5%, net of the $8k install.
	assert.InDelta(t, 316313, fa.NPV, 1.0)
}

func TestProjectFinancials_UnknownArea(t *testing.T) {
	s := New(testScoringConfig())
	p := &profile.BuildingProfile{Floors: profile.Ptr(10)}
	b := &Breakdown{SavingsPercent: 0.30, Plan: s.buildPlan(p)}

	assert.Nil(t, s.projectFinancials(p, b))
}

func TestProjectFinancials_ZeroSavingsPayback(t *testing.T) {
	s := New(testScoringConfig())
	p := &profile.BuildingProfile{
		BuildingArea: profile.Ptr(100000.0),
		HasBMS:       profile.Ptr(true),
	}
	b := &Breakdown{SavingsPercent: 0, Plan: s.buildPlan(p)}

	fa := s.projectFinancials(p, b)
	require.NotNil(t, fa)
	assert.InDelta(t, 999, fa.SimplePaybackYears, 0.001)
	assert.Zero(t, fa.ROIPercent)
	assert.InDelta(t, -8000, fa.NPV, 0.001)
}

func TestNPV_DiscountsFutureSavings(t *testing.T) {
	// Undiscounted ten years of 1000 would be 10000; at 5% it is less.
	v := npv(1000, 0, 0.05, 10)
	assert.Less(t, v, 10000.0)
	assert.Greater(t, v, 7000.0)

	// Zero rate degenerates to the undiscounted sum.
	assert.InDelta(t, 10000, npv(1000, 0, 0, 10), 0.001)
}
