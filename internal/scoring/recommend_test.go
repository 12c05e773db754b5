package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bldg-intel/odcv-cli/internal/profile"
)

func TestRecommend_PrimeCandidate(t *testing.T) {
	b := New(testScoringConfig()).Score(primeCandidate())

	assert.Contains(t, b.Recommendations, "IMMEDIATE ACTION: Schedule ODCV deployment assessment")
	assert.Contains(t, b.Recommendations, "Install new ODCV system with occupancy sensors at AHU level")
	assert.Contains(t, b.Recommendations, "Integrate ODCV with existing BMS for centralized control")
	assert.Contains(t, b.Recommendations,
		"With only 55% occupancy, prioritize vacant floor detection to maximize savings")
	assert.Contains(t, b.Recommendations,
		"Current grade F indicates significant waste - ODCV can help achieve grade C or better")
}

func TestRecommend_DCVUpgradePath(t *testing.T) {
	p := primeCandidate()
	p.HasDCV = profile.Ptr(true)

	b := New(testScoringConfig()).Score(p)

	assert.Contains(t, b.Recommendations,
		"Upgrade existing CO2-based DCV to occupancy-based control for 10-15% additional savings")
	assert.NotContains(t, b.Recommendations, "Install new ODCV system with occupancy sensors at AHU level")
}

func TestRecommend_StandaloneWithoutBMS(t *testing.T) {
	p := primeCandidate()
	p.HasBMS = profile.Ptr(false)

	b := New(testScoringConfig()).Score(p)

	assert.Contains(t, b.Recommendations, "Deploy standalone ODCV system with cloud-based monitoring")
	assert.NotContains(t, b.Recommendations, "Integrate ODCV with existing BMS for centralized control")
}

func TestRecommend_MediumHighCandidate(t *testing.T) {
	p := primeCandidate()
	p.OccupancyPercent = profile.Ptr(75.0)
	p.EnergyGrade = ""
	p.SiteEUI = nil

	b := New(testScoringConfig()).Score(p)

	assert.GreaterOrEqual(t, b.TotalScore, 60)
	assert.Less(t, b.TotalScore, 80)
	assert.Contains(t, b.Recommendations, "GOOD CANDIDATE: Include in next quarter planning")
}
