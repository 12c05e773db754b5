package scoring

import (
	"fmt"

	"github.com/bldg-intel/odcv-cli/internal/profile"
)

// recommend selects action items from the breakdown facts. Stateless: the
// same profile always yields the same list in the same order.
func (s *Scorer) recommend(p *profile.BuildingProfile, b *Breakdown) []string {
	recs := b.Recommendations

	switch {
	case b.TotalScore >= 80:
		recs = append(recs, "IMMEDIATE ACTION: Schedule ODCV deployment assessment")
	case b.TotalScore >= 60:
		recs = append(recs, "GOOD CANDIDATE: Include in next quarter planning")
	}

	if boolKnownTrue(p.HasDCV) {
		recs = append(recs, "Upgrade existing CO2-based DCV to occupancy-based control for 10-15% additional savings")
	} else {
		recs = append(recs, "Install new ODCV system with occupancy sensors at AHU level")
	}

	if boolKnownTrue(p.HasBMS) {
		recs = append(recs, "Integrate ODCV with existing BMS for centralized control")
	} else {
		recs = append(recs, "Deploy standalone ODCV system with cloud-based monitoring")
	}

	if p.OccupancyPercent != nil && *p.OccupancyPercent < 60 {
		recs = append(recs, fmt.Sprintf(
			"With only %.0f%% occupancy, prioritize vacant floor detection to maximize savings",
			*p.OccupancyPercent))
	}

	if b.Factors.EnergyGrade == 15 {
		recs = append(recs, fmt.Sprintf(
			"Current grade %s indicates significant waste - ODCV can help achieve grade C or better",
			p.EnergyGrade))
	}

	return recs
}
