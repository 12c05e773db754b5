package query

import "time"

// DatasetStats summarizes the current snapshot.
type DatasetStats struct {
	Buildings        int            `json:"buildings"`
	WithOccupancy    int            `json:"with_occupancy"`
	WithEnergyGrade  int            `json:"with_energy_grade"`
	WithSystemsData  int            `json:"with_systems_data"`
	AvgOccupancy     float64        `json:"avg_occupancy,omitempty"`
	AvgSiteEUI       float64        `json:"avg_site_eui,omitempty"`
	GradeCounts      map[string]int `json:"grade_counts,omitempty"`
	VAVBuildings     int            `json:"vav_buildings"`
	BMSBuildings     int            `json:"bms_buildings"`
	SnapshotVersion  int64          `json:"snapshot_version"`
	SnapshotLoadedAt time.Time      `json:"snapshot_loaded_at"`
}

// Stats walks the snapshot once and aggregates coverage and averages.
// Unknown fields are excluded from denominators, not counted as zero.
func (e *Engine) Stats() DatasetStats {
	snap := e.pub.Current()
	stats := DatasetStats{
		Buildings:        snap.Len(),
		GradeCounts:      make(map[string]int),
		SnapshotVersion:  snap.Version,
		SnapshotLoadedAt: snap.LoadedAt,
	}

	var occSum, euiSum float64
	var euiCount int
	for _, p := range snap.All() {
		if p.OccupancyPercent != nil {
			stats.WithOccupancy++
			occSum += *p.OccupancyPercent
		}
		if p.SiteEUI != nil {
			euiCount++
			euiSum += *p.SiteEUI
		}
		if p.EnergyGrade != "" {
			stats.WithEnergyGrade++
			stats.GradeCounts[p.EnergyGrade]++
		}
		if p.HasVAV != nil || p.HasDCV != nil || p.HasBMS != nil {
			stats.WithSystemsData++
		}
		if p.HasVAV != nil && *p.HasVAV {
			stats.VAVBuildings++
		}
		if p.HasBMS != nil && *p.HasBMS {
			stats.BMSBuildings++
		}
	}

	if stats.WithOccupancy > 0 {
		stats.AvgOccupancy = occSum / float64(stats.WithOccupancy)
	}
	if euiCount > 0 {
		stats.AvgSiteEUI = euiSum / float64(euiCount)
	}
	return stats
}
