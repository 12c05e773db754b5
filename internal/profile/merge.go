package profile

import (
	"go.uber.org/zap"
)

// fieldAuthority maps each canonical field to its ordered source priority.
// The first source listed is authoritative; later sources may fill a field
// their predecessors left unknown but can never overwrite a populated value.
// Most fields have exactly one source; the shared energy metrics appear in
// both the benchmarking and grades releases, with benchmarking preferred.
var fieldAuthority = map[string][]Source{
	"address":        {SourcePluto},
	"zip_code":       {SourcePluto},
	"borough":        {SourcePluto},
	"building_area":  {SourcePluto},
	"office_area":    {SourcePluto},
	"floors":         {SourcePluto},
	"year_built":     {SourcePluto},
	"owner_name":     {SourcePluto},
	"owner_type":     {SourcePluto},
	"building_class": {SourcePluto},

	"occupancy_percent": {SourceEnergy},
	"site_eui":          {SourceEnergy, SourceGrades},
	"energy_star_score": {SourceEnergy, SourceGrades},
	"peak_demand_kw":    {SourceEnergy},
	"meter_count":       {SourceEnergy},

	"has_vav": {SourceSystems},
	"has_dcv": {SourceSystems},
	"has_bms": {SourceSystems},

	"energy_grade": {SourceGrades},
}

// authorityRank returns the priority rank of source for field (0 = most
// authoritative) or -1 when the source has no authority over the field.
func authorityRank(field string, source Source) int {
	for i, s := range fieldAuthority[field] {
		if s == source {
			return i
		}
	}
	return -1
}

// merged tracks, per field, the rank of the source that populated it, so a
// lower-priority source can never change a populated field regardless of the
// order fragments are applied in.
type merged struct {
	profile *BuildingProfile
	rank    map[string]int
}

// claim reports whether source may set field, recording the claim when it
// wins. A field is won by the lowest rank seen; ties keep the first writer,
// which cannot happen across sources since ranks are unique per field.
func (m *merged) claim(field string, source Source) bool {
	r := authorityRank(field, source)
	if r < 0 {
		zap.L().Debug("merge: source has no authority over field",
			zap.String("field", field),
			zap.String("source", string(source)),
		)
		return false
	}
	cur, ok := m.rank[field]
	if ok && cur <= r {
		return false
	}
	m.rank[field] = r
	return true
}

// Merge folds per-source fragment maps into the full profile table. The
// result is an outer union: a profile exists for every BBL that appears in
// any source, with fields left unknown where a source has no coverage.
// The per-field authority table makes the merge order-independent.
func Merge(fragmentSets ...map[BBL]Fragment) map[BBL]*BuildingProfile {
	table := make(map[BBL]*merged)

	for _, set := range fragmentSets {
		for bbl, frag := range set {
			m, ok := table[bbl]
			if !ok {
				m = &merged{
					profile: &BuildingProfile{BBL: bbl},
					rank:    make(map[string]int),
				}
				table[bbl] = m
			}
			m.apply(frag)
		}
	}

	out := make(map[BBL]*BuildingProfile, len(table))
	for bbl, m := range table {
		out[bbl] = m.profile
	}
	return out
}

// apply copies every present field of frag into the profile, subject to the
// authority claim. Unset fields (nil pointers, empty strings) never count as
// present and never claim anything.
func (m *merged) apply(frag Fragment) {
	src := frag.Source
	p := m.profile

	if frag.Address != "" && m.claim("address", src) {
		p.Address = frag.Address
	}
	if frag.ZipCode != "" && m.claim("zip_code", src) {
		p.ZipCode = frag.ZipCode
	}
	if frag.Borough != "" && m.claim("borough", src) {
		p.Borough = frag.Borough
	}
	if frag.BuildingArea != nil && m.claim("building_area", src) {
		p.BuildingArea = frag.BuildingArea
	}
	if frag.OfficeArea != nil && m.claim("office_area", src) {
		p.OfficeArea = frag.OfficeArea
	}
	if frag.Floors != nil && m.claim("floors", src) {
		p.Floors = frag.Floors
	}
	if frag.YearBuilt != nil && m.claim("year_built", src) {
		p.YearBuilt = frag.YearBuilt
	}
	if frag.OwnerName != "" && m.claim("owner_name", src) {
		p.OwnerName = frag.OwnerName
	}
	if frag.OwnerType != "" && m.claim("owner_type", src) {
		p.OwnerType = frag.OwnerType
	}
	if frag.BuildingClass != "" && m.claim("building_class", src) {
		p.BuildingClass = frag.BuildingClass
	}

	if frag.OccupancyPercent != nil && m.claim("occupancy_percent", src) {
		p.OccupancyPercent = frag.OccupancyPercent
	}
	if frag.SiteEUI != nil && m.claim("site_eui", src) {
		p.SiteEUI = frag.SiteEUI
	}
	if frag.EnergyStarScore != nil && m.claim("energy_star_score", src) {
		p.EnergyStarScore = frag.EnergyStarScore
	}
	if frag.PeakDemandKW != nil && m.claim("peak_demand_kw", src) {
		p.PeakDemandKW = frag.PeakDemandKW
	}
	if frag.MeterCount != nil && m.claim("meter_count", src) {
		p.MeterCount = frag.MeterCount
	}

	if frag.HasVAV != nil && m.claim("has_vav", src) {
		p.HasVAV = frag.HasVAV
	}
	if frag.HasDCV != nil && m.claim("has_dcv", src) {
		p.HasDCV = frag.HasDCV
	}
	if frag.HasBMS != nil && m.claim("has_bms", src) {
		p.HasBMS = frag.HasBMS
	}

	if frag.EnergyGrade != "" && m.claim("energy_grade", src) {
		p.EnergyGrade = frag.EnergyGrade
	}
}
