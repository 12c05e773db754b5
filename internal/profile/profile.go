package profile

// BuildingProfile is the merged per-building record spanning the physical,
// energy, systems, and performance source families. The BBL is always
// present and canonical; every other field is optional. Pointer fields and
// empty strings mean "unknown" -- a profile with no energy coverage carries
// nil energy fields, which is not the same as zero.
type BuildingProfile struct {
	BBL BBL `json:"bbl"`

	// Identity / physical (authoritative source: pluto)
	Address       string   `json:"address,omitempty"`
	ZipCode       string   `json:"zip_code,omitempty"`
	Borough       string   `json:"borough,omitempty"`
	BuildingArea  *float64 `json:"building_area_sqft,omitempty"`
	OfficeArea    *float64 `json:"office_area_sqft,omitempty"`
	Floors        *int     `json:"floors,omitempty"`
	YearBuilt     *int     `json:"year_built,omitempty"`
	OwnerName     string   `json:"owner_name,omitempty"`
	OwnerType     string   `json:"owner_type,omitempty"`
	BuildingClass string   `json:"building_class,omitempty"`

	// Energy (authoritative source: energy benchmarking)
	OccupancyPercent *float64 `json:"occupancy_percent,omitempty"`
	SiteEUI          *float64 `json:"site_eui,omitempty"`
	EnergyStarScore  *float64 `json:"energy_star_score,omitempty"`
	PeakDemandKW     *float64 `json:"peak_demand_kw,omitempty"`
	MeterCount       *int     `json:"meter_count,omitempty"`

	// Systems (authoritative source: systems audit)
	HasVAV *bool `json:"has_vav,omitempty"`
	HasDCV *bool `json:"has_dcv,omitempty"`
	HasBMS *bool `json:"has_bms,omitempty"`

	// Performance (authoritative source: grades)
	EnergyGrade string `json:"energy_grade,omitempty"`
}

// Fragment is the partial record one source family contributes for a single
// BBL. Field shapes match BuildingProfile; the Source name drives the
// per-field authority check during merge.
type Fragment struct {
	Source Source

	Address       string
	ZipCode       string
	Borough       string
	BuildingArea  *float64
	OfficeArea    *float64
	Floors        *int
	YearBuilt     *int
	OwnerName     string
	OwnerType     string
	BuildingClass string

	OccupancyPercent *float64
	SiteEUI          *float64
	EnergyStarScore  *float64
	PeakDemandKW     *float64
	MeterCount       *int

	HasVAV *bool
	HasDCV *bool
	HasBMS *bool

	EnergyGrade string
}

// Source identifies a dataset family.
type Source string

const (
	SourcePluto   Source = "pluto"
	SourceEnergy  Source = "energy"
	SourceSystems Source = "systems"
	SourceGrades  Source = "grades"
)

// Ptr returns a pointer to v. Helper for building optional fields.
func Ptr[T any](v T) *T { return &v }
