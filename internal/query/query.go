// Package query is the read side over a published snapshot: point lookups,
// filtered search, opportunity ranking, bulk address scoring, and dataset
// statistics.
package query

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/internal/scoring"
)

// ErrNotFound marks a BBL absent from the current snapshot.
var ErrNotFound = eris.New("query: building not found")

// Engine serves reads against whatever snapshot is currently published.
type Engine struct {
	pub    *profile.Published
	scorer *scoring.Scorer
}

// NewEngine builds an Engine over pub.
func NewEngine(pub *profile.Published, scorer *scoring.Scorer) *Engine {
	return &Engine{pub: pub, scorer: scorer}
}

// Get returns the profile for one canonical BBL.
func (e *Engine) Get(bbl profile.BBL) (*profile.BuildingProfile, error) {
	p := e.pub.Current().Get(bbl)
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// ScoreBBL looks up and scores one building.
func (e *Engine) ScoreBBL(bbl profile.BBL) (*scoring.Breakdown, error) {
	p, err := e.Get(bbl)
	if err != nil {
		return nil, err
	}
	return e.scorer.Score(p), nil
}

// Filter is an AND of optional predicates. A predicate that requires a field
// excludes profiles where that field is unknown.
type Filter struct {
	MinArea      *float64
	MaxOccupancy *float64
	HasVAV       *bool
	EnergyGrade  string
	MinYearBuilt *int
	MaxYearBuilt *int
	OfficeOnly   bool
}

// Search returns every profile matching all set predicates, in snapshot
// (BBL-sorted) order.
func (e *Engine) Search(f Filter) []*profile.BuildingProfile {
	var out []*profile.BuildingProfile
	for _, p := range e.pub.Current().All() {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filter) matches(p *profile.BuildingProfile) bool {
	if f.MinArea != nil && (p.BuildingArea == nil || *p.BuildingArea < *f.MinArea) {
		return false
	}
	if f.MaxOccupancy != nil && (p.OccupancyPercent == nil || *p.OccupancyPercent > *f.MaxOccupancy) {
		return false
	}
	if f.HasVAV != nil && (p.HasVAV == nil || *p.HasVAV != *f.HasVAV) {
		return false
	}
	if f.EnergyGrade != "" && p.EnergyGrade != f.EnergyGrade {
		return false
	}
	if f.MinYearBuilt != nil && (p.YearBuilt == nil || *p.YearBuilt < *f.MinYearBuilt) {
		return false
	}
	if f.MaxYearBuilt != nil && (p.YearBuilt == nil || *p.YearBuilt > *f.MaxYearBuilt) {
		return false
	}
	if f.OfficeOnly && (p.BuildingClass == "" || p.BuildingClass[0] != 'O') {
		return false
	}
	return true
}

// Rank scores the given profiles and orders them best-first: total score
// descending, BBL ascending on ties.
func (e *Engine) Rank(profiles []*profile.BuildingProfile) []*scoring.Breakdown {
	out := make([]*scoring.Breakdown, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, e.scorer.Score(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].BBL < out[j].BBL
	})
	return out
}

// Opportunities ranks every building matching f and returns the top n
// (n <= 0 means all).
func (e *Engine) Opportunities(f Filter, n int) []*scoring.Breakdown {
	ranked := e.Rank(e.Search(f))
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
