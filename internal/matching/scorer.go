package matching

import (
	"math"
	"strings"

	"github.com/denisok6893-rgb/casa-match/internal/domain"
)

// neutralPercent is credited to a factor whose criterion was not
// specified, so under-specified queries are not penalized.
const neutralPercent = 50.0

// Scorer computes a weighted compatibility score (0..100) between a
// listing and extracted criteria. Pure and deterministic, no I/O.
type Scorer struct {
	params  Params
	factors []factor
}

// factor is one criterion group. eval returns a match percentage in
// 0..100 and ok=false when the criterion was absent, which triggers the
// universal neutral rule instead of a bespoke else-branch per factor.
type factor struct {
	name   string
	weight float64
	eval   func(p Params, l domain.Listing, c domain.Criteria) (pct float64, ok bool)
}

func NewScorer(p Params) *Scorer {
	return &Scorer{
		params: p,
		factors: []factor{
			{"price", p.Weights.Price, priceFactor},
			{"location", p.Weights.Location, locationFactor},
			{"rooms", p.Weights.Rooms, roomsFactor},
			{"bathrooms", p.Weights.Bathrooms, bathroomsFactor},
			{"garden", p.Weights.Garden, gardenFactor},
			{"amenities", p.Weights.Amenities, amenitiesFactor},
		},
	}
}

func (s *Scorer) Params() Params { return s.params }

// Score returns the total in [0,100] plus the per-factor breakdown.
func (s *Scorer) Score(l domain.Listing, c domain.Criteria) (float64, []domain.FactorScore) {
	var total float64
	breakdown := make([]domain.FactorScore, 0, len(s.factors))

	for _, f := range s.factors {
		pct, ok := f.eval(s.params, l, c)
		if !ok {
			pct = neutralPercent
		}
		contrib := (pct / 100) * f.weight
		total += contrib
		breakdown = append(breakdown, domain.FactorScore{
			Name:         f.name,
			Weight:       f.weight,
			Percent:      pct,
			Neutral:      !ok,
			Contribution: contrib,
		})
	}

	return math.Min(total, 100.0), breakdown
}

// priceFactor: full credit inside [min,max], otherwise a penalty that
// grows with the fractional deviation from the violated bound.
func priceFactor(p Params, l domain.Listing, c domain.Criteria) (float64, bool) {
	if c.PriceMin == nil && c.PriceMax == nil {
		return 0, false
	}

	min := 0.0
	if c.PriceMin != nil {
		min = *c.PriceMin
	}
	max := math.Inf(1)
	if c.PriceMax != nil {
		max = *c.PriceMax
	}

	if l.Price >= min && l.Price <= max {
		return 100, true
	}

	var bound float64
	if l.Price < min {
		bound = min
	} else {
		bound = max
	}
	if bound <= 0 {
		return 0, true
	}
	deviation := math.Abs(l.Price-bound) / bound
	return math.Max(0, 100-p.PriceDeviationSlope*deviation), true
}

// locationFactor: best fuzzy similarity across requested locations, with
// a hard floor — below the threshold the factor earns nothing.
func locationFactor(p Params, l domain.Listing, c domain.Criteria) (float64, bool) {
	if len(c.Locations) == 0 {
		return 0, false
	}

	var best float64
	for _, loc := range c.Locations {
		if s := BestLocationMatch(l.Neighborhood, loc); s > best {
			best = s
		}
	}
	if best < p.LocationThreshold {
		return 0, true
	}
	return best, true
}

// roomsFactor splits 70/30 between total rooms and the ground-floor
// requirement. The ground-floor share is binary, defaults its required
// count to GroundFloorDefault when only the need flag is present, and is
// halved when the flag is absent (soft preference, not a hard need).
func roomsFactor(p Params, l domain.Listing, c domain.Criteria) (float64, bool) {
	if c.RoomsTotal == nil {
		return 0, false
	}

	var totalPct float64
	if requested := *c.RoomsTotal; requested > 0 {
		totalPct = math.Min(100, float64(l.RoomsTotal)/float64(requested)*100)
	}

	groundShare := 0.3
	var groundPct float64
	needed := c.GroundFloorNeeded != nil && *c.GroundFloorNeeded
	if needed || c.RoomsGroundFloor != nil {
		required := p.GroundFloorDefault
		if c.RoomsGroundFloor != nil {
			required = *c.RoomsGroundFloor
		}
		if l.RoomsGroundFloor >= required {
			groundPct = 100
		}
		if !needed {
			groundShare *= 0.5
		}
	}

	return totalPct*0.7 + groundPct*groundShare, true
}

// bathroomsFactor: full credit at or above the requested count, else
// proportional.
func bathroomsFactor(_ Params, l domain.Listing, c domain.Criteria) (float64, bool) {
	if c.BathroomsTotal == nil {
		return 0, false
	}
	requested := *c.BathroomsTotal
	if l.BathroomsTotal >= requested {
		return 100, true
	}
	return math.Max(0, float64(l.BathroomsTotal)/float64(requested)*100), true
}

var gardenOrdinal = map[domain.GardenSize]int{
	domain.GardenSmall:  1,
	domain.GardenMedium: 2,
	domain.GardenLarge:  3,
}

// gardenFactor: "any" means any non-none garden; otherwise ordinal
// comparison with proportional credit below the requested size. A
// request of "none" scores neutral, same as absence.
func gardenFactor(_ Params, l domain.Listing, c domain.Criteria) (float64, bool) {
	if c.GardenSize == nil || *c.GardenSize == domain.GardenNone {
		return 0, false
	}

	have := gardenOrdinal[l.Garden]
	if *c.GardenSize == domain.GardenAny {
		if have > 0 {
			return 100, true
		}
		return 0, true
	}

	want := gardenOrdinal[*c.GardenSize]
	if want == 0 {
		return 0, true
	}
	if have >= want {
		return 100, true
	}
	return float64(have) / float64(want) * 100, true
}

// amenitiesFactor: coverage of the requested amenity set.
func amenitiesFactor(_ Params, l domain.Listing, c domain.Criteria) (float64, bool) {
	if len(c.Amenities) == 0 || l.Amenities == nil {
		return 0, false
	}

	have := make(map[string]struct{}, len(l.Amenities))
	for _, a := range l.Amenities {
		have[normalizeTag(a)] = struct{}{}
	}

	requested := make(map[string]struct{}, len(c.Amenities))
	for _, a := range c.Amenities {
		if tag := normalizeTag(a); tag != "" {
			requested[tag] = struct{}{}
		}
	}
	if len(requested) == 0 {
		return 0, false
	}

	matched := 0
	for tag := range requested {
		if _, ok := have[tag]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(requested)) * 100, true
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
