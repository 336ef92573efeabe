package domain

import "time"

// ListingStatus is the lifecycle state of a listing. Only available
// listings enter the matching candidate set.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusReserved  ListingStatus = "reserved"
	StatusSold      ListingStatus = "sold"
	StatusRented    ListingStatus = "rented"
	StatusPaused    ListingStatus = "paused"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold, StatusRented, StatusPaused:
		return true
	}
	return false
}

// GardenSize is an ordinal scale; GardenAny is only meaningful inside
// Criteria ("any non-none garden").
type GardenSize string

const (
	GardenNone   GardenSize = "none"
	GardenSmall  GardenSize = "small"
	GardenMedium GardenSize = "medium"
	GardenLarge  GardenSize = "large"
	GardenAny    GardenSize = "any"
)

func (g GardenSize) Valid() bool {
	switch g {
	case GardenNone, GardenSmall, GardenMedium, GardenLarge, GardenAny:
		return true
	}
	return false
}

type ProspectStatus string

const (
	ProspectActive      ProspectStatus = "active"
	ProspectContacted   ProspectStatus = "contacted"
	ProspectNegotiating ProspectStatus = "negotiating"
	ProspectClosed      ProspectStatus = "closed"
	ProspectDiscarded   ProspectStatus = "discarded"
)

func (s ProspectStatus) Valid() bool {
	switch s {
	case ProspectActive, ProspectContacted, ProspectNegotiating, ProspectClosed, ProspectDiscarded:
		return true
	}
	return false
}

type Listing struct {
	ID                   string        `json:"id"`
	AgentID              string        `json:"agent_id"`
	Name                 string        `json:"name"`
	Status               ListingStatus `json:"status"`
	Price                float64       `json:"price"`
	Neighborhood         string        `json:"neighborhood"`
	City                 string        `json:"city"`
	RoomsTotal           int           `json:"rooms_total"`
	RoomsGroundFloor     int           `json:"rooms_ground_floor"`
	BathroomsTotal       int           `json:"bathrooms_total"`
	BathroomsGroundFloor int           `json:"bathrooms_ground_floor"`
	Garden               GardenSize    `json:"garden"`
	Amenities            []string      `json:"amenities"`
	ImageURLs            []string      `json:"image_urls,omitempty"`
	Notes                string        `json:"notes,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
}

// Criteria is the structured form of a buyer query. Every field is
// independently optional; a nil field means "not mentioned" and scores
// neutral, which is not the same as a zero value.
type Criteria struct {
	PriceMin          *float64    `json:"price_min,omitempty"`
	PriceMax          *float64    `json:"price_max,omitempty"`
	Locations         []string    `json:"locations,omitempty"`
	RoomsTotal        *int        `json:"rooms_total,omitempty"`
	RoomsGroundFloor  *int        `json:"rooms_ground_floor,omitempty"`
	GroundFloorNeeded *bool       `json:"ground_floor_needed,omitempty"`
	BathroomsTotal    *int        `json:"bathrooms_total,omitempty"`
	GardenSize        *GardenSize `json:"garden_size,omitempty"`
	Amenities         []string    `json:"amenities,omitempty"`
}

// Empty reports whether no criterion at all was specified.
func (c Criteria) Empty() bool {
	return c.PriceMin == nil && c.PriceMax == nil &&
		len(c.Locations) == 0 &&
		c.RoomsTotal == nil && c.RoomsGroundFloor == nil && c.GroundFloorNeeded == nil &&
		c.BathroomsTotal == nil && c.GardenSize == nil &&
		len(c.Amenities) == 0
}

// FactorScore is the per-factor breakdown of one scored listing.
type FactorScore struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	Percent      float64 `json:"percent"`
	Neutral      bool    `json:"neutral"`
	Contribution float64 `json:"contribution"`
}

type ScoreResult struct {
	Listing Listing       `json:"listing"`
	Score   float64       `json:"match_score"`
	Factors []FactorScore `json:"factors,omitempty"`
}

type Prospect struct {
	ID        int64          `json:"id"`
	AgentID   string         `json:"agent_id"`
	Name      string         `json:"name"`
	Phone     string         `json:"phone,omitempty"`
	Email     string         `json:"email,omitempty"`
	Status    ProspectStatus `json:"status"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// SearchRecord is the append-only log entry written once per completed
// search. Criteria are stored as extracted, so suggestion matching can
// replay them later.
type SearchRecord struct {
	ID          int64     `json:"id"`
	AgentID     string    `json:"agent_id"`
	ProspectID  *int64    `json:"prospect_id,omitempty"`
	QueryText   string    `json:"query_text"`
	Criteria    Criteria  `json:"extracted_criteria"`
	ResultCount int       `json:"result_count"`
	TopScore    float64   `json:"top_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProspectSearch pairs a prospect with its most recent recorded search.
type ProspectSearch struct {
	Prospect  Prospect
	QueryText string
	Criteria  Criteria
	CreatedAt time.Time
}

type ProspectSuggestion struct {
	Prospect  Prospect `json:"prospect"`
	Score     float64  `json:"match_score"`
	LastQuery string   `json:"last_query"`
}
