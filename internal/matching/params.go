package matching

// Weights defines the share of each factor in the total score.
// They are expected to sum to 100.
type Weights struct {
	Price     float64 `mapstructure:"price" json:"price"`
	Location  float64 `mapstructure:"location" json:"location"`
	Rooms     float64 `mapstructure:"rooms" json:"rooms"`
	Bathrooms float64 `mapstructure:"bathrooms" json:"bathrooms"`
	Garden    float64 `mapstructure:"garden" json:"garden"`
	Amenities float64 `mapstructure:"amenities" json:"amenities"`
}

// Params holds the scoring weights plus the tunables of the match
// algorithm. The defaults are the production values; they are tuning
// choices, not invariants, so they stay configurable.
type Params struct {
	Weights Weights `mapstructure:"weights" json:"weights"`

	// LocationThreshold is the minimum similarity percentage below which
	// a location comparison earns zero credit.
	LocationThreshold float64 `mapstructure:"location_threshold" json:"location_threshold"`

	// PriceDeviationSlope converts fractional deviation from a price
	// bound into a penalty: match = 100 - slope*deviation.
	PriceDeviationSlope float64 `mapstructure:"price_deviation_slope" json:"price_deviation_slope"`

	// GroundFloorDefault is the required ground-floor room count assumed
	// when the need is flagged without an explicit count.
	GroundFloorDefault int `mapstructure:"ground_floor_default" json:"ground_floor_default"`

	// ScoreThreshold drops candidates scoring below it from rankings.
	ScoreThreshold float64 `mapstructure:"score_threshold" json:"score_threshold"`

	// ResultLimit truncates a search ranking to the top N results.
	ResultLimit int `mapstructure:"result_limit" json:"result_limit"`
}

func DefaultWeights() Weights {
	return Weights{
		Price:     30,
		Location:  25,
		Rooms:     20,
		Bathrooms: 10,
		Garden:    10,
		Amenities: 5,
	}
}

func DefaultParams() Params {
	return Params{
		Weights:             DefaultWeights(),
		LocationThreshold:   80,
		PriceDeviationSlope: 200,
		GroundFloorDefault:  1,
		ScoreThreshold:      60,
		ResultLimit:         5,
	}
}
