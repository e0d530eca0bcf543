package schema

import "time"

// SupportResistanceRequest carries the query parameters for
// GET /support-resistance/{symbol}.
type SupportResistanceRequest struct {
	Symbol       string  `json:"symbol"`
	Exchange     string  `json:"exchange"`
	Interval     string  `json:"interval"`
	LookbackDays int     `json:"lookback_days"`
	MaxLevels    int     `json:"max_levels"`
	WindowW      int     `json:"window_w,omitempty"`
	ATRMult      float64 `json:"atr_mult,omitempty"`
}

// SupportResistanceResponse mirrors sr.Result for the wire, plus the price
// it was evaluated against.
type SupportResistanceResponse struct {
	Symbol       string             `json:"symbol"`
	CurrentPrice float64            `json:"current_price"`
	Support      []LevelDTO         `json:"support"`
	Resistance   []LevelDTO         `json:"resistance"`
	Tolerance    float64            `json:"tolerance"`
	ATR          float64            `json:"atr"`
}

// LevelDTO mirrors model.SupportResistanceLevel for the wire.
type LevelDTO struct {
	Price     float64   `json:"price"`
	Kind      string    `json:"kind"`
	Strength  float64   `json:"strength"`
	Touches   int       `json:"touches"`
	LastTouch time.Time `json:"last_touch"`
}

// PivotsResponse answers GET /support-resistance/{symbol}/pivots.
type PivotsResponse struct {
	Symbol string  `json:"symbol"`
	Method string  `json:"method"`
	PP     float64 `json:"pp"`
	R1     float64 `json:"r1"`
	R2     float64 `json:"r2"`
	R3     float64 `json:"r3"`
	S1     float64 `json:"s1"`
	S2     float64 `json:"s2"`
	S3     float64 `json:"s3"`
}

// NearestLevelsResponse answers GET /support-resistance/{symbol}/nearest.
type NearestLevelsResponse struct {
	Symbol string        `json:"symbol"`
	Price  float64       `json:"price"`
	Levels []NearestDTO  `json:"levels"`
}

// NearestDTO mirrors model.NearestLevel for the wire.
type NearestDTO struct {
	LevelDTO
	Distance    float64 `json:"distance"`
	DistancePct float64 `json:"distance_pct"`
}
