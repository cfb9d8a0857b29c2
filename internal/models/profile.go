package models

import (
	"time"

	"github.com/greekscope/greekscope/internal/engine"
)

// UnderlyingProfile holds the per-symbol analysis defaults: strike geometry,
// the scenario ladder, and premium limits. Profiles seed analysis requests;
// request fields always win over profile defaults.
type UnderlyingProfile struct {
	Symbol          string                `json:"symbol"`
	Description     string                `json:"description,omitempty"`
	SpotPrice       float64               `json:"spot_price"`
	StrikeIncrement float64               `json:"strike_increment"`
	StrikeWidth     float64               `json:"strike_width"`
	Moves           []engine.ScenarioMove `json:"moves"`
	PrimaryMove     string                `json:"primary_move"`
	MinPremium      float64               `json:"min_premium"`
	MaxPremium      float64               `json:"max_premium"`
	Pricing         engine.PricingMode    `json:"pricing_mode"`
	LiquidityFactor float64               `json:"liquidity_factor"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// Scenarios converts the profile's move list into an engine scenario spec.
func (p UnderlyingProfile) Scenarios() engine.ScenarioSpec {
	return engine.ScenarioSpec{Moves: p.Moves, Primary: p.PrimaryMove}
}

// PremiumBand returns the profile's premium filter.
func (p UnderlyingProfile) PremiumBand() engine.PremiumBand {
	return engine.PremiumBand{Min: p.MinPremium, Max: p.MaxPremium}
}
