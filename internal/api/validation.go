package api

import (
	"fmt"
	"strings"

	"github.com/greekscope/greekscope/internal/engine"
	"github.com/greekscope/greekscope/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateProfile validates an underlying profile before it is stored.
func ValidateProfile(profile *models.UnderlyingProfile) error {
	if strings.TrimSpace(profile.Symbol) == "" {
		return ValidationError{Field: "symbol", Message: "Symbol is required"}
	}

	if len(profile.Symbol) > 12 {
		return ValidationError{Field: "symbol", Message: "Symbol must be at most 12 characters"}
	}

	if profile.SpotPrice <= 0 {
		return ValidationError{Field: "spot_price", Message: "Spot price must be positive"}
	}

	if profile.StrikeIncrement <= 0 {
		return ValidationError{Field: "strike_increment", Message: "Strike increment must be positive"}
	}

	if profile.StrikeWidth <= 0 {
		return ValidationError{Field: "strike_width", Message: "Strike width must be positive"}
	}

	if err := profile.Scenarios().Validate(); err != nil {
		return ValidationError{Field: "moves", Message: err.Error()}
	}

	if profile.MinPremium < 0 {
		return ValidationError{Field: "min_premium", Message: "Minimum premium cannot be negative"}
	}

	if profile.MaxPremium > 0 && profile.MinPremium > profile.MaxPremium {
		return ValidationError{Field: "max_premium", Message: "Maximum premium must be at least the minimum"}
	}

	if profile.Pricing != "" && profile.Pricing != engine.PriceTheoretical && profile.Pricing != engine.PriceMark {
		return ValidationError{Field: "pricing_mode", Message: "Pricing mode must be theoretical or mark"}
	}

	if profile.LiquidityFactor < 0 {
		return ValidationError{Field: "liquidity_factor", Message: "Liquidity factor cannot be negative"}
	}

	return nil
}
