package engine

import "math"

// minBid is the exchange-style floor on the estimated bid.
const minBid = 0.01

// MarkPrice estimates where a contract would actually quote around its
// theoretical value. The model only widens the spread by moneyness tier; it
// does not skew bid against ask, so the mark equals the theoretical price.
type MarkPrice struct {
	Theoretical float64 `json:"theoretical_price"`
	Mark        float64 `json:"mark_price"`
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	Spread      float64 `json:"spread"`
	SpreadPct   float64 `json:"spread_pct"`
}

// EstimateMarkPrice maps a theoretical price to an estimated bid/ask/mark
// using a moneyness-tiered spread: 2% of theoretical at the money, 3% near
// the money, 5% elsewhere, scaled by the liquidity factor (values <= 0 mean
// normal liquidity). The bid is floored at one cent.
func EstimateMarkPrice(theoretical, spot, strike float64, kind OptionKind, liquidityFactor float64) MarkPrice {
	if liquidityFactor <= 0 {
		liquidityFactor = 1.0
	}

	moneyness := spot / strike
	if kind == Put {
		moneyness = strike / spot
	}

	var spreadPct float64
	switch {
	case moneyness >= 0.95 && moneyness <= 1.05:
		spreadPct = 0.02
	case moneyness >= 0.90 && moneyness <= 1.10:
		spreadPct = 0.03
	default:
		spreadPct = 0.05
	}
	spreadPct *= liquidityFactor

	spread := theoretical * spreadPct
	bid := theoretical - spread/2
	ask := theoretical + spread/2

	return MarkPrice{
		Theoretical: theoretical,
		Mark:        (bid + ask) / 2,
		Bid:         math.Max(minBid, bid),
		Ask:         ask,
		Spread:      spread,
		SpreadPct:   spreadPct * 100,
	}
}

// SpreadEstimate is a bid/ask estimate driven by a 0-1 liquidity score
// rather than moneyness, used when ranking contracts for execution.
type SpreadEstimate struct {
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Spread    float64 `json:"spread"`
	SpreadPct float64 `json:"spread_pct"`
}

// EstimateSpreadFromLiquidity widens the spread as liquidity degrades: 2%
// of theoretical when very liquid, 5% for medium, 10% when illiquid, with a
// five cent floor.
func EstimateSpreadFromLiquidity(theoretical, liquidityScore float64) SpreadEstimate {
	var spreadPct float64
	switch {
	case liquidityScore > 0.8:
		spreadPct = 0.02
	case liquidityScore > 0.5:
		spreadPct = 0.05
	default:
		spreadPct = 0.10
	}

	spread := math.Max(0.05, theoretical*spreadPct)
	return SpreadEstimate{
		Bid:       theoretical - spread/2,
		Ask:       theoretical + spread/2,
		Spread:    spread,
		SpreadPct: spreadPct * 100,
	}
}
