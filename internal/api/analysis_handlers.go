package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/greekscope/greekscope/internal/commentary"
	"github.com/greekscope/greekscope/internal/config"
	"github.com/greekscope/greekscope/internal/engine"
	"github.com/greekscope/greekscope/internal/metrics"
	"github.com/greekscope/greekscope/internal/presets"
)

// tradingDaysPerYear converts DTE to year-fraction expiries at the HTTP
// boundary. Callers who want calendar-day time pass expiry_years directly.
const tradingDaysPerYear = 252

// AnalysisHandler serves the options analysis endpoints. All handlers are
// thin wrappers over engine calls; the engine itself never sees HTTP.
type AnalysisHandler struct {
	profiles    presets.Repository
	commentator commentary.Commentator
	collector   *metrics.Collector
	defaults    config.EngineConfig
	logger      *slog.Logger
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(profiles presets.Repository, commentator commentary.Commentator, collector *metrics.Collector, defaults config.EngineConfig, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		profiles:    profiles,
		commentator: commentator,
		collector:   collector,
		defaults:    defaults,
		logger:      logger,
	}
}

// AnalyzeRequest is the JSON body for POST /api/v1/options/analyze. Fields
// left zero fall back to the underlying's stored profile, then to the
// configured engine defaults.
type AnalyzeRequest struct {
	Underlying      string               `json:"underlying"`
	Spot            float64              `json:"spot"`
	ExpiryYears     float64              `json:"expiry_years,omitempty"`
	DTE             int                  `json:"dte,omitempty"`
	Rate            float64              `json:"rate,omitempty"`
	Vol             float64              `json:"vol"`
	StrikeIncrement float64              `json:"strike_increment,omitempty"`
	StrikeWidth     float64              `json:"strike_width,omitempty"`
	Scenarios       *engine.ScenarioSpec `json:"scenarios,omitempty"`
	Scaling         engine.ScalingMode   `json:"scaling,omitempty"`
	Premium         *engine.PremiumBand  `json:"premium,omitempty"`
	Pricing         engine.PricingMode   `json:"pricing,omitempty"`
	PriceAdjustment float64              `json:"price_adjustment,omitempty"`
	LiquidityFactor float64              `json:"liquidity_factor,omitempty"`

	// Format selects the response shape: "" for the full ranked table,
	// "trading_bot" for entry signals, "backtester" for strike rankings.
	Format string `json:"format,omitempty"`

	// Commentary asks for a written summary of the run.
	Commentary bool `json:"commentary,omitempty"`
}

// AnalyzeResponse wraps the ranked table with optional commentary.
type AnalyzeResponse struct {
	*engine.AnalysisResult
	Commentary string `json:"commentary,omitempty"`
}

// TradingBotResponse is the trading_bot format: summary plus shaped signals.
type TradingBotResponse struct {
	Summary engine.Summary         `json:"summary"`
	Signals []engine.TradingSignal `json:"signals"`
}

// BacktesterResponse is the backtester format: summary plus strike rankings.
type BacktesterResponse struct {
	Summary  engine.Summary          `json:"summary"`
	Rankings engine.BacktestRankings `json:"rankings"`
}

// AnalyzeOptions handles POST /api/v1/options/analyze.
func (h *AnalysisHandler) AnalyzeOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	engineReq := h.buildEngineRequest(r, &req)

	start := time.Now()
	result, err := engine.Analyze(engineReq)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.collector.ObserveAnalysis(time.Since(start), len(result.Contracts))

	h.logger.Info("analysis complete",
		"underlying", result.Summary.Underlying,
		"run_id", result.Summary.RunID,
		"contracts", len(result.Contracts),
		"duration_ms", time.Since(start).Milliseconds())

	switch req.Format {
	case "trading_bot":
		writeJSON(w, h.logger, TradingBotResponse{
			Summary: result.Summary,
			Signals: result.TradingSignals(0),
		})
	case "backtester":
		writeJSON(w, h.logger, BacktesterResponse{
			Summary:  result.Summary,
			Rankings: result.BacktestRankings(0),
		})
	case "":
		resp := AnalyzeResponse{AnalysisResult: result}
		if req.Commentary && h.commentator != nil {
			text, err := h.commentator.RunCommentary(r.Context(), result)
			if err != nil {
				h.logger.Warn("run commentary failed", "error", err)
			} else {
				resp.Commentary = text
			}
		}
		writeJSON(w, h.logger, resp)
	default:
		http.Error(w, "Invalid format: must be trading_bot or backtester", http.StatusBadRequest)
	}
}

// buildEngineRequest resolves an HTTP request into a fully specified engine
// request: explicit fields win, then the stored profile, then config
// defaults.
func (h *AnalysisHandler) buildEngineRequest(r *http.Request, req *AnalyzeRequest) engine.AnalysisRequest {
	out := engine.AnalysisRequest{
		Underlying:      req.Underlying,
		Spot:            req.Spot,
		Expiry:          req.ExpiryYears,
		Rate:            req.Rate,
		Vol:             req.Vol,
		DTE:             req.DTE,
		StrikeIncrement: req.StrikeIncrement,
		StrikeWidth:     req.StrikeWidth,
		Scaling:         req.Scaling,
		Pricing:         req.Pricing,
		PriceAdjustment: req.PriceAdjustment,
		LiquidityFactor: req.LiquidityFactor,
	}
	if req.Scenarios != nil {
		out.Scenarios = *req.Scenarios
	}
	if req.Premium != nil {
		out.Premium = *req.Premium
	}

	if h.profiles != nil && req.Underlying != "" {
		if profile, err := h.profiles.Get(r.Context(), req.Underlying); err == nil {
			if out.Spot == 0 {
				out.Spot = profile.SpotPrice
			}
			if out.StrikeIncrement == 0 {
				out.StrikeIncrement = profile.StrikeIncrement
			}
			if out.StrikeWidth == 0 {
				out.StrikeWidth = profile.StrikeWidth
			}
			if len(out.Scenarios.Moves) == 0 {
				out.Scenarios = profile.Scenarios()
			}
			if req.Premium == nil {
				out.Premium = profile.PremiumBand()
			}
			if out.Pricing == "" {
				out.Pricing = profile.Pricing
			}
			if out.LiquidityFactor == 0 {
				out.LiquidityFactor = profile.LiquidityFactor
			}
		}
	}

	if out.Rate == 0 {
		out.Rate = h.defaults.DefaultRate
	}
	if out.DTE == 0 && out.Expiry == 0 {
		out.DTE = h.defaults.DefaultDTE
	}
	if out.Expiry == 0 {
		out.Expiry = float64(out.DTE) / tradingDaysPerYear
	}
	if len(out.Scenarios.Moves) == 0 {
		out.Scenarios = engine.DefaultScenarios()
	}

	return out
}

// IVRequest is the JSON body for POST /api/v1/options/iv.
type IVRequest struct {
	MarketPrice float64           `json:"market_price"`
	Spot        float64           `json:"spot"`
	Strike      float64           `json:"strike"`
	ExpiryYears float64           `json:"expiry_years,omitempty"`
	DTE         int               `json:"dte,omitempty"`
	Rate        float64           `json:"rate,omitempty"`
	Kind        engine.OptionKind `json:"option_type"`
}

// IVErrorResponse reports a failed solve with the attempted bracket so the
// caller can widen the search or reject the quote.
type IVErrorResponse struct {
	Error       string   `json:"error"`
	MarketPrice float64  `json:"market_price"`
	BracketLow  float64  `json:"bracket_low"`
	BracketHigh float64  `json:"bracket_high"`
	PriceAtLow  float64  `json:"price_at_low"`
	PriceAtHigh float64  `json:"price_at_high"`
	Iterations  int      `json:"iterations"`
	Hints       []string `json:"hints,omitempty"`
}

// SolveIV handles POST /api/v1/options/iv.
func (h *AnalysisHandler) SolveIV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req IVRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	expiry := req.ExpiryYears
	if expiry == 0 && req.DTE > 0 {
		expiry = float64(req.DTE) / tradingDaysPerYear
	}
	rate := req.Rate
	if rate == 0 {
		rate = h.defaults.DefaultRate
	}

	solution, err := engine.ImpliedVolatility(req.MarketPrice, req.Spot, req.Strike, expiry, rate, req.Kind)
	if err != nil {
		var convErr *engine.ConvergenceError
		if errors.As(err, &convErr) {
			h.collector.ObserveIVSolve("diverged")
			h.logger.Warn("implied volatility solve diverged",
				"market_price", convErr.MarketPrice,
				"iterations", convErr.Iterations)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			if encErr := json.NewEncoder(w).Encode(IVErrorResponse{
				Error:       convErr.Error(),
				MarketPrice: convErr.MarketPrice,
				BracketLow:  convErr.BracketLow,
				BracketHigh: convErr.BracketHigh,
				PriceAtLow:  convErr.PriceAtLow,
				PriceAtHigh: convErr.PriceAtHigh,
				Iterations:  convErr.Iterations,
				Hints:       convErr.Hints,
			}); encErr != nil {
				h.logger.Error("failed to encode response", "error", encErr)
			}
			return
		}
		h.collector.ObserveIVSolve("invalid")
		h.writeEngineError(w, err)
		return
	}

	h.collector.ObserveIVSolve("converged")
	writeJSON(w, h.logger, solution)
}

// LadderResponse is the body for GET /api/v1/options/ladder.
type LadderResponse struct {
	ATMStrike float64   `json:"atm_strike"`
	Strikes   []float64 `json:"strikes"`
	Count     int       `json:"count"`
}

// GetLadder handles GET /api/v1/options/ladder.
func (h *AnalysisHandler) GetLadder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	spot, err := queryFloat(r, "spot", 0)
	if err != nil {
		http.Error(w, "Invalid spot parameter", http.StatusBadRequest)
		return
	}
	increment, err := queryFloat(r, "increment", 0)
	if err != nil {
		http.Error(w, "Invalid increment parameter", http.StatusBadRequest)
		return
	}
	width, err := queryFloat(r, "width", 0)
	if err != nil {
		http.Error(w, "Invalid width parameter", http.StatusBadRequest)
		return
	}
	dte, err := queryInt(r, "dte", h.defaults.DefaultDTE)
	if err != nil {
		http.Error(w, "Invalid dte parameter", http.StatusBadRequest)
		return
	}

	strikes, err := engine.StrikeLadder(spot, increment, width, dte)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, h.logger, LadderResponse{
		ATMStrike: engine.ATMStrike(spot, increment),
		Strikes:   strikes,
		Count:     len(strikes),
	})
}

// GetExpectedMoves handles GET /api/v1/market/expected-moves.
func (h *AnalysisHandler) GetExpectedMoves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	spot, err := queryFloat(r, "spot", 0)
	if err != nil {
		http.Error(w, "Invalid spot parameter", http.StatusBadRequest)
		return
	}
	vol, err := queryFloat(r, "vol", 0)
	if err != nil {
		http.Error(w, "Invalid vol parameter", http.StatusBadRequest)
		return
	}
	increment, err := queryFloat(r, "increment", 1)
	if err != nil {
		http.Error(w, "Invalid increment parameter", http.StatusBadRequest)
		return
	}
	rate, err := queryFloat(r, "rate", h.defaults.DefaultRate)
	if err != nil {
		http.Error(w, "Invalid rate parameter", http.StatusBadRequest)
		return
	}
	threshold, err := queryFloat(r, "threshold", h.defaults.MoveThreshold)
	if err != nil {
		http.Error(w, "Invalid threshold parameter", http.StatusBadRequest)
		return
	}
	dte, err := queryInt(r, "dte", h.defaults.DefaultDTE)
	if err != nil {
		http.Error(w, "Invalid dte parameter", http.StatusBadRequest)
		return
	}

	expiry := float64(dte) / tradingDaysPerYear
	comparison, err := engine.CompareExpectedMoves(spot, expiry, rate, vol, increment, threshold)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, h.logger, comparison)
}

// BestContractsRequest is the JSON body for POST /api/v1/trading/best-contracts.
type BestContractsRequest struct {
	AnalyzeRequest
	Strategy     engine.Strategy `json:"strategy"`
	MaxContracts int             `json:"max_contracts,omitempty"`
	MinLiquidity float64         `json:"min_liquidity,omitempty"`
	Reasoning    bool            `json:"reasoning,omitempty"`
}

// BestContract is one strategy-ranked contract with optional reasoning.
type BestContract struct {
	engine.StrategyRanked
	Reasoning string `json:"reasoning,omitempty"`
}

// BestContractsResponse is the body for POST /api/v1/trading/best-contracts.
type BestContractsResponse struct {
	Strategy  engine.Strategy `json:"strategy"`
	Summary   engine.Summary  `json:"summary"`
	Contracts []BestContract  `json:"contracts"`
}

// BestContracts handles POST /api/v1/trading/best-contracts.
func (h *AnalysisHandler) BestContracts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BestContractsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	engineReq := h.buildEngineRequest(r, &req.AnalyzeRequest)

	start := time.Now()
	result, err := engine.Analyze(engineReq)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.collector.ObserveAnalysis(time.Since(start), len(result.Contracts))

	ranked, err := engine.RankByStrategy(result, req.Strategy, req.MaxContracts, req.MinLiquidity)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	contracts := make([]BestContract, len(ranked))
	for i, entry := range ranked {
		contracts[i] = BestContract{StrategyRanked: entry}
		if req.Reasoning && h.commentator != nil {
			text, err := h.commentator.ContractCommentary(r.Context(), entry.Contract, result.Summary.PrimaryMove)
			if err != nil {
				h.logger.Warn("contract commentary failed", "error", err)
				continue
			}
			contracts[i].Reasoning = text
		}
	}

	writeJSON(w, h.logger, BestContractsResponse{
		Strategy:  req.Strategy,
		Summary:   result.Summary,
		Contracts: contracts,
	})
}

// writeEngineError maps engine error kinds onto HTTP statuses.
func (h *AnalysisHandler) writeEngineError(w http.ResponseWriter, err error) {
	var invalidErr *engine.InvalidInputError
	if errors.As(err, &invalidErr) {
		http.Error(w, invalidErr.Error(), http.StatusBadRequest)
		return
	}
	h.logger.Error("engine call failed", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func queryFloat(r *http.Request, key string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
