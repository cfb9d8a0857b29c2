package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/greekscope/greekscope/internal/engine"
	"github.com/greekscope/greekscope/internal/models"
	"github.com/greekscope/greekscope/internal/presets"
)

// ProfileRepository stores underlying profiles in PostgreSQL. The scenario
// moves are kept as a JSON column since they are always read and written as
// a unit.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// EnsureSchema creates the profiles table if needed and seeds the built-in
// defaults for symbols that have never been stored.
func (r *ProfileRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS underlying_profiles (
			symbol VARCHAR(16) PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			spot_price DOUBLE PRECISION NOT NULL,
			strike_increment DOUBLE PRECISION NOT NULL,
			strike_width DOUBLE PRECISION NOT NULL,
			moves JSONB NOT NULL,
			primary_move VARCHAR(64) NOT NULL,
			min_premium DOUBLE PRECISION NOT NULL DEFAULT 0,
			max_premium DOUBLE PRECISION NOT NULL DEFAULT 0,
			pricing_mode VARCHAR(16) NOT NULL DEFAULT 'theoretical',
			liquidity_factor DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create underlying_profiles table: %w", err)
	}

	for _, p := range presets.Defaults() {
		if err := r.seed(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// seed inserts a default profile only when the symbol is absent, so operator
// edits survive restarts.
func (r *ProfileRepository) seed(ctx context.Context, p models.UnderlyingProfile) error {
	movesJSON, err := json.Marshal(p.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}

	query := `
		INSERT INTO underlying_profiles (symbol, description, spot_price, strike_increment, strike_width, moves, primary_move, min_premium, max_premium, pricing_mode, liquidity_factor, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (symbol) DO NOTHING
	`

	_, err = r.db.ExecContext(ctx, query, p.Symbol, p.Description, p.SpotPrice, p.StrikeIncrement, p.StrikeWidth, movesJSON, p.PrimaryMove, p.MinPremium, p.MaxPremium, string(p.Pricing), p.LiquidityFactor, time.Now())
	if err != nil {
		return fmt.Errorf("failed to seed profile %s: %w", p.Symbol, err)
	}
	return nil
}

// Get retrieves the profile for a symbol, case-insensitively.
func (r *ProfileRepository) Get(ctx context.Context, symbol string) (*models.UnderlyingProfile, error) {
	query := `
		SELECT symbol, description, spot_price, strike_increment, strike_width, moves, primary_move, min_premium, max_premium, pricing_mode, liquidity_factor, updated_at
		FROM underlying_profiles
		WHERE symbol = $1
	`

	row := r.db.QueryRowContext(ctx, query, strings.ToUpper(symbol))
	profile, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, presets.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// List retrieves all profiles ordered by symbol.
func (r *ProfileRepository) List(ctx context.Context) ([]models.UnderlyingProfile, error) {
	query := `
		SELECT symbol, description, spot_price, strike_increment, strike_width, moves, primary_move, min_premium, max_premium, pricing_mode, liquidity_factor, updated_at
		FROM underlying_profiles
		ORDER BY symbol
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.UnderlyingProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

// Upsert inserts or replaces the profile for a symbol.
func (r *ProfileRepository) Upsert(ctx context.Context, profile models.UnderlyingProfile) error {
	if profile.Symbol == "" {
		return fmt.Errorf("profile symbol is required")
	}

	movesJSON, err := json.Marshal(profile.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}

	query := `
		INSERT INTO underlying_profiles (symbol, description, spot_price, strike_increment, strike_width, moves, primary_move, min_premium, max_premium, pricing_mode, liquidity_factor, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (symbol) DO UPDATE SET
			description = EXCLUDED.description,
			spot_price = EXCLUDED.spot_price,
			strike_increment = EXCLUDED.strike_increment,
			strike_width = EXCLUDED.strike_width,
			moves = EXCLUDED.moves,
			primary_move = EXCLUDED.primary_move,
			min_premium = EXCLUDED.min_premium,
			max_premium = EXCLUDED.max_premium,
			pricing_mode = EXCLUDED.pricing_mode,
			liquidity_factor = EXCLUDED.liquidity_factor,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, strings.ToUpper(profile.Symbol), profile.Description, profile.SpotPrice, profile.StrikeIncrement, profile.StrikeWidth, movesJSON, profile.PrimaryMove, profile.MinPremium, profile.MaxPremium, string(profile.Pricing), profile.LiquidityFactor, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.UnderlyingProfile, error) {
	var (
		profile   models.UnderlyingProfile
		movesJSON []byte
		pricing   string
	)

	err := row.Scan(
		&profile.Symbol,
		&profile.Description,
		&profile.SpotPrice,
		&profile.StrikeIncrement,
		&profile.StrikeWidth,
		&movesJSON,
		&profile.PrimaryMove,
		&profile.MinPremium,
		&profile.MaxPremium,
		&pricing,
		&profile.LiquidityFactor,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(movesJSON, &profile.Moves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moves: %w", err)
	}
	profile.Pricing = engine.PricingMode(pricing)
	return &profile, nil
}
