package presets

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/greekscope/greekscope/internal/engine"
	"github.com/greekscope/greekscope/internal/models"
)

// Repository stores underlying profiles. The Postgres implementation lives
// in internal/database; InMemoryRepository backs deployments without a
// database.
type Repository interface {
	Get(ctx context.Context, symbol string) (*models.UnderlyingProfile, error)
	List(ctx context.Context) ([]models.UnderlyingProfile, error)
	Upsert(ctx context.Context, profile models.UnderlyingProfile) error
}

// ErrNotFound is returned when no profile exists for a symbol.
var ErrNotFound = fmt.Errorf("profile not found")

// Defaults returns the built-in underlying profiles.
func Defaults() []models.UnderlyingProfile {
	now := time.Now().UTC()
	return []models.UnderlyingProfile{
		{
			Symbol:          "SPY",
			Description:     "S&P 500 ETF, dollar strike ladder",
			SpotPrice:       604.53,
			StrikeIncrement: 2.5,
			StrikeWidth:     35,
			Moves: []engine.ScenarioMove{
				{Name: "target", Size: 2.0},
				{Name: "conservative", Size: 1.0},
				{Name: "aggressive", Size: 3.0},
			},
			PrimaryMove: "target",
			MinPremium:  0.05,
			MaxPremium:  50,
			Pricing:     engine.PriceTheoretical,
			UpdatedAt:   now,
		},
		{
			Symbol:          "SPX",
			Description:     "S&P 500 index, 25-point strikes",
			SpotPrice:       6045.26,
			StrikeIncrement: 25,
			StrikeWidth:     350,
			Moves: []engine.ScenarioMove{
				{Name: "target", Size: 20},
				{Name: "conservative", Size: 10},
				{Name: "aggressive", Size: 30},
			},
			PrimaryMove: "target",
			MinPremium:  0.50,
			MaxPremium:  500,
			Pricing:     engine.PriceTheoretical,
			UpdatedAt:   now,
		},
	}
}

// InMemoryRepository is a concurrency-safe profile store seeded with the
// built-in defaults.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]models.UnderlyingProfile
}

// NewInMemoryRepository builds a repository pre-populated with Defaults().
func NewInMemoryRepository() *InMemoryRepository {
	repo := &InMemoryRepository{profiles: make(map[string]models.UnderlyingProfile)}
	for _, p := range Defaults() {
		repo.profiles[p.Symbol] = p
	}
	return repo
}

// Get returns the profile for a symbol, case-insensitively.
func (r *InMemoryRepository) Get(_ context.Context, symbol string) (*models.UnderlyingProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[strings.ToUpper(symbol)]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// List returns every stored profile ordered by symbol.
func (r *InMemoryRepository) List(_ context.Context) ([]models.UnderlyingProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.UnderlyingProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Upsert stores a profile keyed by its uppercased symbol.
func (r *InMemoryRepository) Upsert(_ context.Context, profile models.UnderlyingProfile) error {
	if profile.Symbol == "" {
		return fmt.Errorf("profile symbol is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profile.Symbol = strings.ToUpper(profile.Symbol)
	profile.UpdatedAt = time.Now().UTC()
	r.profiles[profile.Symbol] = profile
	return nil
}
