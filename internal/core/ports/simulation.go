package ports

import (
	"context"

	"github.com/enersim/energy-simulator/internal/core/domain"
)

// RunSimulationInput carries everything needed for one calculator run.
type RunSimulationInput struct {
	Owner      string
	Technology string
	Site       domain.SiteParameters
}

// ComparisonEntry is one ranked row of a technology comparison.
type ComparisonEntry struct {
	Rank       int                `json:"rank"`
	Technology string             `json:"technology"`
	Result     *domain.Simulation `json:"result"`
}

// SimulationService runs the calculator and manages saved results.
type SimulationService interface {
	Run(ctx context.Context, in RunSimulationInput) (*domain.Simulation, error)
	Get(ctx context.Context, id string, requester domain.Identity) (*domain.Simulation, error)
	ListByOwner(ctx context.Context, owner string) ([]*domain.Simulation, error)
	Delete(ctx context.Context, id string, requester domain.Identity) error
	Compare(ctx context.Context, owner string, technologies []string, site domain.SiteParameters) ([]ComparisonEntry, error)
}

// SimulationRepository persists calculator results.
type SimulationRepository interface {
	Insert(ctx context.Context, sim *domain.Simulation) (*domain.Simulation, error)
	FindByID(ctx context.Context, id string) (*domain.Simulation, error)
	FindByOwner(ctx context.Context, owner string) ([]*domain.Simulation, error)
	Delete(ctx context.Context, id string) error
}
