package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/enersim/energy-simulator/internal/core/domain"
	"github.com/enersim/energy-simulator/internal/core/ports"
)

const (
	hoursPerYear = 8760
	// defaultGridEmission is the displaced grid intensity assumed when the
	// caller does not supply one, in gCO₂/kWh.
	defaultGridEmission = 400.0
	// paybackHorizonYears caps the payback contribution to the score: a
	// project that never pays back within this horizon scores zero on the
	// economic axis.
	paybackHorizonYears = 25.0
)

// SimulationService runs the technology calculator and manages saved results.
type SimulationService struct {
	repo ports.SimulationRepository
}

func NewSimulationService(repo ports.SimulationRepository) *SimulationService {
	return &SimulationService{repo: repo}
}

// Run computes one simulation and persists it for the owner.
func (s *SimulationService) Run(ctx context.Context, in ports.RunSimulationInput) (*domain.Simulation, error) {
	sim, err := compute(in.Owner, in.Technology, in.Site)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Insert(ctx, sim)
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// Get returns a saved simulation. Non-admin callers may only read their own.
func (s *SimulationService) Get(ctx context.Context, id string, requester domain.Identity) (*domain.Simulation, error) {
	sim, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sim.Owner != requester.Username && !requester.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	return sim, nil
}

// ListByOwner returns the owner's saved simulations, newest first.
func (s *SimulationService) ListByOwner(ctx context.Context, owner string) ([]*domain.Simulation, error) {
	return s.repo.FindByOwner(ctx, owner)
}

// Delete removes a saved simulation. Non-admin callers may only delete their own.
func (s *SimulationService) Delete(ctx context.Context, id string, requester domain.Identity) error {
	sim, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if sim.Owner != requester.Username && !requester.HasRole(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// Compare runs the calculator over the given technologies for one site and
// returns them ranked by score, best first. An empty technology list compares
// all supported technologies. Results are not persisted.
func (s *SimulationService) Compare(_ context.Context, owner string, technologies []string, site domain.SiteParameters) ([]ports.ComparisonEntry, error) {
	if len(technologies) == 0 {
		technologies = domain.Technologies
	}

	entries := make([]ports.ComparisonEntry, 0, len(technologies))
	for _, tech := range technologies {
		sim, err := compute(owner, tech, site)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ports.ComparisonEntry{Technology: tech, Result: sim})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Result.Score > entries[j].Result.Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// compute is the pure calculator: site parameters in, derived figures and a
// 0-100 score out.
func compute(owner, technology string, site domain.SiteParameters) (*domain.Simulation, error) {
	if !domain.KnownTechnology(technology) {
		return nil, domain.ErrInvalidInput
	}
	if site.CapacityKW <= 0 || site.SystemCost <= 0 || site.ElectricityPrice <= 0 {
		return nil, domain.ErrInvalidInput
	}

	cf := capacityFactor(technology, site)
	annualEnergy := site.CapacityKW * hoursPerYear * cf
	annualSavings := annualEnergy * site.ElectricityPrice

	payback := math.Inf(1)
	if annualSavings > 0 {
		payback = site.SystemCost / annualSavings
	}

	emission := site.GridEmissionGrams
	if emission <= 0 {
		emission = defaultGridEmission
	}
	co2Tons := annualEnergy * emission / 1e6

	return &domain.Simulation{
		Owner:          owner,
		Technology:     technology,
		Site:           site,
		AnnualEnergyKW: round1(annualEnergy),
		AnnualSavings:  round1(annualSavings),
		PaybackYears:   round1(math.Min(payback, paybackHorizonYears)),
		CO2OffsetTons:  round1(co2Tons),
		Score:          score(cf, payback),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// capacityFactor estimates the fraction of nameplate capacity the site
// actually yields over a year for the given technology.
func capacityFactor(technology string, site domain.SiteParameters) float64 {
	switch technology {
	case domain.TechSolar:
		// Peak-sun-hours model with a flat system performance ratio.
		irradiance := site.SolarIrradiance
		if irradiance <= 0 {
			irradiance = 4.5
		}
		return clamp(irradiance/24*0.75, 0, 0.35)
	case domain.TechWind:
		// Linear ramp between cut-in (3 m/s) and rated (12 m/s) speeds,
		// topping out at a 45% capacity factor.
		speed := site.WindSpeed
		if speed <= 0 {
			speed = 6
		}
		return clamp((speed-3)/9, 0, 1) * 0.45
	case domain.TechHydro:
		if site.FlowRate > 0 {
			return clamp(0.35+site.FlowRate/100, 0.35, 0.6)
		}
		return 0.4
	case domain.TechGeothermal:
		return 0.8
	case domain.TechBiomass:
		return 0.6
	default:
		return 0
	}
}

// score blends the site yield (60%) against project economics (40%).
func score(cf, paybackYears float64) float64 {
	yieldScore := clamp(cf/0.9, 0, 1)
	economicScore := clamp(1-paybackYears/paybackHorizonYears, 0, 1)
	return round1((yieldScore*0.6 + economicScore*0.4) * 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
