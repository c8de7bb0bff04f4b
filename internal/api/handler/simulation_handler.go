package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/enersim/energy-simulator/internal/api/metrics"
	"github.com/enersim/energy-simulator/internal/core/domain"
	"github.com/enersim/energy-simulator/internal/core/ports"
)

// SimulationHandler handles HTTP requests for the calculator and saved results.
type SimulationHandler struct {
	service ports.SimulationService
}

func NewSimulationHandler(service ports.SimulationService) *SimulationHandler {
	return &SimulationHandler{service: service}
}

// --- Request / Response types ---

type siteRequest struct {
	CapacityKW        float64 `json:"capacity_kw" validate:"gt=0"`
	SolarIrradiance   float64 `json:"solar_irradiance,omitempty"`
	WindSpeed         float64 `json:"wind_speed,omitempty"`
	FlowRate          float64 `json:"flow_rate,omitempty"`
	SystemCost        float64 `json:"system_cost" validate:"gt=0"`
	ElectricityPrice  float64 `json:"electricity_price" validate:"gt=0"`
	GridEmissionGrams float64 `json:"grid_emission_grams,omitempty"`
}

type runSimulationRequest struct {
	Technology string      `json:"technology" validate:"required,oneof=solar wind hydro geothermal biomass"`
	Site       siteRequest `json:"site"`
}

type comparisonRequest struct {
	Technologies []string    `json:"technologies,omitempty" validate:"omitempty,dive,oneof=solar wind hydro geothermal biomass"`
	Site         siteRequest `json:"site"`
}

type simulationResponse struct {
	ID             string      `json:"id,omitempty"`
	Owner          string      `json:"owner"`
	Technology     string      `json:"technology"`
	Site           siteRequest `json:"site"`
	AnnualEnergyKW float64     `json:"annual_energy_kwh"`
	AnnualSavings  float64     `json:"annual_savings"`
	PaybackYears   float64     `json:"payback_years"`
	CO2OffsetTons  float64     `json:"co2_offset_tons"`
	Score          float64     `json:"score"`
	CreatedAt      string      `json:"created_at,omitempty"`
}

type comparisonEntryResponse struct {
	Rank       int                `json:"rank"`
	Technology string             `json:"technology"`
	Result     simulationResponse `json:"result"`
}

func (r siteRequest) toDomain() domain.SiteParameters {
	return domain.SiteParameters{
		CapacityKW:        r.CapacityKW,
		SolarIrradiance:   r.SolarIrradiance,
		WindSpeed:         r.WindSpeed,
		FlowRate:          r.FlowRate,
		SystemCost:        r.SystemCost,
		ElectricityPrice:  r.ElectricityPrice,
		GridEmissionGrams: r.GridEmissionGrams,
	}
}

func toSimulationResponse(s *domain.Simulation) simulationResponse {
	resp := simulationResponse{
		ID:         s.ID,
		Owner:      s.Owner,
		Technology: s.Technology,
		Site: siteRequest{
			CapacityKW:        s.Site.CapacityKW,
			SolarIrradiance:   s.Site.SolarIrradiance,
			WindSpeed:         s.Site.WindSpeed,
			FlowRate:          s.Site.FlowRate,
			SystemCost:        s.Site.SystemCost,
			ElectricityPrice:  s.Site.ElectricityPrice,
			GridEmissionGrams: s.Site.GridEmissionGrams,
		},
		AnnualEnergyKW: s.AnnualEnergyKW,
		AnnualSavings:  s.AnnualSavings,
		PaybackYears:   s.PaybackYears,
		CO2OffsetTons:  s.CO2OffsetTons,
		Score:          s.Score,
	}
	if !s.CreatedAt.IsZero() {
		resp.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Run handles POST /v1/simulations.
//
// @Summary      Run the calculator for one technology and save the result
// @Tags         simulations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      runSimulationRequest  true  "Technology and site parameters"
// @Success      201   {object}  simulationResponse
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Router       /v1/simulations [post]
func (h *SimulationHandler) Run(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req runSimulationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	sim, err := h.service.Run(c.Request().Context(), ports.RunSimulationInput{
		Owner:      identity.Username,
		Technology: req.Technology,
		Site:       req.Site.toDomain(),
	})
	if err != nil {
		return err
	}

	metrics.SimulationsComputedTotal.WithLabelValues(req.Technology).Inc()
	metrics.SimulationDuration.Observe(time.Since(start).Seconds())
	return c.JSON(http.StatusCreated, toSimulationResponse(sim))
}

// List handles GET /v1/simulations: the caller's saved simulations.
//
// @Summary      List own saved simulations
// @Tags         simulations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   simulationResponse
// @Failure      401  {object}  map[string]interface{}
// @Router       /v1/simulations [get]
func (h *SimulationHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	sims, err := h.service.ListByOwner(c.Request().Context(), identity.Username)
	if err != nil {
		return err
	}

	out := make([]simulationResponse, 0, len(sims))
	for _, s := range sims {
		out = append(out, toSimulationResponse(s))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/simulations/:id.
//
// @Summary      Get a saved simulation
// @Tags         simulations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Simulation id"
// @Success      200  {object}  simulationResponse
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /v1/simulations/{id} [get]
func (h *SimulationHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	sim, err := h.service.Get(c.Request().Context(), c.Param("id"), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSimulationResponse(sim))
}

// Delete handles DELETE /v1/simulations/:id.
//
// @Summary      Delete a saved simulation
// @Tags         simulations
// @Security     BearerAuth
// @Param        id  path  string  true  "Simulation id"
// @Success      204
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /v1/simulations/{id} [delete]
func (h *SimulationHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), identity); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Compare handles POST /v1/comparisons: rank technologies for one site.
//
// @Summary      Compare technologies for a site
// @Tags         simulations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      comparisonRequest  true  "Technologies (empty = all) and site parameters"
// @Success      200   {array}   comparisonEntryResponse
// @Failure      400   {object}  map[string]interface{}
// @Router       /v1/comparisons [post]
func (h *SimulationHandler) Compare(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req comparisonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entries, err := h.service.Compare(c.Request().Context(), identity.Username, req.Technologies, req.Site.toDomain())
	if err != nil {
		return err
	}

	out := make([]comparisonEntryResponse, 0, len(entries))
	for _, e := range entries {
		metrics.SimulationsComputedTotal.WithLabelValues(e.Technology).Inc()
		out = append(out, comparisonEntryResponse{
			Rank:       e.Rank,
			Technology: e.Technology,
			Result:     toSimulationResponse(e.Result),
		})
	}
	return c.JSON(http.StatusOK, out)
}
