package pricing

import (
	"net/http"

	"convoyage-platform/internal/models"
	"convoyage-platform/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the price grid.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new pricing handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// ListRanges returns the static distance band catalog. Public: the
// quote form needs it to render distance information.
func (h *Handler) ListRanges(c echo.Context) error {
	return utils.RespondWithJSON(c, http.StatusOK, h.svc.Ranges())
}

// ListVehicleTypes returns the vehicle catalog. Public for the same
// reason.
func (h *Handler) ListVehicleTypes(c echo.Context) error {
	types, err := h.svc.VehicleTypes(c.Request().Context())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, types)
}

// GetGrid returns the full price grid keyed by vehicle type (admin).
func (h *Handler) GetGrid(c echo.Context) error {
	grid, err := h.svc.Grid(c.Request().Context())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, grid)
}

// SavePrice updates one grid cell (admin). Price-group members are
// updated in the same operation.
func (h *Handler) SavePrice(c echo.Context) error {
	vehicleTypeID := c.Param("vehicleTypeId")
	rangeID := c.Param("rangeId")

	var req models.SavePriceRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	if err := h.svc.SavePrice(c.Request().Context(), vehicleTypeID, rangeID, req.PriceHT); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReloadGrid drops the cached grid and re-reads it from the store
// (admin), e.g. after a manual database fix.
func (h *Handler) ReloadGrid(c echo.Context) error {
	if err := h.svc.Reload(c.Request().Context()); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Estimate resolves a price for one vehicle type and distance without
// persisting anything.
func (h *Handler) Estimate(c echo.Context) error {
	var req models.EstimateRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	price, err := h.svc.Resolve(c.Request().Context(), req.VehicleTypeID, req.DistanceKm)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, price)
}
