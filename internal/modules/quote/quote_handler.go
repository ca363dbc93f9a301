package quote

import (
	"net/http"

	"convoyage-platform/internal/models"
	"convoyage-platform/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for quotes.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new quote handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateQuote(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.CreateQuoteRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	q, err := h.svc.CreateQuote(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, q)
}

func (h *Handler) ListMyQuotes(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	status := c.QueryParam("status")
	quotes, total, err := h.svc.ListClientQuotes(c.Request().Context(), userID, status, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve quotes")
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"quotes": quotes, "total": total})
}

func (h *Handler) GetQuote(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	q, err := h.svc.GetQuote(c.Request().Context(), c.Param("quoteId"), userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, q)
}

func (h *Handler) DeleteQuote(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.DeleteQuote(c.Request().Context(), c.Param("quoteId"), userID); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAllQuotes returns every quote in the system (admin).
func (h *Handler) ListAllQuotes(c echo.Context) error {
	page, limit := utils.GetPageLimit(c)
	status := c.QueryParam("status")
	quotes, total, err := h.svc.ListAllQuotes(c.Request().Context(), status, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to list quotes")
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"quotes": quotes, "total": total})
}

// AcceptQuote promotes a pending quote into a mission (admin).
func (h *Handler) AcceptQuote(c echo.Context) error {
	mission, err := h.svc.AcceptQuote(c.Request().Context(), c.Param("quoteId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, mission)
}
