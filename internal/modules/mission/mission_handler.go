package mission

import (
	"net/http"

	"convoyage-platform/internal/models"
	"convoyage-platform/pkg/utils"

	"github.com/labstack/echo/v4"
)

// maxDocumentSize caps driver uploads at 20 MiB.
const maxDocumentSize = 20 << 20

// Handler handles HTTP requests for missions.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new mission handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListMissions(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	status := c.QueryParam("status")
	missions, total, err := h.svc.ListMissions(c.Request().Context(), userID, role, status, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve missions")
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"missions": missions, "total": total})
}

func (h *Handler) GetMission(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	m, err := h.svc.GetMission(c.Request().Context(), c.Param("missionId"), userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, m)
}

// AssignDriver attaches a driver to a mission (admin).
func (h *Handler) AssignDriver(c echo.Context) error {
	var req models.AssignDriverRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	m, err := h.svc.AssignDriver(c.Request().Context(), c.Param("missionId"), req.DriverID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, m)
}

// UpdateStatus advances a mission through its lifecycle (driver on own
// missions, admin anywhere).
func (h *Handler) UpdateStatus(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateMissionStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	m, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("missionId"), userID, role, req.Status)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, m)
}

// UploadDocument receives a multipart file from the assigned driver.
func (h *Handler) UploadDocument(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Missing file")
	}
	if fileHeader.Size > maxDocumentSize {
		return utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "File exceeds the 20 MiB limit")
	}

	kind := c.FormValue("kind")
	if kind == "" {
		kind = "other"
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Unreadable file")
	}
	defer file.Close()

	doc, err := h.svc.UploadDocument(
		c.Request().Context(),
		c.Param("missionId"),
		userID,
		role,
		kind,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, doc)
}

// ListDocuments returns a mission's documents with download URLs.
func (h *Handler) ListDocuments(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	docs, err := h.svc.ListDocuments(c.Request().Context(), c.Param("missionId"), userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, docs)
}
