package user

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"convoyage-platform/internal/models"
	"convoyage-platform/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for accounts and authentication.
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new user handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	createdUser, err := h.service.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return utils.RespondWithError(c, http.StatusConflict, "Email address is already in use")
		}
		c.Logger().Error("Handler.Signup: ", err)
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create account")
	}

	return utils.RespondWithJSON(c, http.StatusCreated, createdUser)
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	authResponse, err := h.service.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			return utils.RespondWithError(c, http.StatusUnauthorized, "Invalid email or password")
		}
		c.Logger().Error("Handler.Login: ", err)
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to log in")
	}

	return utils.RespondWithJSON(c, http.StatusOK, authResponse)
}

// ActivateAccount consumes an activation token and logs the user in.
func (h *Handler) ActivateAccount(c echo.Context) error {
	var req models.ActivationRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request: missing token")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	authResponse, err := h.service.ActivateUserAndLogin(c.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			return utils.RespondWithError(c, http.StatusBadRequest, "Invalid or expired activation token")
		}
		c.Logger().Error("Handler.ActivateAccount: ", err)
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to activate account")
	}

	return utils.RespondWithJSON(c, http.StatusOK, authResponse)
}

// ResendActivation handles requests to resend an activation email. The
// response is always a generic success to prevent email enumeration.
func (h *Handler) ResendActivation(c echo.Context) error {
	var req models.ResendActivationRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	if err := h.service.ResendActivationEmail(c.Request().Context(), req.Email); err != nil {
		c.Logger().Error("Handler.ResendActivation: ", err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]string{
		"message": "If an account with that email address exists and is not yet activated, a new activation link has been sent.",
	})
}

// GoogleLogin initiates the Google OAuth 2.0 login flow by redirecting
// the user to Google's consent screen.
func (h *Handler) GoogleLogin(c echo.Context) error {
	authURL, state, err := h.service.HandleGoogleLogin()
	if err != nil {
		c.Logger().Error("Handler.GoogleLogin: failed to generate auth URL: ", err)
		return utils.RespondWithError(c, http.StatusInternalServerError, "Could not initiate Google login")
	}

	// State cookie ties the callback to this login attempt.
	cookie := new(http.Cookie)
	cookie.Name = "oauthstate"
	cookie.Value = state
	cookie.Expires = time.Now().Add(10 * time.Minute)
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.Secure = true
	cookie.SameSite = http.SameSiteLaxMode
	c.SetCookie(cookie)

	return c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback handles the redirect back from Google, validating the
// state parameter against the cookie set in GoogleLogin.
func (h *Handler) GoogleCallback(c echo.Context) error {
	oauthStateCookie, err := c.Cookie("oauthstate")
	if err != nil {
		c.Logger().Error("Handler.GoogleCallback: could not read state cookie: ", err)
		return utils.RespondWithError(c, http.StatusUnauthorized, "Invalid or missing state cookie")
	}

	if c.QueryParam("state") != oauthStateCookie.Value {
		c.Logger().Error("Handler.GoogleCallback: state parameter mismatch")
		return utils.RespondWithError(c, http.StatusUnauthorized, "Invalid state parameter")
	}

	// The state cookie is single use.
	oauthStateCookie.Value = ""
	oauthStateCookie.Expires = time.Unix(0, 0)
	c.SetCookie(oauthStateCookie)

	code := c.QueryParam("code")
	if code == "" {
		return utils.RespondWithError(c, http.StatusBadRequest, "Authorization code not provided")
	}

	authResponse, err := h.service.HandleGoogleCallback(c.Request().Context(), code)
	if err != nil {
		c.Logger().Error("Handler.GoogleCallback: service error: ", err)
		return c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s/login/error", h.service.GetClientOrigin()))
	}

	redirectURL := fmt.Sprintf("%s/login/success?token=%s", h.service.GetClientOrigin(), authResponse.AccessToken)
	return c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

func (h *Handler) GetProfile(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetUserProfile(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UserUpdateData
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	user, err := h.service.UpdateUserProfile(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, user)
}

// ListUsers returns the paginated account listing (admin).
func (h *Handler) ListUsers(c echo.Context) error {
	page, limit := utils.GetPageLimit(c)
	users, total, err := h.service.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListUsers: ", err)
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve users")
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"users": users, "total": total})
}

// AdminCreateUser provisions a driver or admin account (admin).
func (h *Handler) AdminCreateUser(c echo.Context) error {
	var req models.AdminCreateUserRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	created, err := h.service.AdminCreateUser(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return utils.RespondWithError(c, http.StatusConflict, "Email address is already in use")
		}
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, created)
}
