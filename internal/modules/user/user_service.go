package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"convoyage-platform/internal/models"
	emailSvc "convoyage-platform/pkg/email"
	"convoyage-platform/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

// ServiceInterface defines methods for user business logic.
type ServiceInterface interface {
	GetClientOrigin() string

	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	ActivateUserAndLogin(ctx context.Context, token string) (*models.AuthResponse, error)
	ResendActivationEmail(ctx context.Context, email string) error
	HandleGoogleLogin() (string, string, error)
	HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error)

	GetUserProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error)

	ListUsers(ctx context.Context, page, limit int) ([]*models.User, int, error)
	AdminCreateUser(ctx context.Context, req models.AdminCreateUserRequest) (*models.User, error)
}

type Service struct {
	userRepo          RepositoryInterface
	emailer           emailSvc.ServiceInterface
	templateManager   *emailSvc.TemplateManager
	jwtSecret         string
	clientOrigin      string // For building activation links in emails
	googleOAuthConfig *oauth2.Config
}

func NewService(
	userRepo RepositoryInterface,
	emailer emailSvc.ServiceInterface,
	tm *emailSvc.TemplateManager,
	jwtSecret string,
	clientOrigin string,
	googleOAuthConfig *oauth2.Config,
) ServiceInterface {
	return &Service{
		userRepo:          userRepo,
		emailer:           emailer,
		templateManager:   tm,
		jwtSecret:         jwtSecret,
		clientOrigin:      clientOrigin,
		googleOAuthConfig: googleOAuthConfig,
	}
}

// GoogleUserInfo unmarshals the Google user info response.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GetClientOrigin exposes the frontend URL for OAuth redirects.
func (s *Service) GetClientOrigin() string {
	return s.clientOrigin
}

// Signup registers a new client account and sends an activation email.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Signup.FindByEmail: %w", err)
	}
	if err == nil {
		// Email is taken
		return nil, models.ErrConflict
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.HashPassword: %w", err)
	}

	activationToken, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.GenerateToken: %w", err)
	}
	expiresAt := time.Now().Add(time.Minute * 30)

	newUser := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        models.RoleClient,
		CompanyName: req.Company,
	}
	createdUser, err := s.userRepo.CreateInactiveUser(ctx, newUser, string(hashedPassword), activationToken, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.CreateUser: %w", err)
	}

	s.sendActivationEmail(createdUser, activationToken)
	return createdUser, nil
}

// sendActivationEmail delivers the activation link asynchronously; a
// failed email never fails the signup.
func (s *Service) sendActivationEmail(user *models.User, activationToken string) {
	if s.emailer == nil || s.templateManager == nil {
		return
	}

	activationURL := fmt.Sprintf("%s/activate?token=%s", s.clientOrigin, activationToken)
	htmlContent, err := s.templateManager.GenerateActivateAccountEmailHTML(emailSvc.TemplateData{
		Name: user.Name,
		Link: activationURL,
	})
	if err != nil {
		log.Printf("Failed to generate activation email HTML: %v", err)
		return
	}

	emailSubject := "Bienvenue ! Activez votre compte"
	plainTextContent := fmt.Sprintf("Thank you for signing up! Please click the following link within 30 minutes to activate your account: %s", activationURL)

	go func() {
		if err := s.emailer.SendEmail(context.Background(), user.Email, emailSubject, plainTextContent, htmlContent); err != nil {
			log.Printf("Failed to send activation email to %s: %v", user.Email, err)
		}
	}()
}

// generateAuthResponse issues the JWT for a user.
func (s *Service) generateAuthResponse(user *models.User) (*models.AuthResponse, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24 * 30)), // 30 days expiry
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenSignedString, err := accessToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	user.PasswordHash = "" // Do NOT send sensitive info back

	return &models.AuthResponse{
		AccessToken: tokenSignedString,
		User:        user,
	}, nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	userWithHash, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service.Login.FindByEmail: %w", err)
	}

	if !userWithHash.IsActive {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userWithHash.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.generateAuthResponse(userWithHash)
}

func (s *Service) ActivateUserAndLogin(ctx context.Context, token string) (*models.AuthResponse, error) {
	activatedUser, err := s.userRepo.ActivateUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("service.ActivateUserAndLogin: %w", err)
	}
	return s.generateAuthResponse(activatedUser)
}

func (s *Service) ResendActivationEmail(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// Hide account existence from callers.
		if errors.Is(err, models.ErrNotFound) {
			log.Printf("INFO: Activation resend requested for non-existent email: %s", email)
			return nil
		}
		return fmt.Errorf("service.ResendActivationEmail.FindByEmail: %w", err)
	}

	if user.IsActive {
		log.Printf("INFO: Activation resend requested for already active user: %s", email)
		return nil
	}

	activationToken, err := utils.GenerateSecureToken(32)
	if err != nil {
		return fmt.Errorf("service.ResendActivationEmail.GenerateToken: %w", err)
	}
	expiresAt := time.Now().Add(time.Minute * 30)

	if err := s.userRepo.UpdateActivationToken(ctx, user.ID, activationToken, expiresAt); err != nil {
		return fmt.Errorf("service.ResendActivationEmail.UpdateToken: %w", err)
	}

	s.sendActivationEmail(user, activationToken)
	return nil
}

// HandleGoogleLogin generates and returns the redirect URL and the state value for the user.
func (s *Service) HandleGoogleLogin() (string, string, error) {
	state, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state for google login: %w", err)
	}
	url := s.googleOAuthConfig.AuthCodeURL(state)
	return url, state, nil
}

// HandleGoogleCallback processes the callback from Google, completing the login/signup.
func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error) {
	token, err := s.googleOAuthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}

	response, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info from google: %w", err)
	}
	defer response.Body.Close()

	contents, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading user info response body: %w", err)
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(contents, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}

	if !userInfo.VerifiedEmail {
		return nil, fmt.Errorf("google email not verified: %w", models.ErrInvalidCredentials)
	}

	user, err := s.userRepo.FindByEmail(ctx, userInfo.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("db error while finding user by email: %w", err)
	}

	if errors.Is(err, models.ErrNotFound) {
		newUser := &models.User{
			Name:           userInfo.Name,
			Email:          userInfo.Email,
			Role:           models.RoleClient,
			AuthProvider:   "google",
			AuthProviderID: userInfo.ID,
			IsActive:       true,
		}
		user, err = s.userRepo.CreateOAuthUser(ctx, newUser)
		if err != nil {
			return nil, fmt.Errorf("service.HandleGoogleCallback.CreateUser: %w", err)
		}
	}

	return s.generateAuthResponse(user)
}

func (s *Service) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.GetUserProfile: %w", err)
	}
	return user, nil
}

func (s *Service) UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	updatedUser, err := s.userRepo.Update(ctx, userID, data)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateUserProfile: %w", err)
	}
	return updatedUser, nil
}

// userPage bundles the two values a listing strategy has to produce.
type userPage struct {
	users []*models.User
	total int
}

// ListUsers returns the admin user listing. The enriched variant with
// mission counts is preferred; when it fails (e.g. a heavy aggregate
// timing out) the plain listing is served instead.
func (s *Service) ListUsers(ctx context.Context, page, limit int) ([]*models.User, int, error) {
	chain := NewFallbackChain(
		FetchStrategy[userPage]{
			Name: "with_mission_counts",
			Fetch: func(ctx context.Context) (userPage, error) {
				users, total, err := s.userRepo.ListUsersWithMissionCounts(ctx, page, limit)
				return userPage{users: users, total: total}, err
			},
		},
		FetchStrategy[userPage]{
			Name: "basic",
			Fetch: func(ctx context.Context) (userPage, error) {
				users, total, err := s.userRepo.ListUsers(ctx, page, limit)
				return userPage{users: users, total: total}, err
			},
		},
	)

	result, _, err := chain.Execute(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListUsers: %w", err)
	}
	return result.users, result.total, nil
}

// AdminCreateUser provisions an already-active account, typically a
// driver or another admin.
func (s *Service) AdminCreateUser(ctx context.Context, req models.AdminCreateUserRequest) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.AdminCreateUser.HashPassword: %w", err)
	}

	newUser := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  req.Role,
	}
	created, err := s.userRepo.CreateActiveUser(ctx, newUser, string(hashedPassword))
	if err != nil {
		return nil, fmt.Errorf("service.AdminCreateUser: %w", err)
	}
	return created, nil
}
