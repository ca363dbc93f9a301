package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"convoyage-platform/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User

	lastPasswordHash    string
	lastActivationToken string
	tokenUpdates        int

	enrichedCalls int
	basicCalls    int
	failEnriched  bool
	failBasic     bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[string]*models.User),
	}
}

func (f *fakeUserRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) FindByID(ctx context.Context, userID string) (*models.User, error) {
	if u, ok := f.byID[userID]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserRepo) CreateInactiveUser(ctx context.Context, user *models.User, passwordHash, activationToken string, expiresAt time.Time) (*models.User, error) {
	if _, taken := f.byEmail[user.Email]; taken {
		return nil, models.ErrConflict
	}
	created := *user
	created.ID = "user-" + user.Email
	created.PasswordHash = passwordHash
	created.AuthProvider = "local"
	f.lastPasswordHash = passwordHash
	f.lastActivationToken = activationToken
	f.add(&created)
	return &created, nil
}

func (f *fakeUserRepo) ActivateUser(ctx context.Context, token string) (*models.User, error) {
	if token != f.lastActivationToken || token == "" {
		return nil, models.ErrInvalidToken
	}
	for _, u := range f.byID {
		if !u.IsActive {
			u.IsActive = true
			return u, nil
		}
	}
	return nil, models.ErrInvalidToken
}

func (f *fakeUserRepo) UpdateActivationToken(ctx context.Context, userID, newToken string, expiresAt time.Time) error {
	if _, ok := f.byID[userID]; !ok {
		return models.ErrNotFound
	}
	f.lastActivationToken = newToken
	f.tokenUpdates++
	return nil
}

func (f *fakeUserRepo) CreateOAuthUser(ctx context.Context, user *models.User) (*models.User, error) {
	created := *user
	created.ID = "user-" + user.Email
	f.add(&created)
	return &created, nil
}

func (f *fakeUserRepo) CreateActiveUser(ctx context.Context, user *models.User, passwordHash string) (*models.User, error) {
	if _, taken := f.byEmail[user.Email]; taken {
		return nil, models.ErrConflict
	}
	created := *user
	created.ID = "user-" + user.Email
	created.PasswordHash = passwordHash
	created.IsActive = true
	f.lastPasswordHash = passwordHash
	f.add(&created)
	return &created, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if data.Name != nil {
		u.Name = *data.Name
	}
	if data.Phone != nil {
		u.Phone = *data.Phone
	}
	if data.Company != nil {
		u.CompanyName = *data.Company
	}
	return u, nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context, page, limit int) ([]*models.User, int, error) {
	f.basicCalls++
	if f.failBasic {
		return nil, 0, errors.New("basic listing unavailable")
	}
	var users []*models.User
	for _, u := range f.byID {
		users = append(users, u)
	}
	return users, len(users), nil
}

func (f *fakeUserRepo) ListUsersWithMissionCounts(ctx context.Context, page, limit int) ([]*models.User, int, error) {
	f.enrichedCalls++
	if f.failEnriched {
		return nil, 0, errors.New("aggregate timed out")
	}
	var users []*models.User
	for _, u := range f.byID {
		enriched := *u
		enriched.MissionCount = 3
		users = append(users, &enriched)
	}
	return users, len(users), nil
}

const testJWTSecret = "test-secret"

func newUserService(repo RepositoryInterface) ServiceInterface {
	return NewService(repo, nil, nil, testJWTSecret, "https://app.example.com", nil)
}

func activeClient(id, email, password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &models.User{
		ID:           id,
		Name:         "Claire Martin",
		Email:        email,
		Role:         models.RoleClient,
		PasswordHash: string(hash),
		AuthProvider: "local",
		IsActive:     true,
	}
}

func TestSignupCreatesInactiveClient(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)

	created, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Claire Martin",
		Email:    "claire@example.com",
		Password: "s3cure-password",
		Company:  "Garage Martin",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleClient, created.Role)
	assert.False(t, created.IsActive)
	assert.Equal(t, "Garage Martin", created.CompanyName)
	assert.NotEmpty(t, repo.lastActivationToken)

	// Password is stored hashed, never in clear.
	assert.NotEqual(t, "s3cure-password", repo.lastPasswordHash)
	err = bcrypt.CompareHashAndPassword([]byte(repo.lastPasswordHash), []byte("s3cure-password"))
	assert.NoError(t, err)
}

func TestSignupRejectsTakenEmail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(activeClient("u1", "claire@example.com", "whatever"))
	svc := newUserService(repo)

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Other",
		Email:    "claire@example.com",
		Password: "s3cure-password",
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(activeClient("u1", "claire@example.com", "s3cure-password"))
	svc := newUserService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "claire@example.com",
		Password: "s3cure-password",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Empty(t, resp.User.PasswordHash)

	claims := &models.JwtCustomClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleClient, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(activeClient("u1", "claire@example.com", "s3cure-password"))
	svc := newUserService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "claire@example.com",
		Password: "not-the-password",
	})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newUserService(newFakeUserRepo())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cure-password",
	})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	repo := newFakeUserRepo()
	u := activeClient("u1", "claire@example.com", "s3cure-password")
	u.IsActive = false
	repo.add(u)
	svc := newUserService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "claire@example.com",
		Password: "s3cure-password",
	})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestActivateUserAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Claire Martin",
		Email:    "claire@example.com",
		Password: "s3cure-password",
	})
	require.NoError(t, err)

	resp, err := svc.ActivateUserAndLogin(context.Background(), repo.lastActivationToken)
	require.NoError(t, err)
	assert.True(t, resp.User.IsActive)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestActivateRejectsUnknownToken(t *testing.T) {
	svc := newUserService(newFakeUserRepo())

	_, err := svc.ActivateUserAndLogin(context.Background(), "bogus-token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestResendActivationHidesUnknownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)

	err := svc.ResendActivationEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Zero(t, repo.tokenUpdates)
}

func TestResendActivationSkipsActiveAccount(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(activeClient("u1", "claire@example.com", "s3cure-password"))
	svc := newUserService(repo)

	err := svc.ResendActivationEmail(context.Background(), "claire@example.com")
	assert.NoError(t, err)
	assert.Zero(t, repo.tokenUpdates)
}

func TestResendActivationRotatesToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Claire Martin",
		Email:    "claire@example.com",
		Password: "s3cure-password",
	})
	require.NoError(t, err)
	firstToken := repo.lastActivationToken

	err = svc.ResendActivationEmail(context.Background(), "claire@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.tokenUpdates)
	assert.NotEqual(t, firstToken, repo.lastActivationToken)
}

func TestHandleGoogleLoginBuildsAuthURL(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, nil, nil, testJWTSecret, "https://app.example.com", &oauth2.Config{
		ClientID:    "client-id",
		RedirectURL: "https://api.example.com/auth/google/callback",
		Endpoint:    oauth2.Endpoint{AuthURL: "https://accounts.google.com/o/oauth2/v2/auth"},
	})

	url, state, err := svc.HandleGoogleLogin()
	require.NoError(t, err)
	assert.NotEmpty(t, state)
	assert.Contains(t, url, "state="+state)
	assert.Contains(t, url, "client_id=client-id")
}

func TestUpdateUserProfile(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(activeClient("u1", "claire@example.com", "s3cure-password"))
	svc := newUserService(repo)

	newPhone := "+33612345678"
	updated, err := svc.UpdateUserProfile(context.Background(), "u1", models.UserUpdateData{Phone: &newPhone})
	require.NoError(t, err)
	assert.Equal(t, newPhone, updated.Phone)
}

func TestListUsersPrefersMissionCounts(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(activeClient("u1", "claire@example.com", "s3cure-password"))
	svc := newUserService(repo)

	users, total, err := svc.ListUsers(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, 3, users[0].MissionCount)
	assert.Equal(t, 1, repo.enrichedCalls)
	assert.Zero(t, repo.basicCalls)
}

func TestListUsersFallsBackToBasicListing(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(activeClient("u1", "claire@example.com", "s3cure-password"))
	repo.failEnriched = true
	svc := newUserService(repo)

	users, total, err := svc.ListUsers(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Zero(t, users[0].MissionCount)
	assert.Equal(t, 1, repo.enrichedCalls)
	assert.Equal(t, 1, repo.basicCalls)
}

func TestListUsersFailsWhenAllStrategiesFail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failEnriched = true
	repo.failBasic = true
	svc := newUserService(repo)

	_, _, err := svc.ListUsers(context.Background(), 1, 20)
	assert.Error(t, err)
}

func TestAdminCreateUserProvisionsActiveDriver(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)

	created, err := svc.AdminCreateUser(context.Background(), models.AdminCreateUserRequest{
		Name:     "Karim Benali",
		Email:    "karim@example.com",
		Password: "driver-password",
		Role:     models.RoleDriver,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDriver, created.Role)
	assert.True(t, created.IsActive)

	err = bcrypt.CompareHashAndPassword([]byte(repo.lastPasswordHash), []byte("driver-password"))
	assert.NoError(t, err)
}

func TestAdminCreateUserRejectsTakenEmail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(activeClient("u1", "karim@example.com", "whatever"))
	svc := newUserService(repo)

	_, err := svc.AdminCreateUser(context.Background(), models.AdminCreateUserRequest{
		Name:     "Karim Benali",
		Email:    "karim@example.com",
		Password: "driver-password",
		Role:     models.RoleDriver,
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}
