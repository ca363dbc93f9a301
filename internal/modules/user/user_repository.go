package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"convoyage-platform/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines methods for interacting with user storage.
type RepositoryInterface interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	CreateInactiveUser(ctx context.Context, user *models.User, passwordHash, activationToken string, expiresAt time.Time) (*models.User, error)
	ActivateUser(ctx context.Context, token string) (*models.User, error)
	UpdateActivationToken(ctx context.Context, userID, newToken string, expiresAt time.Time) error
	CreateOAuthUser(ctx context.Context, user *models.User) (*models.User, error)
	CreateActiveUser(ctx context.Context, user *models.User, passwordHash string) (*models.User, error)
	Update(ctx context.Context, userID string, updateData models.UserUpdateData) (*models.User, error)

	ListUsers(ctx context.Context, page, limit int) ([]*models.User, int, error)
	ListUsersWithMissionCounts(ctx context.Context, page, limit int) ([]*models.User, int, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const userColumns = `id, name, email, phone, role, company_name, auth_provider, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role,
		&user.CompanyName, &user.AuthProvider, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return user, nil
}

// FindByEmail also loads the password hash, for login.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, name, email, phone, role, company_name, password_hash, auth_provider, is_active, created_at, updated_at
		FROM users WHERE email = $1`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role,
		&user.CompanyName, &user.PasswordHash, &user.AuthProvider, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByEmail: %w", err)
	}
	return user, nil
}

// CreateInactiveUser inserts a client account awaiting email activation.
func (r *Repository) CreateInactiveUser(ctx context.Context, user *models.User, passwordHash, activationToken string, expiresAt time.Time) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, email, phone, role, company_name, password_hash, auth_provider, is_active, activation_token, activation_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'local', FALSE, $8, $9)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, query,
		uuid.NewString(), user.Name, user.Email, user.Phone, user.Role,
		user.CompanyName, passwordHash, activationToken, expiresAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.CreateInactiveUser: %w", err)
	}
	return created, nil
}

// ActivateUser flips the matching account to active and clears the
// token, failing on unknown or expired tokens.
func (r *Repository) ActivateUser(ctx context.Context, token string) (*models.User, error) {
	query := `
		UPDATE users
		SET is_active = TRUE, activation_token = NULL, activation_expires_at = NULL, updated_at = NOW()
		WHERE activation_token = $1 AND activation_expires_at > NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidToken
		}
		return nil, fmt.Errorf("repository.ActivateUser: %w", err)
	}
	return user, nil
}

func (r *Repository) UpdateActivationToken(ctx context.Context, userID, newToken string, expiresAt time.Time) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE users SET activation_token = $1, activation_expires_at = $2, updated_at = NOW()
		WHERE id = $3`,
		newToken, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("repository.UpdateActivationToken: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CreateOAuthUser inserts an already-verified account from an OAuth
// provider.
func (r *Repository) CreateOAuthUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, email, role, auth_provider, auth_provider_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, query,
		uuid.NewString(), user.Name, user.Email, user.Role, user.AuthProvider, user.AuthProviderID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.CreateOAuthUser: %w", err)
	}
	return created, nil
}

// CreateActiveUser inserts an account that skips the activation flow,
// used by administrators to provision drivers and other admins.
func (r *Repository) CreateActiveUser(ctx context.Context, user *models.User, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, email, phone, role, password_hash, auth_provider, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, 'local', TRUE)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, query,
		uuid.NewString(), user.Name, user.Email, user.Phone, user.Role, passwordHash,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.CreateActiveUser: %w", err)
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if data.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *data.Name)
		argIdx++
	}
	if data.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, *data.Phone)
		argIdx++
	}
	if data.Company != nil {
		setClauses = append(setClauses, fmt.Sprintf("company_name = $%d", argIdx))
		args = append(args, *data.Company)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, userID)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(setClauses, ", "), argIdx)

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateUser: %w", err)
	}
	return user, nil
}

// ListUsers returns every account, newest first.
func (r *Repository) ListUsers(ctx context.Context, page, limit int) ([]*models.User, int, error) {
	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListUsers.Query: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListUsers.Scan: %w", err)
		}
		users = append(users, user)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListUsers.Count: %w", err)
	}
	return users, total, nil
}

// ListUsersWithMissionCounts is the enriched listing: each account
// carries the number of missions it appears on, as client or driver.
func (r *Repository) ListUsersWithMissionCounts(ctx context.Context, page, limit int) ([]*models.User, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT u.id, u.name, u.email, u.phone, u.role, u.company_name, u.auth_provider, u.is_active, u.created_at, u.updated_at,
			(SELECT COUNT(*) FROM missions m WHERE m.client_id = u.id OR m.driver_id = u.id) AS mission_count
		FROM users u
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListUsersWithMissionCounts.Query: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role,
			&user.CompanyName, &user.AuthProvider, &user.IsActive,
			&user.CreatedAt, &user.UpdatedAt, &user.MissionCount,
		); err != nil {
			return nil, 0, fmt.Errorf("repository.ListUsersWithMissionCounts.Scan: %w", err)
		}
		users = append(users, user)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListUsersWithMissionCounts.Count: %w", err)
	}
	return users, total, nil
}

// isUniqueViolation reports whether a pgx error is a unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
