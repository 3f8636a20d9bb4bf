package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"glamgo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `
	id, email, password_hash, name, phone, profile_photo_url, role,
	is_email_verified, is_active, created_at, updated_at, last_login_at
`

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func scanUser(row rowScanner, u *model.User) error {
	var role string
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Phone,
		&u.ProfilePhotoURL,
		&role,
		&u.IsEmailVerified,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
	)
	u.Role = model.Role(role)
	return err
}

// Create inserts a user. E-mails are stored lower-cased.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(u.Email)

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.ProfilePhotoURL, string(u.Role),
		u.IsEmailVerified, u.IsActive, u.CreatedAt, u.UpdatedAt, u.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn().Str("email", u.Email).Msg("email already registered")
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Str("user_id", u.ID.String()).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug().Str("user_id", u.ID.String()).Msg("user created")
	return nil
}

// GetByID retrieves a user.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, `SELECT`+userColumns+`FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by case-insensitive e-mail.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT`+userColumns+`FROM users WHERE email = $1`, strings.ToLower(email))
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	if err := scanUser(r.pool.QueryRow(ctx, query, arg), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// UpdateProfile persists name and phone.
func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) error {
	return r.exec(ctx, "update profile", id,
		`UPDATE users SET name = $2, phone = $3, updated_at = NOW() WHERE id = $1`,
		id, name, phone,
	)
}

// UpdatePhotoURL persists the profile photo location.
func (r *userRepository) UpdatePhotoURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.exec(ctx, "update profile photo", id,
		`UPDATE users SET profile_photo_url = $2, updated_at = NOW() WHERE id = $1`,
		id, url,
	)
}

// TouchLastLogin records a successful sign-in.
func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, "record last login", id,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`,
		id, at,
	)
}

func (r *userRepository) exec(ctx context.Context, op string, id uuid.UUID, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msgf("failed to %s", op)
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
