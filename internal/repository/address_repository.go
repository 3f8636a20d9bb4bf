package repository

import (
	"context"
	"errors"
	"fmt"

	"glamgo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const addressColumns = `id, user_id, label, street, city, state, zip_code, is_default, created_at, updated_at`

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

func scanAddress(row rowScanner, a *model.Address) error {
	return row.Scan(
		&a.ID,
		&a.UserID,
		&a.Label,
		&a.Street,
		&a.City,
		&a.State,
		&a.ZipCode,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

// lockUser serialises address mutations of one user for the rest of tx.
func lockUser(ctx context.Context, tx pgx.Tx, userID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('addresses:' || $1))`, userID); err != nil {
		return fmt.Errorf("failed to lock user addresses: %w", err)
	}
	return nil
}

// List retrieves the user's addresses newest first.
func (r *addressRepository) List(ctx context.Context, userID string) ([]model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	addresses := []model.Address{}
	for rows.Next() {
		var a model.Address
		if err := scanAddress(rows, &a); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan address row")
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating address rows")
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// GetByID retrieves one of the user's addresses.
func (r *addressRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

// GetDefault retrieves the user's default address.
func (r *addressRepository) GetDefault(ctx context.Context, userID string) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND is_default`
	return r.getOne(ctx, query, userID)
}

func (r *addressRepository) getOne(ctx context.Context, query string, args ...any) (*model.Address, error) {
	var a model.Address
	if err := scanAddress(r.pool.QueryRow(ctx, query, args...), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}
	return &a, nil
}

// Create inserts an address. The user's first address becomes the default.
func (r *addressRepository) Create(ctx context.Context, a *model.Address) error {
	return withTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, a.UserID); err != nil {
			return err
		}

		var existing int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, a.UserID).Scan(&existing); err != nil {
			r.logger.Error().Err(err).Str("user_id", a.UserID).Msg("failed to count addresses")
			return fmt.Errorf("failed to count addresses: %w", err)
		}
		a.IsDefault = existing == 0

		query := `
			INSERT INTO addresses (` + addressColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.Exec(ctx, query,
			a.ID, a.UserID, a.Label, a.Street, a.City, a.State, a.ZipCode, a.IsDefault, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Str("user_id", a.UserID).Msg("failed to insert address")
			return fmt.Errorf("failed to insert address: %w", err)
		}

		r.logger.Debug().
			Str("user_id", a.UserID).
			Str("address_id", a.ID.String()).
			Bool("is_default", a.IsDefault).
			Msg("address created")
		return nil
	})
}

// Update persists label, street, city, state and ZIP code changes.
func (r *addressRepository) Update(ctx context.Context, a *model.Address) error {
	query := `
		UPDATE addresses
		SET label = $3, street = $4, city = $5, state = $6, zip_code = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, a.ID, a.UserID, a.Label, a.Street, a.City, a.State, a.ZipCode, a.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", a.ID.String()).Msg("failed to update address")
		return fmt.Errorf("failed to update address: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrAddressNotFound
	}

	return nil
}

// Delete removes an address, promoting the most recently created remaining
// address when the default was removed.
func (r *addressRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return withTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		var wasDefault bool
		err := tx.QueryRow(ctx,
			`DELETE FROM addresses WHERE id = $1 AND user_id = $2 RETURNING is_default`,
			id, userID,
		).Scan(&wasDefault)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrAddressNotFound
			}
			r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to delete address")
			return fmt.Errorf("failed to delete address: %w", err)
		}

		if !wasDefault {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE addresses SET is_default = TRUE, updated_at = NOW()
			WHERE id = (
				SELECT id FROM addresses WHERE user_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT 1
			)
		`, userID)
		if err != nil {
			r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to promote default address")
			return fmt.Errorf("failed to promote default address: %w", err)
		}

		return nil
	})
}

// SetDefault makes the address the user's only default.
func (r *addressRepository) SetDefault(ctx context.Context, userID string, id uuid.UUID) error {
	return withTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM addresses WHERE id = $1 AND user_id = $2)`,
			id, userID,
		).Scan(&exists)
		if err != nil {
			r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to check address")
			return fmt.Errorf("failed to check address: %w", err)
		}
		if !exists {
			return model.ErrAddressNotFound
		}

		if _, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`,
			userID,
		); err != nil {
			r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear default address")
			return fmt.Errorf("failed to clear default address: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default = TRUE, updated_at = NOW() WHERE id = $1`,
			id,
		); err != nil {
			r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to set default address")
			return fmt.Errorf("failed to set default address: %w", err)
		}

		return nil
	})
}
