// Package repository provides data access for users and generation records.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reelcraft/script-generation-go/internal/db"
	"github.com/reelcraft/script-generation-go/internal/models"
)

// UserRepository defines operations for managing registered callers.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *models.User) error

	// FindByEmail retrieves a single user by email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID retrieves a single user by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// ResetUsage zeroes the usage counter and records the reset time.
	ResetUsage(ctx context.Context, id uuid.UUID, resetAt time.Time) error

	// IncrementUsage bumps the usage counter and returns the new value.
	IncrementUsage(ctx context.Context, id uuid.UUID) (int, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, generations_used, last_reset, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.GenerationsUsed,
		user.LastReset,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return db.WrapError(err, "create user")
	}

	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, generations_used, last_reset, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.GenerationsUsed,
		&user.LastReset,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, db.WrapError(err, "find user by email")
	}

	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, generations_used, last_reset, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.GenerationsUsed,
		&user.LastReset,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, db.WrapError(err, "find user by id")
	}

	return user, nil
}

func (r *userRepository) ResetUsage(ctx context.Context, id uuid.UUID, resetAt time.Time) error {
	query := `
		UPDATE users
		SET generations_used = 0,
		    last_reset = $1,
		    updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, resetAt, time.Now(), id)
	if err != nil {
		return db.WrapError(err, "reset usage")
	}

	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "reset usage")
	}

	return nil
}

func (r *userRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE users
		SET generations_used = generations_used + 1,
		    updated_at = $1
		WHERE id = $2
		RETURNING generations_used
	`

	var used int
	err := r.pool.QueryRow(ctx, query, time.Now(), id).Scan(&used)
	if err != nil {
		return 0, db.WrapError(err, "increment usage")
	}

	return used, nil
}
