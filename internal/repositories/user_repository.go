package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create a new user account
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `
	INSERT INTO users (id, email, password_hash, full_name, user_type, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	RETURNING created_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.UserType,
	).Scan(&user.CreatedAt)
}

// Find user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const query = `
	SELECT id, email, password_hash, full_name, user_type, avatar_url, bio, created_at
	FROM users
	WHERE id = $1
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// Find user by email for login
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
	SELECT id, email, password_hash, full_name, user_type, avatar_url, bio, created_at
	FROM users
	WHERE email = $1
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// Update profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName string, bio, avatarURL *string) error {
	const query = `
	UPDATE users
	SET full_name = $1, bio = $2, avatar_url = $3
	WHERE id = $4
	`

	_, err := r.db.ExecContext(ctx, query, fullName, bio, avatarURL, id)
	return err
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.UserType,
		&user.AvatarURL,
		&user.Bio,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
