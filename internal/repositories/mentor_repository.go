package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mentorlink/mentorlink/internal/models"
)

var ErrMentorProfileNotFound = errors.New("mentor profile not found")

type MentorRepository struct {
	db *sql.DB
}

func NewMentorRepository(db *sql.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// Create a mentor profile
func (r *MentorRepository) Create(ctx context.Context, profile *models.MentorProfile) error {
	const query = `
	INSERT INTO mentor_profiles (user_id, expertise, hourly_rate, is_available, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	RETURNING id, created_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		profile.UserID,
		pq.Array(profile.Expertise),
		profile.HourlyRate,
		profile.IsAvailable,
	).Scan(&profile.ID, &profile.CreatedAt)
}

// Find profile by the owning user ID
func (r *MentorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error) {
	const query = `
	SELECT id, user_id, expertise, hourly_rate, is_available, created_at
	FROM mentor_profiles
	WHERE user_id = $1
	LIMIT 1
	`

	var profile models.MentorProfile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		pq.Array(&profile.Expertise),
		&profile.HourlyRate,
		&profile.IsAvailable,
		&profile.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMentorProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// List mentors for the marketplace browse view
func (r *MentorRepository) List(ctx context.Context, onlyAvailable bool) ([]models.MentorListing, error) {
	const query = `
	SELECT u.id, u.full_name, u.avatar_url, u.bio, m.expertise, m.hourly_rate, m.is_available
	FROM mentor_profiles m
	JOIN users u ON u.id = m.user_id
	WHERE ($1 = FALSE OR m.is_available)
	ORDER BY u.full_name
	`

	rows, err := r.db.QueryContext(ctx, query, onlyAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.MentorListing
	for rows.Next() {
		var l models.MentorListing
		if err := rows.Scan(
			&l.UserID,
			&l.FullName,
			&l.AvatarURL,
			&l.Bio,
			pq.Array(&l.Expertise),
			&l.HourlyRate,
			&l.IsAvailable,
		); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// UpdateAvailability toggles whether a mentor accepts new bookings
func (r *MentorRepository) UpdateAvailability(ctx context.Context, userID uuid.UUID, available bool) error {
	const query = `
	UPDATE mentor_profiles
	SET is_available = $1
	WHERE user_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, available, userID)
	return err
}
