package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
)

type RatingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create records a mentee's rating of a completed session
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	const query = `
	INSERT INTO mentor_ratings (mentor_id, mentee_id, session_id, rating, review, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	RETURNING id, created_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		rating.MentorID,
		rating.MenteeID,
		rating.SessionID,
		rating.Rating,
		rating.Review,
	).Scan(&rating.ID, &rating.CreatedAt)
}

// AverageForMentor returns the mentor's mean rating and rating count
func (r *RatingRepository) AverageForMentor(ctx context.Context, mentorID uuid.UUID) (float64, int, error) {
	const query = `
	SELECT COALESCE(AVG(rating), 0), COUNT(*)
	FROM mentor_ratings
	WHERE mentor_id = $1
	`

	var avg float64
	var count int
	err := r.db.QueryRowContext(ctx, query, mentorID).Scan(&avg, &count)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	return avg, count, err
}
