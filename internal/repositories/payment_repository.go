package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mentorlink/mentorlink/internal/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create records a freshly raised Razorpay order
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	const query = `
	INSERT INTO payments (id, session_id, mentee_id, razorpay_order_id, amount_paise, currency, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		payment.ID,
		payment.SessionID,
		payment.MenteeID,
		payment.RazorpayOrderID,
		payment.AmountPaise,
		payment.Currency,
		payment.Status,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

// FindByOrderID looks up a payment by its Razorpay order ID
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	const query = `
	SELECT id, session_id, mentee_id, razorpay_order_id, amount_paise, currency, status, created_at, updated_at
	FROM payments
	WHERE razorpay_order_id = $1
	LIMIT 1
	`

	var p models.Payment
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&p.ID,
		&p.SessionID,
		&p.MenteeID,
		&p.RazorpayOrderID,
		&p.AmountPaise,
		&p.Currency,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStatus records the outcome of signature verification
func (r *PaymentRepository) UpdateStatus(ctx context.Context, orderID string, status models.PaymentStatus) error {
	const query = `
	UPDATE payments
	SET status = $1, updated_at = NOW()
	WHERE razorpay_order_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, status, orderID)
	return err
}
