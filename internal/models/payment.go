package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusCreated  PaymentStatus = "created"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// Payment records a Razorpay order raised for a paid session booking.
type Payment struct {
	ID              uuid.UUID     `db:"id"`
	SessionID       uuid.UUID     `db:"session_id"`
	MenteeID        uuid.UUID     `db:"mentee_id"`
	RazorpayOrderID string        `db:"razorpay_order_id"`
	AmountPaise     int64         `db:"amount_paise"`
	Currency        string        `db:"currency"`
	Status          PaymentStatus `db:"status"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}
