package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
	"github.com/rs/zerolog"
)

var (
	ErrSessionNotPayable = errors.New("session has no payable amount")
	ErrBadSignature      = errors.New("payment signature verification failed")
)

// OrderCreator matches razorpay-go's Order.Create signature so tests can
// stub the gateway.
type OrderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	UpdateStatus(ctx context.Context, orderID string, status models.PaymentStatus) error
}

// PaymentService raises Razorpay orders for paid bookings and verifies
// the checkout signature.
type PaymentService struct {
	orders    OrderCreator
	payments  PaymentStore
	sessions  SessionStore
	mentors   MentorStore
	keySecret string
	log       zerolog.Logger
}

func NewPaymentService(orders OrderCreator, payments PaymentStore, sessions SessionStore, mentors MentorStore, keySecret string, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		orders:    orders,
		payments:  payments,
		sessions:  sessions,
		mentors:   mentors,
		keySecret: keySecret,
		log:       log.With().Str("component", "payments").Logger(),
	}
}

// CreateOrder raises a gateway order for the mentor's hourly rate.
func (s *PaymentService) CreateOrder(ctx context.Context, sessionID, menteeID uuid.UUID) (*models.Payment, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MenteeID != menteeID {
		return nil, ErrNotParticipant
	}

	profile, err := s.mentors.FindByUserID(ctx, session.MentorID)
	if err != nil {
		return nil, err
	}
	if profile.HourlyRate == nil || *profile.HourlyRate <= 0 {
		return nil, ErrSessionNotPayable
	}
	amountPaise := int64(*profile.HourlyRate * 100)

	body, err := s.orders.Create(map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  session.ID.String(),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}

	payment := &models.Payment{
		ID:              uuid.New(),
		SessionID:       session.ID,
		MenteeID:        menteeID,
		RazorpayOrderID: orderID,
		AmountPaise:     amountPaise,
		Currency:        "INR",
		Status:          models.PaymentStatusCreated,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Verify checks the checkout signature and marks the payment verified.
func (s *PaymentService) Verify(ctx context.Context, orderID, paymentID, signature string) error {
	if _, err := s.payments.FindByOrderID(ctx, orderID); err != nil {
		return err
	}

	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		if err := s.payments.UpdateStatus(ctx, orderID, models.PaymentStatusFailed); err != nil {
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("failed to record payment failure")
		}
		return ErrBadSignature
	}

	return s.payments.UpdateStatus(ctx, orderID, models.PaymentStatusVerified)
}
