package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/mentorlink/internal/models"
)

type fakeOrderCreator struct {
	lastData map[string]interface{}
	orderID  string
	err      error
}

func (f *fakeOrderCreator) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.lastData = data
	if f.err != nil {
		return nil, f.err
	}
	return map[string]interface{}{"id": f.orderID}, nil
}

type fakePaymentStore struct {
	byOrderID map[string]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{byOrderID: make(map[string]*models.Payment)}
}

func (f *fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	cp := *p
	f.byOrderID[p.RazorpayOrderID] = &cp
	return nil
}

func (f *fakePaymentStore) FindByOrderID(_ context.Context, orderID string) (*models.Payment, error) {
	p, ok := f.byOrderID[orderID]
	if !ok {
		return nil, errors.New("payment not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) UpdateStatus(_ context.Context, orderID string, status models.PaymentStatus) error {
	p, ok := f.byOrderID[orderID]
	if !ok {
		return errors.New("payment not found")
	}
	p.Status = status
	return nil
}

const testKeySecret = "rzp-test-secret"

func newPaymentFixture(orderID string) (*PaymentService, *fakeSessionStore, *fakeMentorStore, *fakeOrderCreator, *fakePaymentStore) {
	store := newFakeSessionStore()
	mentors := newFakeMentorStore()
	orders := &fakeOrderCreator{orderID: orderID}
	payments := newFakePaymentStore()
	svc := NewPaymentService(orders, payments, store, mentors, testKeySecret, zerolog.Nop())
	return svc, store, mentors, orders, payments
}

func checkoutSignature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderChargesHourlyRateInPaise(t *testing.T) {
	svc, store, mentors, orders, _ := newPaymentFixture("order_123")
	session, mentorID, menteeID := seedSession(store, models.SessionStatusScheduled)
	rate := 1500.0
	mentors.profiles[mentorID] = &models.MentorProfile{UserID: mentorID, HourlyRate: &rate, IsAvailable: true}

	payment, err := svc.CreateOrder(context.Background(), session.ID, menteeID)
	require.NoError(t, err)

	assert.Equal(t, "order_123", payment.RazorpayOrderID)
	assert.Equal(t, int64(150000), payment.AmountPaise)
	assert.Equal(t, models.PaymentStatusCreated, payment.Status)
	assert.Equal(t, int64(150000), orders.lastData["amount"])
	assert.Equal(t, "INR", orders.lastData["currency"])
	assert.Equal(t, session.ID.String(), orders.lastData["receipt"])
}

func TestCreateOrderOnlyByMentee(t *testing.T) {
	svc, store, mentors, _, _ := newPaymentFixture("order_123")
	session, mentorID, _ := seedSession(store, models.SessionStatusScheduled)
	rate := 1500.0
	mentors.profiles[mentorID] = &models.MentorProfile{UserID: mentorID, HourlyRate: &rate}

	_, err := svc.CreateOrder(context.Background(), session.ID, mentorID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.CreateOrder(context.Background(), session.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestCreateOrderRequiresPayableRate(t *testing.T) {
	svc, store, mentors, _, _ := newPaymentFixture("order_123")
	session, mentorID, menteeID := seedSession(store, models.SessionStatusScheduled)
	mentors.profiles[mentorID] = &models.MentorProfile{UserID: mentorID}

	_, err := svc.CreateOrder(context.Background(), session.ID, menteeID)
	assert.ErrorIs(t, err, ErrSessionNotPayable)
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	svc, store, mentors, _, payments := newPaymentFixture("order_abc")
	session, mentorID, menteeID := seedSession(store, models.SessionStatusScheduled)
	rate := 100.0
	mentors.profiles[mentorID] = &models.MentorProfile{UserID: mentorID, HourlyRate: &rate}
	_, err := svc.CreateOrder(context.Background(), session.ID, menteeID)
	require.NoError(t, err)

	sig := checkoutSignature("order_abc", "pay_1")
	require.NoError(t, svc.Verify(context.Background(), "order_abc", "pay_1", sig))

	p, err := payments.FindByOrderID(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusVerified, p.Status)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	svc, store, mentors, _, payments := newPaymentFixture("order_abc")
	session, mentorID, menteeID := seedSession(store, models.SessionStatusScheduled)
	rate := 100.0
	mentors.profiles[mentorID] = &models.MentorProfile{UserID: mentorID, HourlyRate: &rate}
	_, err := svc.CreateOrder(context.Background(), session.ID, menteeID)
	require.NoError(t, err)

	err = svc.Verify(context.Background(), "order_abc", "pay_1", "deadbeef")
	assert.ErrorIs(t, err, ErrBadSignature)

	p, err := payments.FindByOrderID(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, p.Status)
}
