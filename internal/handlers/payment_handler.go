package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/dtos"
	"github.com/mentorlink/mentorlink/internal/middlewares"
	"github.com/mentorlink/mentorlink/internal/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
	keyID    string
}

func NewPaymentHandler(payments *services.PaymentService, keyID string) *PaymentHandler {
	return &PaymentHandler{payments: payments, keyID: keyID}
}

// Create raises a Razorpay order for a booked session.
func (h *PaymentHandler) Create(c *gin.Context) {
	userID, err := middlewares.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req dtos.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
		return
	}

	payment, err := h.payments.CreateOrder(c.Request.Context(), sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotParticipant):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, services.ErrSessionNotPayable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment"})
		}
		return
	}

	c.JSON(http.StatusCreated, dtos.CreatePaymentResponse{
		OrderID:     payment.RazorpayOrderID,
		AmountPaise: payment.AmountPaise,
		Currency:    payment.Currency,
		KeyID:       h.keyID,
	})
}

// Verify checks the checkout signature returned by the client.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req dtos.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.payments.Verify(c.Request.Context(), req.OrderID, req.PaymentID, req.Signature); err != nil {
		if errors.Is(err, services.ErrBadSignature) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
