// internal/handlers/payment/payment_handler.go
package payment

import (
	"errors"
	"net/http"
	"strconv"

	"cobramax-service/internal/domain/payment"
	"cobramax-service/internal/middleware"
	xerrors "cobramax-service/internal/pkg/errors"
	"cobramax-service/internal/pkg/response"
	"cobramax-service/internal/service/billing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	billingService *billing.BillingService
	logger         *zap.Logger
}

func NewPaymentHandler(svc *billing.BillingService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		billingService: svc,
		logger:         logger,
	}
}

func paymentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, "invalid payment id", err)
		return 0, false
	}
	return id, true
}

// Create registers a new pendiente payment
func (h *PaymentHandler) Create(c *gin.Context) {
	var req payment.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	userID := middleware.MustGetUserID(c)
	p, err := h.billingService.CreatePayment(c.Request.Context(), &req, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "customer not found")
			return
		}
		h.logger.Error("create payment failed",
			zap.Int64("customer_id", req.CustomerID),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "failed to create payment", err)
		return
	}

	h.logger.Info("payment registered",
		zap.Int64("payment_id", p.ID),
		zap.String("transaction_code", p.TransactionCode),
		zap.Float64("amount", p.Amount),
	)

	response.Success(c, http.StatusCreated, "payment registered", p)
}

// Get returns one payment
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	p, err := h.billingService.GetPayment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "payment not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load payment", err)
		return
	}

	response.Success(c, http.StatusOK, "", p)
}

// Complete validates a pendiente payment, decrements the debt and may
// reconnect the account
func (h *PaymentHandler) Complete(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	userID := middleware.MustGetUserID(c)
	result, err := h.billingService.CompletePayment(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "payment not found")
		case errors.Is(err, xerrors.ErrConflict):
			response.Error(c, http.StatusConflict, "payment cannot be validated in its current status", nil)
		default:
			h.logger.Error("complete payment failed", zap.Int64("payment_id", id), zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to complete payment", err)
		}
		return
	}

	h.logger.Info("payment completed",
		zap.Int64("payment_id", id),
		zap.Float64("debt_after", result.DebtAfter),
		zap.String("status_after", result.StatusAfter),
	)

	response.Success(c, http.StatusOK, "payment completed", result)
}

// Reject moves a pendiente payment to rechazado
func (h *PaymentHandler) Reject(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	userID := middleware.MustGetUserID(c)
	p, err := h.billingService.RejectPayment(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "payment not found")
		case errors.Is(err, xerrors.ErrConflict):
			response.Error(c, http.StatusConflict, "only pending payments can be rejected", nil)
		default:
			h.logger.Error("reject payment failed", zap.Int64("payment_id", id), zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to reject payment", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "payment rejected", p)
}

// Revert undoes a completado payment and restores the debt
func (h *PaymentHandler) Revert(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	userID := middleware.MustGetUserID(c)
	p, err := h.billingService.RevertPayment(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "payment not found")
		case errors.Is(err, xerrors.ErrConflict):
			response.Error(c, http.StatusConflict, "only completed payments can be reverted", nil)
		default:
			h.logger.Error("revert payment failed", zap.Int64("payment_id", id), zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to revert payment", err)
		}
		return
	}

	h.logger.Info("payment reverted", zap.Int64("payment_id", id))
	response.Success(c, http.StatusOK, "payment reverted", p)
}

// ListByCustomer returns the payments of one customer
func (h *PaymentHandler) ListByCustomer(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || customerID <= 0 {
		response.ValidationError(c, "invalid customer id", err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	payments, err := h.billingService.ListPayments(c.Request.Context(), customerID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "", payments)
}

// Account returns the authenticated customer's self-service summary
func (h *PaymentHandler) Account(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	view, err := h.billingService.GetAccountView(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "no customer account linked to this user")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load account", err)
		return
	}

	response.Success(c, http.StatusOK, "", view)
}

// Events returns the state machine audit trail of one customer
func (h *PaymentHandler) Events(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || customerID <= 0 {
		response.ValidationError(c, "invalid customer id", err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.billingService.ListAccountEvents(c.Request.Context(), customerID, limit)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "customer not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to list events", err)
		return
	}

	response.Success(c, http.StatusOK, "", events)
}
