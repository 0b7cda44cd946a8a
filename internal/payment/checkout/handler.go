package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tinkoff-pay/internal/logger"
	"tinkoff-pay/internal/metrics"
	"tinkoff-pay/internal/payment"
	"tinkoff-pay/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreatePaymentInput struct {
	OrderID     string          `json:"order_id"`
	PaymentID   string          `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	SuccessURL  string          `json:"success_url,omitempty"`
	FailURL     string          `json:"fail_url,omitempty"`
	Description string          `json:"description,omitempty"`
}

type CreatePaymentOutput struct {
	PaymentURL    string `json:"payment_url"`
	TransactionID string `json:"transaction_id"`
	Provider      string `json:"provider"`
}

type Handler struct {
	NewDriver payment.DriverFactory
}

func NewHandler(newDriver payment.DriverFactory) *Handler {
	return &Handler{NewDriver: newDriver}
}

func (h *Handler) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in CreatePaymentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.OrderID == "" {
		utils.WriteJSONError(w, "order_id is required", http.StatusBadRequest)
		return
	}

	log := logger.FromCtx(r.Context()).With(
		zap.String("order_id", in.OrderID),
		zap.String("payment_id", in.PaymentID),
		zap.String("amount", in.Amount.String()),
		zap.String("currency", in.Currency),
	)

	driver := h.NewDriver()
	start := time.Now()
	url, err := driver.CreatePayment(r.Context(), payment.PaymentRequest{
		OrderID:     in.OrderID,
		PaymentID:   in.PaymentID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		SuccessURL:  in.SuccessURL,
		FailURL:     in.FailURL,
		Description: in.Description,
	})
	took := time.Since(start)

	switch {
	case err == nil:
	case errors.Is(err, payment.ErrUnknownCurrency),
		errors.Is(err, payment.ErrNegativeAmount),
		errors.Is(err, payment.ErrAmountOutOfRange):
		log.Warn("Rejected payment request", zap.Error(err))
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, payment.ErrGatewayRejected):
		metrics.ObserveInit("rejected", took)
		log.Warn("Gateway rejected payment", zap.Error(err))
		utils.WriteJSONError(w, err.Error(), http.StatusBadGateway)
		return
	default:
		metrics.ObserveInit("error", took)
		log.Error("Failed to create payment", zap.Error(err))
		utils.WriteJSONError(w, "failed to create payment", http.StatusInternalServerError)
		return
	}

	metrics.ObserveInit("success", took)
	log.Info("Payment link created", zap.String("transaction_id", driver.TransactionID()))

	utils.WriteJSON(w, http.StatusCreated, CreatePaymentOutput{
		PaymentURL:    url,
		TransactionID: driver.TransactionID(),
		Provider:      driver.Provider(),
	})
}
