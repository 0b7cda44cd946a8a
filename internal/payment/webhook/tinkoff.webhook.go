package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"tinkoff-pay/internal/logger"
	"tinkoff-pay/internal/metrics"
	"tinkoff-pay/internal/payment"

	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

var ErrInvalidPayload = errors.New("notification must be a JSON object")

// Processor acts on an authenticated notification, e.g. marks the order paid.
type Processor interface {
	Process(ctx context.Context, svc payment.Service) error
}

type ProcessorFunc func(ctx context.Context, svc payment.Service) error

func (f ProcessorFunc) Process(ctx context.Context, svc payment.Service) error {
	return f(ctx, svc)
}

type Handler struct {
	NewDriver payment.DriverFactory
	Processor Processor
}

func NewWebhookHandler(newDriver payment.DriverFactory, processor Processor) *Handler {
	if processor == nil {
		processor = LogProcessor{}
	}
	return &Handler{
		NewDriver: newDriver,
		Processor: processor,
	}
}

// NotificationHandler accepts the gateway's POSTed notification. The gateway
// keeps retrying until it receives a plain "OK".
func (h *Handler) NotificationHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	fields, err := DecodeNotification(body)
	if err != nil {
		log.Warn("Malformed Tinkoff notification", zap.Error(err))
		metrics.ObserveNotification("malformed")
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	driver := h.NewDriver()
	if !driver.Validate(fields) {
		log.Warn("Tinkoff notification failed token check",
			zap.String("order_id", fields[payment.FieldOrderID]),
			zap.String("payment_id", fields[payment.FieldPaymentID]),
		)
		metrics.ObserveNotification("invalid")
		http.Error(w, "invalid token", http.StatusBadRequest)
		return
	}

	delete(fields, payment.FieldToken)
	driver.RecordResponse(fields)

	log = log.With(
		zap.String("order_id", driver.OrderID()),
		zap.String("payment_id", driver.TransactionID()),
		zap.String("status", driver.Status()),
	)

	if err := h.Processor.Process(r.Context(), driver); err != nil {
		log.Error("Failed to process notification", zap.Error(err))
		metrics.ObserveNotification("failed")
		http.Error(w, "failed to process notification", http.StatusInternalServerError)
		return
	}

	metrics.ObserveNotification("processed")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// DecodeNotification flattens a JSON notification into string fields the way
// the gateway signs them: booleans as "true"/"false", numbers verbatim, null
// as "". Nested objects and arrays are not signed and are dropped.
func DecodeNotification(body []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if raw == nil {
		return nil, ErrInvalidPayload
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case bool:
			if val {
				fields[k] = "true"
			} else {
				fields[k] = "false"
			}
		case json.Number:
			fields[k] = val.String()
		case nil:
			fields[k] = ""
		}
	}
	return fields, nil
}

// LogProcessor only logs the normalized notification.
type LogProcessor struct{}

func (LogProcessor) Process(ctx context.Context, svc payment.Service) error {
	logger.FromCtx(ctx).Info("Tinkoff notification received",
		zap.String("provider", svc.Provider()),
		zap.String("order_id", svc.OrderID()),
		zap.String("payment_id", svc.TransactionID()),
		zap.String("status", svc.Status()),
		zap.Bool("success", svc.IsSuccess()),
		zap.String("amount", svc.Amount()),
		zap.String("error_code", svc.ErrorCode()),
		zap.String("pan", svc.Pan()),
		zap.String("received_at", svc.DateTime()),
	)
	return nil
}
