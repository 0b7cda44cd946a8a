package payment

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"tinkoff-pay/internal/currency"
	"tinkoff-pay/internal/logger"
	"tinkoff-pay/internal/tinkoff"

	"go.uber.org/zap"
)

// MerchantAPI is the part of the Tinkoff client the driver relies on.
type MerchantAPI interface {
	Init(ctx context.Context, req tinkoff.InitRequest) (*tinkoff.InitResponse, error)
	GenToken(fields map[string]string) string
}

type TinkoffConfig struct {
	MerchantID      string
	SecretKey       string
	APIURL          string
	DefaultCurrency string
}

// TinkoffDriver implements Service for Tinkoff card payments.
//
// A driver keeps the most recent notification in memory and is not safe for
// concurrent use. Build one per request (see DriverFactory).
type TinkoffDriver struct {
	config     TinkoffConfig
	api        MerchantAPI
	currencies currency.Table
	now        func() time.Time

	response Notification
}

type DriverOption func(*TinkoffDriver)

// WithMerchantAPI replaces the client built from the config.
func WithMerchantAPI(api MerchantAPI) DriverOption {
	return func(d *TinkoffDriver) {
		d.api = api
	}
}

func WithClock(now func() time.Time) DriverOption {
	return func(d *TinkoffDriver) {
		d.now = now
	}
}

func NewTinkoffDriver(cfg TinkoffConfig, currencies currency.Table, opts ...DriverOption) *TinkoffDriver {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "RUB"
	}

	d := &TinkoffDriver{
		config:     cfg,
		currencies: currencies,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.api == nil {
		d.api = tinkoff.NewClient(cfg.MerchantID, cfg.SecretKey, cfg.APIURL)
	}
	return d
}

func (d *TinkoffDriver) Config() TinkoffConfig {
	return d.config
}

// CreatePayment registers the payment with the gateway and returns the URL
// the customer should be redirected to.
func (d *TinkoffDriver) CreatePayment(ctx context.Context, req PaymentRequest) (string, error) {
	if req.Amount.IsNegative() {
		return "", fmt.Errorf("create payment for order %s: %w", req.OrderID, ErrNegativeAmount)
	}

	minor, err := MinorUnits(req.Amount)
	if err != nil {
		return "", fmt.Errorf("create payment for order %s: %w", req.OrderID, err)
	}

	code := req.Currency
	if code == "" {
		code = d.config.DefaultCurrency
	}
	cur, err := d.currencies.Lookup(code)
	if err != nil {
		return "", fmt.Errorf("create payment for order %s: %w", req.OrderID, err)
	}

	resp, err := d.api.Init(ctx, tinkoff.InitRequest{
		OrderID:     req.OrderID,
		Amount:      minor,
		Currency:    cur.Code,
		Description: req.Description,
		Data:        "PaymentId=" + req.PaymentID,
		SuccessURL:  req.SuccessURL,
		FailURL:     req.FailURL,
	})
	if err != nil {
		return "", err
	}

	if msg := resp.ErrorMessage(); msg != "" {
		return "", &GatewayError{Message: msg}
	}

	next := d.response.clone()
	next[FieldPaymentID] = resp.PaymentID.String()
	d.response = next

	logger.FromCtx(ctx).Debug("payment link created",
		zap.String("order_id", req.OrderID),
		zap.String("payment_id", resp.PaymentID.String()),
	)

	return resp.PaymentURL, nil
}

// Validate reports whether fields carry a Token matching the one the
// gateway would compute for the remaining fields. A missing Token counts
// as empty.
func (d *TinkoffDriver) Validate(fields map[string]string) bool {
	token := fields[FieldToken]
	if token == "" {
		return false
	}

	rest := make(map[string]string, len(fields))
	for k, v := range fields {
		if k != FieldToken {
			rest[k] = v
		}
	}

	expected := d.api.GenToken(rest)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// RecordResponse stores fields as the current notification, stamped with
// the local time it was recorded. Any previous notification is discarded.
func (d *TinkoffDriver) RecordResponse(fields map[string]string) *TinkoffDriver {
	n := Notification(fields).clone()
	n[FieldDateTime] = d.now().Format(DateTimeLayout)
	d.response = n
	return d
}

func (d *TinkoffDriver) ResponseParam(name, def string) string {
	return d.response.Get(name, def)
}

func (d *TinkoffDriver) OrderID() string {
	return d.ResponseParam(FieldOrderID, "")
}

func (d *TinkoffDriver) Status() string {
	return d.ResponseParam(FieldStatus, "")
}

// IsSuccess compares against the literal "true" sent by the gateway.
func (d *TinkoffDriver) IsSuccess() bool {
	return d.ResponseParam(FieldSuccess, "false") == "true"
}

func (d *TinkoffDriver) TransactionID() string {
	return d.ResponseParam(FieldPaymentID, "")
}

func (d *TinkoffDriver) Amount() string {
	return d.ResponseParam(FieldAmount, "")
}

func (d *TinkoffDriver) ErrorCode() string {
	return d.ResponseParam(FieldErrorCode, "")
}

// Pan is the masked card number as supplied by the gateway.
func (d *TinkoffDriver) Pan() string {
	return d.ResponseParam(FieldPan, "")
}

func (d *TinkoffDriver) DateTime() string {
	return d.ResponseParam(FieldDateTime, "")
}

func (d *TinkoffDriver) Provider() string {
	return ProviderCard
}

// DriverFactory builds a fresh driver per request or payment flow.
type DriverFactory func() *TinkoffDriver

// NewDriverFactory shares one merchant client across the drivers it builds;
// only the notification state is per driver.
func NewDriverFactory(cfg TinkoffConfig, currencies currency.Table, opts ...DriverOption) DriverFactory {
	shared := NewTinkoffDriver(cfg, currencies, opts...)
	return func() *TinkoffDriver {
		return &TinkoffDriver{
			config:     shared.config,
			api:        shared.api,
			currencies: shared.currencies,
			now:        shared.now,
		}
	}
}

var _ Service = (*TinkoffDriver)(nil)
