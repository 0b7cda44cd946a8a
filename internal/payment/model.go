package payment

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// PaymentRequest carries one payment-link request. Amount is in major
// currency units; Currency is an ISO 4217 alphabetic code and falls back to
// the driver's default when empty.
type PaymentRequest struct {
	OrderID     string
	PaymentID   string
	Amount      decimal.Decimal
	Currency    string
	SuccessURL  string
	FailURL     string
	Description string
}

// Notification is a gateway callback as an open string map.
type Notification map[string]string

// Get returns the value stored under key, or def when absent.
func (n Notification) Get(key, def string) string {
	if v, ok := n[key]; ok {
		return v
	}
	return def
}

func (n Notification) clone() Notification {
	c := make(Notification, len(n)+1)
	for k, v := range n {
		c[k] = v
	}
	return c
}

// Notification field keys.
const (
	FieldToken     = "Token"
	FieldOrderID   = "OrderId"
	FieldStatus    = "Status"
	FieldSuccess   = "Success"
	FieldPaymentID = "PaymentId"
	FieldAmount    = "Amount"
	FieldErrorCode = "ErrorCode"
	FieldPan       = "Pan"
	FieldDateTime  = "DateTime"
)

const (
	ProviderCard   = "card"
	DateTimeLayout = "2006-01-02 15:04:05"
)

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// MinorUnits converts a major-unit amount to integer minor units, rounding
// half away from zero on the exact decimal value (10.005 -> 1001). Results
// outside [0, MaxInt64] return ErrAmountOutOfRange.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Shift(2).Round(0)
	if minor.IsNegative() || minor.GreaterThan(maxMinorUnits) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount)
	}
	return minor.IntPart(), nil
}
