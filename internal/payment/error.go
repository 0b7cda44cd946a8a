package payment

import (
	"errors"

	"tinkoff-pay/internal/currency"
)

var (
	ErrUnknownCurrency = currency.ErrUnknownCode
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrGatewayRejected = errors.New("gateway rejected payment")

	// ErrAmountOutOfRange marks amounts whose minor units do not fit in int64.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// GatewayError carries the gateway's rejection message verbatim.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrGatewayRejected
}
