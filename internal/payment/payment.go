// Package payment defines the provider-neutral payment service contract and
// its Tinkoff card driver.
package payment

import "context"

// Service is the contract every payment driver fulfils: produce a payment
// link, authenticate a notification and expose its normalized fields.
type Service interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (string, error)
	Validate(fields map[string]string) bool

	ResponseParam(name, def string) string
	OrderID() string
	Status() string
	IsSuccess() bool
	TransactionID() string
	Amount() string
	ErrorCode() string
	Pan() string
	DateTime() string
	Provider() string
}
