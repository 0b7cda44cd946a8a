package tinkoff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// InitRequest is the merchant-side part of an Init call. TerminalKey and
// Token are added by the client.
type InitRequest struct {
	OrderID     string
	Amount      int64 // minor units
	Currency    int   // ISO 4217 numeric
	Description string
	Data        string
	SuccessURL  string
	FailURL     string
}

// fields returns the scalar request fields as signed by the gateway.
// Empty optional fields are omitted from both the body and the token.
func (r InitRequest) fields() map[string]string {
	f := map[string]string{
		"OrderId":  r.OrderID,
		"Amount":   strconv.FormatInt(r.Amount, 10),
		"Currency": strconv.Itoa(r.Currency),
	}
	optional := map[string]string{
		"Description": r.Description,
		"DATA":        r.Data,
		"SuccessURL":  r.SuccessURL,
		"FailURL":     r.FailURL,
	}
	for k, v := range optional {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

func (r InitRequest) body() map[string]interface{} {
	b := make(map[string]interface{})
	for k, v := range r.fields() {
		b[k] = v
	}
	b["Amount"] = r.Amount
	b["Currency"] = r.Currency
	return b
}

type InitResponse struct {
	Success     bool       `json:"Success"`
	ErrorCode   string     `json:"ErrorCode"`
	Message     string     `json:"Message"`
	Details     string     `json:"Details"`
	TerminalKey string     `json:"TerminalKey"`
	Status      string     `json:"Status"`
	PaymentID   FlexString `json:"PaymentId"`
	OrderID     string     `json:"OrderId"`
	Amount      FlexString `json:"Amount"`
	PaymentURL  string     `json:"PaymentURL"`
}

// ErrorMessage is empty when the gateway accepted the request.
func (r *InitResponse) ErrorMessage() string {
	if r.Success && (r.ErrorCode == "" || r.ErrorCode == "0") {
		return ""
	}
	switch {
	case r.Details != "":
		return r.Details
	case r.Message != "":
		return r.Message
	case r.ErrorCode != "":
		return fmt.Sprintf("error code %s", r.ErrorCode)
	default:
		return "request rejected"
	}
}

// FlexString accepts both JSON strings and numbers. The gateway is not
// consistent about the encoding of PaymentId and Amount.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("tinkoff: expected string or number, got %s", data)
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}
