package tinkoff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     h,
	}
}

func newTestClient(rt http.RoundTripper) *Client {
	return NewClient("TestTerminal", "secret", "https://rest-api-test.tinkoff.ru/v2",
		WithHTTPClient(&http.Client{Transport: rt}))
}

var initReq = InitRequest{
	OrderID:     "ord-1",
	Amount:      1001,
	Currency:    643,
	Description: "Order ord-1",
	Data:        "PaymentId=42",
}

func TestClient_Init(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		respBody := `{
			"Success": true,
			"ErrorCode": "0",
			"TerminalKey": "TestTerminal",
			"Status": "NEW",
			"PaymentId": "13660",
			"OrderId": "ord-1",
			"Amount": 1001,
			"PaymentURL": "https://securepay.tinkoff.ru/new/fU1ppgqa"
		}`

		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, "POST", req.Method)
			assert.Equal(t, "https://rest-api-test.tinkoff.ru/v2/Init", req.URL.String())
			assert.Contains(t, req.Header.Get("Content-Type"), "application/json")

			var sent map[string]interface{}
			require.NoError(t, json.NewDecoder(req.Body).Decode(&sent))
			assert.Equal(t, "TestTerminal", sent["TerminalKey"])
			assert.Equal(t, "ord-1", sent["OrderId"])
			assert.EqualValues(t, 1001, sent["Amount"])
			assert.EqualValues(t, 643, sent["Currency"])
			assert.Equal(t, "PaymentId=42", sent["DATA"])
			assert.Equal(t, "8c9aba4a94754453461eb4a2ae343fc7a0f85095169949baa961bbc80aee9120", sent["Token"])
			assert.NotContains(t, sent, "Password")
			assert.NotContains(t, sent, "SuccessURL")

			return jsonResponse(http.StatusOK, respBody)
		}))

		resp, err := c.Init(context.Background(), initReq)
		require.NoError(t, err)
		assert.Equal(t, "", resp.ErrorMessage())
		assert.Equal(t, "13660", resp.PaymentID.String())
		assert.Equal(t, "1001", resp.Amount.String())
		assert.Equal(t, "https://securepay.tinkoff.ru/new/fU1ppgqa", resp.PaymentURL)
	})

	t.Run("NumericPaymentID", func(t *testing.T) {
		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{"Success": true, "ErrorCode": "0", "PaymentId": 13660, "PaymentURL": "https://pay/1"}`)
		}))

		resp, err := c.Init(context.Background(), initReq)
		require.NoError(t, err)
		assert.Equal(t, "13660", resp.PaymentID.String())
	})

	t.Run("ReturnURLsAreSent", func(t *testing.T) {
		req := initReq
		req.SuccessURL = "https://shop/ok"
		req.FailURL = "https://shop/fail"

		c := newTestClient(MockRoundTripper(func(r *http.Request) *http.Response {
			var sent map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			assert.Equal(t, "https://shop/ok", sent["SuccessURL"])
			assert.Equal(t, "https://shop/fail", sent["FailURL"])

			fields := req.fields()
			fields["TerminalKey"] = "TestTerminal"
			assert.Equal(t, genToken(fields, "secret"), sent["Token"])

			return jsonResponse(http.StatusOK, `{"Success": true, "ErrorCode": "0", "PaymentId": "1", "PaymentURL": "https://pay/1"}`)
		}))

		_, err := c.Init(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("Rejected", func(t *testing.T) {
		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{
				"Success": false,
				"ErrorCode": "204",
				"Message": "Неверный токен",
				"Details": "Token mismatch"
			}`)
		}))

		resp, err := c.Init(context.Background(), initReq)
		require.NoError(t, err)
		assert.Equal(t, "Token mismatch", resp.ErrorMessage())
		assert.Equal(t, "", resp.PaymentURL)
	})

	t.Run("NetworkError", func(t *testing.T) {
		c := newTestClient(MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}))

		_, err := c.Init(context.Background(), initReq)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("InvalidJSONResponse", func(t *testing.T) {
		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadGateway, `<html>bad gateway</html>`)
		}))

		_, err := c.Init(context.Background(), initReq)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})
}

func TestNewClient_DefaultURL(t *testing.T) {
	c := NewClient("TestTerminal", "secret", "")
	assert.Equal(t, DefaultAPIURL, c.apiURL)
	assert.Equal(t, "TestTerminal", c.TerminalKey())
}

func TestInitResponse_ErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		resp InitResponse
		want string
	}{
		{"Accepted", InitResponse{Success: true, ErrorCode: "0"}, ""},
		{"AcceptedNoCode", InitResponse{Success: true}, ""},
		{"Details", InitResponse{ErrorCode: "9", Message: "m", Details: "d"}, "d"},
		{"Message", InitResponse{ErrorCode: "9", Message: "m"}, "m"},
		{"CodeOnly", InitResponse{ErrorCode: "9"}, "error code 9"},
		{"SuccessWithCode", InitResponse{Success: true, ErrorCode: "7", Message: "m"}, "m"},
		{"Empty", InitResponse{}, "request rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.ErrorMessage())
		})
	}
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": "x1", "b": 123456789012, "c": null}`), &v))
	assert.Equal(t, FlexString("x1"), v.A)
	assert.Equal(t, FlexString("123456789012"), v.B)
	assert.Equal(t, FlexString(""), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &v))
}
