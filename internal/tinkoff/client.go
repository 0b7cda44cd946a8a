// Package tinkoff is a minimal client for the Tinkoff acquiring API (v2).
package tinkoff

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tinkoff-pay/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultAPIURL  = "https://securepay.tinkoff.ru/v2/"
	defaultTimeout = 30 * time.Second
)

type Client struct {
	terminalKey string
	secretKey   string
	apiURL      string
	http        *resty.Client
}

type Option func(*Client)

// WithHTTPClient makes the client send requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

func NewClient(terminalKey, secretKey, apiURL string, opts ...Option) *Client {
	if terminalKey == "" || secretKey == "" {
		logger.L().Warn("Tinkoff terminal key or secret key is empty")
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	c := &Client{
		terminalKey: terminalKey,
		secretKey:   secretKey,
		apiURL:      strings.TrimRight(apiURL, "/") + "/",
		http:        resty.New().SetTimeout(defaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) TerminalKey() string {
	return c.terminalKey
}

// Init registers a payment and returns the gateway's answer. A non-nil
// error means the call itself failed; a rejection by the gateway is
// reported through InitResponse.ErrorMessage.
func (c *Client) Init(ctx context.Context, req InitRequest) (*InitResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", req.OrderID),
		zap.Int64("amount", req.Amount),
		zap.Int("currency", req.Currency),
	)

	fields := req.fields()
	fields["TerminalKey"] = c.terminalKey

	body := req.body()
	body["TerminalKey"] = c.terminalKey
	body["Token"] = c.GenToken(fields)

	log.Info("Sending Init request to Tinkoff")

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.apiURL + "Init")
	if err != nil {
		log.Error("Tinkoff request failed", zap.Error(err))
		return nil, fmt.Errorf("tinkoff init: %w", err)
	}

	var res InitResponse
	if err := json.Unmarshal(resp.Body(), &res); err != nil {
		log.Error("Failed decoding Tinkoff response",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("response", resp.Body()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("tinkoff init: unexpected response (status %d): %w", resp.StatusCode(), err)
	}

	if msg := res.ErrorMessage(); msg != "" {
		log.Warn("Tinkoff rejected Init",
			zap.String("error_code", res.ErrorCode),
			zap.String("message", msg),
		)
		return &res, nil
	}

	log.Info("Tinkoff payment created",
		zap.String("payment_id", res.PaymentID.String()),
		zap.String("status", res.Status),
	)
	return &res, nil
}
