package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/stayinn/backend/config"
)

// RazorpayClient adapts the Razorpay SDK to the Client interface. The SDK is
// blocking, so every call runs under a deadline derived from the configured
// timeout.
type RazorpayClient struct {
	client  *razorpay.Client
	secret  string
	timeout time.Duration
}

func NewRazorpayClient(cfg config.GatewayConfig) *RazorpayClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RazorpayClient{
		client:  razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		secret:  cfg.KeySecret,
		timeout: timeout,
	}
}

func (g *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	body, err := g.call(ctx, func() (map[string]interface{}, error) {
		return g.client.Order.Create(map[string]interface{}{
			"amount":   amountPaise,
			"currency": currency,
			"receipt":  receipt,
			"notes":    notes,
		}, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return &Order{
		ID:          asString(body["id"]),
		AmountPaise: asInt64(body["amount"]),
		Currency:    asString(body["currency"]),
	}, nil
}

func (g *RazorpayClient) FetchPayment(ctx context.Context, remotePaymentID string) (*RemotePayment, error) {
	body, err := g.call(ctx, func() (map[string]interface{}, error) {
		return g.client.Payment.Fetch(remotePaymentID, nil, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch payment: %w", err)
	}

	return &RemotePayment{
		ID:     asString(body["id"]),
		Status: asString(body["status"]),
	}, nil
}

func (g *RazorpayClient) Refund(ctx context.Context, remotePaymentID string, amountPaise int64, notes map[string]interface{}) (*Refund, error) {
	body, err := g.call(ctx, func() (map[string]interface{}, error) {
		return g.client.Payment.Refund(remotePaymentID, int(amountPaise), map[string]interface{}{
			"speed": "normal",
			"notes": notes,
		}, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("refund: %w", err)
	}

	return &Refund{ID: asString(body["id"])}, nil
}

// VerifySignature checks the HMAC-SHA256 of "orderID|paymentID" under the
// gateway secret against the supplied hex signature. hmac.Equal keeps the
// comparison constant-time.
func (g *RazorpayClient) VerifySignature(orderID, remotePaymentID, signature string) bool {
	return VerifySignature(orderID, remotePaymentID, signature, g.secret)
}

func VerifySignature(orderID, remotePaymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + remotePaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *RazorpayClient) call(ctx context.Context, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		body, err := fn()
		ch <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.body, r.err
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

var _ Client = (*RazorpayClient)(nil)
