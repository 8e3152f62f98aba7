// Package digiflazz is a thin signed client for the Digiflazz PPOB API.
//
// It does not retry: every call is one HTTP round trip, and transport or
// non-2xx failures are returned to the caller unchanged in meaning.
package digiflazz

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	pathPriceList   = "/v1/price-list"
	pathTransaction = "/v1/transaction"
	pathBalance     = "/v1/cek-saldo"

	// maxBody bounds provider responses read into memory.
	maxBody = 8 << 20
)

type Config struct {
	Username string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	// Testing forwards the "testing" flag so Digiflazz simulates orders.
	Testing bool
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log.With(zap.String("client", "digiflazz")),
	}
}

// Sign returns md5(username + apiKey + suffix) in lowercase hex.
func Sign(username, apiKey, suffix string) string {
	sum := md5.Sum([]byte(username + apiKey + suffix))
	return hex.EncodeToString(sum[:])
}

// APIError is returned when Digiflazz answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("digiflazz: http %d: %s", e.StatusCode, truncate(string(e.Body), 200))
}

// PriceList returns the provider's price list body verbatim. cmd is
// "prepaid" or "pasca"; empty means prepaid.
func (c *Client) PriceList(ctx context.Context, cmd string) (json.RawMessage, error) {
	if cmd == "" {
		cmd = "prepaid"
	}
	body := map[string]any{
		"cmd":      cmd,
		"username": c.cfg.Username,
		"sign":     Sign(c.cfg.Username, c.cfg.APIKey, "pricelist"),
	}

	raw, err := c.post(ctx, pathPriceList, body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

type OrderRequest struct {
	BuyerSkuCode string
	CustomerNo   string
	RefID        string
}

// OrderData is the "data" object of a transaction response or webhook.
type OrderData struct {
	RefID          string          `json:"ref_id"`
	TrxID          string          `json:"trx_id,omitempty"`
	CustomerNo     string          `json:"customer_no"`
	BuyerSkuCode   string          `json:"buyer_sku_code"`
	Message        string          `json:"message"`
	Status         string          `json:"status"`
	RC             string          `json:"rc"`
	SN             string          `json:"sn"`
	BuyerLastSaldo decimal.Decimal `json:"buyer_last_saldo"`
	Price          decimal.Decimal `json:"price"`
}

type OrderResult struct {
	Data OrderData
	// Raw is the complete response body as received.
	Raw []byte
}

// PlaceOrder submits a prepaid order. The ref id must be unique per order.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	body := map[string]any{
		"username":       c.cfg.Username,
		"buyer_sku_code": req.BuyerSkuCode,
		"customer_no":    req.CustomerNo,
		"ref_id":         req.RefID,
		"sign":           Sign(c.cfg.Username, c.cfg.APIKey, req.RefID),
	}
	if c.cfg.Testing {
		body["testing"] = true
	}

	raw, err := c.post(ctx, pathTransaction, body)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data OrderData `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("digiflazz: decode order response: %w", err)
	}

	return &OrderResult{Data: envelope.Data, Raw: raw}, nil
}

type Balance struct {
	Deposit   decimal.Decimal `json:"deposit"`
	CheckedAt time.Time       `json:"checked_at"`
}

func (c *Client) Balance(ctx context.Context) (*Balance, error) {
	body := map[string]any{
		"cmd":      "deposit",
		"username": c.cfg.Username,
		"sign":     Sign(c.cfg.Username, c.cfg.APIKey, "depo"),
	}

	raw, err := c.post(ctx, pathBalance, body)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data struct {
			Deposit decimal.Decimal `json:"deposit"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("digiflazz: decode balance response: %w", err)
	}

	return &Balance{Deposit: envelope.Data.Deposit, CheckedAt: time.Now()}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("digiflazz: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("digiflazz: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("Request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("digiflazz: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("digiflazz: read response: %w", err)
	}

	c.log.Debug("Response received",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: raw}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
