package digiflazz

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		Username: "user",
		APIKey:   "key",
		BaseURL:  srv.URL + "/",
		Timeout:  2 * time.Second,
	}, zap.NewNop())
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return m
}

func TestSign(t *testing.T) {
	got := Sign("user", "key", "pricelist")
	if got != "6870b202c286b430a1f8a6744d48a862" {
		t.Fatalf("Sign() = %s", got)
	}
	if got == Sign("user", "key", "depo") {
		t.Error("different suffixes must produce different signatures")
	}
}

func TestPlaceOrder(t *testing.T) {
	const body = `{"data":{"ref_id":"trx_1","status":"Sukses","sn":"SN123","rc":"00","message":"Transaksi Sukses","price":1500}}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transaction" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		m := decodeBody(t, r)
		if m["sign"] != Sign("user", "key", "trx_1") {
			t.Errorf("sign = %v", m["sign"])
		}
		if m["buyer_sku_code"] != "xld10" || m["customer_no"] != "0877" || m["ref_id"] != "trx_1" {
			t.Errorf("unexpected body %v", m)
		}
		if _, ok := m["testing"]; ok {
			t.Error("testing flag sent while disabled")
		}
		w.Write([]byte(body))
	})

	res, err := c.PlaceOrder(context.Background(), OrderRequest{BuyerSkuCode: "xld10", CustomerNo: "0877", RefID: "trx_1"})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if res.Data.Status != "Sukses" || res.Data.SN != "SN123" {
		t.Errorf("data = %+v", res.Data)
	}
	if string(res.Raw) != body {
		t.Errorf("raw body not preserved verbatim: %s", res.Raw)
	}
}

func TestPlaceOrderHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream down`))
	})

	_, err := c.PlaceOrder(context.Background(), OrderRequest{RefID: "trx_2"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}

func TestPlaceOrderTransportError(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop())
	if _, err := c.PlaceOrder(context.Background(), OrderRequest{RefID: "x"}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestPriceList(t *testing.T) {
	const body = `{"data":[{"buyer_sku_code":"xld10","price":10250}]}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		m := decodeBody(t, r)
		if r.URL.Path != "/v1/price-list" || m["cmd"] != "prepaid" {
			t.Errorf("unexpected request %s %v", r.URL.Path, m)
		}
		if m["sign"] != Sign("user", "key", "pricelist") {
			t.Errorf("sign = %v", m["sign"])
		}
		w.Write([]byte(body))
	})

	raw, err := c.PriceList(context.Background(), "")
	if err != nil {
		t.Fatalf("PriceList() error = %v", err)
	}
	if string(raw) != body {
		t.Errorf("PriceList() = %s", raw)
	}
}

func TestBalance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		m := decodeBody(t, r)
		if r.URL.Path != "/v1/cek-saldo" || m["cmd"] != "deposit" {
			t.Errorf("unexpected request %s %v", r.URL.Path, m)
		}
		if m["sign"] != Sign("user", "key", "depo") {
			t.Errorf("sign = %v", m["sign"])
		}
		w.Write([]byte(`{"data":{"deposit":125000.5}}`))
	})

	bal, err := c.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if bal.Deposit.String() != "125000.5" {
		t.Errorf("Deposit = %s", bal.Deposit)
	}
}

func TestParseWebhook(t *testing.T) {
	tests := map[string]struct {
		body   string
		ref    string
		status string
		sn     string
	}{
		"wrapped": {`{"data":{"ref_id":"trx_1","status":"Sukses","sn":"SN1"}}`, "trx_1", "Sukses", "SN1"},
		"flat":    {`{"ref_id":"trx_2","status":"Gagal"}`, "trx_2", "Gagal", ""},
		"empty":   {`{}`, "", "", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := ParseWebhook([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParseWebhook() error = %v", err)
			}
			if d.RefID != tt.ref || d.Status != tt.status || d.SN != tt.sn {
				t.Errorf("ParseWebhook() = %+v", d)
			}
		})
	}

	if _, err := ParseWebhook([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"data":{"ref_id":"trx_1"}}`)
	mac := hmac.New(sha1.New, []byte("secret"))
	mac.Write(body)
	header := "sha1=" + hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature("secret", body, header) {
		t.Error("valid signature rejected")
	}
	if VerifyWebhookSignature("other", body, header) {
		t.Error("signature with wrong secret accepted")
	}
	if VerifyWebhookSignature("secret", body, "") {
		t.Error("missing header accepted")
	}
}
