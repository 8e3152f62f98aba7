package digiflazz

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// SignatureHeader carries "sha1=<hex hmac of body>" on Digiflazz callbacks.
const SignatureHeader = "X-Hub-Signature"

// VerifyWebhookSignature checks the X-Hub-Signature header against the
// webhook secret configured in the Digiflazz dashboard.
func VerifyWebhookSignature(secret string, body []byte, header string) bool {
	got, ok := strings.CutPrefix(header, "sha1=")
	if !ok {
		return false
	}
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}

// ParseWebhook reads either the wrapped {"data": {...}} callback or the flat
// form where ref_id, status and sn sit at the top level.
func ParseWebhook(body []byte) (*OrderData, error) {
	var envelope struct {
		Data *OrderData `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data != nil && envelope.Data.RefID != "" {
		return envelope.Data, nil
	}

	var flat OrderData
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, err
	}
	return &flat, nil
}
