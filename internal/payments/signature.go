package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACVerifier checks Razorpay payment callback signatures: HMAC-SHA256 of
// "<order_id>|<payment_id>" keyed with the API secret.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier with the gateway key secret.
func NewHMACVerifier(keySecret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(keySecret)}
}

// Verify reports whether the signature matches the order/payment pair.
func (v *HMACVerifier) Verify(orderID, paymentID, signature string) bool {
	if len(v.secret) == 0 || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// NoopVerifier accepts every signature. Paired with the fake order client in
// development; never wired when real credentials are configured.
type NoopVerifier struct{}

// Verify always succeeds.
func (NoopVerifier) Verify(orderID, paymentID, signature string) bool { return true }
