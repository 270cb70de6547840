package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("shhh")

	sig := sign("shhh", "order_1", "pay_1")
	if !v.Verify("order_1", "pay_1", sig) {
		t.Fatal("expected valid signature to verify")
	}
	if v.Verify("order_1", "pay_2", sig) {
		t.Fatal("signature for a different payment must not verify")
	}
	if v.Verify("order_1", "pay_1", "") {
		t.Fatal("empty signature must not verify")
	}

	tampered := sign("wrong-secret", "order_1", "pay_1")
	if v.Verify("order_1", "pay_1", tampered) {
		t.Fatal("signature under a different secret must not verify")
	}
}

func TestHMACVerifierEmptySecret(t *testing.T) {
	v := NewHMACVerifier("")
	if v.Verify("order_1", "pay_1", sign("", "order_1", "pay_1")) {
		t.Fatal("verifier without a secret must reject everything")
	}
}

func TestNoopVerifier(t *testing.T) {
	if !(NoopVerifier{}).Verify("o", "p", "anything") {
		t.Fatal("noop verifier should accept")
	}
}
