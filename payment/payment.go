package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Verifier checks gateway callback signatures. The gateway signs
// "<orderID>|<paymentID>" with a shared secret (HMAC-SHA256, hex); we
// recompute and compare in constant time. The gateway itself is opaque,
// this service only consumes the resulting payment status.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Signature computes the expected signature for an order/payment pair
func (v *Verifier) Signature(orderID uint, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d|%s", orderID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the supplied signature matches
func (v *Verifier) Verify(orderID uint, paymentID, signature string) bool {
	expected := v.Signature(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
