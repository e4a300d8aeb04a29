package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	v := NewVerifier("test_secret")
	sig := v.Signature(42, "pay_abc123")

	assert.True(t, v.Verify(42, "pay_abc123", sig))
	assert.False(t, v.Verify(42, "pay_abc123", "deadbeef"))
	assert.False(t, v.Verify(43, "pay_abc123", sig), "signature is bound to the order id")
	assert.False(t, v.Verify(42, "pay_other", sig), "signature is bound to the payment id")

	other := NewVerifier("other_secret")
	assert.False(t, other.Verify(42, "pay_abc123", sig), "signature is bound to the secret")
}
