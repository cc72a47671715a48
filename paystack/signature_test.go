package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidSignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"abc","amount":5075}}`)
	sig := signBody(secret, body)

	assert.True(t, ValidSignature(secret, body, sig))
}

func TestValidSignature_RejectsBodyMutation(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"abc","amount":5075}}`)
	sig := signBody(secret, body)

	for i := range body {
		for bit := 0; bit < 8; bit++ {
			mutated := make([]byte, len(body))
			copy(mutated, body)
			mutated[i] ^= 1 << bit
			require.False(t, ValidSignature(secret, mutated, sig),
				"flipping bit %d of byte %d must invalidate the signature", bit, i)
		}
	}
}

func TestValidSignature_RejectsSignatureMutation(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success"}`)
	sig := signBody(secret, body)

	for i := range sig {
		mutated := []byte(sig)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		require.False(t, ValidSignature(secret, body, string(mutated)))
	}
}

func TestValidSignature_RejectsWrongSecret(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := signBody("sk_test_secret", body)

	assert.False(t, ValidSignature("sk_other_secret", body, sig))
}

func TestValidSignature_RejectsWhenUnconfigured(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)

	assert.False(t, ValidSignature("", body, signBody("", body)))
	assert.False(t, ValidSignature("sk_test_secret", body, ""))
}
