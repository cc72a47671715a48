package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// ValidSignature reports whether sig is the hex-encoded HMAC-SHA512 of body
// under the shared secret. The HMAC must be computed over the exact raw
// bytes received: re-serialized JSON is not byte-identical, so callers hash
// before parsing. Returns false when the secret or signature is empty.
func ValidSignature(secret string, body []byte, sig string) bool {
	if secret == "" || sig == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
