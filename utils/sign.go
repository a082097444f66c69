package utils

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignPayload computes the hex-encoded HMAC-SHA512 of data under the
// given secret. Ticket QR payloads carry this so gate scanners can
// reject tampered codes offline.
func SignPayload(secret, data string) string {
	h := hmac.New(sha512.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature reports whether sig is a valid signature of data
// under the secret, in constant time.
func VerifySignature(secret, data, sig string) bool {
	expected := SignPayload(secret, data)
	return hmac.Equal([]byte(expected), []byte(sig))
}
