package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex-encoded HMAC-SHA256 of queryString keyed by the API
// secret, as Binance expects in the `signature` request parameter. The
// signature parameter itself is never part of the signed string. Callers are
// responsible for rejecting an empty secret.
func Sign(queryString string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(queryString))
	return hex.EncodeToString(mac.Sum(nil))
}
