package sms

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
)

// Sign computes the webhook signature: base64(HMAC-SHA1(authToken, url || body)).
func Sign(authToken, webhookURL string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(webhookURL))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(authToken, webhookURL string, body []byte, signature string) bool {
	expected := Sign(authToken, webhookURL, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
