package trigger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SignatureHeader carries base64(HMAC-SHA256(secret, body)).
const SignatureHeader = "X-FusionAuth-Signature"

// SignatureVerifier checks the FusionAuth webhook signature over the raw
// request body. Requests without the header pass; FusionAuth only signs when
// a signing key is configured on the webhook.
type SignatureVerifier struct {
	Header string
	Secret string
}

func NewSignatureVerifier(secret string) SignatureVerifier {
	return SignatureVerifier{Header: SignatureHeader, Secret: secret}
}

func (v SignatureVerifier) Enabled() bool {
	return v.Secret != ""
}

// Verify reports whether the request is acceptable.
func (v SignatureVerifier) Verify(headers map[string]string, body []byte) bool {
	if !v.Enabled() {
		return true
	}
	header := v.Header
	if header == "" {
		header = SignatureHeader
	}
	signature := headerValue(headers, header)
	if signature == "" {
		return true
	}
	return hmac.Equal([]byte(signature), []byte(Sign(v.Secret, body)))
}

// Sign returns the base64 encoded HMAC-SHA256 of body. The secret is used as
// configured, surrounding whitespace included.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func headerValue(headers map[string]string, key string) string {
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
