package trigger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestSign_MatchesKnownHMAC(t *testing.T) {
	got := Sign("secret", []byte(`{"event":{"type":"user.create"}}`))
	if got == "" || got != Sign("secret", []byte(`{"event":{"type":"user.create"}}`)) {
		t.Fatalf("expected stable signature, got %q", got)
	}
	if got == Sign("other", []byte(`{"event":{"type":"user.create"}}`)) {
		t.Fatalf("expected signature to depend on the secret")
	}
}

func TestSignatureVerifier_Verify(t *testing.T) {
	body := []byte(`{"event":{"type":"user.create"}}`)
	verifier := NewSignatureVerifier("secret")

	if !verifier.Verify(map[string]string{"x-fusionauth-signature": Sign("secret", body)}, body) {
		t.Fatalf("expected matching signature to verify")
	}
	if verifier.Verify(map[string]string{"X-FusionAuth-Signature": Sign("wrong", body)}, body) {
		t.Fatalf("expected mismatched signature to fail")
	}
	if verifier.Verify(map[string]string{"x-fusionauth-signature": Sign("secret", body)}, append(body, ' ')) {
		t.Fatalf("expected signature over different bytes to fail")
	}
	if !verifier.Verify(map[string]string{}, body) {
		t.Fatalf("expected unsigned request to pass")
	}
	if !NewSignatureVerifier("").Verify(map[string]string{"x-fusionauth-signature": "garbage"}, body) {
		t.Fatalf("expected verifier without secret to pass")
	}
}

func TestSignatureVerifier_UsesSecretBytesVerbatim(t *testing.T) {
	body := []byte(`{"event":{"type":"user.create"}}`)
	secret := " s3cret\n"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if got := Sign(secret, body); got != want {
		t.Fatalf("expected signature over the raw secret, got %q want %q", got, want)
	}

	verifier := NewSignatureVerifier(secret)
	if !verifier.Verify(map[string]string{SignatureHeader: want}, body) {
		t.Fatalf("expected signature with the padded secret to verify")
	}
	if verifier.Verify(map[string]string{SignatureHeader: Sign("s3cret", body)}, body) {
		t.Fatalf("expected signature with the trimmed secret to fail")
	}
}
