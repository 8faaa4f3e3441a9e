// Package auth verifies webhook signatures from the voice platform.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

// SignatureVerifier checks an HMAC-SHA256 signature over a raw request
// body against a shared secret. The signature is base64 encoded on the
// wire. Comparison is constant time.
type SignatureVerifier struct {
	secret []byte
}

// NewSignatureVerifier creates a verifier for the shared platform secret.
func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret)}
}

// Verify returns domain.ErrUnauthorized unless signature matches the
// HMAC of body. An empty signature or an unconfigured secret never
// verifies; the reason is deliberately not distinguished.
func (v *SignatureVerifier) Verify(body []byte, signature string) error {
	if len(v.secret) == 0 || signature == "" {
		return domain.ErrUnauthorized
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrUnauthorized
	}
	return nil
}

// Sign computes the base64 HMAC-SHA256 of body. Exported for tests and
// for the outbound adapter, which signs its own requests the same way.
func (v *SignatureVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
