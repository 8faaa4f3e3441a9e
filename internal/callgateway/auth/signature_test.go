package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

func TestVerify_ValidSignature(t *testing.T) {
	v := NewSignatureVerifier("platform-secret")
	body := []byte(`{"call_id":"call_123","args":{}}`)

	sig := v.Sign(body)

	assert.NoError(t, v.Verify(body, sig))
}

func TestVerify_TamperedBody(t *testing.T) {
	v := NewSignatureVerifier("platform-secret")
	sig := v.Sign([]byte(`{"call_id":"call_123"}`))

	err := v.Verify([]byte(`{"call_id":"call_456"}`), sig)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_WrongSecret(t *testing.T) {
	body := []byte(`{"call_id":"call_123"}`)
	sig := NewSignatureVerifier("other-secret").Sign(body)

	err := NewSignatureVerifier("platform-secret").Verify(body, sig)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_EmptySignature(t *testing.T) {
	v := NewSignatureVerifier("platform-secret")

	err := v.Verify([]byte("{}"), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_UnconfiguredSecret(t *testing.T) {
	v := NewSignatureVerifier("")

	err := v.Verify([]byte("{}"), "anything")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
