package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAES_RoundTrip(t *testing.T) {
	v, err := New(Config{Provider: "aes", AESKey: "local-dev-key"})
	require.NoError(t, err)

	sealed, err := v.Encrypt([]byte(`{"access_token":"sandbox_abc"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "sandbox_abc")

	plain, err := v.Decrypt(sealed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"sandbox_abc"}`, string(plain))
}

func TestAES_WrongKey(t *testing.T) {
	a, err := NewAES("key-a")
	require.NoError(t, err)
	b, err := NewAES("key-b")
	require.NoError(t, err)

	sealed, err := a.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = b.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecryption)

	_, err = a.Decrypt([]byte("not-json"))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Provider: "aes"})
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = New(Config{Provider: "hashicorp", AESKey: "k"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
