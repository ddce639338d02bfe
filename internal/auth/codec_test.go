package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
)

func testCodec(t *testing.T) *TokenCodec {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	return NewTokenCodec(key)
}

func TestCodecRoundTrip(t *testing.T) {
	codec := testCodec(t)
	for _, plain := range []string{"ya29.a0AfH6SM", "1//refresh-token", "ünïcode ✓"} {
		sealed, err := codec.Encrypt(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, sealed)

		opened, err := codec.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plain, opened)
	}
}

func TestCodecEmptyPassthrough(t *testing.T) {
	codec := NewTokenCodec("")

	sealed, err := codec.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := codec.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestCodecNoncesDiffer(t *testing.T) {
	codec := testCodec(t)
	a, err := codec.Encrypt("same")
	require.NoError(t, err)
	b, err := codec.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCodecMissingKey(t *testing.T) {
	_, err := NewTokenCodec("").Encrypt("secret")
	assert.ErrorIs(t, err, apperr.ErrConfig)
}

func TestCodecShortKey(t *testing.T) {
	_, err := NewTokenCodec(base64.StdEncoding.EncodeToString([]byte("short"))).Encrypt("secret")
	assert.ErrorIs(t, err, apperr.ErrConfig)
}

func TestCodecRejectsTampering(t *testing.T) {
	codec := testCodec(t)
	sealed, err := codec.Encrypt("secret")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = codec.Decrypt(base64.RawURLEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, apperr.ErrCrypto)

	_, err = codec.Decrypt("not base64 !!")
	assert.ErrorIs(t, err, apperr.ErrCrypto)
}

func TestCodecWrongKey(t *testing.T) {
	sealed, err := testCodec(t).Encrypt("secret")
	require.NoError(t, err)

	_, err = testCodec(t).Decrypt(sealed)
	assert.ErrorIs(t, err, apperr.ErrCrypto)
}
