package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, Verify("secret1", hash))
	assert.False(t, Verify("secret2", hash))
}

func TestValidate(t *testing.T) {
	assert.False(t, Validate(""))
	assert.False(t, Validate("12345"))
	assert.True(t, Validate("123456"))
}

func TestHashTokenIsDeterministic(t *testing.T) {
	a := HashToken("some-refresh-token")
	b := HashToken("some-refresh-token")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, HashToken("another-token"))
	assert.Len(t, a, 64)
}
