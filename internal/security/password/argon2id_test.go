package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	// Parámetros livianos para que el test no tarde.
	p := Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

	phc, err := Hash(p, "super-api-key")
	require.NoError(t, err)
	require.Contains(t, phc, "$argon2id$v=19$")

	require.True(t, Verify("super-api-key", phc))
	require.False(t, Verify("otra-cosa", phc))
}

func TestVerifyRejectsMalformed(t *testing.T) {
	require.False(t, Verify("x", "no-es-phc"))
	require.False(t, Verify("x", "$argon2i$v=19$m=8,t=1,p=1$AAAA$AAAA"))
}

func TestHashEmptySecret(t *testing.T) {
	_, err := Hash(Default, "")
	require.Error(t, err)
}
