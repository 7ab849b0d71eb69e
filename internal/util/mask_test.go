package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"admin@acme.test": "ad***@acme.test",
		"a@x.com":         "a***@x.com",
		"no-at-sign":      "***",
		"":                "***",
	}
	for in, want := range cases {
		require.Equal(t, want, MaskEmail(in), in)
	}
}
