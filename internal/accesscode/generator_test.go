package accesscode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, c := range code {
			assert.Contains(t, Alphabet, string(c))
		}
	}
}

func TestGenerate_NoDuplicatesInLargeSample(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		code, err := Generate()
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate code %q after %d draws", code, i)
		seen[code] = struct{}{}
	}
}

func TestGenerateQR(t *testing.T) {
	data, err := GenerateQR("ABCD1234")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, "data:image/png;base64,"))
	assert.Greater(t, len(data), len("data:image/png;base64,"))

	// Same input yields the same payload.
	again, err := GenerateQR("ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
