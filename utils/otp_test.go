package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 5)
		for _, r := range code {
			require.GreaterOrEqual(t, r, '0')
			require.LessOrEqual(t, r, '9')
		}
		seen[code] = struct{}{}
	}

	// Uniform over 100000 values: 200 draws colliding down to a
	// handful would mean a broken source.
	require.Greater(t, len(seen), 150)
}
