package crypto

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct-horse", hash)

	require.True(t, VerifyPassword(hash, "correct-horse"))
	require.False(t, VerifyPassword(hash, "wrong-horse"))
}

func TestGenerateToken(t *testing.T) {
	first, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestGenerateNumericCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)

	for i := 0; i < 50; i++ {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
	}
}

func TestGenerateNumericCodeOtherLengths(t *testing.T) {
	code, err := GenerateNumericCode(4)
	require.NoError(t, err)
	require.Len(t, code, 4)
}
