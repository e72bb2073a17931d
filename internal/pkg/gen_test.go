package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	t.Run("Codes have the right length and alphabet", func(t *testing.T) {
		code, err := GenerateRoomCode()

		require.NoError(t, err)
		assert.Len(t, code, roomCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(roomCodeAlphabet, r), "unexpected rune %q", r)
		}
	})

	t.Run("Consecutive codes differ", func(t *testing.T) {
		first, err := GenerateRoomCode()
		require.NoError(t, err)

		second, err := GenerateRoomCode()
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}
