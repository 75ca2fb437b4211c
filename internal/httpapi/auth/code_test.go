package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateConfirmationCode(t *testing.T) {
	t.Run("Length", func(t *testing.T) {
		code := GenerateConfirmationCode()
		assert.Len(t, code, CodeLength)
	})

	t.Run("DistinctDigits", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code := GenerateConfirmationCode()
			seen := map[rune]bool{}
			for _, ch := range code {
				assert.GreaterOrEqual(t, ch, '0')
				assert.LessOrEqual(t, ch, '9')
				assert.False(t, seen[ch], "digit %c repeated in %s", ch, code)
				seen[ch] = true
			}
		}
	})
}

func TestHashAndVerifyCode(t *testing.T) {
	code := GenerateConfirmationCode()

	hash, err := HashCode(code)
	assert.NoError(t, err)
	assert.NotEqual(t, code, hash)

	assert.NoError(t, VerifyCode(hash, code))
	assert.Error(t, VerifyCode(hash, "00000"))
}
