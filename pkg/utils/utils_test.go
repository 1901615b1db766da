package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, ch := range code {
			assert.True(t, ch >= '0' && ch <= '9', "非数字字符: %q", ch)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)

	_, err := GenerateNumericCode(0)
	assert.Error(t, err)
}

func TestDetectImageType(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D}
	assert.Equal(t, "image/png", DetectImageType(png, "a.bin"))
	assert.True(t, IsAllowedImage("image/png"))
	assert.Equal(t, ".png", ImageExt("image/png", "a.bin"))

	text := []byte("hello world")
	ct := DetectImageType(text, "a.txt")
	assert.Equal(t, "text/plain", ct)
	assert.False(t, IsAllowedImage(ct))
}
