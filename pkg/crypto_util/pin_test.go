package crypto_util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPIN(t *testing.T) {
	encoded, err := HashPIN("1234")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))
	assert.NotContains(t, encoded, "1234$") // 明文不可出现在编码里

	assert.True(t, VerifyPIN(encoded, "1234"))
	assert.False(t, VerifyPIN(encoded, "9999"))
	assert.False(t, VerifyPIN(encoded, ""))
}

// 同一 PIN 两次哈希结果不同 (随机盐)，但都能校验通过
func TestHashPINRandomSalt(t *testing.T) {
	first, err := HashPIN("123456")
	require.NoError(t, err)
	second, err := HashPIN("123456")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPIN(first, "123456"))
	assert.True(t, VerifyPIN(second, "123456"))
}

func TestVerifyPINMalformedHash(t *testing.T) {
	assert.False(t, VerifyPIN("", "1234"))
	assert.False(t, VerifyPIN("not-a-hash", "1234"))
	assert.False(t, VerifyPIN("$bcrypt$v=19$m=65536,t=1,p=4$abc$def", "1234"))
	assert.False(t, VerifyPIN("$argon2id$v=19$m=65536,t=1,p=4$!!!$???", "1234"))
}
