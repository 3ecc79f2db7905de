package security_test

import (
	"strconv"
	"strings"
	"testing"

	"bashare-server/config"
	"bashare-server/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// небольшое число раундов, чтобы тесты не тормозили
func newTestHasher() *security.PasswordHasher {
	return security.NewPasswordHasher(&config.HashConfig{MinRounds: 1000, MaxRounds: 1200})
}

func TestHash_Format(t *testing.T) {
	hasher := newTestHasher()

	encoded, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 5)
	assert.Equal(t, "", parts[0])
	assert.Equal(t, "pbkdf2-sha256", parts[1])

	rounds, err := strconv.Atoi(parts[2])
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rounds, 1000)
	assert.LessOrEqual(t, rounds, 1200)
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	hasher := newTestHasher()

	first, err := hasher.Hash("password1")
	require.NoError(t, err)
	second, err := hasher.Hash("password1")
	require.NoError(t, err)

	// соль случайная, хэши не должны совпадать
	assert.NotEqual(t, first, second)
}

func TestVerify_Roundtrip(t *testing.T) {
	hasher := newTestHasher()

	encoded, err := hasher.Hash("P@ssw0rd123")
	require.NoError(t, err)

	assert.True(t, hasher.Verify("P@ssw0rd123", encoded))
	assert.False(t, hasher.Verify("p@ssw0rd123", encoded))
	assert.False(t, hasher.Verify("", encoded))
}

func TestVerify_MalformedHash(t *testing.T) {
	hasher := newTestHasher()

	tests := []struct {
		name    string
		encoded string
	}{
		{"пустая строка", ""},
		{"не хэш вовсе", "plaintext"},
		{"чужой алгоритм", "$bcrypt$12$c2FsdA$aGFzaA"},
		{"нет секций", "$pbkdf2-sha256$20000"},
		{"раунды не число", "$pbkdf2-sha256$abc$c2FsdA$aGFzaA"},
		{"отрицательные раунды", "$pbkdf2-sha256$-5$c2FsdA$aGFzaA"},
		{"битый base64 соли", "$pbkdf2-sha256$20000$!!!$aGFzaA"},
		{"битый base64 хэша", "$pbkdf2-sha256$20000$c2FsdA$!!!"},
		{"пустой хэш", "$pbkdf2-sha256$20000$c2FsdA$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// некорректный формат даёт false, не панику
			assert.False(t, hasher.Verify("password1", tt.encoded))
		})
	}
}

func TestVerify_NilConfigDefaults(t *testing.T) {
	hasher := security.NewPasswordHasher(nil)

	encoded, err := hasher.Hash("password1")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("password1", encoded))
}
