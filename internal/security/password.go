package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"bashare-server/config"

	"golang.org/x/crypto/pbkdf2"
)

const (
	defaultMinRounds = 18000
	defaultMaxRounds = 26000

	saltLength = 16
	keyLength  = 32
)

// PasswordHasher хэширует пароли через PBKDF2-SHA256.
// Формат хранения: $pbkdf2-sha256$<rounds>$<salt>$<hash>,
// salt и hash в base64 без паддинга
type PasswordHasher struct {
	minRounds int
	maxRounds int
}

func NewPasswordHasher(cfg *config.HashConfig) *PasswordHasher {
	minRounds := defaultMinRounds
	maxRounds := defaultMaxRounds
	if cfg != nil && cfg.MinRounds > 0 && cfg.MaxRounds >= cfg.MinRounds {
		minRounds = cfg.MinRounds
		maxRounds = cfg.MaxRounds
	}

	return &PasswordHasher{minRounds: minRounds, maxRounds: maxRounds}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("ошибка генерации соли: %w", err)
	}

	rounds, err := h.randomRounds()
	if err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, rounds, keyLength, sha256.New)

	encoded := fmt.Sprintf(
		"$pbkdf2-sha256$%d$%s$%s",
		rounds,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify сверяет пароль с сохранённым хэшем.
// Некорректный формат хэша даёт false, а не панику или ошибку.
// Сравнение через subtle.ConstantTimeCompare
func (h *PasswordHasher) Verify(password string, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != "pbkdf2-sha256" {
		return false
	}

	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(expected) == 0 {
		return false
	}

	key := pbkdf2.Key([]byte(password), salt, rounds, len(expected), sha256.New)

	return subtle.ConstantTimeCompare(key, expected) == 1
}

// randomRounds выбирает число раундов из настроенного диапазона,
// чтобы стоимость подбора различалась от хэша к хэшу
func (h *PasswordHasher) randomRounds() (int, error) {
	if h.maxRounds == h.minRounds {
		return h.minRounds, nil
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(h.maxRounds-h.minRounds+1)))
	if err != nil {
		return 0, fmt.Errorf("ошибка выбора числа раундов: %w", err)
	}

	return h.minRounds + int(n.Int64()), nil
}
