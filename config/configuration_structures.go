package config

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	Algorithm       string `yaml:"algorithm"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// HashConfig задаёт диапазон раундов PBKDF2 для хэширования паролей.
// Количество раундов выбирается случайно из [MinRounds, MaxRounds] для каждого хэша.
type HashConfig struct {
	MinRounds int `yaml:"min_rounds"`
	MaxRounds int `yaml:"max_rounds"`
}

// FirstSuperuserConfig описывает суперпользователя, который создаётся
// при первом запуске, если его ещё нет в БД
type FirstSuperuserConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}
