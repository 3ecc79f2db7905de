package config

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	DatabaseConfig DatabaseConfig       `yaml:"databaseConfig"`
	RedisConfig    RedisConfig          `yaml:"redisConfig"`
	ServerAddr     string               `yaml:"serverAddr"`
	JWT            JWTConfig            `yaml:"jwt"`
	Hash           HashConfig           `yaml:"hash"`
	FirstSuperuser FirstSuperuserConfig `yaml:"firstSuperuser"`
	Kafka          KafkaConfig          `yaml:"kafka"`
	Sentry         SentryConfig         `yaml:"sentry"`
}

// LoadConfig читает yaml конфигурацию. Значения вида ${VAR} подставляются
// из переменных окружения (секреты приходят из .env, см. cmd/main.go)
func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(file))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:    serverAddress,
		Handler: router,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
