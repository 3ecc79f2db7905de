package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bashare-server/config"
	_ "bashare-server/docs"
	"bashare-server/internal/handler"
	"bashare-server/internal/notifier"
	"bashare-server/internal/ports"
	"bashare-server/internal/repository"
	"bashare-server/internal/security"
	"bashare-server/internal/service"
	"bashare-server/internal/util"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Bashare
// @version 1.0
// @description REST API аутентификации и учётных записей

// @host localhost:8000

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// секреты подставляются в config.yaml через ${VAR}
	if err := godotenv.Load(); err != nil {
		log.Println("файл .env не найден, используются переменные окружения")
	}

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			AttachStacktrace: true,
		}); err != nil {
			log.Printf("Ошибка инициализации Sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository()
	revocationRepo := repository.NewRevocationRepository(redisClient)

	var registrationNotifier ports.RegistrationNotifier
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier := notifier.NewRegistrationNotifier(&cfg.Kafka)
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				log.Printf("Ошибка при закрытии Kafka writer: %v", err)
			}
		}()
		registrationNotifier = kafkaNotifier
	}

	hasher := security.NewPasswordHasher(&cfg.Hash)
	jwtService := security.NewJWTService(&cfg.JWT)

	authService := service.NewAuthenticationService(userRepo, jwtService, revocationRepo, hasher, cfg)
	userService := service.NewUserService(userRepo, hasher, registrationNotifier, &cfg.FirstSuperuser)

	authHandler := handler.NewAuthenticationHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	utilsHandler := handler.NewUtilsHandler(revocationRepo)

	router.Use(util.RecoverMiddleware)
	router.Use(config.DBMiddleware(db))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupRoutes(router, authHandler, userHandler, utilsHandler, jwtService)

	// стартовый суперпользователь создаётся до приёма запросов
	seedCtx := context.WithValue(ctx, "db", db)
	if err := userService.EnsureFirstSuperuser(seedCtx); err != nil {
		log.Fatalf("Не удалось создать стартового суперпользователя: %v", err)
	}

	runServer(ctx, srv)
}

func setupRoutes(
	r chi.Router,
	authHandler *handler.AuthenticationHandler,
	userHandler *handler.UserHandler,
	utilsHandler *handler.UtilsHandler,
	jwtService *security.JWTService,
) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/token", authHandler.Login)
			r.Post("/token-refresh", authHandler.RefreshToken)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.RegisterUser)

			r.Group(func(r chi.Router) {
				r.Use(security.JWTMiddleware(jwtService))

				r.Get("/", userHandler.ListUsers)
				r.Get("/me", userHandler.GetCurrentUser)
				r.Get("/{id}", userHandler.GetUser)
				r.Patch("/{id}", userHandler.UpdateUser)
			})
		})

		r.Get("/utils/health", utilsHandler.HealthCheck)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
