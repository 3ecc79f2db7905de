package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"bashare-server/internal/model/requestresponse"
	"bashare-server/internal/ports"
	"bashare-server/internal/repository"
	"bashare-server/internal/security"
	"bashare-server/internal/service"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Выдаёт пару access/refresh токенов по логину (email или username) и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokenResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный логин или пароль"
// @Failure 403 {object} requestresponse.ErrorResponse "Пользователь деактивирован"
// @Failure 503 {object} requestresponse.ErrorResponse "Хранилище недоступно"
// @Router /api/v1/auth/token [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Login == "" || req.Password == "" {
		sendErrorResponse(w, 400, "login и password обязательны")
		return
	}

	tokens, err := h.AuthenticationService.Login(ctx, req.Login, req.Password)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			sendErrorResponse(w, http.StatusUnauthorized, "неверный логин или пароль")
		case errors.Is(err, service.ErrInactiveUser):
			sendErrorResponse(w, http.StatusForbidden, "пользователь деактивирован")
		case errors.Is(err, repository.ErrStoreUnavailable):
			sendErrorResponse(w, http.StatusServiceUnavailable, "сервис временно недоступен")
		default:
			sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	resp := requestresponse.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// RefreshToken godoc
// @Summary Обновление пары токенов
// @Description Обменивает действующий refresh токен из заголовка Authorization на новую пару
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer refresh токен" default(Bearer <refresh_token>)
// @Success 200 {object} requestresponse.TokenResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный refresh токен"
// @Failure 503 {object} requestresponse.ErrorResponse "Хранилище недоступно"
// @Router /api/v1/auth/token-refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		sendErrorResponse(w, http.StatusUnauthorized, "пустой или неверный заголовок Authorization")
		return
	}

	refreshToken := strings.TrimPrefix(authHeader, "Bearer ")

	tokens, err := h.AuthenticationService.RefreshToken(ctx, refreshToken)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, security.ErrInvalidToken):
			// причины (подпись, exp, отсутствие в хранилище, чужой id)
			// наружу не различаются
			sendErrorResponse(w, http.StatusUnauthorized, "невалидный refresh токен")
		case errors.Is(err, repository.ErrStoreUnavailable):
			sendErrorResponse(w, http.StatusServiceUnavailable, "сервис временно недоступен")
		default:
			sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	resp := requestresponse.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}
