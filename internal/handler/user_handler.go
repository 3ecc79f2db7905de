package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"bashare-server/internal/model"
	"bashare-server/internal/model/requestresponse"
	"bashare-server/internal/ports"
	"bashare-server/internal/security"
	"bashare-server/internal/service"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// RegisterUser godoc
// @Summary Регистрация нового пользователя
// @Description Создаёт непривилегированного пользователя по username, email и паролю
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 200 {object} requestresponse.UserResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Невалидные данные или дубликат"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/v1/users/register [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		sendErrorResponse(w, 400, "username, email и password обязательны")
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrDuplicateUser):
			sendErrorResponse(w, 400, err.Error())
		case isValidationError(err):
			sendErrorResponse(w, 400, err.Error())
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(userToResponse(user))
}

// ListUsers godoc
// @Summary Список пользователей
// @Description Страница пользователей со skip/limit пагинацией. Только для суперпользователя
// @Tags Users
// @Produce json
// @Param skip query int false "Сколько записей пропустить"
// @Param limit query int false "Максимум записей (по умолчанию 100)"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /api/v1/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	users, err := h.UserService.ListUsers(r.Context(), skip, limit)
	if err != nil {
		respondUserError(w, err)
		return
	}

	resp := make([]requestresponse.UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, userToResponse(user))
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// GetCurrentUser godoc
// @Summary Запись текущего пользователя
// @Description Возвращает запись владельца access токена
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, err := h.UserService.GetCurrentUser(r.Context())
	if err != nil {
		respondUserError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(userToResponse(user))
}

// GetUser godoc
// @Summary Получение записи пользователя
// @Description Возвращает запись пользователя. Доступно владельцу или суперпользователю
// @Tags Users
// @Produce json
// @Param id path int true "id пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendErrorResponse(w, 400, "некорректный id")
		return
	}

	user, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		respondUserError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(userToResponse(user))
}

// UpdateUser godoc
// @Summary Частичное обновление пользователя
// @Description Обновляет только переданные поля. Пароль перехэшируется, флаги меняет лишь суперпользователь
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "id пользователя"
// @Param body body model.UserUpdate true "Изменяемые поля"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/v1/users/{id} [patch]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendErrorResponse(w, 400, "некорректный id")
		return
	}

	var update model.UserUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), id, &update)
	if err != nil {
		if isValidationError(err) {
			log.Println(err)
			sendErrorResponse(w, 400, err.Error())
			return
		}
		respondUserError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(userToResponse(user))
}

// respondUserError переводит типизированные ошибки сервиса в коды статусов
func respondUserError(w http.ResponseWriter, err error) {
	log.Println(err)
	switch {
	case errors.Is(err, security.ErrUnauthorized):
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
	case errors.Is(err, service.ErrForbidden):
		sendErrorResponse(w, http.StatusForbidden, "доступ запрещён")
	case errors.Is(err, service.ErrNotFound):
		sendErrorResponse(w, http.StatusNotFound, "пользователь не найден")
	case errors.Is(err, service.ErrInactiveUser):
		sendErrorResponse(w, http.StatusForbidden, "пользователь деактивирован")
	default:
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}

// isValidationError : ошибки валидации входных полей, у них нет сентинела
func isValidationError(err error) bool {
	return strings.Contains(err.Error(), "username должен") ||
		strings.Contains(err.Error(), "email должен") ||
		strings.Contains(err.Error(), "пароль должен")
}

func userToResponse(user *model.User) requestresponse.UserResponse {
	return requestresponse.UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		Confirmed:   user.Confirmed,
		Created:     user.Created,
		LastLogin:   user.LastLogin,
	}
}

// decodeJSON обрабатывает декодирование JSON и возвращает ответ об ошибке, если декодирование не удалось
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(400)
		json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
			Error: requestresponse.ErrorDetail{
				Code: 400,
				Text: "invalid request body",
			},
		})
		return err
	}
	return nil
}

// sendErrorResponse отправляет ответ об ошибке JSON с указанным кодом статуса и сообщением
func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code: statusCode,
			Text: message,
		},
	})
}
