package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"bashare-server/config"
	"bashare-server/internal/model/requestresponse"
	"bashare-server/internal/ports"
)

type UtilsHandler struct {
	revocationStore ports.RevocationStore
}

func NewUtilsHandler(revocationStore ports.RevocationStore) *UtilsHandler {
	return &UtilsHandler{revocationStore}
}

// HealthCheck godoc
// @Summary Проверка состояния сервиса
// @Description Проверяет соединения с БД и Redis. Причины сбоя наружу не различаются
// @Tags Utils
// @Produce json
// @Success 200 {object} requestresponse.HealthResponse
// @Failure 503 {object} requestresponse.ErrorResponse "connection failed"
// @Router /api/v1/utils/health [get]
func (h *UtilsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		sendErrorResponse(w, http.StatusServiceUnavailable, "connection failed")
		return
	}

	var one int
	if err := db.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil || one != 1 {
		log.Printf("health: БД недоступна: %v", err)
		sendErrorResponse(w, http.StatusServiceUnavailable, "connection failed")
		return
	}

	if err := h.revocationStore.Ping(ctx); err != nil {
		log.Printf("health: Redis недоступен: %v", err)
		sendErrorResponse(w, http.StatusServiceUnavailable, "connection failed")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(requestresponse.HealthResponse{Detail: "OK"})
}
