package util

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
)

// RecoverMiddleware перехватывает панику обработчика, отправляет её в Sentry
// (если настроен DSN) и отвечает 500 вместо обрыва соединения
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				sentry.WithScope(func(scope *sentry.Scope) {
					scope.SetExtra("panic", rec)
					scope.SetExtra("stack", string(debug.Stack()))
					sentry.CaptureMessage("panic in request")
				})

				log.Printf("паника в обработчике %s %s: %v", r.Method, r.URL.Path, rec)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "внутренняя ошибка сервера"})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
