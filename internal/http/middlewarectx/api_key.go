package middlewarectx

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-door-access/internal/http/response"
	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

// Заголовки, в которых сканер передаёт ключ.
const (
	HeaderAPIKey  = "apikey"
	HeaderXAPIKey = "X-API-Key"
)

// APIKeyMiddleware пропускает запрос, только если ключ сканера совпадает с key.
// Пустой key отклоняет все запросы. Отказ не пишется в журнал доступа.
func APIKeyMiddleware(key string, log *slog.Logger) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.APIKeyMiddleware"

			got := r.Header.Get(HeaderAPIKey)
			if got == "" {
				got = r.Header.Get(HeaderXAPIKey)
			}
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				log.Warn("invalid scanner api key",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Denied(models.ReasonInvalidToken))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
