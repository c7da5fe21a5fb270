// Package middlewarectx содержит HTTP middleware сервиса доступа.
//
// JWTMiddleware проверяет сессионный JWT в заголовке Authorization и кладёт
// в контекст идентификатор пользователя авторизации и его роль.
// APIKeyMiddleware пропускает только запросы сканеров с верным ключом.
// RateLimitMiddleware ограничивает общую частоту запросов к маршруту.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-door-access/internal/http/response"
	"github.com/magabrotheeeer/gym-door-access/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// AuthUserID — ключ для идентификатора пользователя авторизации в контексте
	AuthUserID Key = "auth_user_id"
	// Role — ключ для роли из токена в контексте
	Role Key = "role"
)

// TokenParser проверяет сессионный токен.
type TokenParser interface {
	ParseToken(token string) (*jwt.CustomClaims, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет идентификатор пользователя и роль в контекст запроса,
// иначе возвращает 401 Unauthorized.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Info("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Access denied"))
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Access denied"))
				return
			}
			ctx := context.WithValue(r.Context(), AuthUserID, claims.AuthUserID())
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthUserIDFrom возвращает идентификатор пользователя, положенный JWTMiddleware.
func AuthUserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AuthUserID).(string)
	return id, ok && id != ""
}
