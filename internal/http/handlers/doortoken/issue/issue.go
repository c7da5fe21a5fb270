// Package issue реализует HTTP-обработчик выпуска токена двери.
//
// Handler принимает member_id, берёт пользователя авторизации из контекста,
// вызывает сервис выпуска и возвращает код для QR вместе со сроком действия.
package issue

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-door-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-door-access/internal/http/response"
	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
	"github.com/magabrotheeeer/gym-door-access/internal/services/codegen"
	"github.com/magabrotheeeer/gym-door-access/internal/services/issuance"
)

// Request — тело запроса на выпуск.
type Request struct {
	MemberID string `json:"member_id" validate:"required,uuid" example:"6b2f7c1e-3c4d-4f5a-8b9c-0d1e2f3a4b5c"`
}

// Response содержит выпущенный токен.
type Response struct {
	QRToken    string `json:"qr_token" example:"4829135"`
	ExpiresIn  int    `json:"expires_in" example:"300"`
	MemberName string `json:"member_name" example:"Anna Peeters"`
}

// Service описывает бизнес-логику выпуска.
type Service interface {
	Issue(ctx context.Context, authUserID, memberID string) (*issuance.Result, error)
}

// Handler обрабатывает запросы на выпуск токена двери.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP выпускает токен двери.
//
// @Summary      Выпуск токена двери
// @Description  Выпускает короткоживущий числовой код для участника. Участник может выпустить код себе, staff/admin/owner — любому участнику.
// @Tags         door-tokens
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body Request true "Участник"
// @Success      200 {object} Response
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/v1/door-tokens [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.doortoken.issue"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authUserID, ok := middlewarectx.AuthUserIDFrom(r.Context())
	if !ok {
		log.Error("auth user id missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Access denied"))
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			log.Info("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validationErrs))
			return
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid member_id"))
		return
	}

	res, err := h.service.Issue(r.Context(), authUserID, req.MemberID)
	if err != nil {
		status, msg := errorStatus(err)
		if status == http.StatusInternalServerError {
			log.Error("failed to issue door token", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	render.JSON(w, r, Response{
		QRToken:    res.Token,
		ExpiresIn:  res.ExpiresIn,
		MemberName: res.MemberName,
	})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, issuance.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid member_id"
	case errors.Is(err, issuance.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, issuance.ErrMemberInactive):
		return http.StatusForbidden, "Member is not active"
	case errors.Is(err, issuance.ErrAccessDisabled):
		return http.StatusForbidden, "Door access is disabled for this member"
	case errors.Is(err, issuance.ErrNoActiveSubscription):
		return http.StatusForbidden, "No active subscription"
	case errors.Is(err, codegen.ErrExhausted):
		return http.StatusInternalServerError, "Could not generate unique code"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
