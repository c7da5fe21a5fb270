// Package validate реализует HTTP-обработчик проверки кода, отсканированного у двери.
//
// Ответ всегда 200 с решением, кроме 429 при превышении лимита попыток на дверь.
// Проверка ключа сканера выполняется middleware до обработчика.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-door-access/internal/http/response"
	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
	"github.com/magabrotheeeer/gym-door-access/internal/services/validation"
)

// maxBodyBytes ограничивает тело запроса сканера.
const maxBodyBytes = 4 << 10

// Request — тело запроса сканера. qr может быть строкой или числом.
type Request struct {
	QR     json.RawMessage `json:"qr" swaggertype:"string" example:"4829135"`
	DoorID string          `json:"door_id,omitempty" example:"main"`
}

// Service описывает бизнес-логику проверки.
type Service interface {
	Validate(ctx context.Context, req validation.Request) validation.Result
}

// Handler обрабатывает запросы сканеров.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP проверяет код и возвращает решение.
//
// @Summary      Проверка кода двери
// @Description  Проверяет отсканированный код (как есть или в формате Wiegand-26) и решает, открывать ли дверь.
// @Tags         door-access
// @Accept       json
// @Produce      json
// @Security     ScannerKey
// @Param        request body Request true "Отсканированный код"
// @Success      200 {object} response.Decision
// @Failure      401 {object} response.Decision
// @Failure      429 {object} response.Decision
// @Router       /api/v1/door-access/validate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.doortoken.validate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil {
		err = json.NewDecoder(bytes.NewReader(body)).Decode(&req)
	}
	if err != nil {
		// Нечитаемое тело обрабатывается как пустой код и попадает в журнал.
		log.Info("failed to decode scanner request", sl.Err(err))
		req = Request{}
	}

	res := h.service.Validate(r.Context(), validation.Request{
		Code:   codeFrom(req.QR),
		DoorID: req.DoorID,
	})

	if res.RateLimited {
		render.Status(r, http.StatusTooManyRequests)
	}
	render.JSON(w, r, response.Decision{
		Allowed:    res.Allowed,
		Reason:     res.Reason,
		MemberName: res.MemberName,
		MemberID:   res.MemberID,
	})
}

// codeFrom приводит qr к строке. Прочие JSON-типы дают пустой код.
func codeFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return numericCode(n)
	}
	return ""
}

// numericCode записывает целое число без дробной части и экспоненты:
// 4829135.0 и 4.829135e6 дают "4829135". Нецелые числа остаются как есть.
func numericCode(n json.Number) string {
	if _, err := n.Int64(); err == nil {
		return n.String()
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= 1<<53 {
		return n.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
