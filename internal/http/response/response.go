// Package response содержит JSON-ответы HTTP-обработчиков: конверт для
// мобильного приложения и решение для сканера у двери.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

// Значения поля Status.
const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// Response — конверт ответа приложению участника.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse описывает ошибку в аннотациях @Failure.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"Access denied"`
}

// Decision отдаётся сканеру. Сканер открывает дверь только при Allowed.
type Decision struct {
	Allowed    bool          `json:"allowed"`
	Reason     models.Reason `json:"reason,omitempty" swaggertype:"string" example:"token_expired"`
	MemberName string        `json:"member_name,omitempty" example:"Anna Peeters"`
	MemberID   string        `json:"member_id,omitempty" example:"6b2f7c1e-3c4d-4f5a-8b9c-0d1e2f3a4b5c"`
}

// StatusOKWithData оборачивает data в успешный конверт.
func StatusOKWithData(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// Error возвращает ошибку с сообщением для клиента.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: msg}
}

// Denied возвращает отказ сканеру с причиной reason.
func Denied(reason models.Reason) Decision {
	return Decision{Reason: reason}
}

// ValidationError собирает нарушения тегов validate в одно сообщение.
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(msgs, ", "),
	}
}
