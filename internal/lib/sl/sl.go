// Package sl содержит атрибуты slog, общие для всех слоёв сервиса доступа,
// чтобы ключи в логах выдачи и проверки токенов совпадали.
package sl

import "log/slog"

// Err возвращает атрибут "error". Для nil значение пустое.
//
//	log.Error("failed to insert access log", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут с именем операции.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}

// MemberID возвращает атрибут с идентификатором участника.
func MemberID(id string) slog.Attr {
	return slog.String("member_id", id)
}

// Door возвращает атрибут с дверью, у которой стоит сканер.
func Door(door string) slog.Attr {
	return slog.String("door", door)
}
