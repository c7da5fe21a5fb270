package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

// GetAccessSettings возвращает снимок настроек доступа клуба.
// Отсутствующая строка или пустые колонки заменяются значениями по умолчанию.
func (s *Storage) GetAccessSettings(ctx context.Context) (models.AccessSettings, error) {
	const op = "storage.GetAccessSettings"
	settings := models.DefaultAccessSettings()
	if err := ctxErr(ctx, op); err != nil {
		return settings, err
	}

	var (
		mode   sql.NullString
		before sql.NullInt64
		grace  sql.NullInt64
		hours  sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT access_mode, minutes_before_class, grace_period_minutes, open_gym_hours::text
		FROM access_settings
		LIMIT 1`).Scan(&mode, &before, &grace, &hours)
	if errors.Is(err, sql.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("%s: %w", op, err)
	}

	if mode.Valid && mode.String != "" {
		settings.AccessMode = models.AccessMode(mode.String)
	}
	if before.Valid {
		settings.MinutesBeforeClass = int(before.Int64)
	}
	if grace.Valid {
		settings.GracePeriodMinutes = int(grace.Int64)
	}
	if hours.Valid && hours.String != "" {
		var parsed []models.OpenGymHours
		if err := json.Unmarshal([]byte(hours.String), &parsed); err != nil {
			return settings, fmt.Errorf("%s: decode open_gym_hours: %w", op, err)
		}
		if parsed != nil {
			settings.OpenGymHours = parsed
		}
	}
	return settings, nil
}

// InsertAccessLog добавляет запись в журнал попыток прохода.
func (s *Storage) InsertAccessLog(ctx context.Context, entry models.AccessLogEntry) error {
	const op = "storage.InsertAccessLog"
	if err := ctxErr(ctx, op); err != nil {
		return err
	}

	var reason any
	if entry.Reason != nil {
		reason = string(*entry.Reason)
	}
	var memberID any
	if entry.MemberID != nil {
		memberID = *entry.MemberID
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO access_logs (member_id, token_fingerprint, allowed, reason, door_location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		memberID, entry.TokenFingerprint, entry.Allowed, reason, entry.DoorLocation, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListAccessLogs возвращает последние записи журнала, новые первыми.
func (s *Storage) ListAccessLogs(ctx context.Context, limit int) ([]models.AccessLogEntry, error) {
	const op = "storage.ListAccessLogs"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, member_id, token_fingerprint, allowed, reason, door_location, created_at
		FROM access_logs
		ORDER BY id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.AccessLogEntry
	for rows.Next() {
		var (
			e        models.AccessLogEntry
			memberID sql.NullString
			reason   sql.NullString
		)
		if err := rows.Scan(&e.ID, &memberID, &e.TokenFingerprint, &e.Allowed, &reason,
			&e.DoorLocation, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if memberID.Valid {
			e.MemberID = &memberID.String
		}
		if reason.Valid {
			r := models.Reason(reason.String)
			e.Reason = &r
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
