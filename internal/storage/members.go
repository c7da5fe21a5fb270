package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

const memberColumns = `id, auth_user_id, first_name, last_name, status, role,
				door_access_enabled, last_checkin_at`

func scanMember(row *sql.Row) (*models.Member, error) {
	var (
		m          models.Member
		authUserID sql.NullString
		lastCheck  sql.NullTime
		status     string
		role       string
	)
	err := row.Scan(&m.ID, &authUserID, &m.FirstName, &m.LastName, &status, &role,
		&m.DoorAccessEnabled, &lastCheck)
	if err != nil {
		return nil, err
	}
	m.Status = models.MemberStatus(status)
	m.Role = models.Role(role)
	if authUserID.Valid {
		m.AuthUserID = &authUserID.String
	}
	if lastCheck.Valid {
		t := lastCheck.Time
		m.LastCheckinAt = &t
	}
	return &m, nil
}

// GetMemberByID возвращает участника по его идентификатору.
func (s *Storage) GetMemberByID(ctx context.Context, id string) (*models.Member, error) {
	const op = "storage.GetMemberByID"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// GetMemberByAuthUserID возвращает участника, связанного с пользователем авторизации.
func (s *Storage) GetMemberByAuthUserID(ctx context.Context, authUserID string) (*models.Member, error) {
	const op = "storage.GetMemberByAuthUserID"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE auth_user_id = $1`, authUserID)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// UpdateMemberLastCheckin записывает время последнего прохода участника.
func (s *Storage) UpdateMemberLastCheckin(ctx context.Context, memberID string, at time.Time) error {
	const op = "storage.UpdateMemberLastCheckin"
	if err := ctxErr(ctx, op); err != nil {
		return err
	}

	_, err := s.DB.ExecContext(ctx,
		`UPDATE members SET last_checkin_at = $1 WHERE id = $2`, at, memberID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HasActiveSubscription сообщает, есть ли у участника активный абонемент,
// не закончившийся раньше календарной даты today.
func (s *Storage) HasActiveSubscription(ctx context.Context, memberID string, today time.Time) (bool, error) {
	const op = "storage.HasActiveSubscription"
	if err := ctxErr(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE member_id = $1
				AND status = 'active'
				AND (end_date IS NULL OR end_date >= $2::date)
		)`, memberID, today.Format(dateLayout)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListReservationsForDate возвращает действующие брони участника на дату
// (статусы reserved и checked_in) вместе со временем начала занятия.
func (s *Storage) ListReservationsForDate(ctx context.Context, memberID string, date time.Time) ([]models.Reservation, error) {
	const op = "storage.ListReservationsForDate"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT r.id, r.member_id, r.status, c.class_date, to_char(c.start_time, 'HH24:MI')
		FROM reservations r
		JOIN classes c ON c.id = r.class_id
		WHERE r.member_id = $1
			AND c.class_date = $2::date
			AND r.status IN ('reserved', 'checked_in')
		ORDER BY c.start_time NULLS LAST`, memberID, date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Reservation
	for rows.Next() {
		var (
			r         models.Reservation
			startTime sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.MemberID, &r.Status, &r.ClassDate, &startTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if startTime.Valid {
			r.StartTime = &startTime.String
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
