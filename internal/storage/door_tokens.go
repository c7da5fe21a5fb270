package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

// CreateDoorToken сохраняет новый токен двери.
func (s *Storage) CreateDoorToken(ctx context.Context, token models.DoorToken) error {
	const op = "storage.CreateDoorToken"
	if err := ctxErr(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO door_tokens (id, member_id, token_code, created_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.ExecContext(ctx, query,
		token.ID, token.MemberID, token.Code, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CodeExists сообщает, есть ли сохранённый токен с таким кодом.
func (s *Storage) CodeExists(ctx context.Context, code string) (bool, error) {
	const op = "storage.CodeExists"
	if err := ctxErr(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM door_tokens WHERE token_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// FindDoorTokenByCode возвращает последний выпущенный токен с указанным кодом.
func (s *Storage) FindDoorTokenByCode(ctx context.Context, code string) (*models.DoorToken, error) {
	const op = "storage.FindDoorTokenByCode"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, member_id, token_code, created_at, expires_at, used_at
			  FROM door_tokens
			  WHERE token_code = $1
			  ORDER BY created_at DESC
			  LIMIT 1`

	var (
		token  models.DoorToken
		usedAt sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, query, code).Scan(
		&token.ID, &token.MemberID, &token.Code, &token.CreatedAt, &token.ExpiresAt, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if usedAt.Valid {
		t := usedAt.Time
		token.UsedAt = &t
	}
	return &token, nil
}

// MarkDoorTokenUsed отмечает токен использованным. Повторная отметка сохраняет первое время.
func (s *Storage) MarkDoorTokenUsed(ctx context.Context, id string, at time.Time) error {
	const op = "storage.MarkDoorTokenUsed"
	if err := ctxErr(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE door_tokens SET used_at = COALESCE(used_at, $1) WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteExpiredDoorTokens удаляет токены, истёкшие раньше cutoff, и возвращает их число.
func (s *Storage) DeleteExpiredDoorTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "storage.DeleteExpiredDoorTokens"
	if err := ctxErr(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM door_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}
