// Package scheduler запускает фоновую очистку просроченных токенов двери по расписанию cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
)

// TokenRepository удаляет просроченные токены.
type TokenRepository interface {
	DeleteExpiredDoorTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// PrunerService удаляет токены, истёкшие раньше, чем retention назад.
// Журнал доступа не очищается.
type PrunerService struct {
	repo      TokenRepository
	retention time.Duration
	timeout   time.Duration
	c         *cron.Cron
	now       func() time.Time
	log       *slog.Logger
}

// NewPrunerService создаёт сервис очистки.
func NewPrunerService(repo TokenRepository, retention time.Duration, log *slog.Logger) *PrunerService {
	return &PrunerService{
		repo:      repo,
		retention: retention,
		timeout:   time.Minute,
		c:         cron.New(),
		now:       time.Now,
		log:       log,
	}
}

// Start планирует очистку по schedule и запускает планировщик.
func (s *PrunerService) Start(schedule string) error {
	const op = "scheduler.Start"
	_, err := s.c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.Prune(ctx)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.c.Start()
	s.log.Info("token pruner started", slog.String("schedule", schedule), slog.Duration("retention", s.retention))
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущей очистки.
func (s *PrunerService) Stop() {
	<-s.c.Stop().Done()
}

// Prune выполняет одну очистку.
func (s *PrunerService) Prune(ctx context.Context) (int64, error) {
	const op = "scheduler.Prune"
	cutoff := s.now().Add(-s.retention)

	deleted, err := s.repo.DeleteExpiredDoorTokens(ctx, cutoff)
	if err != nil {
		s.log.Error("failed to prune door tokens", sl.Op(op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if deleted > 0 {
		s.log.Info("door tokens pruned", sl.Op(op), slog.Int64("count", deleted))
	}
	return deleted, nil
}
