// Package policy решает, может ли участник пройти в зал в данный момент,
// с учётом роли, абонемента и режима доступа клуба.
package policy

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

// Repository читает данные CRM, нужные для решения.
type Repository interface {
	HasActiveSubscription(ctx context.Context, memberID string, today time.Time) (bool, error)
	ListReservationsForDate(ctx context.Context, memberID string, date time.Time) ([]models.Reservation, error)
	GetAccessSettings(ctx context.Context) (models.AccessSettings, error)
}

// Decision описывает результат проверки. Reason пуст при Allowed.
type Decision struct {
	Allowed bool
	Reason  models.Reason
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason models.Reason) Decision { return Decision{Reason: reason} }

// Engine применяет политику доступа.
type Engine struct {
	repo      Repository
	serverLoc *time.Location
	gymLoc    *time.Location
}

// NewEngine создаёт движок. serverLoc задаёт календарный день и минуты для броней,
// gymLoc — часовой пояс расписания свободного посещения.
func NewEngine(repo Repository, serverLoc, gymLoc *time.Location) *Engine {
	if serverLoc == nil {
		serverLoc = time.Local
	}
	if gymLoc == nil {
		gymLoc = time.UTC
	}
	return &Engine{
		repo:      repo,
		serverLoc: serverLoc,
		gymLoc:    gymLoc,
	}
}

// Evaluate проверяет участника, который уже активен и имеет доступ через дверь.
// Роли команды проходят без проверок. Остальным нужен действующий абонемент
// и выполнение условия режима доступа. Настройки читаются при каждом вызове.
func (e *Engine) Evaluate(ctx context.Context, member *models.Member, now time.Time) (Decision, error) {
	const op = "policy.Evaluate"

	if member.Role.IsTeam() {
		return allow(), nil
	}

	ok, err := e.CheckSubscription(ctx, member.ID, now)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return deny(models.ReasonNoActiveSubscription), nil
	}

	settings, err := e.repo.GetAccessSettings(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}

	d, err := e.Gate(ctx, member.ID, settings, now)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// CheckSubscription сообщает, есть ли у участника абонемент, действующий сегодня.
func (e *Engine) CheckSubscription(ctx context.Context, memberID string, now time.Time) (bool, error) {
	return e.repo.HasActiveSubscription(ctx, memberID, now.In(e.serverLoc))
}

// Gate применяет режим доступа из settings.
func (e *Engine) Gate(ctx context.Context, memberID string, settings models.AccessSettings, now time.Time) (Decision, error) {
	switch settings.AccessMode {
	case models.ModeSubscriptionOnly:
		return allow(), nil
	case models.ModeReservationRequired:
		return e.reservationGate(ctx, memberID, settings, now)
	case models.ModeOpenGym:
		return e.openGymGate(settings, now), nil
	default:
		return deny(models.ReasonUnknownMode), nil
	}
}

func (e *Engine) reservationGate(ctx context.Context, memberID string, settings models.AccessSettings, now time.Time) (Decision, error) {
	local := now.In(e.serverLoc)
	reservations, err := e.repo.ListReservationsForDate(ctx, memberID, local)
	if err != nil {
		return Decision{}, err
	}

	current := minutesOfDay(local)
	for _, r := range reservations {
		if r.StartTime == nil {
			continue
		}
		start, ok := ParseClock(*r.StartTime)
		if !ok {
			continue
		}
		if start-settings.MinutesBeforeClass <= current && current <= start+settings.GracePeriodMinutes {
			return allow(), nil
		}
	}
	return deny(models.ReasonNoReservation), nil
}

func (e *Engine) openGymGate(settings models.AccessSettings, now time.Time) Decision {
	local := now.In(e.gymLoc)
	day := int(local.Weekday())
	current := minutesOfDay(local)

	for _, h := range settings.OpenGymHours {
		if h.DayOfWeek != day {
			continue
		}
		open, ok := ParseClock(h.OpenTime)
		if !ok {
			continue
		}
		closing, ok := ParseClock(h.CloseTime)
		if !ok {
			continue
		}
		if open <= current && current <= closing {
			return allow()
		}
	}
	return deny(models.ReasonOutsideHours)
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseClock переводит "HH:MM" или "HH:MM:SS" в минуты от полуночи.
// "24:00" допускается как конец суток.
func ParseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, false
	}
	return h*60 + m, true
}
