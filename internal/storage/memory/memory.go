// Package memory содержит хранилище в памяти с тем же набором операций,
// что и storage.Storage. Используется в тестах и при локальной разработке.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
	"github.com/magabrotheeeer/gym-door-access/internal/storage"
)

const dateLayout = "2006-01-02"

// Store хранит данные в памяти и безопасен для конкурентного использования.
type Store struct {
	mu            sync.RWMutex
	members       map[string]models.Member
	subscriptions []models.Subscription
	reservations  []models.Reservation
	settings      *models.AccessSettings
	tokens        []models.DoorToken
	logs          []models.AccessLogEntry
	nextLogID     int64
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		members: make(map[string]models.Member),
	}
}

// AddMember добавляет или заменяет участника.
func (s *Store) AddMember(m models.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
}

// AddSubscription добавляет абонемент.
func (s *Store) AddSubscription(sub models.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = append(s.subscriptions, sub)
}

// AddReservation добавляет бронь.
func (s *Store) AddReservation(r models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations = append(s.reservations, r)
}

// SetAccessSettings задаёт настройки доступа.
func (s *Store) SetAccessSettings(settings models.AccessSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
}

// GetMemberByID возвращает участника по идентификатору.
func (s *Store) GetMemberByID(_ context.Context, id string) (*models.Member, error) {
	const op = "memory.GetMemberByID"
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return &m, nil
}

// GetMemberByAuthUserID возвращает участника по пользователю авторизации.
func (s *Store) GetMemberByAuthUserID(_ context.Context, authUserID string) (*models.Member, error) {
	const op = "memory.GetMemberByAuthUserID"
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members {
		if m.AuthUserID != nil && *m.AuthUserID == authUserID {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

// UpdateMemberLastCheckin записывает время последнего прохода.
func (s *Store) UpdateMemberLastCheckin(_ context.Context, memberID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[memberID]
	if !ok {
		return nil
	}
	m.LastCheckinAt = &at
	s.members[memberID] = m
	return nil
}

// HasActiveSubscription сообщает, есть ли активный абонемент на дату today.
func (s *Store) HasActiveSubscription(_ context.Context, memberID string, today time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := today.Format(dateLayout)
	for _, sub := range s.subscriptions {
		if sub.MemberID != memberID || sub.Status != "active" {
			continue
		}
		if sub.EndDate == nil || sub.EndDate.Format(dateLayout) >= day {
			return true, nil
		}
	}
	return false, nil
}

// ListReservationsForDate возвращает брони reserved и checked_in на дату.
func (s *Store) ListReservationsForDate(_ context.Context, memberID string, date time.Time) ([]models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := date.Format(dateLayout)
	var out []models.Reservation
	for _, r := range s.reservations {
		if r.MemberID != memberID || r.ClassDate.Format(dateLayout) != day {
			continue
		}
		if r.Status == "reserved" || r.Status == "checked_in" {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetAccessSettings возвращает настройки или значения по умолчанию.
func (s *Store) GetAccessSettings(_ context.Context) (models.AccessSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return models.DefaultAccessSettings(), nil
	}
	return *s.settings, nil
}

// CreateDoorToken сохраняет токен.
func (s *Store) CreateDoorToken(_ context.Context, token models.DoorToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	return nil
}

// CodeExists сообщает, встречается ли код среди сохранённых токенов.
func (s *Store) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// FindDoorTokenByCode возвращает самый новый токен с кодом.
func (s *Store) FindDoorTokenByCode(_ context.Context, code string) (*models.DoorToken, error) {
	const op = "memory.FindDoorTokenByCode"
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.DoorToken
	for i := range s.tokens {
		t := s.tokens[i]
		if t.Code != code {
			continue
		}
		if found == nil || !t.CreatedAt.Before(found.CreatedAt) {
			found = &t
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return found, nil
}

// MarkDoorTokenUsed отмечает токен использованным, сохраняя первое время.
func (s *Store) MarkDoorTokenUsed(_ context.Context, id string, at time.Time) error {
	const op = "memory.MarkDoorTokenUsed"
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tokens {
		if s.tokens[i].ID != id {
			continue
		}
		if s.tokens[i].UsedAt == nil {
			s.tokens[i].UsedAt = &at
		}
		return nil
	}
	return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

// DeleteExpiredDoorTokens удаляет токены, истёкшие раньше cutoff.
func (s *Store) DeleteExpiredDoorTokens(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tokens[:0]
	var deleted int64
	for _, t := range s.tokens {
		if t.ExpiresAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	s.tokens = kept
	return deleted, nil
}

// InsertAccessLog добавляет запись журнала.
func (s *Store) InsertAccessLog(_ context.Context, entry models.AccessLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLogID++
	entry.ID = s.nextLogID
	s.logs = append(s.logs, entry)
	return nil
}

// ListAccessLogs возвращает последние записи журнала, новые первыми.
func (s *Store) ListAccessLogs(_ context.Context, limit int) ([]models.AccessLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AccessLogEntry, len(s.logs))
	copy(out, s.logs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Logs возвращает копию журнала в порядке записи. Используется в тестах.
func (s *Store) Logs() []models.AccessLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AccessLogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// Tokens возвращает копию сохранённых токенов. Используется в тестах.
func (s *Store) Tokens() []models.DoorToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DoorToken, len(s.tokens))
	copy(out, s.tokens)
	return out
}
