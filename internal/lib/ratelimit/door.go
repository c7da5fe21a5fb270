// Package ratelimit содержит ограничитель попыток прохода для каждой двери.
//
// Ограничитель считает попытки в окне фиксированной длины и хранит окна
// только в памяти процесса: после перезапуска счётчики обнуляются.
package ratelimit

import (
	"sync"
	"time"
)

// Значения по умолчанию.
const (
	DefaultLimit      = 10
	DefaultWindow     = time.Minute
	DefaultMaxEntries = 100
)

type window struct {
	count   int
	resetAt time.Time
}

// DoorLimiter ограничивает число попыток на дверь в пределах окна.
// Безопасен для конкурентного использования.
type DoorLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	period     time.Duration
	maxEntries int
	now        func() time.Time
}

// Option настраивает DoorLimiter.
type Option func(*DoorLimiter)

// WithLimit задаёт число разрешённых попыток в окне.
func WithLimit(limit int) Option {
	return func(l *DoorLimiter) {
		if limit > 0 {
			l.limit = limit
		}
	}
}

// WithWindow задаёт длину окна.
func WithWindow(d time.Duration) Option {
	return func(l *DoorLimiter) {
		if d > 0 {
			l.period = d
		}
	}
}

// WithMaxEntries задаёт размер таблицы, после которого выполняется чистка.
func WithMaxEntries(n int) Option {
	return func(l *DoorLimiter) {
		if n > 0 {
			l.maxEntries = n
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(l *DoorLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewDoorLimiter создаёт ограничитель: по умолчанию 10 попыток в минуту на дверь.
func NewDoorLimiter(opts ...Option) *DoorLimiter {
	l := &DoorLimiter{
		windows:    make(map[string]*window),
		limit:      DefaultLimit,
		period:     DefaultWindow,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow регистрирует попытку для двери и сообщает, разрешена ли она.
func (l *DoorLimiter) Allow(door string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if len(l.windows) > l.maxEntries {
		l.pruneLocked(now)
	}

	w, ok := l.windows[door]
	if !ok || !now.Before(w.resetAt) {
		l.windows[door] = &window{count: 1, resetAt: now.Add(l.period)}
		return true
	}

	w.count++
	return w.count <= l.limit
}

// Len возвращает текущее число окон.
func (l *DoorLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *DoorLimiter) pruneLocked(now time.Time) {
	for door, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, door)
		}
	}
}
