// Package validation проверяет коды, отсканированные у двери, и ведёт журнал доступа.
//
// Каждая попытка после проверки ключа сканера даёт ровно одну запись журнала.
// Ошибки записи журнала, публикации событий, отметки токена и обновления
// времени прохода логируются и не влияют на решение.
package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
	"github.com/magabrotheeeer/gym-door-access/internal/lib/wiegand"
	"github.com/magabrotheeeer/gym-door-access/internal/models"
	"github.com/magabrotheeeer/gym-door-access/internal/services/policy"
	"github.com/magabrotheeeer/gym-door-access/internal/storage"
)

// DefaultDoor — дверь, если сканер её не передал.
const DefaultDoor = "main"

// TokenRepository ищет и отмечает токены.
type TokenRepository interface {
	FindDoorTokenByCode(ctx context.Context, code string) (*models.DoorToken, error)
	MarkDoorTokenUsed(ctx context.Context, id string, at time.Time) error
}

// MemberRepository читает участника и обновляет время прохода.
type MemberRepository interface {
	GetMemberByID(ctx context.Context, id string) (*models.Member, error)
	UpdateMemberLastCheckin(ctx context.Context, memberID string, at time.Time) error
}

// AccessLogRepository пишет журнал доступа.
type AccessLogRepository interface {
	InsertAccessLog(ctx context.Context, entry models.AccessLogEntry) error
}

// Evaluator применяет политику доступа.
type Evaluator interface {
	Evaluate(ctx context.Context, member *models.Member, now time.Time) (policy.Decision, error)
}

// Limiter ограничивает попытки на дверь.
type Limiter interface {
	Allow(door string) bool
}

// Fingerprinter строит отпечаток кода для журнала.
type Fingerprinter interface {
	Of(code string) string
}

// EventPublisher публикует записи журнала во внешний поток.
type EventPublisher interface {
	PublishAccess(ctx context.Context, entry models.AccessLogEntry) error
}

// Recorder учитывает исходы проверок.
type Recorder interface {
	ObserveValidation(allowed bool, reason string)
}

// Request содержит данные от сканера.
type Request struct {
	Code   string
	DoorID string
}

// Result описывает решение для сканера.
type Result struct {
	Allowed     bool
	Reason      models.Reason
	MemberName  string
	MemberID    string
	RateLimited bool
}

// Options задаёт параметры сервиса.
type Options struct {
	EnforceSingleUse bool
	DefaultDoor      string
}

// Service проверяет коды.
type Service struct {
	tokens    TokenRepository
	members   MemberRepository
	logs      AccessLogRepository
	policy    Evaluator
	limiter   Limiter
	hasher    Fingerprinter
	publisher EventPublisher
	recorder  Recorder
	opts      Options
	now       func() time.Time
	log       *slog.Logger
}

// NewService создаёт сервис проверки. publisher может быть nil.
func NewService(tokens TokenRepository, members MemberRepository, logs AccessLogRepository,
	evaluator Evaluator, limiter Limiter, hasher Fingerprinter, publisher EventPublisher,
	recorder Recorder, opts Options, log *slog.Logger) *Service {
	if opts.DefaultDoor == "" {
		opts.DefaultDoor = DefaultDoor
	}
	return &Service{
		tokens:    tokens,
		members:   members,
		logs:      logs,
		policy:    evaluator,
		limiter:   limiter,
		hasher:    hasher,
		publisher: publisher,
		recorder:  recorder,
		opts:      opts,
		now:       time.Now,
		log:       log,
	}
}

// attempt хранит состояние одной попытки прохода.
type attempt struct {
	door        string
	fingerprint string
	memberID    *string
	logged      bool
}

// Validate принимает решение по отсканированному коду.
func (s *Service) Validate(ctx context.Context, req Request) (res Result) {
	const op = "validation.Validate"

	a := &attempt{
		door:        strings.TrimSpace(req.DoorID),
		fingerprint: s.hasher.Of(req.Code),
	}
	if a.door == "" {
		a.door = s.opts.DefaultDoor
	}
	log := s.log.With(sl.Op(op), sl.Door(a.door), slog.String("fingerprint", a.fingerprint))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during validation", slog.Any("panic", r))
			if !a.logged {
				s.record(ctx, a, false, models.ReasonSystemError)
			}
			res = Result{Reason: models.ReasonSystemError}
		}
		s.recorder.ObserveValidation(res.Allowed, string(res.Reason))
	}()

	res, err := s.validate(ctx, a, req.Code)
	if err != nil {
		log.Error("validation failed", sl.Err(err))
		s.record(ctx, a, false, models.ReasonSystemError)
		return Result{Reason: models.ReasonSystemError}
	}
	if res.Allowed {
		log.Info("access granted", sl.MemberID(res.MemberID))
	} else {
		log.Info("access denied", slog.String("reason", string(res.Reason)))
	}
	return res
}

func (s *Service) validate(ctx context.Context, a *attempt, raw string) (Result, error) {
	if !s.limiter.Allow(a.door) {
		s.record(ctx, a, false, models.ReasonRateLimited)
		return Result{Reason: models.ReasonRateLimited, RateLimited: true}, nil
	}

	code := strings.TrimSpace(raw)
	if code == "" {
		s.record(ctx, a, false, models.LogReasonEmptyToken)
		return Result{Reason: models.ReasonInvalidToken}, nil
	}

	token, err := s.findToken(ctx, code)
	if err != nil {
		return Result{}, err
	}
	if token == nil {
		s.record(ctx, a, false, models.LogReasonTokenNotFound)
		return Result{Reason: models.ReasonInvalidToken}, nil
	}
	a.memberID = &token.MemberID

	now := s.now()
	if token.Expired(now) {
		s.record(ctx, a, false, models.ReasonTokenExpired)
		return Result{Reason: models.ReasonTokenExpired}, nil
	}
	if s.opts.EnforceSingleUse && token.Used() {
		s.record(ctx, a, false, models.LogReasonTokenUsed)
		return Result{Reason: models.ReasonInvalidToken}, nil
	}

	member, err := s.members.GetMemberByID(ctx, token.MemberID)
	if errors.Is(err, storage.ErrNotFound) {
		s.record(ctx, a, false, models.ReasonMemberNotFound)
		return Result{Reason: models.ReasonMemberNotFound}, nil
	}
	if err != nil {
		return Result{}, err
	}

	if !member.DoorAccessEnabled {
		s.record(ctx, a, false, models.ReasonAccessDisabled)
		return Result{Reason: models.ReasonAccessDisabled, MemberName: member.DisplayName()}, nil
	}
	if member.Status != models.StatusActive {
		s.record(ctx, a, false, models.ReasonMemberInactive)
		return Result{Reason: models.ReasonMemberInactive}, nil
	}

	decision, err := s.policy.Evaluate(ctx, member, now)
	if err != nil {
		return Result{}, err
	}
	if !decision.Allowed {
		s.record(ctx, a, false, decision.Reason)
		return Result{Reason: decision.Reason}, nil
	}

	s.grant(ctx, a, token, member, now)
	return Result{Allowed: true, MemberName: member.DisplayName(), MemberID: member.ID}, nil
}

// findToken перебирает варианты кода и возвращает nil, если ни один не найден.
func (s *Service) findToken(ctx context.Context, code string) (*models.DoorToken, error) {
	const op = "validation.findToken"

	for _, candidate := range wiegand.Candidates(code) {
		token, err := s.tokens.FindDoorTokenByCode(ctx, candidate)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return token, nil
	}
	return nil, nil
}

func (s *Service) grant(ctx context.Context, a *attempt, token *models.DoorToken, member *models.Member, now time.Time) {
	const op = "validation.grant"
	log := s.log.With(sl.Op(op), sl.MemberID(member.ID))

	if err := s.tokens.MarkDoorTokenUsed(ctx, token.ID, now); err != nil {
		log.Error("failed to mark door token used", sl.Err(err))
	}
	s.record(ctx, a, true, "")
	if err := s.members.UpdateMemberLastCheckin(ctx, member.ID, now); err != nil {
		log.Error("failed to update last check-in", sl.Err(err))
	}
}

// record пишет запись журнала и публикует событие. Ошибки не возвращаются.
func (s *Service) record(ctx context.Context, a *attempt, allowed bool, reason models.Reason) {
	const op = "validation.record"

	entry := models.AccessLogEntry{
		MemberID:         a.memberID,
		TokenFingerprint: a.fingerprint,
		Allowed:          allowed,
		DoorLocation:     a.door,
		CreatedAt:        s.now(),
	}
	if reason != "" {
		entry.Reason = &reason
	}
	a.logged = true

	if err := s.logs.InsertAccessLog(ctx, entry); err != nil {
		s.log.Error("failed to write access log", sl.Op(op), sl.Err(err))
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAccess(ctx, entry); err != nil {
		s.log.Warn("failed to publish access event", sl.Op(op), sl.Err(err))
	}
}
