// Package issuance выпускает токены двери для участников клуба.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
	"github.com/magabrotheeeer/gym-door-access/internal/models"
	"github.com/magabrotheeeer/gym-door-access/internal/storage"
)

// DefaultTTL — время жизни токена по умолчанию.
const DefaultTTL = 5 * time.Minute

// Ошибки выпуска.
var (
	ErrInvalidInput         = errors.New("invalid member_id")
	ErrForbidden            = errors.New("access denied")
	ErrMemberInactive       = errors.New("member is not active")
	ErrAccessDisabled       = errors.New("door access is disabled for this member")
	ErrNoActiveSubscription = errors.New("no active subscription")
)

// MemberRepository читает участников.
type MemberRepository interface {
	GetMemberByID(ctx context.Context, id string) (*models.Member, error)
	GetMemberByAuthUserID(ctx context.Context, authUserID string) (*models.Member, error)
}

// TokenRepository сохраняет токены.
type TokenRepository interface {
	CreateDoorToken(ctx context.Context, token models.DoorToken) error
}

// CodeGenerator выдаёт свободный код.
type CodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// SubscriptionChecker проверяет действующий абонемент.
type SubscriptionChecker interface {
	CheckSubscription(ctx context.Context, memberID string, now time.Time) (bool, error)
}

// Recorder учитывает результаты выпуска.
type Recorder interface {
	ObserveIssued()
	ObserveIssueFailure(reason string)
}

// Result содержит выпущенный токен в виде, отдаваемом клиенту.
type Result struct {
	Token      string
	ExpiresAt  time.Time
	ExpiresIn  int
	MemberName string
}

// Service выпускает токены.
type Service struct {
	members  MemberRepository
	tokens   TokenRepository
	codes    CodeGenerator
	subs     SubscriptionChecker
	recorder Recorder
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewService создаёт сервис выпуска. ttl <= 0 означает DefaultTTL.
func NewService(members MemberRepository, tokens TokenRepository, codes CodeGenerator,
	subs SubscriptionChecker, recorder Recorder, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		members:  members,
		tokens:   tokens,
		codes:    codes,
		subs:     subs,
		recorder: recorder,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Issue выпускает токен для memberID по запросу пользователя authUserID.
// Выпускать токены для других участников могут только staff, admin и owner.
func (s *Service) Issue(ctx context.Context, authUserID, memberID string) (*Result, error) {
	const op = "issuance.Issue"
	log := s.log.With(sl.Op(op), sl.MemberID(memberID))

	res, err := s.issue(ctx, authUserID, memberID)
	if err != nil {
		reason := failureReason(err)
		s.recorder.ObserveIssueFailure(reason)
		if reason == "internal" {
			log.Error("failed to issue door token", sl.Err(err))
		} else {
			log.Info("door token refused", slog.String("reason", reason))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.recorder.ObserveIssued()
	log.Info("door token issued", slog.Time("expires_at", res.ExpiresAt))
	return res, nil
}

func (s *Service) issue(ctx context.Context, authUserID, memberID string) (*Result, error) {
	if _, err := uuid.Parse(memberID); err != nil {
		return nil, ErrInvalidInput
	}
	// Субъект сессии, не являющийся UUID, не может соответствовать участнику.
	if _, err := uuid.Parse(authUserID); err != nil {
		return nil, ErrForbidden
	}

	target, err := s.members.GetMemberByID(ctx, memberID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	requester, err := s.members.GetMemberByAuthUserID(ctx, authUserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if !requester.Role.CanIssueForOthers() && requester.ID != target.ID {
		return nil, ErrForbidden
	}

	if target.Status != models.StatusActive {
		return nil, ErrMemberInactive
	}
	if !target.DoorAccessEnabled {
		return nil, ErrAccessDisabled
	}

	now := s.now()
	if !target.Role.IsTeam() {
		ok, err := s.subs.CheckSubscription(ctx, target.ID, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoActiveSubscription
		}
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return nil, err
	}

	token := models.DoorToken{
		ID:        uuid.NewString(),
		MemberID:  target.ID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.CreateDoorToken(ctx, token); err != nil {
		return nil, err
	}

	return &Result{
		Token:      code,
		ExpiresAt:  token.ExpiresAt,
		ExpiresIn:  int(token.ExpiresAt.Sub(now) / time.Second),
		MemberName: target.DisplayName(),
	}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrMemberInactive):
		return string(models.ReasonMemberInactive)
	case errors.Is(err, ErrAccessDisabled):
		return string(models.ReasonAccessDisabled)
	case errors.Is(err, ErrNoActiveSubscription):
		return string(models.ReasonNoActiveSubscription)
	default:
		return "internal"
	}
}
