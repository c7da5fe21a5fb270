package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

const (
	tokenByCodePrefix = "door_token:code:"
	tokenCodeByID     = "door_token:id:"
)

// TokenRepository описывает хранилище токенов двери, которое оборачивает TokenStore.
type TokenRepository interface {
	CreateDoorToken(ctx context.Context, token models.DoorToken) error
	CodeExists(ctx context.Context, code string) (bool, error)
	FindDoorTokenByCode(ctx context.Context, code string) (*models.DoorToken, error)
	MarkDoorTokenUsed(ctx context.Context, id string, at time.Time) error
}

// TokenStore кеширует поиск токенов по коду. Токен пишется в кеш только при выпуске,
// живёт в кеше до истечения и удаляется при отметке об использовании.
// Промах читается из хранилища и в кеш не кладётся: иначе чтение, начатое до
// MarkDoorTokenUsed, вернуло бы в кеш неиспользованную копию до конца TTL.
// Ошибки redis только логируются, источником истины остаётся хранилище.
type TokenStore struct {
	next  TokenRepository
	cache *Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewTokenStore создаёт кеширующую обёртку над хранилищем токенов.
func NewTokenStore(next TokenRepository, cache *Cache, log *slog.Logger) *TokenStore {
	return &TokenStore{
		next:  next,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// CreateDoorToken сохраняет токен и кладёт его в кеш.
func (s *TokenStore) CreateDoorToken(ctx context.Context, token models.DoorToken) error {
	if err := s.next.CreateDoorToken(ctx, token); err != nil {
		return err
	}
	s.put(ctx, &token)
	return nil
}

// CodeExists всегда обращается к хранилищу: коллизии проверяются по всем строкам.
func (s *TokenStore) CodeExists(ctx context.Context, code string) (bool, error) {
	return s.next.CodeExists(ctx, code)
}

// FindDoorTokenByCode возвращает токен из кеша или из хранилища.
func (s *TokenStore) FindDoorTokenByCode(ctx context.Context, code string) (*models.DoorToken, error) {
	const op = "cache.TokenStore.FindDoorTokenByCode"

	var token models.DoorToken
	found, err := s.cache.Get(ctx, tokenByCodePrefix+code, &token)
	if err != nil {
		s.log.Warn("token cache read failed", sl.Op(op), sl.Err(err))
	}
	if found {
		return &token, nil
	}

	return s.next.FindDoorTokenByCode(ctx, code)
}

// MarkDoorTokenUsed отмечает токен в хранилище и сбрасывает его из кеша.
func (s *TokenStore) MarkDoorTokenUsed(ctx context.Context, id string, at time.Time) error {
	const op = "cache.TokenStore.MarkDoorTokenUsed"

	if err := s.next.MarkDoorTokenUsed(ctx, id, at); err != nil {
		return err
	}

	var code string
	found, err := s.cache.Get(ctx, tokenCodeByID+id, &code)
	if err != nil {
		s.log.Warn("token cache read failed", sl.Op(op), sl.Err(err))
		return nil
	}
	if !found {
		return nil
	}
	if err := s.cache.Invalidate(ctx, tokenByCodePrefix+code, tokenCodeByID+id); err != nil {
		s.log.Warn("token cache invalidate failed", sl.Op(op), sl.Err(err))
	}
	return nil
}

func (s *TokenStore) put(ctx context.Context, token *models.DoorToken) {
	const op = "cache.TokenStore.put"

	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, tokenByCodePrefix+token.Code, token, ttl); err != nil {
		s.log.Warn("token cache write failed", sl.Op(op), sl.Err(err))
		return
	}
	if err := s.cache.Set(ctx, tokenCodeByID+token.ID, token.Code, ttl); err != nil {
		s.log.Warn("token cache write failed", sl.Op(op), sl.Err(err))
	}
}
