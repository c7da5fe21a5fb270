// Package codegen генерирует числовые коды токенов двери, уникальные среди сохранённых.
package codegen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

// Диапазон кодов: семизначные числа, помещающиеся в 24 бита полезной нагрузки Wiegand.
const (
	MinCode = 1_000_000
	MaxCode = 16_777_215

	DefaultAttempts = 10
)

// ErrExhausted возвращается, если за отведённое число попыток не найден свободный код.
var ErrExhausted = errors.New("could not generate unique code")

// CodeChecker проверяет, занят ли код.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Generator выдаёт случайные коды без коллизий с хранилищем.
type Generator struct {
	repo     CodeChecker
	attempts int
	rand     io.Reader
}

// New создаёт генератор. attempts <= 0 означает значение по умолчанию.
func New(repo CodeChecker, attempts int) *Generator {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Generator{
		repo:     repo,
		attempts: attempts,
		rand:     rand.Reader,
	}
}

// Generate возвращает свободный код. Ошибка хранилища прерывает генерацию.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	const op = "codegen.Generate"

	for range g.attempts {
		code, err := g.random()
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		exists, err := g.repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%s: %w", op, ErrExhausted)
}

func (g *Generator) random() (string, error) {
	n, err := rand.Int(g.rand, big.NewInt(MaxCode-MinCode+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+MinCode, 10), nil
}
