// Package rabbitmq публикует события доступа в RabbitMQ.
package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
)

// Connect подключается к брокеру за не более чем retries попыток с паузой delay.
// Брокер может подниматься дольше сервиса, поэтому неудачные попытки только логируются.
func Connect(ctx context.Context, url string, retries int, delay time.Duration, log *slog.Logger) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"

	retries = max(retries, 1)
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		log.Warn("rabbitmq is not reachable",
			sl.Op(op),
			slog.Int("attempt", attempt),
			slog.Int("retries", retries),
			sl.Err(err),
		)
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%s: %d attempts: %w", op, retries, lastErr)
}
