package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

// AccessEvent публикуется в exchange при каждой попытке прохода.
type AccessEvent struct {
	MemberID         *string   `json:"member_id,omitempty"`
	TokenFingerprint string    `json:"token_fingerprint"`
	Allowed          bool      `json:"allowed"`
	Reason           string    `json:"reason,omitempty"`
	DoorLocation     string    `json:"door_location"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// channel — часть amqp.Channel, нужная для публикации.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher публикует события доступа. amqp.Channel не потокобезопасен
// для публикации, поэтому вызовы сериализуются.
type Publisher struct {
	mu       sync.Mutex
	ch       channel
	exchange string
}

// NewPublisher создаёт издателя поверх открытого канала.
func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// PublishAccess публикует запись журнала доступа как событие.
func (p *Publisher) PublishAccess(ctx context.Context, entry models.AccessLogEntry) error {
	const op = "rabbitmq.PublishAccess"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	event := AccessEvent{
		MemberID:         entry.MemberID,
		TokenFingerprint: entry.TokenFingerprint,
		Allowed:          entry.Allowed,
		DoorLocation:     entry.DoorLocation,
		OccurredAt:       entry.CreatedAt,
	}
	if entry.Reason != nil {
		event.Reason = string(*entry.Reason)
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	key := RoutingKeyDenied
	if entry.Allowed {
		key = RoutingKeyGranted
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.Publish(p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    entry.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
