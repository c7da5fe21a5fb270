package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Ключи маршрутизации событий доступа.
const (
	RoutingKeyGranted = "access.granted"
	RoutingKeyDenied  = "access.denied"
)

// SetupExchange открывает канал и объявляет topic-exchange для событий доступа.
// Очереди объявляют потребители.
func SetupExchange(conn *amqp.Connection, exchange string) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupExchange"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}
