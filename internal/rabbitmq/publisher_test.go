package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent []published
	err  error
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestPublisher_PublishAccess(t *testing.T) {
	memberID := "3f1c0e1a-9b5e-4c43-9a57-1f0c7a1c2b11"
	denied := models.ReasonNoReservation
	at := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		entry      models.AccessLogEntry
		wantKey    string
		wantReason string
	}{
		{
			name:    "granted",
			entry:   models.AccessLogEntry{MemberID: &memberID, TokenFingerprint: "abcdef012345", Allowed: true, DoorLocation: "main", CreatedAt: at},
			wantKey: RoutingKeyGranted,
		},
		{
			name:       "denied",
			entry:      models.AccessLogEntry{MemberID: &memberID, Allowed: false, Reason: &denied, DoorLocation: "side", CreatedAt: at},
			wantKey:    RoutingKeyDenied,
			wantReason: "no_reservation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{}
			p := &Publisher{ch: ch, exchange: "door_access"}

			require.NoError(t, p.PublishAccess(context.Background(), tt.entry))
			require.Len(t, ch.sent, 1)

			got := ch.sent[0]
			assert.Equal(t, "door_access", got.exchange)
			assert.Equal(t, tt.wantKey, got.key)
			assert.Equal(t, uint8(amqp.Persistent), got.msg.DeliveryMode)
			assert.Equal(t, "application/json", got.msg.ContentType)

			var event AccessEvent
			require.NoError(t, json.Unmarshal(got.msg.Body, &event))
			assert.Equal(t, tt.entry.Allowed, event.Allowed)
			assert.Equal(t, tt.wantReason, event.Reason)
			assert.Equal(t, tt.entry.DoorLocation, event.DoorLocation)
			assert.Equal(t, memberID, *event.MemberID)
		})
	}
}

func TestPublisher_Errors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &Publisher{ch: ch, exchange: "door_access"}

	err := p.PublishAccess(context.Background(), models.AccessLogEntry{DoorLocation: "main"})
	assert.ErrorContains(t, err, "channel closed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.PublishAccess(ctx, models.AccessLogEntry{DoorLocation: "main"})
	assert.ErrorIs(t, err, context.Canceled)
}
