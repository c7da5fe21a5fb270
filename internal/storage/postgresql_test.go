package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

func TestStorage_Integration(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	require.NoError(t, CheckDatabaseReady(ctx, storage))

	t.Run("members", func(t *testing.T) {
		memberID, authUserID := factory.CreateMember(t, "active", "member", true)

		m, err := storage.GetMemberByID(ctx, memberID)
		require.NoError(t, err)
		assert.Equal(t, memberID, m.ID)
		assert.Equal(t, models.StatusActive, m.Status)
		assert.Equal(t, models.RoleMember, m.Role)
		assert.True(t, m.DoorAccessEnabled)
		assert.Equal(t, "Anna Peeters", m.DisplayName())
		assert.Nil(t, m.LastCheckinAt)

		byAuth, err := storage.GetMemberByAuthUserID(ctx, authUserID)
		require.NoError(t, err)
		assert.Equal(t, memberID, byAuth.ID)

		_, err = storage.GetMemberByID(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrNotFound)

		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, storage.UpdateMemberLastCheckin(ctx, memberID, at))
		m, err = storage.GetMemberByID(ctx, memberID)
		require.NoError(t, err)
		require.NotNil(t, m.LastCheckinAt)
		assert.True(t, at.Equal(*m.LastCheckinAt))
	})

	t.Run("subscriptions", func(t *testing.T) {
		today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

		tests := []struct {
			name    string
			status  string
			endDate string
			want    bool
		}{
			{"active open-ended", "active", "", true},
			{"active ends today", "active", "2025-03-10", true},
			{"active ended yesterday", "active", "2025-03-09", false},
			{"paused", "paused", "", false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				memberID, _ := factory.CreateMember(t, "active", "member", true)
				factory.CreateSubscription(t, memberID, tt.status, tt.endDate)

				got, err := storage.HasActiveSubscription(ctx, memberID, today)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("reservations", func(t *testing.T) {
		memberID, _ := factory.CreateMember(t, "active", "member", true)
		factory.CreateReservation(t, memberID, "2025-03-10", "18:00", "reserved")
		factory.CreateReservation(t, memberID, "2025-03-10", "07:15", "checked_in")
		factory.CreateReservation(t, memberID, "2025-03-10", "12:00", "cancelled")
		factory.CreateReservation(t, memberID, "2025-03-11", "18:00", "reserved")

		list, err := storage.ListReservationsForDate(ctx, memberID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.NotNil(t, list[0].StartTime)
		assert.Equal(t, "07:15", *list[0].StartTime)
		assert.Equal(t, "18:00", *list[1].StartTime)
	})

	t.Run("door tokens", func(t *testing.T) {
		memberID, _ := factory.CreateMember(t, "active", "member", true)
		now := time.Now().UTC().Truncate(time.Microsecond)

		older := models.DoorToken{
			ID: uuid.New().String(), MemberID: memberID, Code: "4444444",
			CreatedAt: now.Add(-time.Minute), ExpiresAt: now.Add(-time.Second),
		}
		newer := models.DoorToken{
			ID: uuid.New().String(), MemberID: memberID, Code: "4444444",
			CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
		}
		require.NoError(t, storage.CreateDoorToken(ctx, older))
		require.NoError(t, storage.CreateDoorToken(ctx, newer))

		exists, err := storage.CodeExists(ctx, "4444444")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = storage.CodeExists(ctx, "5555555")
		require.NoError(t, err)
		assert.False(t, exists)

		found, err := storage.FindDoorTokenByCode(ctx, "4444444")
		require.NoError(t, err)
		assert.Equal(t, newer.ID, found.ID)
		assert.False(t, found.Used())

		_, err = storage.FindDoorTokenByCode(ctx, "0000000")
		assert.ErrorIs(t, err, ErrNotFound)

		first := now.Add(time.Second)
		require.NoError(t, storage.MarkDoorTokenUsed(ctx, newer.ID, first))
		require.NoError(t, storage.MarkDoorTokenUsed(ctx, newer.ID, first.Add(time.Minute)))
		found, err = storage.FindDoorTokenByCode(ctx, "4444444")
		require.NoError(t, err)
		require.NotNil(t, found.UsedAt)
		assert.True(t, first.Equal(*found.UsedAt))

		err = storage.MarkDoorTokenUsed(ctx, uuid.New().String(), now)
		assert.ErrorIs(t, err, ErrNotFound)

		deleted, err := storage.DeleteExpiredDoorTokens(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})

	t.Run("access settings", func(t *testing.T) {
		settings, err := storage.GetAccessSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultAccessSettings(), settings)

		factory.SetAccessSettings(t, "open_gym", nil, 5,
			`[{"day_of_week":1,"open_time":"06:00","close_time":"22:00"}]`)
		settings, err = storage.GetAccessSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.ModeOpenGym, settings.AccessMode)
		assert.Equal(t, models.DefaultMinutesBeforeClass, settings.MinutesBeforeClass)
		assert.Equal(t, 5, settings.GracePeriodMinutes)
		require.Len(t, settings.OpenGymHours, 1)
		assert.Equal(t, models.OpenGymHours{DayOfWeek: 1, OpenTime: "06:00", CloseTime: "22:00"}, settings.OpenGymHours[0])
	})

	t.Run("access logs", func(t *testing.T) {
		memberID, _ := factory.CreateMember(t, "active", "member", true)
		reason := models.ReasonNoReservation

		require.NoError(t, storage.InsertAccessLog(ctx, models.AccessLogEntry{
			TokenFingerprint: "", Allowed: false, Reason: ptrReason(models.LogReasonEmptyToken),
			DoorLocation: "main", CreatedAt: time.Now(),
		}))
		require.NoError(t, storage.InsertAccessLog(ctx, models.AccessLogEntry{
			MemberID: &memberID, TokenFingerprint: "abcdef012345", Allowed: false, Reason: &reason,
			DoorLocation: "side", CreatedAt: time.Now(),
		}))

		logs, err := storage.ListAccessLogs(ctx, 10)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		require.NotNil(t, logs[0].MemberID)
		assert.Equal(t, memberID, *logs[0].MemberID)
		assert.Equal(t, models.ReasonNoReservation, *logs[0].Reason)
		assert.Equal(t, "side", logs[0].DoorLocation)
		assert.Nil(t, logs[1].MemberID)
		assert.Equal(t, models.LogReasonEmptyToken, *logs[1].Reason)
	})
}

func ptrReason(r models.Reason) *models.Reason {
	return &r
}
