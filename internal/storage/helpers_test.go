package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/gym-door-access/internal/migrations"
)

// TestDataFactory содержит методы для создания тестовых данных CRM
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateMember создает тестового участника и возвращает его id
func (f *TestDataFactory) CreateMember(t *testing.T, status, role string, doorAccess bool) (memberID, authUserID string) {
	memberID = uuid.New().String()
	authUserID = uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO members
		(id, auth_user_id, first_name, last_name, status, role, door_access_enabled)
		VALUES ($1, $2, 'Anna', 'Peeters', $3, $4, $5)`,
		memberID, authUserID, status, role, doorAccess)
	require.NoError(t, err)
	return memberID, authUserID
}

// CreateSubscription создает тестовый абонемент. endDate == "" означает бессрочный
func (f *TestDataFactory) CreateSubscription(t *testing.T, memberID, status, endDate string) {
	var end any
	if endDate != "" {
		end = endDate
	}
	_, err := f.storage.DB.Exec(`INSERT INTO subscriptions (member_id, status, end_date)
		VALUES ($1, $2, $3::date)`, memberID, status, end)
	require.NoError(t, err)
}

// CreateReservation создает занятие и бронь на него
func (f *TestDataFactory) CreateReservation(t *testing.T, memberID, classDate, startTime, status string) {
	var classID string
	var start any
	if startTime != "" {
		start = startTime
	}
	err := f.storage.DB.QueryRow(`INSERT INTO classes (name, class_date, start_time)
		VALUES ('Cross', $1::date, $2::time) RETURNING id`, classDate, start).Scan(&classID)
	require.NoError(t, err)

	_, err = f.storage.DB.Exec(`INSERT INTO reservations (member_id, class_id, status)
		VALUES ($1, $2, $3)`, memberID, classID, status)
	require.NoError(t, err)
}

// SetAccessSettings записывает строку настроек доступа
func (f *TestDataFactory) SetAccessSettings(t *testing.T, mode string, before, grace any, hours any) {
	_, err := f.storage.DB.Exec(`INSERT INTO access_settings
		(id, access_mode, minutes_before_class, grace_period_minutes, open_gym_hours)
		VALUES (1, $1, $2, $3, $4::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			access_mode = EXCLUDED.access_mode,
			minutes_before_class = EXCLUDED.minutes_before_class,
			grace_period_minutes = EXCLUDED.grace_period_minutes,
			open_gym_hours = EXCLUDED.open_gym_hours`,
		mode, before, grace, hours)
	require.NoError(t, err)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL и накатывает миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pgPort := nat.Port("5432/tcp")

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(pgPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(pgPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, pgPort)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for i := 0; i < 10; i++ {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		storage.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}
