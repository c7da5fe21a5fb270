// Package server реализует gRPC-сервер проверки готовности сервиса доступа.
//
// HealthServer публикует стандартный сервис grpc.health.v1.Health и периодически
// проверяет базу данных, переключая статус между SERVING и NOT_SERVING.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/gym-door-access/internal/lib/sl"
)

// ServiceName задаёт имя сервиса, под которым публикуется статус готовности.
const ServiceName = "door_access"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer отдаёт статус готовности по gRPC.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	db     Pinger
	log    *slog.Logger

	mu        sync.Mutex
	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// NewHealthServer создаёт сервер. До первой проверки статус NOT_SERVING.
func NewHealthServer(db Pinger, logger *slog.Logger) *HealthServer {
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &HealthServer{
		grpc:   gs,
		health: hs,
		db:     db,
		log:    logger,
	}
}

// Check выполняет одну проверку базы и обновляет статус.
func (s *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	const op = "server.HealthServer.Check"

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("database ping failed", sl.Op(op), sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

// Watch проверяет базу каждые interval до отмены ctx.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// StartWatch запускает Watch в отдельной горутине. Stop отменяет её и дожидается выхода.
func (s *HealthServer) StartWatch(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.stopWatch = cancel
	s.watchDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.Watch(ctx, interval)
	}()
}

// Serve обслуживает запросы на lis до остановки сервера.
func (s *HealthServer) Serve(lis net.Listener) error {
	const op = "server.HealthServer.Serve"
	if err := s.grpc.Serve(lis); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stop останавливает фоновую проверку, переводит статус в NOT_SERVING и останавливает сервер.
func (s *HealthServer) Stop() {
	s.mu.Lock()
	cancel, done := s.stopWatch, s.watchDone
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}

	s.health.Shutdown()
	s.grpc.GracefulStop()
}
