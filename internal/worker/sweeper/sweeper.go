// Package sweeper периодически сбрасывает флаг occupied у мест,
// активное окно бронирований которых истекло
package sweeper

import (
	"context"
	"time"
)

// Releaser освобождает места без бронирований с booked_at >= since
type Releaser interface {
	ReleaseExpired(ctx context.Context, since time.Time) (int64, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }

// Sweeper фоновый сброс флага реестра
type Sweeper struct {
	releaser     Releaser
	interval     time.Duration
	window       time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// New создает sweeper с периодом interval и активным окном window
func New(releaser Releaser, interval, window time.Duration, logger Logger) *Sweeper {
	return &Sweeper{
		releaser:     releaser,
		interval:     interval,
		window:       window,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// Run блокируется до отмены ctx
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Sweeper: started, interval=%s, window=%s", s.interval, s.window)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce выполняет один проход; ошибки только логируются
func (s *Sweeper) SweepOnce(ctx context.Context) int64 {
	since := s.timeProvider.Now().Add(-s.window)

	released, err := s.releaser.ReleaseExpired(ctx, since)
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		s.logger.Error("Sweeper: release failed: %v", err)
		return 0
	}

	return released
}
