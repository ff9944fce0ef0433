// Package cache держит сосчитанные лидерборды в памяти процесса.
// Инвалидация грубая: любая успешная запись в леджер сбрасывает оба
// борда. Шина на NATS разносит сброс по всем инстансам; без шины кэш
// работает только локально.
package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/services"
	"golang.org/x/sync/singleflight"
)

// InvalidationBus разносит событие сброса кэша между инстансами.
type InvalidationBus interface {
	Publish() error
	Subscribe(fn func()) error
}

// Leaderboards — read-through кэш поверх LeaderboardService. Реализует
// тот же интерфейс плюс services.LeaderboardInvalidator.
type Leaderboards struct {
	inner  services.LeaderboardService
	bus    InvalidationBus
	group  singleflight.Group
	logger *slog.Logger

	mu     sync.RWMutex
	boards map[models.PointCategory][]models.LeaderboardEntry
}

func NewLeaderboards(inner services.LeaderboardService, bus InvalidationBus, logger *slog.Logger) (*Leaderboards, error) {
	l := &Leaderboards{
		inner:  inner,
		bus:    bus,
		logger: logger,
		boards: make(map[models.PointCategory][]models.LeaderboardEntry),
	}
	if bus != nil {
		// Своё же Publish тоже приходит через подписку — локальный сброс
		// происходит тем же путём, что и на остальных инстансах.
		if err := bus.Subscribe(l.dropAll); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Leaderboards) TopRaiders(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return l.get(ctx, models.CategoryRaid, l.inner.TopRaiders)
}

func (l *Leaderboards) TopDefenders(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return l.get(ctx, models.CategoryDefense, l.inner.TopDefenders)
}

func (l *Leaderboards) get(
	ctx context.Context,
	category models.PointCategory,
	compute func(context.Context) ([]models.LeaderboardEntry, error),
) ([]models.LeaderboardEntry, error) {
	l.mu.RLock()
	board, ok := l.boards[category]
	l.mu.RUnlock()
	if ok {
		return board, nil
	}

	// singleflight: одновременные промахи по одной категории считаются
	// одним проходом по истории матчей.
	result, err, _ := l.group.Do(string(category), func() (interface{}, error) {
		board, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.boards[category] = board
		l.mu.Unlock()
		return board, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.LeaderboardEntry), nil
}

// Invalidate реализует services.LeaderboardInvalidator: вызывается
// после каждой успешной операции леджера.
func (l *Leaderboards) Invalidate() {
	if l.bus != nil {
		if err := l.bus.Publish(); err == nil {
			return
		} else if l.logger != nil {
			l.logger.Warn("failed to publish cache invalidation, dropping locally", slog.Any("error", err))
		}
	}
	l.dropAll()
}

func (l *Leaderboards) dropAll() {
	l.mu.Lock()
	l.boards = make(map[models.PointCategory][]models.LeaderboardEntry)
	l.mu.Unlock()
}
