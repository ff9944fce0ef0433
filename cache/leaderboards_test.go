package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/kabaddi-league/cache"
	"github.com/Dosada05/kabaddi-league/models"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// countingService считает проходы по истории матчей за кэшем.
type countingService struct {
	mu       sync.Mutex
	raids    int
	defenses int
	board    []models.LeaderboardEntry
	block    chan struct{} // если не nil, вычисление ждёт сигнала
	err      error
}

func (s *countingService) TopRaiders(context.Context) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	s.raids++
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.board, nil
}

func (s *countingService) TopDefenders(context.Context) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defenses++
	return s.board, nil
}

func (s *countingService) raidCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raids
}

// localBus доставляет Publish подписчикам синхронно, как одиночный
// инстанс без NATS.
type localBus struct {
	mu          sync.Mutex
	subscribers []func()
	publishErr  error
	published   int
}

func (b *localBus) Publish() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published++
	for _, fn := range b.subscribers {
		fn()
	}
	return nil
}

func (b *localBus) Subscribe(fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
	return nil
}

func board(playerID int) []models.LeaderboardEntry {
	return []models.LeaderboardEntry{{PlayerID: playerID, Name: "Cached", TotalPoints: 10, MatchesPlayed: 1}}
}

func TestLeaderboards_SecondReadIsServedFromCache(t *testing.T) {
	inner := &countingService{board: board(1)}
	cached, err := cache.NewLeaderboards(inner, nil, testLogger)
	require.NoError(t, err)

	first, err := cached.TopRaiders(context.Background())
	require.NoError(t, err)
	second, err := cached.TopRaiders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.raidCalls())
}

func TestLeaderboards_CategoriesCachedIndependently(t *testing.T) {
	inner := &countingService{board: board(1)}
	cached, err := cache.NewLeaderboards(inner, nil, testLogger)
	require.NoError(t, err)

	_, err = cached.TopRaiders(context.Background())
	require.NoError(t, err)
	_, err = cached.TopDefenders(context.Background())
	require.NoError(t, err)
	_, err = cached.TopDefenders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.raids)
	assert.Equal(t, 1, inner.defenses)
}

func TestLeaderboards_InvalidateDropsBothBoards(t *testing.T) {
	inner := &countingService{board: board(1)}
	cached, err := cache.NewLeaderboards(inner, nil, testLogger)
	require.NoError(t, err)

	_, err = cached.TopRaiders(context.Background())
	require.NoError(t, err)
	_, err = cached.TopDefenders(context.Background())
	require.NoError(t, err)

	cached.Invalidate()

	_, err = cached.TopRaiders(context.Background())
	require.NoError(t, err)
	_, err = cached.TopDefenders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.raids)
	assert.Equal(t, 2, inner.defenses)
}

func TestLeaderboards_ErrorsAreNotCached(t *testing.T) {
	inner := &countingService{err: errors.New("db down")}
	cached, err := cache.NewLeaderboards(inner, nil, testLogger)
	require.NoError(t, err)

	_, err = cached.TopRaiders(context.Background())
	require.Error(t, err)

	inner.mu.Lock()
	inner.err = nil
	inner.board = board(2)
	inner.mu.Unlock()

	entries, err := cached.TopRaiders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, board(2), entries)
	assert.Equal(t, 2, inner.raidCalls())
}

func TestLeaderboards_ConcurrentMissesComputeOnce(t *testing.T) {
	inner := &countingService{board: board(1), block: make(chan struct{})}
	cached, err := cache.NewLeaderboards(inner, nil, testLogger)
	require.NoError(t, err)

	const readers = 10
	var (
		wg       sync.WaitGroup
		started  sync.WaitGroup
		failures atomic.Int32
	)
	started.Add(readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			if _, err := cached.TopRaiders(context.Background()); err != nil {
				failures.Add(1)
			}
		}()
	}
	started.Wait()
	// Даём читателям дойти до вычисления, прежде чем отпустить его.
	time.Sleep(50 * time.Millisecond)
	close(inner.block)
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Equal(t, 1, inner.raidCalls(), "concurrent misses collapse into one pass")
}

func TestLeaderboards_InvalidatePublishesToBus(t *testing.T) {
	inner := &countingService{board: board(1)}
	bus := &localBus{}
	cached, err := cache.NewLeaderboards(inner, bus, testLogger)
	require.NoError(t, err)

	_, err = cached.TopRaiders(context.Background())
	require.NoError(t, err)

	// Сброс приходит через собственную подписку на шину.
	cached.Invalidate()
	assert.Equal(t, 1, bus.published)

	_, err = cached.TopRaiders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.raidCalls())
}

func TestLeaderboards_PublishFailureFallsBackToLocalDrop(t *testing.T) {
	inner := &countingService{board: board(1)}
	bus := &localBus{publishErr: errors.New("nats unavailable")}
	cached, err := cache.NewLeaderboards(inner, bus, testLogger)
	require.NoError(t, err)

	_, err = cached.TopRaiders(context.Background())
	require.NoError(t, err)

	cached.Invalidate()

	_, err = cached.TopRaiders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.raidCalls(), "cache dropped locally despite publish failure")
}

func TestLeaderboards_BusInvalidationFromAnotherInstance(t *testing.T) {
	inner := &countingService{board: board(1)}
	bus := &localBus{}
	cached, err := cache.NewLeaderboards(inner, bus, testLogger)
	require.NoError(t, err)

	_, err = cached.TopRaiders(context.Background())
	require.NoError(t, err)

	// Чужой инстанс публикует сброс в ту же тему.
	require.NoError(t, bus.Publish())

	_, err = cached.TopRaiders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.raidCalls())
}
