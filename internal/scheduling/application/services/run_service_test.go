package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunRepository struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*domain.Run
}

func newFakeRunRepository() *fakeRunRepository {
	return &fakeRunRepository{runs: make(map[uuid.UUID]*domain.Run)}
}

func (f *fakeRunRepository) Save(ctx context.Context, run *domain.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[run.ID()] = run
	return nil
}

func (f *fakeRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (f *fakeRunRepository) FindByInputsDigest(ctx context.Context, userID uuid.UUID, digest string) (*domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, run := range f.runs {
		if run.UserID() == userID && run.InputsDigest() == digest && run.Status() == domain.StatusCompleted {
			return run, nil
		}
	}
	return nil, domain.ErrRunNotFound
}

func (f *fakeRunRepository) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Run
	for _, run := range f.runs {
		if run.UserID() == userID {
			out = append(out, run)
		}
	}
	return out, nil
}

// spyingPlanCache counts solver-independent cache hits so tests can
// assert that a hit never reaches the solver.
type spyingPlanCache struct {
	mu      sync.Mutex
	stored  map[string]*domain.Plan
	getHits int
}

func newSpyingPlanCache() *spyingPlanCache {
	return &spyingPlanCache{stored: make(map[string]*domain.Plan)}
}

func (c *spyingPlanCache) Get(ctx context.Context, digest string) (*domain.Plan, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	plan, ok := c.stored[digest]
	if ok {
		c.getHits++
	}
	return plan, ok, nil
}

func (c *spyingPlanCache) Set(ctx context.Context, digest string, plan *domain.Plan, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored[digest] = plan
	return nil
}

type recordingPublisher struct {
	mu          sync.Mutex
	routingKeys []string
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routingKeys = append(p.routingKeys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newTestRunService(repo domain.RunRepository, cache domain.PlanCache, pub *recordingPublisher) *RunService {
	return NewRunService(repo, cache, pub, DefaultBreakerSettings())
}

func TestRunService_CacheHitSkipsSolver(t *testing.T) {
	team, _ := domain.NewTeam("team", 3)
	a := mustTask(t, "a", 3, 2, nil)
	start := date(2025, 1, 1)
	config := domain.DefaultSchedulerConfig()

	cached, err := Schedule(context.Background(), []*domain.Task{a}, team, start, config)
	require.NoError(t, err)

	digest := InputsDigest([]*domain.Task{a}, team, start, config)
	cache := newSpyingPlanCache()
	cache.stored[digest] = cached

	repo := newFakeRunRepository()
	pub := &recordingPublisher{}
	svc := newTestRunService(repo, cache, pub)

	plan, err := svc.Schedule(context.Background(), uuid.New(), []*domain.Task{a}, team, start, config)
	require.NoError(t, err)
	assert.Equal(t, cached.ObjectiveValue, plan.ObjectiveValue)
	assert.Equal(t, 1, cache.getHits)

	var sawCompleted bool
	for _, key := range pub.routingKeys {
		if key == domain.RoutingKeyRunCompleted {
			sawCompleted = true
		}
	}
	assert.True(t, sawCompleted, "a cache hit still records a completed run")
}

func TestRunService_InfeasibleRunPersistsAndPublishes(t *testing.T) {
	team, _ := domain.NewTeam("team", 1)
	a := mustTask(t, "a", 5, 1, nil)
	start := date(2025, 1, 1)
	config := domain.DefaultSchedulerConfig()
	config.MaxDays = 3

	repo := newFakeRunRepository()
	cache := newSpyingPlanCache()
	pub := &recordingPublisher{}
	svc := newTestRunService(repo, cache, pub)

	userID := uuid.New()
	_, err := svc.Schedule(context.Background(), userID, []*domain.Task{a}, team, start, config)
	require.ErrorIs(t, err, domain.ErrInfeasible)

	runs, err := repo.ListByUser(context.Background(), userID, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.StatusInfeasible, runs[0].Status())

	var sawFailed, sawCompleted bool
	for _, key := range pub.routingKeys {
		switch key {
		case domain.RoutingKeyRunFailed:
			sawFailed = true
		case domain.RoutingKeyRunCompleted:
			sawCompleted = true
		}
	}
	assert.True(t, sawFailed, "infeasible run publishes RunFailed")
	assert.False(t, sawCompleted, "infeasible run never publishes RunCompleted")
}

func TestRunService_HistoryReturnsPastRuns(t *testing.T) {
	repo := newFakeRunRepository()
	cache := newSpyingPlanCache()
	pub := &recordingPublisher{}
	svc := newTestRunService(repo, cache, pub)

	userID := uuid.New()
	team, _ := domain.NewTeam("team", 2)
	a := mustTask(t, "a", 2, 1, nil)
	_, err := svc.Schedule(context.Background(), userID, []*domain.Task{a}, team, date(2025, 1, 1), domain.DefaultSchedulerConfig())
	require.NoError(t, err)

	history, err := svc.History(context.Background(), userID, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusCompleted, history[0].Status())
}

func TestDefaultBreakerSettings_TripsAfterConsecutiveFailures(t *testing.T) {
	settings := DefaultBreakerSettings()
	assert.False(t, settings.ReadyToTrip(gobreaker.Counts{ConsecutiveFailures: 4}))
	assert.True(t, settings.ReadyToTrip(gobreaker.Counts{ConsecutiveFailures: 5}))
}
