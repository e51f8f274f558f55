package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
	"github.com/felixgeelhaar/pacer/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/pacer/pkg/observability"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// PlanCacheTTL is how long a materialized plan survives in the cache
// before an identical request re-invokes the solver.
const PlanCacheTTL = 24 * time.Hour

// RunService orchestrates one scheduling request end to end: cache
// lookup, solver invocation behind a circuit breaker, persistence of the
// resulting Run, and publication of its lifecycle events. It holds no
// per-request state, so a single instance is safe for concurrent use.
type RunService struct {
	runs     domain.RunRepository
	cache    domain.PlanCache
	breaker  *gobreaker.CircuitBreaker[*domain.Plan]
	eventbus eventbus.Publisher
	metrics  observability.Metrics
}

// NewRunService wires a RunService. breakerSettings configures the
// circuit breaker guarding the solver; callers typically share one
// gobreaker.Settings across the process, the same way the engine runtime
// scopes a breaker per dependency. Metrics defaults to a no-op recorder
// when the process has no metrics backend configured.
func NewRunService(runs domain.RunRepository, cache domain.PlanCache, publisher eventbus.Publisher, breakerSettings gobreaker.Settings, metrics ...observability.Metrics) *RunService {
	m := observability.Metrics(observability.NoopMetrics{})
	if len(metrics) > 0 && metrics[0] != nil {
		m = metrics[0]
	}
	return &RunService{
		runs:     runs,
		cache:    cache,
		breaker:  gobreaker.NewCircuitBreaker[*domain.Plan](breakerSettings),
		eventbus: publisher,
		metrics:  m,
	}
}

// DefaultBreakerSettings returns the solver breaker's documented
// defaults: trip after 5 consecutive failures, half-open after 30s.
func DefaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "scheduler.solve",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// Schedule computes a Plan for the given inputs, short-circuiting
// through the plan cache when an identical request has already been
// solved, and otherwise invoking the solver behind a circuit breaker.
// Every invocation records a Run and publishes its lifecycle event
// (RunStarted, then RunCompleted or RunFailed), regardless of whether
// the plan came from cache or from a fresh solve.
func (s *RunService) Schedule(ctx context.Context, userID uuid.UUID, tasks []*domain.Task, team *domain.Team, startDate time.Time, config domain.SchedulerConfig) (*domain.Plan, error) {
	digest := InputsDigest(tasks, team, startDate, config)

	if plan, hit, err := s.cache.Get(ctx, digest); err == nil && hit {
		run := domain.NewRun(userID, digest, len(tasks))
		run.Complete(plan.ObjectiveValue, plan.Makespan())
		if err := s.runs.Save(ctx, run); err != nil {
			return nil, fmt.Errorf("persist cached run: %w", err)
		}
		s.publishAll(ctx, run)
		s.metrics.Counter(observability.MetricRunsCacheHit, 1)
		s.metrics.Counter(observability.MetricRunsCompleted, 1)
		return plan, nil
	}

	run := domain.NewRun(userID, digest, len(tasks))
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("persist pending run: %w", err)
	}
	s.publishAll(ctx, run)

	solveStarted := time.Now()
	plan, err := observability.TimeOperationResult(ctx, nil, s.metrics, "scheduler.solve", func() (*domain.Plan, error) {
		return s.breaker.Execute(func() (*domain.Plan, error) {
			return Schedule(ctx, tasks, team, startDate, config)
		})
	})
	s.metrics.Timing(observability.MetricSolveDuration, time.Since(solveStarted))

	switch {
	case err == nil:
		run.Complete(plan.ObjectiveValue, plan.Makespan())
		if saveErr := s.runs.Save(ctx, run); saveErr != nil {
			return nil, fmt.Errorf("persist completed run: %w", saveErr)
		}
		s.publishAll(ctx, run)
		s.metrics.Counter(observability.MetricRunsCompleted, 1)
		if cacheErr := s.cache.Set(ctx, digest, plan, PlanCacheTTL); cacheErr != nil {
			return plan, fmt.Errorf("cache plan: %w", cacheErr)
		}
		return plan, nil

	case errors.Is(err, domain.ErrInfeasible):
		run.MarkInfeasible()
		if saveErr := s.runs.Save(ctx, run); saveErr != nil {
			return nil, fmt.Errorf("persist infeasible run: %w", saveErr)
		}
		s.publishAll(ctx, run)
		s.metrics.Counter(observability.MetricRunsInfeasible, 1)
		return nil, err

	default:
		run.Fail(err.Error())
		if saveErr := s.runs.Save(ctx, run); saveErr != nil {
			return nil, fmt.Errorf("persist failed run: %w", saveErr)
		}
		s.publishAll(ctx, run)
		s.metrics.Counter(observability.MetricRunsFailed, 1)
		return nil, err
	}
}

// History returns a user's past runs, most recent first.
func (s *RunService) History(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*domain.Run, error) {
	return s.runs.ListByUser(ctx, userID, since, limit)
}

// publishAll drains and publishes the domain events a Run has
// accumulated. A publish failure is logged by the caller's event
// machinery, not surfaced here — losing a notification must never
// invalidate an otherwise-successful scheduling run.
func (s *RunService) publishAll(ctx context.Context, run *domain.Run) {
	if s.eventbus == nil {
		run.ClearDomainEvents()
		return
	}
	for _, evt := range run.DomainEvents() {
		payload, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		routingKey := routingKeyFor(evt)
		if pubErr := s.eventbus.Publish(ctx, routingKey, payload); pubErr == nil {
			s.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", routingKey))
		}
	}
	run.ClearDomainEvents()
}

func routingKeyFor(evt any) string {
	switch evt.(type) {
	case domain.RunStarted:
		return domain.RoutingKeyRunStarted
	case domain.RunCompleted:
		return domain.RoutingKeyRunCompleted
	case domain.RunFailed:
		return domain.RoutingKeyRunFailed
	default:
		return "scheduling.run.unknown"
	}
}

// InputsDigest deterministically hashes the inputs that affect a
// scheduling outcome (the task graph, team size, start date, and cost
// configuration) so identical requests produce identical cache keys.
// Auxiliary task fields that never influence the solver (description,
// references, point of contact) are deliberately excluded.
func InputsDigest(tasks []*domain.Task, team *domain.Team, startDate time.Time, config domain.SchedulerConfig) string {
	h := sha256.New()
	for _, t := range tasks {
		fmt.Fprintf(h, "task:%s|%d|%d|deps:", t.Name(), t.Effort(), t.ParallelizationFactor())
		for _, dep := range t.Dependencies() {
			fmt.Fprintf(h, "%s,", dep.Name())
		}
		h.Write([]byte("\n"))
	}
	if team != nil {
		fmt.Fprintf(h, "team:%d\n", team.Size())
	}
	fmt.Fprintf(h, "start:%s\n", startDate.UTC().Format(time.RFC3339))
	fmt.Fprintf(h, "cfg:%d|%d|%d|%d\n", config.MaxDays, config.CostOfTime, config.CostOfContext, config.CostOfProcrastination)
	return hex.EncodeToString(h.Sum(nil))
}
