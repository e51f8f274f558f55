// Package cache memoizes solved plans in Redis, keyed by a digest of the
// scheduling inputs, so re-running an unchanged task graph never touches
// the solver.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pacer:plan:"

// RedisPlanCache implements domain.PlanCache on top of go-redis.
type RedisPlanCache struct {
	client *redis.Client
}

// NewRedisPlanCache creates a RedisPlanCache bound to an existing client.
func NewRedisPlanCache(client *redis.Client) *RedisPlanCache {
	return &RedisPlanCache{client: client}
}

// planRecord is the cache's own serializable mirror of domain.Plan. It
// does not round-trip a domain.Plan's *Task pointers — a cached plan is
// for display and idempotency checks only, never fed back into the
// solver, so it carries just enough task identity to render a response.
type planRecord struct {
	StartDate      time.Time           `json:"start_date"`
	ObjectiveValue int                 `json:"objective_value"`
	DaysToDate     map[int]time.Time   `json:"days_to_date"`
	ScheduledTasks []scheduledTaskRecord `json:"scheduled_tasks"`
}

type scheduledTaskRecord struct {
	TaskName                string         `json:"task_name"`
	Effort                  int            `json:"effort"`
	ParallelizationFactor   int            `json:"parallelization_factor"`
	DailyEngineerAllocation map[int]int    `json:"daily_engineer_allocation"`
	StartDay                int            `json:"start_day"`
	EndDay                  int            `json:"end_day"`
	StartDate               time.Time      `json:"start_date"`
	EndDate                 time.Time      `json:"end_date"`
}

// Get returns the cached plan for a digest, if present.
func (c *RedisPlanCache) Get(ctx context.Context, digest string) (*domain.Plan, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+digest).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("plan cache get: %w", err)
	}

	var rec planRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("plan cache decode: %w", err)
	}

	plan := &domain.Plan{
		StartDate:      rec.StartDate,
		ObjectiveValue: rec.ObjectiveValue,
		DaysToDate:     rec.DaysToDate,
	}
	for _, str := range rec.ScheduledTasks {
		task, err := domain.NewTask(str.TaskName, "", nil, "", str.Effort, str.ParallelizationFactor, nil)
		if err != nil {
			return nil, false, fmt.Errorf("plan cache rebuild task %q: %w", str.TaskName, err)
		}
		st := domain.NewScheduledTask(task, str.DailyEngineerAllocation)
		st.StartDate = str.StartDate
		st.EndDate = str.EndDate
		plan.ScheduledTasks = append(plan.ScheduledTasks, st)
	}

	return plan, true, nil
}

// Set stores a plan under digest with the given expiry.
func (c *RedisPlanCache) Set(ctx context.Context, digest string, plan *domain.Plan, ttl time.Duration) error {
	rec := planRecord{
		StartDate:      plan.StartDate,
		ObjectiveValue: plan.ObjectiveValue,
		DaysToDate:     plan.DaysToDate,
	}
	for _, st := range plan.ScheduledTasks {
		rec.ScheduledTasks = append(rec.ScheduledTasks, scheduledTaskRecord{
			TaskName:                st.Task.Name(),
			Effort:                  st.Task.Effort(),
			ParallelizationFactor:   st.Task.ParallelizationFactor(),
			DailyEngineerAllocation: st.DailyEngineerAllocation,
			StartDay:                st.StartDay,
			EndDay:                  st.EndDay,
			StartDate:               st.StartDate,
			EndDate:                 st.EndDate,
		})
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("plan cache encode: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+digest, raw, ttl).Err(); err != nil {
		return fmt.Errorf("plan cache set: %w", err)
	}
	return nil
}
