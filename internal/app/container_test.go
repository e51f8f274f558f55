package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
	"github.com/felixgeelhaar/pacer/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:                      "test",
		UserID:                      uuid.New().String(),
		LocalMode:                   true,
		DatabaseDriver:              "sqlite",
		SQLitePath:                  filepath.Join(t.TempDir(), "pacer-test.db"),
		PlanCacheTTL:                time.Minute,
		SolverMaxDays:               100,
		SolverCostOfTime:            100,
		SolverCostOfContext:         1,
		SolverCostOfProcrastination: 1,
	}
}

func TestNewLocalContainer_WiresRunService(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	container, err := NewLocalContainer(ctx, cfg, slog.Default())
	require.NoError(t, err)
	defer container.Close()

	require.NotNil(t, container.RunService)
	require.NotNil(t, container.RunRepository)
	require.NotNil(t, container.PlanCache)
	require.NotNil(t, container.EngineRegistry)
}

func TestNewLocalContainer_SchedulesAndRecordsHistory(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	container, err := NewLocalContainer(ctx, cfg, slog.Default())
	require.NoError(t, err)
	defer container.Close()

	taskA, err := domain.NewTask("design", "", nil, "", 2, 1, nil)
	require.NoError(t, err)
	taskB, err := domain.NewTask("build", "", nil, "", 3, 1, []*domain.Task{taskA})
	require.NoError(t, err)

	team, err := domain.NewTeam("core", 2)
	require.NoError(t, err)

	userID, err := uuid.Parse(cfg.UserID)
	require.NoError(t, err)

	plan, err := container.RunService.Schedule(ctx, userID, []*domain.Task{taskA, taskB}, team, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), domain.DefaultSchedulerConfig())
	require.NoError(t, err)
	require.NotNil(t, plan)

	runs, err := container.RunService.History(ctx, userID, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, domain.StatusCompleted, runs[0].Status())
}

func TestContainer_WorkdayPredicate_DefaultsToMondayFriday(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	container, err := NewLocalContainer(ctx, cfg, slog.Default())
	require.NoError(t, err)
	defer container.Close()

	predicate := container.WorkdayPredicate(ctx, "")
	ok, err := predicate(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)) // a Monday
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = predicate(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) // a Saturday
	require.NoError(t, err)
	require.False(t, ok)
}
