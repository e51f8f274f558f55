// Package schedule implements the "pacer schedule" command: load a task
// graph, resolve it against a team and calendar, and print the
// resulting day-by-day assignment plan.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/pacer/internal/app"
	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
	"github.com/felixgeelhaar/pacer/internal/scheduling/infrastructure/graphdoc"
	"github.com/felixgeelhaar/pacer/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Options holds the parsed flags for a schedule invocation.
type Options struct {
	GraphPath             string
	RemoteURL             string
	TeamSize              int
	TeamName              string
	StartDate             string
	MaxDays               int
	CostOfTime            int
	CostOfContext         int
	CostOfProcrastination int
	EngineID              string
	JSON                  bool
}

// NewCommand builds the "schedule" cobra command, wired against the
// given container for persistence, caching, and the workday engine
// registry.
func NewCommand(getContainer func() (*app.Container, error)) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "schedule [graph.json]",
		Short: "Solve a task graph into a day-by-day engineer assignment plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.GraphPath = args[0]
			}
			container, err := getContainer()
			if err != nil {
				return fmt.Errorf("initialize container: %w", err)
			}
			defer container.Close()
			return run(cmd, container, opts)
		},
	}

	cmd.Flags().StringVar(&opts.RemoteURL, "remote", "", "fetch the task graph from the remote authoring service instead of a local file")
	cmd.Flags().IntVar(&opts.TeamSize, "team-size", 1, "number of engineers available each working day")
	cmd.Flags().StringVar(&opts.TeamName, "team-name", "default", "descriptive team label")
	cmd.Flags().StringVar(&opts.StartDate, "start", time.Now().Format("2006-01-02"), "project start date, YYYY-MM-DD")
	cmd.Flags().IntVar(&opts.MaxDays, "max-days", 0, "horizon in working days (0 uses the configured default)")
	cmd.Flags().IntVar(&opts.CostOfTime, "cost-time", 0, "makespan weight (0 uses the configured default)")
	cmd.Flags().IntVar(&opts.CostOfContext, "cost-context", 0, "context-switching weight (0 uses the configured default)")
	cmd.Flags().IntVar(&opts.CostOfProcrastination, "cost-procrastination", 0, "earliness-pressure weight (0 uses the configured default)")
	cmd.Flags().StringVar(&opts.EngineID, "workday-engine", "", "registered workday provider engine ID (defaults to Monday-Friday)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the plan as JSON instead of a table")

	return cmd
}

func run(cmd *cobra.Command, container *app.Container, opts *Options) error {
	ctx := cmd.Context()

	tasks, err := loadTasks(ctx, container, opts)
	if err != nil {
		return err
	}
	if err := domain.ValidateAcyclic(tasks); err != nil {
		return err
	}

	team, err := domain.NewTeam(opts.TeamName, opts.TeamSize)
	if err != nil {
		return err
	}

	startDate, err := time.Parse("2006-01-02", opts.StartDate)
	if err != nil {
		return fmt.Errorf("parse --start: %w", err)
	}

	config := domain.DefaultSchedulerConfig()
	if opts.MaxDays > 0 {
		config.MaxDays = opts.MaxDays
	}
	if opts.CostOfTime > 0 {
		config.CostOfTime = opts.CostOfTime
	}
	if opts.CostOfContext > 0 {
		config.CostOfContext = opts.CostOfContext
	}
	if opts.CostOfProcrastination > 0 {
		config.CostOfProcrastination = opts.CostOfProcrastination
	}
	config.WorkdayFilter = container.WorkdayPredicate(ctx, opts.EngineID)

	userID, err := uuid.Parse(container.Config.UserID)
	if err != nil {
		userID = uuid.New()
	}
	ctx = observability.WithUserID(ctx, userID.String())

	plan, err := container.RunService.Schedule(ctx, userID, tasks, team, startDate, config)
	if err != nil {
		return err
	}

	return printPlan(cmd.OutOrStdout(), plan, opts.JSON)
}

func loadTasks(ctx context.Context, container *app.Container, opts *Options) ([]*domain.Task, error) {
	if opts.RemoteURL != "" {
		if container.GraphClient == nil {
			return nil, fmt.Errorf("--remote requires GRAPH_OAUTH_TOKEN_URL to be configured")
		}
		data, err := container.GraphClient.FetchGraph(ctx, opts.RemoteURL)
		if err != nil {
			return nil, fmt.Errorf("fetch remote graph: %w", err)
		}
		return graphdoc.Decode(data)
	}
	if opts.GraphPath == "" {
		return nil, fmt.Errorf("provide a graph file path or --remote")
	}
	return graphdoc.Load(opts.GraphPath)
}

func printPlan(w io.Writer, plan *domain.Plan, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(planToJSON(plan))
	}

	fmt.Fprintf(w, "Objective value: %d\n", plan.ObjectiveValue)
	fmt.Fprintf(w, "Makespan (working days): %d\n\n", plan.Makespan())
	for _, st := range plan.ScheduledTasks {
		fmt.Fprintf(w, "%s: %s -> %s (%d engineer-days)\n",
			st.Task.Name(),
			st.StartDate.Format("2006-01-02"),
			st.EndDate.Format("2006-01-02"),
			st.TotalEffort(),
		)
	}
	return nil
}

type planJSON struct {
	ObjectiveValue int            `json:"objective_value"`
	Makespan       int            `json:"makespan"`
	Tasks          []taskPlanJSON `json:"tasks"`
}

type taskPlanJSON struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Effort    int    `json:"total_effort"`
}

func planToJSON(plan *domain.Plan) planJSON {
	out := planJSON{ObjectiveValue: plan.ObjectiveValue, Makespan: plan.Makespan()}
	for _, st := range plan.ScheduledTasks {
		out.Tasks = append(out.Tasks, taskPlanJSON{
			Name:      st.Task.Name(),
			StartDate: st.StartDate.Format("2006-01-02"),
			EndDate:   st.EndDate.Format("2006-01-02"),
			Effort:    st.TotalEffort(),
		})
	}
	return out
}
