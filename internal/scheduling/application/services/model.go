// Package services implements the constraint model builder, solver
// driver, and plan materializer that together form the scheduling
// engine, plus the Run orchestration service that wraps it with
// caching, persistence, and eventing.
package services

import (
	"fmt"

	domain "github.com/felixgeelhaar/pacer/internal/scheduling/domain"
)

// model is the materialized constraint model for one scheduling call:
// the topologically ordered tasks and the per-task capacity caps the
// solver must respect. Chunk-level variables (one per
// engineer-day) are replaced here with the interval-level equivalent
// the specification explicitly permits — a per-task "how many engineers
// on day d" allocation — which yields identical per-day capacity
// reasoning with far fewer decision points.
type model struct {
	order    []*domain.Task
	capacity map[string]int // task name -> min(parallelization_factor, team.size)
	team     *domain.Team
	config   domain.SchedulerConfig
}

// buildModel validates the graph, orders tasks topologically so every
// task is visited after all of its dependencies, and precomputes each
// task's effective daily capacity cap.
func buildModel(tasks []*domain.Task, team *domain.Team, config domain.SchedulerConfig) (*model, error) {
	if err := domain.ValidateAcyclic(tasks); err != nil {
		return nil, err
	}

	order, err := topologicalOrder(tasks)
	if err != nil {
		return nil, err
	}

	capacity := make(map[string]int, len(tasks))
	for _, t := range tasks {
		capacity[t.Name()] = t.EffectiveCapacity(team.Size())
	}

	return &model{order: order, capacity: capacity, team: team, config: config}, nil
}

// topologicalOrder produces a dependency-respecting visitation order via
// depth-first postorder traversal. It tracks only a visited set and does
// no cycle detection of its own; buildModel runs domain.ValidateAcyclic
// first.
func topologicalOrder(tasks []*domain.Task) ([]*domain.Task, error) {
	visited := make(map[string]bool, len(tasks))
	order := make([]*domain.Task, 0, len(tasks))

	var visit func(t *domain.Task) error
	visit = func(t *domain.Task) error {
		if visited[t.Name()] {
			return nil
		}
		visited[t.Name()] = true
		for _, dep := range t.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		order = append(order, t)
		return nil
	}

	for _, t := range tasks {
		if err := visit(t); err != nil {
			return nil, fmt.Errorf("topological sort: %w", err)
		}
	}
	return order, nil
}
