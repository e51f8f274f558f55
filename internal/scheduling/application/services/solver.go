package services

import (
	"context"

	domain "github.com/felixgeelhaar/pacer/internal/scheduling/domain"
)

// assignment is the solver's output for one task: a working-day index
// mapped to the number of engineers it consumes that day. Summing the
// values equals the task's effort.
type assignment map[int]int

// No off-the-shelf constraint-programming or ILP library appears anywhere
// in the available dependency surface, so search is hand-rolled: a
// depth-first branch-and-bound over, for each working day, how the team's
// remaining capacity is split across tasks whose precedence constraints
// are already satisfied. Branches are explored capacity-descending so a
// strong incumbent is found early, and a subtree is pruned the moment its
// admissible lower bound (committed makespan-so-far weighted by
// CostOfTime, plus committed procrastination and context, plus the most
// negative context the remaining tasks could still contribute) cannot
// beat the best complete assignment found so far. Tasks are branched in a fixed
// topological/identifier order, so the search is deterministic modulo
// objective ties.
type searchState struct {
	tasks    []*domain.Task
	capacity map[string]int
	team     *domain.Team
	config   domain.SchedulerConfig

	bestFound bool
	bestObj   int
	best      map[string]assignment
}

func (m *model) solve(ctx context.Context) (map[string]assignment, error) {
	s := &searchState{
		tasks:    m.order,
		capacity: m.capacity,
		team:     m.team,
		config:   m.config,
	}

	remaining := make(map[string]int, len(m.order))
	current := make(map[string]assignment, len(m.order))
	firstDay := make(map[string]int, len(m.order))
	lastDay := make(map[string]int, len(m.order))
	for _, t := range m.order {
		remaining[t.Name()] = t.Effort()
		current[t.Name()] = assignment{}
	}

	if err := s.search(ctx, 0, remaining, current, firstDay, lastDay, 0, 0, 0); err != nil {
		return nil, err
	}
	if !s.bestFound {
		return nil, domain.ErrInfeasible
	}
	return s.best, nil
}

// search explores day `day` onward. remaining is effort left per task;
// current is the partial allocation being built; firstDay/lastDay record
// the first and last day a task has been touched so far; committedMakespan
// is the latest day any task has consumed capacity on; committedProcrast
// is the exact procrastination-term contribution already locked in.
// committedContext is the context-term contribution of tasks that have
// already completed.
func (s *searchState) search(
	ctx context.Context,
	day int,
	remaining map[string]int,
	current map[string]assignment,
	firstDay, lastDay map[string]int,
	committedMakespan, committedProcrast, committedContext int,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := true
	for _, n := range remaining {
		if n > 0 {
			done = false
			break
		}
	}
	if done {
		obj := s.config.CostOfTime*committedMakespan + committedContext + committedProcrast
		if !s.bestFound || obj < s.bestObj {
			s.bestFound = true
			s.bestObj = obj
			s.best = cloneAssignments(current)
		}
		return nil
	}

	if day > s.config.MaxDays {
		return nil
	}

	lowerBound := s.config.CostOfTime*committedMakespan + committedProcrast + committedContext + s.minRemainingContext(remaining)
	if s.bestFound && lowerBound >= s.bestObj {
		return nil
	}

	ready := s.readyTasks(day, remaining, lastDay)
	if len(ready) == 0 {
		return s.search(ctx, day+1, remaining, current, firstDay, lastDay, committedMakespan, committedProcrast, committedContext)
	}

	caps := make([]int, len(ready))
	for i, t := range ready {
		taskCap := s.capacity[t.Name()]
		if remaining[t.Name()] < taskCap {
			taskCap = remaining[t.Name()]
		}
		caps[i] = taskCap
	}

	for _, alloc := range enumerateAllocations(caps, s.team.Size()) {
		if allZero(alloc) {
			continue
		}

		nextMakespan := committedMakespan
		nextProcrast := committedProcrast
		nextContext := committedContext

		for i, take := range alloc {
			if take == 0 {
				continue
			}
			name := ready[i].Name()

			if len(current[name]) == 0 {
				firstDay[name] = day
			}
			current[name][day] += take
			remaining[name] -= take
			lastDay[name] = day
			if day > nextMakespan {
				nextMakespan = day
			}
			nextProcrast += s.config.CostOfProcrastination * day * take

			if remaining[name] == 0 {
				span := lastDay[name] - firstDay[name]
				optimistic := ready[i].OptimisticDuration(s.team.Size())
				nextContext += s.config.CostOfContext * (span - optimistic)
			}
		}

		if err := s.search(ctx, day+1, remaining, current, firstDay, lastDay, nextMakespan, nextProcrast, nextContext); err != nil {
			return err
		}

		for i, take := range alloc {
			if take == 0 {
				continue
			}
			name := ready[i].Name()
			current[name][day] -= take
			if current[name][day] == 0 {
				delete(current[name], day)
			}
			remaining[name] += take
		}
	}

	return nil
}

// minRemainingContext bounds, from below, the total context-term
// contribution still to come from tasks that have not yet finished. A
// task's eventual term is CostOfContext*(span-optimistic), and span -
// the gap between its first and last active day - can be as low as 0
// regardless of how much effort remains, so the least any unfinished
// task can still add is -CostOfContext*optimistic. Summing that over
// every unfinished task keeps the overall bound admissible even though
// the per-task term can go negative.
func (s *searchState) minRemainingContext(remaining map[string]int) int {
	if s.config.CostOfContext <= 0 {
		return 0
	}
	bound := 0
	for _, t := range s.tasks {
		if remaining[t.Name()] > 0 {
			bound -= s.config.CostOfContext * t.OptimisticDuration(s.team.Size())
		}
	}
	return bound
}

// readyTasks returns, in fixed topological order, the tasks with
// remaining effort whose dependencies have all finished strictly before
// `day`.
func (s *searchState) readyTasks(day int, remaining map[string]int, lastDay map[string]int) []*domain.Task {
	var ready []*domain.Task
	for _, t := range s.tasks {
		if remaining[t.Name()] == 0 {
			continue
		}
		blocked := false
		for _, dep := range t.Dependencies() {
			if remaining[dep.Name()] != 0 || lastDay[dep.Name()]+1 > day {
				blocked = true
				break
			}
		}
		if !blocked {
			ready = append(ready, t)
		}
	}
	return ready
}

// enumerateAllocations generates every way to split up to `capLeft` units
// of team capacity across the given per-task caps, largest-first so
// capacity-filling candidates (the strongest incumbents) are tried first.
func enumerateAllocations(caps []int, capLeft int) [][]int {
	if len(caps) == 0 {
		return [][]int{{}}
	}
	maxFirst := caps[0]
	if capLeft < maxFirst {
		maxFirst = capLeft
	}
	var results [][]int
	for a := maxFirst; a >= 0; a-- {
		for _, sub := range enumerateAllocations(caps[1:], capLeft-a) {
			vec := make([]int, 0, len(sub)+1)
			vec = append(vec, a)
			vec = append(vec, sub...)
			results = append(results, vec)
		}
	}
	return results
}

func allZero(vec []int) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func cloneAssignments(src map[string]assignment) map[string]assignment {
	dst := make(map[string]assignment, len(src))
	for name, alloc := range src {
		clone := make(assignment, len(alloc))
		for day, count := range alloc {
			clone[day] = count
		}
		dst[name] = clone
	}
	return dst
}
