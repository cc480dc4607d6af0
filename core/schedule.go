package core

import (
	"context"
	"fmt"
)

// CalculateSprintDates assigns planned start/due dates to every task of
// the sprint. Tasks are grouped by specialist; each group is scheduled
// sequentially from the sprint start against that specialist's working
// calendar, groups run in parallel lanes (independent cursors).
func (s *Service) CalculateSprintDates(ctx context.Context, sprintID int64) ([]Task, error) {
	if sprintID <= 0 {
		return nil, fmt.Errorf("%w: sprint id", ErrInvalidInput)
	}

	var out []Task
	err := s.store.Tx(ctx, func(q Queries) error {
		sprint, err := q.GetSprint(ctx, sprintID)
		if err != nil {
			return err
		}
		if sprint.Archived {
			return fmt.Errorf("%w: sprint %d is archived", ErrInvalidInput, sprintID)
		}

		key := ListKey{SprintID: sprintID}
		if err := q.LockList(ctx, key); err != nil {
			return err
		}
		tasks, err := q.ListTasksInList(ctx, key)
		if err != nil {
			return err
		}

		groups := groupBySpecialist(tasks)
		for _, name := range sortedSpecialists(groups) {
			cfg, err := s.loadSpecialistConfig(ctx, q, &name)
			if err != nil {
				return err
			}

			cursor := DateOf(sprint.StartDate)
			for _, t := range groups[name] {
				effort := 0.0
				if t.EstimatedHours != nil {
					effort = *t.EstimatedHours
				}

				start := cursor
				due := cursor
				if effort > 0 {
					effective := effort * (1 + cfg.BufferPct/100)
					due = s.EndOf(start, effective, cfg)
					cursor = s.NextWorkDay(due, cfg)
				}

				t.StartDate = &start
				t.DueDate = &due
				if err := q.UpdateTask(ctx, t); err != nil {
					return err
				}
				out = append(out, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// groupBySpecialist buckets tasks preserving their list order; tasks with
// no specialist land in the Unassigned lane.
func groupBySpecialist(tasks []Task) map[string][]Task {
	groups := make(map[string][]Task)
	for _, t := range tasks {
		name := UnassignedSpecialist
		if sp := NormalizeSpecialist(t.Specialist); sp != nil {
			name = *sp
		}
		groups[name] = append(groups[name], t)
	}
	return groups
}

type SprintCalcResult struct {
	SprintID int64  `json:"sprint_id"`
	Updated  int    `json:"updated"`
	Error    string `json:"error,omitempty"`
}

// BatchCalculateDates runs the date calculation over several sprints.
// A failing sprint is reported in its slot and does not abort the rest.
func (s *Service) BatchCalculateDates(ctx context.Context, sprintIDs []int64) ([]SprintCalcResult, error) {
	if len(sprintIDs) == 0 {
		return nil, fmt.Errorf("%w: no sprint ids", ErrInvalidInput)
	}

	out := make([]SprintCalcResult, 0, len(sprintIDs))
	for _, id := range sprintIDs {
		res := SprintCalcResult{SprintID: id}
		updated, err := s.CalculateSprintDates(ctx, id)
		if err != nil {
			s.log.Warn("batch date calculation failed for sprint", "sprint", id, "error", err)
			res.Error = err.Error()
		} else {
			res.Updated = len(updated)
		}
		out = append(out, res)
	}
	return out, nil
}
