package core

import (
	"context"
	"fmt"
	"sort"
)

// positions are int4 in storage; open-ended shifts use the column max
const maxListPosition = 1<<31 - 1

// MoveTask drops a task on a column at an explicit position. Sibling
// positions shift by one, the status follows the destination column's
// canonical mapping, and the observable timestamps are derived from the
// transition. Everything happens in one transaction under list locks.
func (s *Service) MoveTask(ctx context.Context, taskID, columnID int64, position int) (Task, error) {
	if taskID <= 0 || columnID <= 0 {
		return Task{}, fmt.Errorf("%w: task/column id", ErrInvalidInput)
	}

	var out Task
	err := s.store.Tx(ctx, func(q Queries) error {
		t, err := q.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		moved, err := s.moveLocked(ctx, q, t, columnID, &position)
		if err != nil {
			return err
		}
		out = moved
		return nil
	})
	return out, err
}

// moveLocked runs the column-move protocol inside the caller's
// transaction. position == nil appends to the destination list.
func (s *Service) moveLocked(ctx context.Context, q Queries, t Task, columnID int64, position *int) (Task, error) {
	dstCol, err := q.GetColumn(ctx, columnID)
	if err != nil {
		return Task{}, err
	}
	srcCol, err := q.GetColumn(ctx, t.ColumnID)
	if err != nil {
		return Task{}, err
	}

	moved := t
	moved.ColumnID = dstCol.ID
	srcKey, dstKey := ListOf(t), ListOf(moved)

	if err := lockLists(ctx, q, srcKey, dstKey); err != nil {
		return Task{}, err
	}

	newPos := 0
	if position != nil {
		newPos = *position
	} else {
		newPos = PositionStep
		if max, ok, err := q.MaxPosition(ctx, dstKey); err != nil {
			return Task{}, err
		} else if ok {
			newPos = max + PositionStep
		}
	}

	if err := s.applyColumnTransition(&moved, srcCol, dstCol); err != nil {
		return Task{}, err
	}

	oldPos := t.Position
	switch {
	case srcKey == dstKey && newPos == oldPos:
		// no reorder
	case srcKey == dstKey && newPos > oldPos:
		if err := q.ShiftPositions(ctx, srcKey, oldPos+1, newPos, -1); err != nil {
			return Task{}, err
		}
	case srcKey == dstKey:
		if err := q.ShiftPositions(ctx, srcKey, newPos, oldPos-1, +1); err != nil {
			return Task{}, err
		}
	default:
		if err := q.ShiftPositions(ctx, srcKey, oldPos+1, maxListPosition, -1); err != nil {
			return Task{}, err
		}
		if err := q.ShiftPositions(ctx, dstKey, newPos, maxListPosition, +1); err != nil {
			return Task{}, err
		}
	}

	moved.Position = newPos
	if err := q.UpdateTask(ctx, moved); err != nil {
		return Task{}, err
	}

	rebalanced, err := settleLists(ctx, q, srcKey, dstKey)
	if err != nil {
		return Task{}, err
	}
	if rebalanced {
		return q.GetTask(ctx, moved.ID)
	}
	return moved, nil
}

// applyColumnTransition validates the status edge and derives
// actually_started_at / completed_at from the column change.
func (s *Service) applyColumnTransition(t *Task, srcCol, dstCol Column) error {
	srcStatus, srcOK := MapColumnName(srcCol.Name)
	dstStatus, dstOK := MapColumnName(dstCol.Name)

	if !dstOK {
		s.log.Warn("column has no canonical status", "column", dstCol.Name, "task", t.ID)
		if t.Status == StatusDone {
			t.Status = StatusTODO
		}
		return nil
	}

	if !CanTransition(t.Status, dstStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, dstStatus)
	}

	now := s.clock.Now()
	startedJump := srcOK && srcStatus == StatusTODO &&
		(dstStatus == StatusReview || dstStatus == StatusDone)
	if t.ActuallyStartedAt == nil && (dstStatus == StatusInProgress || startedJump) {
		t.ActuallyStartedAt = &now
	}
	// completed_at is observed once and survives later moves out of Done
	if dstStatus == StatusDone && t.CompletedAt == nil {
		t.CompletedAt = &now
	}

	t.Status = dstStatus
	return nil
}

// AssignToSprint detaches a task from its current list and inserts it into
// the sprint's list (or back into its backlog column when sprintID is
// nil). Binding to a sprint copies the sprint window onto the task.
func (s *Service) AssignToSprint(ctx context.Context, taskID int64, sprintID *int64, position int) (Task, error) {
	if taskID <= 0 {
		return Task{}, fmt.Errorf("%w: task id", ErrInvalidInput)
	}
	if sprintID != nil && *sprintID <= 0 {
		return Task{}, fmt.Errorf("%w: sprint id", ErrInvalidInput)
	}

	var out Task
	err := s.store.Tx(ctx, func(q Queries) error {
		t, err := q.GetTask(ctx, taskID)
		if err != nil {
			return err
		}

		var sprint Sprint
		if sprintID != nil {
			sprint, err = q.GetSprint(ctx, *sprintID)
			if err != nil {
				return err
			}
		}

		moved := t
		moved.SprintID = sprintID
		srcKey, dstKey := ListOf(t), ListOf(moved)

		if err := lockLists(ctx, q, srcKey, dstKey); err != nil {
			return err
		}

		oldPos := t.Position
		switch {
		case srcKey == dstKey && position == oldPos:
			// no reorder
		case srcKey == dstKey && position > oldPos:
			if err := q.ShiftPositions(ctx, srcKey, oldPos+1, position, -1); err != nil {
				return err
			}
		case srcKey == dstKey:
			if err := q.ShiftPositions(ctx, srcKey, position, oldPos-1, +1); err != nil {
				return err
			}
		default:
			if err := q.ShiftPositions(ctx, srcKey, oldPos+1, maxListPosition, -1); err != nil {
				return err
			}
			if err := q.ShiftPositions(ctx, dstKey, position, maxListPosition, +1); err != nil {
				return err
			}
		}

		moved.Position = position
		if sprintID != nil {
			start, end := DateOf(sprint.StartDate), DateOf(sprint.EndDate)
			moved.StartDate = &start
			moved.DueDate = &end
		}
		if err := q.UpdateTask(ctx, moved); err != nil {
			return err
		}

		rebalanced, err := settleLists(ctx, q, srcKey, dstKey)
		if err != nil {
			return err
		}
		if rebalanced {
			moved, err = q.GetTask(ctx, moved.ID)
			if err != nil {
				return err
			}
		}
		out = moved
		return nil
	})
	return out, err
}

func lockLists(ctx context.Context, q Queries, keys ...ListKey) error {
	uniq := make([]ListKey, 0, len(keys))
	seen := make(map[ListKey]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			uniq = append(uniq, k)
		}
	}
	// deterministic lock order keeps concurrent cross-list moves from
	// deadlocking
	sort.Slice(uniq, func(i, j int) bool {
		a, b := uniq[i], uniq[j]
		if a.SprintID != b.SprintID {
			return a.SprintID < b.SprintID
		}
		if a.BacklogID != b.BacklogID {
			return a.BacklogID < b.BacklogID
		}
		return a.ColumnID < b.ColumnID
	})
	for _, k := range uniq {
		if err := q.LockList(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// settleLists verifies both touched lists after a shift. Broken ordering
// aborts the transaction; a too-tight but still ordered list triggers the
// dense rebalance.
func settleLists(ctx context.Context, q Queries, keys ...ListKey) (rebalanced bool, err error) {
	seen := make(map[ListKey]bool, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		tasks, err := q.ListTasksInList(ctx, key)
		if err != nil {
			return rebalanced, err
		}
		ps := positionsOf(tasks)
		if !listOrdered(ps) {
			return rebalanced, fmt.Errorf("%w: duplicate positions after shift", ErrConsistency)
		}
		if !ListConsistent(ps) {
			if err := rebalance(ctx, q, key); err != nil {
				return rebalanced, err
			}
			rebalanced = true
		}
	}
	return rebalanced, nil
}
