package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

const taskColumns = `id, backlog_id, column_id, sprint_id, title, description,
	priority, estimated_hours, logged_hours, position, status,
	start_date, due_date, actually_started_at, completed_at,
	specialist, is_generic, is_unplanned, created_at, updated_at`

func (q queries) InsertTask(ctx context.Context, t *core.Task) error {
	const query = `
		INSERT INTO tasks(backlog_id, column_id, sprint_id, title, description,
			priority, estimated_hours, logged_hours, position, status,
			start_date, due_date, specialist, is_generic, is_unplanned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at;
	`
	err := q.ext.QueryRowxContext(ctx, query,
		t.BacklogID, t.ColumnID, t.SprintID, t.Title, t.Description,
		t.Priority, t.EstimatedHours, t.LoggedHours, t.Position, t.Status,
		t.StartDate, t.DueDate, t.Specialist, t.IsGeneric, t.IsUnplanned).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("task references: %w", core.ErrNotFound)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("task fields: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (q queries) GetTask(ctx context.Context, id int64) (core.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var t core.Task
	if err := sqlx.GetContext(ctx, q.ext, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Task{}, fmt.Errorf("task %d: %w", id, core.ErrNotFound)
		}
		return core.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (q queries) ListTasks(ctx context.Context, f core.TaskFilter) ([]core.Task, error) {
	var (
		sb   strings.Builder
		args []any
		n    = 1
	)
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`)

	if f.BacklogID != nil {
		args = append(args, *f.BacklogID)
		sb.WriteString(fmt.Sprintf(" AND backlog_id = $%d", n))
		n++
	}
	if f.SprintID != nil {
		args = append(args, *f.SprintID)
		sb.WriteString(fmt.Sprintf(" AND sprint_id = $%d", n))
		n++
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		sb.WriteString(fmt.Sprintf(" AND status = $%d", n))
		n++
	}
	sb.WriteString(" ORDER BY position ASC, id ASC")

	var out []core.Task
	if err := sqlx.SelectContext(ctx, q.ext, &out, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (q queries) UpdateTask(ctx context.Context, t core.Task) error {
	const query = `
		UPDATE tasks
		SET backlog_id = $2, column_id = $3, sprint_id = $4, title = $5,
		    description = $6, priority = $7, estimated_hours = $8,
		    logged_hours = $9, position = $10, status = $11,
		    start_date = $12, due_date = $13, actually_started_at = $14,
		    completed_at = $15, specialist = $16, is_generic = $17,
		    is_unplanned = $18, updated_at = now()
		WHERE id = $1;
	`
	res, err := q.ext.ExecContext(ctx, query, t.ID,
		t.BacklogID, t.ColumnID, t.SprintID, t.Title,
		t.Description, t.Priority, t.EstimatedHours,
		t.LoggedHours, t.Position, t.Status,
		t.StartDate, t.DueDate, t.ActuallyStartedAt,
		t.CompletedAt, t.Specialist, t.IsGeneric, t.IsUnplanned)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("task references: %w", core.ErrNotFound)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("task fields: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("update task: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return fmt.Errorf("task %d: %w", t.ID, core.ErrNotFound)
	}
	return nil
}

func (q queries) DeleteTask(ctx context.Context, id int64) error {
	const query = `DELETE FROM tasks WHERE id = $1`

	res, err := q.ext.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return fmt.Errorf("task %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// ---- position lists

// LockList serialises list mutations by taking a row lock on the owning
// sprint or backlog.
func (q queries) LockList(ctx context.Context, key core.ListKey) error {
	var (
		query string
		id    int64
	)
	if key.SprintID != 0 {
		query, id = `SELECT id FROM sprints WHERE id = $1 FOR UPDATE`, key.SprintID
	} else {
		query, id = `SELECT id FROM backlogs WHERE id = $1 FOR UPDATE`, key.BacklogID
	}

	var got int64
	if err := sqlx.GetContext(ctx, q.ext, &got, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("list owner %d: %w", id, core.ErrNotFound)
		}
		return fmt.Errorf("lock list: %w", err)
	}
	return nil
}

func (q queries) ListTasksInList(ctx context.Context, key core.ListKey) ([]core.Task, error) {
	var (
		query string
		args  []any
	)
	if key.SprintID != 0 {
		query = `SELECT ` + taskColumns + ` FROM tasks WHERE sprint_id = $1 ORDER BY position ASC, id ASC`
		args = []any{key.SprintID}
	} else {
		query = `SELECT ` + taskColumns + ` FROM tasks
			WHERE sprint_id IS NULL AND backlog_id = $1 AND column_id = $2
			ORDER BY position ASC, id ASC`
		args = []any{key.BacklogID, key.ColumnID}
	}

	var out []core.Task
	if err := sqlx.SelectContext(ctx, q.ext, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks in list: %w", err)
	}
	return out, nil
}

func (q queries) MaxPosition(ctx context.Context, key core.ListKey) (int, bool, error) {
	var (
		query string
		args  []any
	)
	if key.SprintID != 0 {
		query = `SELECT MAX(position) FROM tasks WHERE sprint_id = $1`
		args = []any{key.SprintID}
	} else {
		query = `SELECT MAX(position) FROM tasks
			WHERE sprint_id IS NULL AND backlog_id = $1 AND column_id = $2`
		args = []any{key.BacklogID, key.ColumnID}
	}

	var max sql.NullInt64
	if err := sqlx.GetContext(ctx, q.ext, &max, query, args...); err != nil {
		return 0, false, fmt.Errorf("max position: %w", err)
	}
	return int(max.Int64), max.Valid, nil
}

func (q queries) ShiftPositions(ctx context.Context, key core.ListKey, min, max, delta int) error {
	var (
		query string
		args  []any
	)
	if key.SprintID != 0 {
		query = `UPDATE tasks SET position = position + $4, updated_at = now()
			WHERE sprint_id = $1 AND position >= $2 AND position <= $3`
		args = []any{key.SprintID, min, max, delta}
	} else {
		query = `UPDATE tasks SET position = position + $5, updated_at = now()
			WHERE sprint_id IS NULL AND backlog_id = $1 AND column_id = $2
			  AND position >= $3 AND position <= $4`
		args = []any{key.BacklogID, key.ColumnID, min, max, delta}
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("shift positions: %w", err)
	}
	return nil
}

func (q queries) SetTaskPosition(ctx context.Context, id int64, position int) error {
	const query = `UPDATE tasks SET position = $2, updated_at = now() WHERE id = $1`

	res, err := q.ext.ExecContext(ctx, query, id, position)
	if err != nil {
		return fmt.Errorf("set position: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return fmt.Errorf("task %d: %w", id, core.ErrNotFound)
	}
	return nil
}
