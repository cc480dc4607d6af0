package core

import (
	"context"
	"time"
)

// ListKey identifies an ordering list: all tasks of one sprint, or, for
// tasks outside any sprint, all tasks of one backlog+column pair.
// SprintID == 0 means "no sprint"; real ids start at 1.
type ListKey struct {
	SprintID  int64
	BacklogID int64
	ColumnID  int64
}

func ListOf(t Task) ListKey {
	if t.SprintID != nil {
		return ListKey{SprintID: *t.SprintID}
	}
	return ListKey{BacklogID: t.BacklogID, ColumnID: t.ColumnID}
}

// TaskFilter narrows ListTasks. Nil fields are ignored.
type TaskFilter struct {
	BacklogID *int64
	SprintID  *int64
	Status    *Status
}

// SegmentWithTask is a segment joined with the owning task's display data,
// as needed by the weekly views.
type SegmentWithTask struct {
	Segment
	TaskTitle  string  `db:"task_title"`
	ProjectID  string  `db:"project_id"`
	Specialist *string `db:"task_specialist"`
}

// Queries is the persistence surface. All mutating service commands run
// against it inside a single Store.Tx.
type Queries interface {
	// backlogs
	CreateBacklog(ctx context.Context, b *Backlog) error
	GetBacklog(ctx context.Context, id int64) (Backlog, error)

	// columns
	GetColumn(ctx context.Context, id int64) (Column, error)
	ListColumns(ctx context.Context) ([]Column, error)

	// sprints
	CreateSprint(ctx context.Context, s *Sprint) error
	GetSprint(ctx context.Context, id int64) (Sprint, error)
	ListSprints(ctx context.Context, includeArchived bool) ([]Sprint, error)
	UpdateSprint(ctx context.Context, s Sprint) error

	// tasks
	InsertTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id int64) (Task, error)
	ListTasks(ctx context.Context, f TaskFilter) ([]Task, error)
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, id int64) error

	// position lists
	LockList(ctx context.Context, key ListKey) error
	ListTasksInList(ctx context.Context, key ListKey) ([]Task, error)
	MaxPosition(ctx context.Context, key ListKey) (int, bool, error)
	ShiftPositions(ctx context.Context, key ListKey, min, max, delta int) error
	SetTaskPosition(ctx context.Context, id int64, position int) error

	// segments
	InsertSegment(ctx context.Context, s *Segment) error
	GetSegment(ctx context.Context, id int64) (Segment, error)
	ListSegments(ctx context.Context, taskID int64) ([]Segment, error)
	DeleteSegmentsForTask(ctx context.Context, taskID int64) error
	UpdateSegment(ctx context.Context, s Segment) error
	ListSegmentsBySpecialist(ctx context.Context, specialist string, from, to time.Time) ([]SegmentWithTask, error)

	// specialist configs
	GetSpecialistConfig(ctx context.Context, name string) (SpecialistConfig, error)
	PutSpecialistConfig(ctx context.Context, cfg SpecialistConfig) error
}

type Store interface {
	Queries

	Ping(ctx context.Context) error

	// Tx runs fn in one transaction; any error rolls the whole unit back.
	Tx(ctx context.Context, fn func(q Queries) error) error
}

// Clock yields timezone-aware wall time for user-observable timestamps.
type Clock interface {
	Now() time.Time
}

// Holidays resolves the national holiday calendar for a year.
type Holidays interface {
	National(year int) []time.Time
}

// ProjectDirectory is the read-only project metadata collaborator
// (the macro service). Implementations may serve cached values.
type ProjectDirectory interface {
	ActiveProjectIDs(ctx context.Context) (map[string]struct{}, error)
	Project(ctx context.Context, id string) (Project, error)
}
