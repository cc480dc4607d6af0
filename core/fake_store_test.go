package core_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

// fakeStore is an in-memory core.Store. Tx takes a snapshot before running
// fn and restores it on error, so rollback semantics match the real thing.
type fakeStore struct {
	mu sync.Mutex

	nextBacklogID int64
	nextSprintID  int64
	nextTaskID    int64
	nextSegmentID int64

	backlogs map[int64]core.Backlog
	columns  map[int64]core.Column
	sprints  map[int64]core.Sprint
	tasks    map[int64]core.Task
	segments map[int64]core.Segment
	configs  map[string]core.SpecialistConfig
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextBacklogID: 1,
		nextSprintID:  1,
		nextTaskID:    1,
		nextSegmentID: 1,
		backlogs:      make(map[int64]core.Backlog),
		columns: map[int64]core.Column{
			1: {ID: 1, Name: "A Fazer", DisplayOrder: 1},
			2: {ID: 2, Name: "Em Andamento", DisplayOrder: 2},
			3: {ID: 3, Name: "Revisão", DisplayOrder: 3},
			4: {ID: 4, Name: "Concluído", DisplayOrder: 4},
		},
		sprints:  make(map[int64]core.Sprint),
		tasks:    make(map[int64]core.Task),
		segments: make(map[int64]core.Segment),
		configs:  make(map[string]core.SpecialistConfig),
	}
}

func cloneTask(t core.Task) core.Task {
	out := t
	out.SprintID = cloneInt64(t.SprintID)
	out.EstimatedHours = cloneFloat(t.EstimatedHours)
	out.StartDate = cloneTime(t.StartDate)
	out.DueDate = cloneTime(t.DueDate)
	out.ActuallyStartedAt = cloneTime(t.ActuallyStartedAt)
	out.CompletedAt = cloneTime(t.CompletedAt)
	out.Specialist = cloneString(t.Specialist)
	return out
}

func cloneSprint(s core.Sprint) core.Sprint {
	out := s
	out.ArchivedAt = cloneTime(s.ArchivedAt)
	return out
}

func cloneConfig(c core.SpecialistConfig) core.SpecialistConfig {
	out := c
	out.CustomHolidays = append([]time.Time(nil), c.CustomHolidays...)
	return out
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

type snapshot struct {
	nextBacklogID int64
	nextSprintID  int64
	nextTaskID    int64
	nextSegmentID int64

	backlogs map[int64]core.Backlog
	sprints  map[int64]core.Sprint
	tasks    map[int64]core.Task
	segments map[int64]core.Segment
	configs  map[string]core.SpecialistConfig
}

func (db *fakeStore) snapshot() snapshot {
	s := snapshot{
		nextBacklogID: db.nextBacklogID,
		nextSprintID:  db.nextSprintID,
		nextTaskID:    db.nextTaskID,
		nextSegmentID: db.nextSegmentID,
		backlogs:      make(map[int64]core.Backlog, len(db.backlogs)),
		sprints:       make(map[int64]core.Sprint, len(db.sprints)),
		tasks:         make(map[int64]core.Task, len(db.tasks)),
		segments:      make(map[int64]core.Segment, len(db.segments)),
		configs:       make(map[string]core.SpecialistConfig, len(db.configs)),
	}
	for id, b := range db.backlogs {
		s.backlogs[id] = b
	}
	for id, sp := range db.sprints {
		s.sprints[id] = cloneSprint(sp)
	}
	for id, t := range db.tasks {
		s.tasks[id] = cloneTask(t)
	}
	for id, seg := range db.segments {
		s.segments[id] = seg
	}
	for name, cfg := range db.configs {
		s.configs[name] = cloneConfig(cfg)
	}
	return s
}

func (db *fakeStore) restore(s snapshot) {
	db.nextBacklogID = s.nextBacklogID
	db.nextSprintID = s.nextSprintID
	db.nextTaskID = s.nextTaskID
	db.nextSegmentID = s.nextSegmentID
	db.backlogs = s.backlogs
	db.sprints = s.sprints
	db.tasks = s.tasks
	db.segments = s.segments
	db.configs = s.configs
}

func (db *fakeStore) Ping(context.Context) error { return nil }

// Tx releases the lock while fn runs because fn calls back into the
// store's own locking methods.
func (db *fakeStore) Tx(_ context.Context, fn func(q core.Queries) error) error {
	db.mu.Lock()
	snap := db.snapshot()
	db.mu.Unlock()

	if err := fn(db); err != nil {
		db.mu.Lock()
		db.restore(snap)
		db.mu.Unlock()
		return err
	}
	return nil
}

// ---- backlogs

func (db *fakeStore) CreateBacklog(_ context.Context, b *core.Backlog) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.backlogs {
		if existing.ProjectID == b.ProjectID {
			return fmt.Errorf("%w: backlog for project %q exists", core.ErrInvalidInput, b.ProjectID)
		}
	}

	b.ID = db.nextBacklogID
	db.nextBacklogID++
	b.CreatedAt = time.Now()
	db.backlogs[b.ID] = *b
	return nil
}

func (db *fakeStore) GetBacklog(_ context.Context, id int64) (core.Backlog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	b, ok := db.backlogs[id]
	if !ok {
		return core.Backlog{}, fmt.Errorf("%w: backlog %d", core.ErrNotFound, id)
	}
	return b, nil
}

// ---- columns

func (db *fakeStore) GetColumn(_ context.Context, id int64) (core.Column, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	col, ok := db.columns[id]
	if !ok {
		return core.Column{}, fmt.Errorf("%w: column %d", core.ErrNotFound, id)
	}
	return col, nil
}

func (db *fakeStore) ListColumns(context.Context) ([]core.Column, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]core.Column, 0, len(db.columns))
	for _, col := range db.columns {
		out = append(out, col)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out, nil
}

// ---- sprints

func (db *fakeStore) CreateSprint(_ context.Context, s *core.Sprint) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s.ID = db.nextSprintID
	db.nextSprintID++
	s.CreatedAt = time.Now()
	db.sprints[s.ID] = cloneSprint(*s)
	return nil
}

func (db *fakeStore) GetSprint(_ context.Context, id int64) (core.Sprint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sprints[id]
	if !ok {
		return core.Sprint{}, fmt.Errorf("%w: sprint %d", core.ErrNotFound, id)
	}
	return cloneSprint(s), nil
}

func (db *fakeStore) ListSprints(_ context.Context, includeArchived bool) ([]core.Sprint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]core.Sprint, 0, len(db.sprints))
	for _, s := range db.sprints {
		if s.Archived && !includeArchived {
			continue
		}
		out = append(out, cloneSprint(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (db *fakeStore) UpdateSprint(_ context.Context, s core.Sprint) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.sprints[s.ID]; !ok {
		return fmt.Errorf("%w: sprint %d", core.ErrNotFound, s.ID)
	}
	db.sprints[s.ID] = cloneSprint(s)
	return nil
}

// ---- tasks

func (db *fakeStore) InsertTask(_ context.Context, t *core.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	t.ID = db.nextTaskID
	db.nextTaskID++
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	db.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (db *fakeStore) GetTask(_ context.Context, id int64) (core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tasks[id]
	if !ok {
		return core.Task{}, fmt.Errorf("%w: task %d", core.ErrNotFound, id)
	}
	return cloneTask(t), nil
}

func (db *fakeStore) ListTasks(_ context.Context, f core.TaskFilter) ([]core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]core.Task, 0, len(db.tasks))
	for _, t := range db.tasks {
		if f.BacklogID != nil && t.BacklogID != *f.BacklogID {
			continue
		}
		if f.SprintID != nil {
			if t.SprintID == nil || *t.SprintID != *f.SprintID {
				continue
			}
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sortByPosition(out)
	return out, nil
}

func (db *fakeStore) UpdateTask(_ context.Context, t core.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	current, ok := db.tasks[t.ID]
	if !ok {
		return fmt.Errorf("%w: task %d", core.ErrNotFound, t.ID)
	}
	t.CreatedAt = current.CreatedAt
	t.UpdatedAt = time.Now()
	db.tasks[t.ID] = cloneTask(t)
	return nil
}

func (db *fakeStore) DeleteTask(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tasks[id]; !ok {
		return fmt.Errorf("%w: task %d", core.ErrNotFound, id)
	}
	delete(db.tasks, id)
	for segID, seg := range db.segments {
		if seg.TaskID == id {
			delete(db.segments, segID)
		}
	}
	return nil
}

// ---- position lists

func (db *fakeStore) LockList(context.Context, core.ListKey) error { return nil }

func (db *fakeStore) ListTasksInList(_ context.Context, key core.ListKey) ([]core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []core.Task
	for _, t := range db.tasks {
		if core.ListOf(t) == key {
			out = append(out, cloneTask(t))
		}
	}
	sortByPosition(out)
	return out, nil
}

func (db *fakeStore) MaxPosition(_ context.Context, key core.ListKey) (int, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	max, found := 0, false
	for _, t := range db.tasks {
		if core.ListOf(t) == key && (!found || t.Position > max) {
			max, found = t.Position, true
		}
	}
	return max, found, nil
}

func (db *fakeStore) ShiftPositions(_ context.Context, key core.ListKey, min, max, delta int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, t := range db.tasks {
		if core.ListOf(t) == key && t.Position >= min && t.Position <= max {
			t.Position += delta
			db.tasks[id] = t
		}
	}
	return nil
}

func (db *fakeStore) SetTaskPosition(_ context.Context, id int64, position int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %d", core.ErrNotFound, id)
	}
	t.Position = position
	db.tasks[id] = t
	return nil
}

// ---- segments

func (db *fakeStore) InsertSegment(_ context.Context, s *core.Segment) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s.ID = db.nextSegmentID
	db.nextSegmentID++
	s.CreatedAt = time.Now()
	db.segments[s.ID] = *s
	return nil
}

func (db *fakeStore) GetSegment(_ context.Context, id int64) (core.Segment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.segments[id]
	if !ok {
		return core.Segment{}, fmt.Errorf("%w: segment %d", core.ErrNotFound, id)
	}
	return s, nil
}

func (db *fakeStore) ListSegments(_ context.Context, taskID int64) ([]core.Segment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []core.Segment
	for _, s := range db.segments {
		if s.TaskID == taskID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (db *fakeStore) DeleteSegmentsForTask(_ context.Context, taskID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, s := range db.segments {
		if s.TaskID == taskID {
			delete(db.segments, id)
		}
	}
	return nil
}

func (db *fakeStore) UpdateSegment(_ context.Context, s core.Segment) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.segments[s.ID]; !ok {
		return fmt.Errorf("%w: segment %d", core.ErrNotFound, s.ID)
	}
	db.segments[s.ID] = s
	return nil
}

func (db *fakeStore) ListSegmentsBySpecialist(_ context.Context, specialist string, from, to time.Time) ([]core.SegmentWithTask, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	want := strings.ToLower(strings.TrimSpace(specialist))
	var out []core.SegmentWithTask
	for _, s := range db.segments {
		t, ok := db.tasks[s.TaskID]
		if !ok || t.Specialist == nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(*t.Specialist)) != want {
			continue
		}
		if s.StartsAt.Before(from) || !s.StartsAt.Before(to) {
			continue
		}
		item := core.SegmentWithTask{
			Segment:    s,
			TaskTitle:  t.Title,
			Specialist: cloneString(t.Specialist),
		}
		if b, ok := db.backlogs[t.BacklogID]; ok {
			item.ProjectID = b.ProjectID
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ---- specialist configs

func (db *fakeStore) GetSpecialistConfig(_ context.Context, name string) (core.SpecialistConfig, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cfg, ok := db.configs[name]
	if !ok {
		return core.SpecialistConfig{}, fmt.Errorf("%w: specialist %q", core.ErrNotFound, name)
	}
	return cloneConfig(cfg), nil
}

func (db *fakeStore) PutSpecialistConfig(_ context.Context, cfg core.SpecialistConfig) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.configs[cfg.Name] = cloneConfig(cfg)
	return nil
}

func sortByPosition(tasks []core.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		return tasks[i].ID < tasks[j].ID
	})
}
