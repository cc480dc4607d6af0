package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// UnassignedSpecialist groups tasks without a specialist for scheduling
// and capacity purposes.
const UnassignedSpecialist = "Unassigned"

type Service struct {
	log      *slog.Logger
	store    Store
	clock    Clock
	holidays Holidays
	projects ProjectDirectory
}

// NewService wires the command surface. projects may be nil when no macro
// service is configured; consumers then see every project as active.
func NewService(log *slog.Logger, store Store, clock Clock, holidays Holidays, projects ProjectDirectory) *Service {
	return &Service{
		log:      log,
		store:    store,
		clock:    clock,
		holidays: holidays,
		projects: projects,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// NormalizeSpecialist maps empty and "Não atribuído" values to nil.
func NormalizeSpecialist(name *string) *string {
	if name == nil {
		return nil
	}
	n := strings.TrimSpace(*name)
	if n == "" {
		return nil
	}
	switch strings.ToLower(n) {
	case "não atribuído", "nao atribuido":
		return nil
	}
	return &n
}

// ---- Backlogs

func (s *Service) CreateBacklog(ctx context.Context, projectID string, availableForSprint bool) (Backlog, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return Backlog{}, fmt.Errorf("%w: empty project id", ErrInvalidInput)
	}

	b := Backlog{ProjectID: projectID, AvailableForSprint: availableForSprint}
	if err := s.store.CreateBacklog(ctx, &b); err != nil {
		return Backlog{}, err
	}
	return b, nil
}

func (s *Service) GetBacklog(ctx context.Context, id int64) (Backlog, error) {
	if id <= 0 {
		return Backlog{}, fmt.Errorf("%w: backlog id", ErrInvalidInput)
	}
	return s.store.GetBacklog(ctx, id)
}

// ---- Columns

func (s *Service) ListColumns(ctx context.Context) ([]Column, error) {
	return s.store.ListColumns(ctx)
}

// ---- Sprints

func (s *Service) CreateSprint(ctx context.Context, name string, start, end time.Time, goal, criticality string) (Sprint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Sprint{}, fmt.Errorf("%w: empty sprint name", ErrInvalidInput)
	}
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return Sprint{}, fmt.Errorf("%w: sprint end before start", ErrInvalidInput)
	}
	if criticality == "" {
		criticality = "normal"
	}

	sp := Sprint{
		Name:        name,
		StartDate:   start,
		EndDate:     end,
		Goal:        strings.TrimSpace(goal),
		Criticality: criticality,
	}
	if err := s.store.CreateSprint(ctx, &sp); err != nil {
		return Sprint{}, err
	}
	return sp, nil
}

func (s *Service) GetSprint(ctx context.Context, id int64) (Sprint, error) {
	if id <= 0 {
		return Sprint{}, fmt.Errorf("%w: sprint id", ErrInvalidInput)
	}
	return s.store.GetSprint(ctx, id)
}

func (s *Service) ListSprints(ctx context.Context, includeArchived bool) ([]Sprint, error) {
	return s.store.ListSprints(ctx, includeArchived)
}

func (s *Service) ArchiveSprint(ctx context.Context, id int64, note string) (Sprint, error) {
	if id <= 0 {
		return Sprint{}, fmt.Errorf("%w: sprint id", ErrInvalidInput)
	}

	var out Sprint
	err := s.store.Tx(ctx, func(q Queries) error {
		sp, err := q.GetSprint(ctx, id)
		if err != nil {
			return err
		}
		if !sp.Archived {
			now := s.clock.Now()
			sp.Archived = true
			sp.ArchivedAt = &now
			sp.ArchiveNote = strings.TrimSpace(note)
			if err := q.UpdateSprint(ctx, sp); err != nil {
				return err
			}
		}
		out = sp
		return nil
	})
	return out, err
}

// ---- Specialist configs

func (s *Service) GetSpecialistConfig(ctx context.Context, name string) (SpecialistConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SpecialistConfig{}, fmt.Errorf("%w: empty specialist name", ErrInvalidInput)
	}
	return s.loadSpecialistConfig(ctx, s.store, &name)
}

func (s *Service) PutSpecialistConfig(ctx context.Context, cfg SpecialistConfig) (SpecialistConfig, error) {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return SpecialistConfig{}, fmt.Errorf("%w: empty specialist name", ErrInvalidInput)
	}
	if cfg.DailyHours <= 0 || cfg.DailyHours > 24 {
		return SpecialistConfig{}, fmt.Errorf("%w: daily hours out of range", ErrInvalidInput)
	}
	if cfg.BufferPct < 0 {
		return SpecialistConfig{}, fmt.Errorf("%w: negative buffer", ErrInvalidInput)
	}
	if cfg.Workdays.Empty() {
		return SpecialistConfig{}, fmt.Errorf("%w: no working days", ErrInvalidInput)
	}
	for i, h := range cfg.CustomHolidays {
		cfg.CustomHolidays[i] = DateOf(h)
	}

	if err := s.store.PutSpecialistConfig(ctx, cfg); err != nil {
		return SpecialistConfig{}, err
	}
	return cfg, nil
}

// loadSpecialistConfig resolves the working calendar for a (possibly nil)
// specialist; a missing record yields the documented defaults.
func (s *Service) loadSpecialistConfig(ctx context.Context, q Queries, name *string) (SpecialistConfig, error) {
	key := UnassignedSpecialist
	if name != nil && strings.TrimSpace(*name) != "" {
		key = strings.TrimSpace(*name)
	}

	cfg, err := q.GetSpecialistConfig(ctx, key)
	if err == nil {
		return cfg, nil
	}
	if isNotFound(err) {
		return DefaultSpecialistConfig(key), nil
	}
	return SpecialistConfig{}, err
}

// ---- Tasks

type CreateTaskInput struct {
	BacklogID      int64
	ColumnID       *int64 // nil = first column of the board
	Title          string
	Description    string
	Priority       Priority
	EstimatedHours *float64
	LoggedHours    float64
	StartDate      *time.Time
	DueDate        *time.Time
	Specialist     *string
	IsGeneric      bool
	IsUnplanned    bool
}

func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Task{}, fmt.Errorf("%w: empty title", ErrInvalidInput)
	}
	if in.BacklogID <= 0 {
		return Task{}, fmt.Errorf("%w: backlog id", ErrInvalidInput)
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		return Task{}, fmt.Errorf("%w: negative estimated effort", ErrInvalidInput)
	}
	if in.LoggedHours < 0 {
		return Task{}, fmt.Errorf("%w: negative logged time", ErrInvalidInput)
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !ValidPriority(in.Priority) {
		return Task{}, fmt.Errorf("%w: priority %q", ErrInvalidInput, in.Priority)
	}

	var out Task
	err := s.store.Tx(ctx, func(q Queries) error {
		if _, err := q.GetBacklog(ctx, in.BacklogID); err != nil {
			return err
		}

		var col Column
		if in.ColumnID != nil {
			c, err := q.GetColumn(ctx, *in.ColumnID)
			if err != nil {
				return err
			}
			col = c
		} else {
			cols, err := q.ListColumns(ctx)
			if err != nil {
				return err
			}
			if len(cols) == 0 {
				return fmt.Errorf("%w: board has no columns", ErrConsistency)
			}
			col = cols[0]
		}

		key := ListKey{BacklogID: in.BacklogID, ColumnID: col.ID}
		if err := q.LockList(ctx, key); err != nil {
			return err
		}
		pos := PositionStep
		if max, ok, err := q.MaxPosition(ctx, key); err != nil {
			return err
		} else if ok {
			pos = max + PositionStep
		}

		t := Task{
			BacklogID:      in.BacklogID,
			ColumnID:       col.ID,
			Title:          in.Title,
			Description:    strings.TrimSpace(in.Description),
			Priority:       in.Priority,
			EstimatedHours: in.EstimatedHours,
			LoggedHours:    in.LoggedHours,
			Position:       pos,
			Status:         StatusTODO,
			StartDate:      dateOrNil(in.StartDate),
			DueDate:        dateOrNil(in.DueDate),
			Specialist:     NormalizeSpecialist(in.Specialist),
			IsGeneric:      in.IsGeneric,
			IsUnplanned:    in.IsUnplanned,
		}
		if err := q.InsertTask(ctx, &t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func (s *Service) GetTask(ctx context.Context, id int64) (Task, error) {
	if id <= 0 {
		return Task{}, fmt.Errorf("%w: task id", ErrInvalidInput)
	}
	return s.store.GetTask(ctx, id)
}

func (s *Service) ListTasks(ctx context.Context, f TaskFilter) ([]Task, error) {
	if f.Status != nil && !ValidStatus(*f.Status) {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, *f.Status)
	}
	return s.store.ListTasks(ctx, f)
}

type TaskPatch struct {
	Title           *string
	Description     *string
	Priority        *Priority
	EstimatedHours  *float64
	ClearEstimate   bool
	LoggedHours     *float64
	StartDate       *time.Time
	DueDate         *time.Time
	Specialist      *string // empty or "Não atribuído" clears the field
	ClearSpecialist bool
	ColumnID        *int64 // delegates to MoveTask, appending to the lane
	IsGeneric       *bool
	IsUnplanned     *bool
}

func (p TaskPatch) empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.EstimatedHours == nil && !p.ClearEstimate && p.LoggedHours == nil &&
		p.StartDate == nil && p.DueDate == nil && p.Specialist == nil &&
		!p.ClearSpecialist && p.ColumnID == nil && p.IsGeneric == nil &&
		p.IsUnplanned == nil
}

func (s *Service) UpdateTask(ctx context.Context, id int64, p TaskPatch) (Task, error) {
	if id <= 0 {
		return Task{}, fmt.Errorf("%w: task id", ErrInvalidInput)
	}
	if p.empty() {
		return Task{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Task{}, fmt.Errorf("%w: empty title", ErrInvalidInput)
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		return Task{}, fmt.Errorf("%w: negative estimated effort", ErrInvalidInput)
	}
	if p.LoggedHours != nil && *p.LoggedHours < 0 {
		return Task{}, fmt.Errorf("%w: negative logged time", ErrInvalidInput)
	}
	if p.Priority != nil && !ValidPriority(*p.Priority) {
		return Task{}, fmt.Errorf("%w: priority %q", ErrInvalidInput, *p.Priority)
	}

	var out Task
	err := s.store.Tx(ctx, func(q Queries) error {
		t, err := q.GetTask(ctx, id)
		if err != nil {
			return err
		}

		if p.Title != nil {
			t.Title = strings.TrimSpace(*p.Title)
		}
		if p.Description != nil {
			t.Description = strings.TrimSpace(*p.Description)
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		if p.ClearEstimate {
			t.EstimatedHours = nil
		} else if p.EstimatedHours != nil {
			t.EstimatedHours = p.EstimatedHours
		}
		if p.LoggedHours != nil {
			t.LoggedHours = *p.LoggedHours
		}
		if p.StartDate != nil {
			t.StartDate = dateOrNil(p.StartDate)
		}
		if p.DueDate != nil {
			t.DueDate = dateOrNil(p.DueDate)
		}
		if p.ClearSpecialist {
			t.Specialist = nil
		} else if p.Specialist != nil {
			t.Specialist = NormalizeSpecialist(p.Specialist)
		}
		if p.IsGeneric != nil {
			t.IsGeneric = *p.IsGeneric
		}
		if p.IsUnplanned != nil {
			t.IsUnplanned = *p.IsUnplanned
		}

		if err := q.UpdateTask(ctx, t); err != nil {
			return err
		}

		// a column change is a board move, with the full shift and
		// status-derivation protocol, appended to the target lane
		if p.ColumnID != nil && *p.ColumnID != t.ColumnID {
			moved, err := s.moveLocked(ctx, q, t, *p.ColumnID, nil)
			if err != nil {
				return err
			}
			t = moved
		}

		out = t
		return nil
	})
	return out, err
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: task id", ErrInvalidInput)
	}
	return s.store.Tx(ctx, func(q Queries) error {
		if _, err := q.GetTask(ctx, id); err != nil {
			return err
		}
		// siblings keep their positions; dense renumbering is deferred
		// to the next rebalance
		return q.DeleteTask(ctx, id)
	})
}

// ---- List diagnostics

// ValidateList reports whether the positions of a list are non-null,
// unique and pairwise separated enough for midpoint insertions.
func (s *Service) ValidateList(ctx context.Context, key ListKey) (bool, error) {
	tasks, err := s.store.ListTasksInList(ctx, key)
	if err != nil {
		return false, err
	}
	ps := positionsOf(tasks)
	return listOrdered(ps) && ListConsistent(ps), nil
}

// RebalanceList renumbers a list densely (k * PositionStep), preserving
// the current order.
func (s *Service) RebalanceList(ctx context.Context, key ListKey) error {
	return s.store.Tx(ctx, func(q Queries) error {
		if err := q.LockList(ctx, key); err != nil {
			return err
		}
		return rebalance(ctx, q, key)
	})
}

// ReorderList stamps positions (k+1) * PositionStep following the given
// task order. The ids must be exactly the members of the list.
func (s *Service) ReorderList(ctx context.Context, key ListKey, ids []int64) error {
	return s.store.Tx(ctx, func(q Queries) error {
		if err := q.LockList(ctx, key); err != nil {
			return err
		}
		tasks, err := q.ListTasksInList(ctx, key)
		if err != nil {
			return err
		}
		if len(tasks) != len(ids) {
			return fmt.Errorf("%w: sequence does not cover the list", ErrInvalidInput)
		}
		members := make(map[int64]bool, len(tasks))
		for _, t := range tasks {
			members[t.ID] = true
		}
		for k, id := range ids {
			if !members[id] {
				return fmt.Errorf("%w: task %d is not in the list", ErrInvalidInput, id)
			}
			// each member may appear once; a repeat would stamp two
			// tasks onto one position
			delete(members, id)
			if err := q.SetTaskPosition(ctx, id, (k+1)*PositionStep); err != nil {
				return err
			}
		}
		return nil
	})
}

func rebalance(ctx context.Context, q Queries, key ListKey) error {
	tasks, err := q.ListTasksInList(ctx, key)
	if err != nil {
		return err
	}
	for k, pos := range RebalancedPositions(len(tasks)) {
		if err := q.SetTaskPosition(ctx, tasks[k].ID, pos); err != nil {
			return err
		}
	}
	return nil
}

// ---- helpers

func positionsOf(tasks []Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.Position
	}
	return out
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func sortedSpecialists(groups map[string][]Task) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}
