package core

import "time"

type Status string

const (
	StatusTODO       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusArchived   Status = "archived"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Workweek is a bitmask over time.Weekday (bit 0 = Sunday).
type Workweek int16

const WorkweekMonFri Workweek = 1<<time.Monday | 1<<time.Tuesday |
	1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday

func (w Workweek) WorksOn(d time.Weekday) bool {
	return w&(1<<d) != 0
}

func (w Workweek) Empty() bool { return w == 0 }

type Task struct {
	ID                int64      `db:"id" json:"id"`
	BacklogID         int64      `db:"backlog_id" json:"backlog_id"`
	ColumnID          int64      `db:"column_id" json:"column_id"`
	SprintID          *int64     `db:"sprint_id" json:"sprint_id,omitempty"`
	Title             string     `db:"title" json:"title"`
	Description       string     `db:"description" json:"description"`
	Priority          Priority   `db:"priority" json:"priority"`
	EstimatedHours    *float64   `db:"estimated_hours" json:"estimated_hours,omitempty"`
	LoggedHours       float64    `db:"logged_hours" json:"logged_hours"`
	Position          int        `db:"position" json:"position"`
	Status            Status     `db:"status" json:"status"`
	StartDate         *time.Time `db:"start_date" json:"start_date,omitempty"`
	DueDate           *time.Time `db:"due_date" json:"due_date,omitempty"`
	ActuallyStartedAt *time.Time `db:"actually_started_at" json:"actually_started_at,omitempty"`
	CompletedAt       *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Specialist        *string    `db:"specialist" json:"specialist,omitempty"`
	IsGeneric         bool       `db:"is_generic" json:"is_generic"`
	IsUnplanned       bool       `db:"is_unplanned" json:"is_unplanned"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// RemainingHours is derived, never stored: estimate minus logged time,
// floored at zero. Tasks without an estimate have no remaining figure.
func (t Task) RemainingHours() float64 {
	if t.EstimatedHours == nil {
		return 0
	}
	rem := *t.EstimatedHours - t.LoggedHours
	if rem < 0 {
		return 0
	}
	return rem
}

type Column struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}

type Backlog struct {
	ID                 int64     `db:"id" json:"id"`
	ProjectID          string    `db:"project_id" json:"project_id"`
	AvailableForSprint bool      `db:"available_for_sprint" json:"available_for_sprint"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

type Sprint struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	StartDate   time.Time  `db:"start_date" json:"start_date"`
	EndDate     time.Time  `db:"end_date" json:"end_date"`
	Goal        string     `db:"goal" json:"goal"`
	Criticality string     `db:"criticality" json:"criticality"`
	Archived    bool       `db:"archived" json:"archived"`
	ArchivedAt  *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	ArchiveNote string     `db:"archive_note" json:"archive_note,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type Segment struct {
	ID          int64     `db:"id" json:"id"`
	TaskID      int64     `db:"task_id" json:"task_id"`
	StartsAt    time.Time `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time `db:"ends_at" json:"ends_at"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (s Segment) Hours() float64 {
	return s.EndsAt.Sub(s.StartsAt).Hours()
}

// SpecialistConfig is the per-specialist working calendar. A specialist
// with no stored record gets DefaultSpecialistConfig.
type SpecialistConfig struct {
	Name             string   `db:"name" json:"name"`
	DailyHours       float64  `db:"daily_hours" json:"daily_hours"`
	Workdays         Workweek `db:"workdays" json:"workdays"`
	BufferPct        float64  `db:"buffer_pct" json:"buffer_pct"`
	ConsiderHolidays bool     `db:"consider_holidays" json:"consider_holidays"`

	CustomHolidays []time.Time `db:"-" json:"custom_holidays,omitempty"`
}

func DefaultSpecialistConfig(name string) SpecialistConfig {
	return SpecialistConfig{
		Name:             name,
		DailyHours:       8.0,
		Workdays:         WorkweekMonFri,
		BufferPct:        10.0,
		ConsiderHolidays: true,
	}
}

// Project is the read-only snapshot served by the project directory.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Specialist string `json:"specialist"`
	Client     string `json:"client"`
}
