package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

type CreateBacklogIn struct {
	ProjectID          string `json:"project_id"`
	AvailableForSprint *bool  `json:"available_for_sprint,omitempty"`
}

type CreateTaskIn struct {
	BacklogID      int64    `json:"backlog_id"`
	ColumnID       *int64   `json:"column_id,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	LoggedHours    float64  `json:"logged_hours,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	DueDate        string   `json:"due_date,omitempty"`
	Specialist     *string  `json:"specialist,omitempty"`
	IsGeneric      bool     `json:"is_generic,omitempty"`
	IsUnplanned    bool     `json:"is_unplanned,omitempty"`
}

// PatchTaskIn distinguishes absent fields from explicit nulls where the
// contract needs it: estimated_hours sent as null (or "") clears the
// estimate.
type PatchTaskIn struct {
	Title          *string         `json:"title,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Priority       *string         `json:"priority,omitempty"`
	EstimatedHours json.RawMessage `json:"estimated_hours,omitempty"`
	LoggedHours    *float64        `json:"logged_hours,omitempty"`
	StartDate      *string         `json:"start_date,omitempty"`
	DueDate        *string         `json:"due_date,omitempty"`
	Specialist     *string         `json:"specialist,omitempty"`
	ColumnID       *int64          `json:"column_id,omitempty"`
	IsGeneric      *bool           `json:"is_generic,omitempty"`
	IsUnplanned    *bool           `json:"is_unplanned,omitempty"`
}

type MoveTaskIn struct {
	ColumnID int64 `json:"column_id"`
	Position int   `json:"position"`
}

type AssignSprintIn struct {
	SprintID *int64 `json:"sprint_id"` // null detaches back to the backlog
	Position int    `json:"position"`
}

type CreateSprintIn struct {
	Name        string `json:"name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Goal        string `json:"goal,omitempty"`
	Criticality string `json:"criticality,omitempty"`
}

type ArchiveSprintIn struct {
	Note string `json:"note,omitempty"`
}

type BatchCalculateIn struct {
	SprintIDs []int64 `json:"sprint_ids"`
}

type AutoSegmentIn struct {
	MaxHours  float64 `json:"max_hours,omitempty"`
	StartDate string  `json:"start_date,omitempty"`
	StartTime string  `json:"start_time,omitempty"`
}

type CompleteSegmentIn struct {
	LoggedHours float64 `json:"logged_hours"`
	Notes       string  `json:"notes,omitempty"`
}

type MoveSegmentWeekIn struct {
	WeekStart string `json:"week_start"`
	StartTime string `json:"start_time,omitempty"`
}

type RedistributeIn struct {
	MaxHoursPerWeek float64 `json:"max_hours_per_week,omitempty"`
	WeeksAhead      int     `json:"weeks_ahead,omitempty"`
}

type SpecialistConfigIn struct {
	DailyHours       float64  `json:"daily_hours"`
	Workdays         []string `json:"workdays"` // "mon".."sun"
	BufferPct        float64  `json:"buffer_pct"`
	ConsiderHolidays bool     `json:"consider_holidays"`
	CustomHolidays   []string `json:"custom_holidays,omitempty"`
}

type ListKeyIn struct {
	SprintID  int64   `json:"sprint_id,omitempty"`
	BacklogID int64   `json:"backlog_id,omitempty"`
	ColumnID  int64   `json:"column_id,omitempty"`
	TaskIDs   []int64 `json:"task_ids,omitempty"`
}

// ---- parsing helpers

// ParseDate accepts ISO YYYY-MM-DD; empty means "not provided".
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return &d, nil
}

func ParsePriority(s string) (core.Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "low", "baixa":
		return core.PriorityLow, true
	case "medium", "média", "media":
		return core.PriorityMedium, true
	case "high", "alta":
		return core.PriorityHigh, true
	}
	return "", false
}

func ParseStatus(s string) (core.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo":
		return core.StatusTODO, true
	case "in_progress":
		return core.StatusInProgress, true
	case "review":
		return core.StatusReview, true
	case "done":
		return core.StatusDone, true
	case "archived":
		return core.StatusArchived, true
	}
	return "", false
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func ParseWorkdays(names []string) (core.Workweek, error) {
	var week core.Workweek
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", name)
		}
		week |= 1 << day
	}
	return week, nil
}

// ParseEstimate handles the clearable estimated_hours field: absent keeps
// the value, null or "" clears it, a number (or numeric string) sets it.
func ParseEstimate(raw json.RawMessage) (value *float64, clear bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, true, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, false, fmt.Errorf("invalid estimated_hours")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, true, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false, fmt.Errorf("invalid estimated_hours %q", s)
		}
		return &v, false, nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, false, fmt.Errorf("invalid estimated_hours")
	}
	return &v, false, nil
}
