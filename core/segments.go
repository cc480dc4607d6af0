package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// completionMarker is appended to a segment's description when it is
// marked done; a task whose segments all carry it is considered finished.
const completionMarker = "- CONCLUÍDO"

const (
	WeeklyViewCurrent  = "current"
	WeeklyViewExtended = "extended"

	extendedViewWeeks = 4
	defaultSegmentMax = 10.0
	defaultDayStart   = "09:00"
)

// AutoSegment replaces a task's segments with a fresh split of its
// estimated effort into windows of at most maxHours, one per work day,
// each starting at startTime.
func (s *Service) AutoSegment(ctx context.Context, taskID int64, maxHours float64, startDate time.Time, startTime string) ([]Segment, error) {
	if taskID <= 0 {
		return nil, fmt.Errorf("%w: task id", ErrInvalidInput)
	}
	if maxHours == 0 {
		maxHours = defaultSegmentMax
	}
	if maxHours < 0 {
		return nil, fmt.Errorf("%w: negative segment size", ErrInvalidInput)
	}
	if startTime == "" {
		startTime = defaultDayStart
	}
	dayStart, err := time.Parse("15:04", startTime)
	if err != nil {
		return nil, fmt.Errorf("%w: start time %q", ErrInvalidInput, startTime)
	}
	if startDate.IsZero() {
		startDate = s.clock.Now()
	}

	var out []Segment
	err = s.store.Tx(ctx, func(q Queries) error {
		t, err := q.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if t.EstimatedHours == nil || *t.EstimatedHours <= 0 {
			return fmt.Errorf("%w: task has no estimated effort", ErrInvalidInput)
		}
		cfg, err := s.loadSpecialistConfig(ctx, q, t.Specialist)
		if err != nil {
			return err
		}

		if err := q.DeleteSegmentsForTask(ctx, taskID); err != nil {
			return err
		}

		day := DateOf(startDate)
		for !s.IsWorkDay(day, cfg) {
			day = day.AddDate(0, 0, 1)
		}

		loc := s.clock.Now().Location()
		remaining := *t.EstimatedHours
		for k := 1; remaining > 1e-9; k++ {
			hours := remaining
			if hours > maxHours {
				hours = maxHours
			}

			starts := time.Date(day.Year(), day.Month(), day.Day(),
				dayStart.Hour(), dayStart.Minute(), 0, 0, loc)
			seg := Segment{
				TaskID:      taskID,
				StartsAt:    starts,
				EndsAt:      starts.Add(time.Duration(hours * float64(time.Hour))),
				Description: fmt.Sprintf("Parte %d - %s", k, t.Title),
			}
			if err := q.InsertSegment(ctx, &seg); err != nil {
				return err
			}
			out = append(out, seg)

			remaining -= hours
			day = s.NextWorkDay(day, cfg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type CompleteSegmentResult struct {
	Segment Segment `json:"segment"`
	Task    Task    `json:"task"`
}

// CompleteSegment stamps the completion marker on a segment and books the
// logged hours on the owning task. When every segment of the task carries
// the marker the task itself is finished: status Done, completed_at
// observed, and the card moved to the canonical Done column.
func (s *Service) CompleteSegment(ctx context.Context, segmentID int64, loggedHours float64, notes string) (CompleteSegmentResult, error) {
	if segmentID <= 0 {
		return CompleteSegmentResult{}, fmt.Errorf("%w: segment id", ErrInvalidInput)
	}
	if loggedHours < 0 {
		return CompleteSegmentResult{}, fmt.Errorf("%w: negative logged time", ErrInvalidInput)
	}

	var out CompleteSegmentResult
	err := s.store.Tx(ctx, func(q Queries) error {
		seg, err := q.GetSegment(ctx, segmentID)
		if err != nil {
			return err
		}
		if segmentCompleted(seg) {
			return fmt.Errorf("%w: segment already completed", ErrInvalidInput)
		}

		marker := completionMarker
		if n := strings.TrimSpace(notes); n != "" {
			marker += ": " + n
		}
		if seg.Description == "" {
			seg.Description = marker
		} else {
			seg.Description += " " + marker
		}
		if err := q.UpdateSegment(ctx, seg); err != nil {
			return err
		}

		t, err := q.GetTask(ctx, seg.TaskID)
		if err != nil {
			return err
		}
		t.LoggedHours += loggedHours

		all, err := q.ListSegments(ctx, seg.TaskID)
		if err != nil {
			return err
		}
		done := true
		for _, other := range all {
			if !segmentCompleted(other) {
				done = false
				break
			}
		}

		if done {
			now := s.clock.Now()
			if t.ActuallyStartedAt == nil {
				t.ActuallyStartedAt = &now
			}
			if t.CompletedAt == nil {
				t.CompletedAt = &now
			}
			t.Status = StatusDone

			if err := q.UpdateTask(ctx, t); err != nil {
				return err
			}
			t, err = s.moveToDoneColumn(ctx, q, t)
			if err != nil {
				return err
			}
		} else if err := q.UpdateTask(ctx, t); err != nil {
			return err
		}

		out = CompleteSegmentResult{Segment: seg, Task: t}
		return nil
	})
	return out, err
}

func segmentCompleted(seg Segment) bool {
	return strings.Contains(seg.Description, completionMarker)
}

// moveToDoneColumn relocates a finished task to the first column mapped to
// Done, appending it to that lane. Boards without a Done lane keep the
// task where it is.
func (s *Service) moveToDoneColumn(ctx context.Context, q Queries, t Task) (Task, error) {
	cols, err := q.ListColumns(ctx)
	if err != nil {
		return Task{}, err
	}
	for _, col := range cols {
		if st, ok := MapColumnName(col.Name); ok && st == StatusDone {
			if col.ID == t.ColumnID {
				return t, nil
			}
			return s.moveLocked(ctx, q, t, col.ID, nil)
		}
	}
	s.log.Warn("board has no done column", "task", t.ID)
	return t, nil
}

// MoveSegmentWeek shifts a segment to the week starting at weekStart,
// keeping the duration. An empty startTime keeps the original
// time-of-day; otherwise the segment starts the week's Monday at the
// given HH:MM.
func (s *Service) MoveSegmentWeek(ctx context.Context, segmentID int64, weekStart time.Time, startTime string) (Segment, error) {
	if segmentID <= 0 {
		return Segment{}, fmt.Errorf("%w: segment id", ErrInvalidInput)
	}
	if weekStart.IsZero() {
		return Segment{}, fmt.Errorf("%w: missing week start", ErrInvalidInput)
	}

	var out Segment
	err := s.store.Tx(ctx, func(q Queries) error {
		seg, err := q.GetSegment(ctx, segmentID)
		if err != nil {
			return err
		}

		monday := MondayOf(weekStart)
		hour, minute := seg.StartsAt.Hour(), seg.StartsAt.Minute()
		if startTime != "" {
			parsed, err := time.Parse("15:04", startTime)
			if err != nil {
				return fmt.Errorf("%w: start time %q", ErrInvalidInput, startTime)
			}
			hour, minute = parsed.Hour(), parsed.Minute()
		}

		duration := seg.EndsAt.Sub(seg.StartsAt)
		seg.StartsAt = time.Date(monday.Year(), monday.Month(), monday.Day(),
			hour, minute, 0, 0, seg.StartsAt.Location())
		seg.EndsAt = seg.StartsAt.Add(duration)

		if err := q.UpdateSegment(ctx, seg); err != nil {
			return err
		}
		out = seg
		return nil
	})
	return out, err
}

type DayView struct {
	Date       time.Time         `json:"date"`
	Segments   []SegmentWithTask `json:"segments"`
	TotalHours float64           `json:"total_hours"`
}

type WeekView struct {
	WeekStart  time.Time `json:"week_start"`
	Days       []DayView `json:"days"`
	TotalHours float64   `json:"total_hours"`
}

// SpecialistWeeklyView returns the Mon-Fri agenda of a specialist for the
// week containing weekStart ("current") or that week plus the next three
// ("extended"). Segments of inactive projects are filtered out; when the
// project directory cannot answer, the view degrades to all projects.
func (s *Service) SpecialistWeeklyView(ctx context.Context, specialist string, weekStart time.Time, mode string) ([]WeekView, error) {
	specialist = strings.TrimSpace(specialist)
	if specialist == "" {
		return nil, fmt.Errorf("%w: empty specialist", ErrInvalidInput)
	}

	weeks := 1
	switch mode {
	case "", WeeklyViewCurrent:
	case WeeklyViewExtended:
		weeks = extendedViewWeeks
	default:
		return nil, fmt.Errorf("%w: view mode %q", ErrInvalidInput, mode)
	}
	if weekStart.IsZero() {
		weekStart = s.clock.Now()
	}

	monday := MondayOf(weekStart)
	from := monday
	to := monday.AddDate(0, 0, weeks*7)

	segments, err := s.store.ListSegmentsBySpecialist(ctx, specialist, from, to)
	if err != nil {
		return nil, err
	}
	segments, err = s.filterActiveProjects(ctx, segments)
	if err != nil {
		return nil, err
	}

	out := make([]WeekView, 0, weeks)
	for w := 0; w < weeks; w++ {
		start := monday.AddDate(0, 0, w*7)
		week := WeekView{WeekStart: start}
		for d := 0; d < 5; d++ {
			day := DayView{Date: start.AddDate(0, 0, d)}
			for _, seg := range segments {
				if sameDate(seg.StartsAt, day.Date) {
					day.Segments = append(day.Segments, seg)
					day.TotalHours += seg.Hours()
				}
			}
			week.TotalHours += day.TotalHours
			week.Days = append(week.Days, day)
		}
		out = append(out, week)
	}
	return out, nil
}

// filterActiveProjects keeps segments whose backlog project is currently
// active. Directory failures are advisory: the unfiltered set is served
// and a warning logged.
func (s *Service) filterActiveProjects(ctx context.Context, segments []SegmentWithTask) ([]SegmentWithTask, error) {
	if s.projects == nil || len(segments) == 0 {
		return segments, nil
	}

	active, err := s.projects.ActiveProjectIDs(ctx)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			s.log.Warn("project directory unavailable, serving unfiltered view", "error", err)
			return segments, nil
		}
		return nil, err
	}

	out := segments[:0]
	for _, seg := range segments {
		if _, ok := active[seg.ProjectID]; ok {
			out = append(out, seg)
		}
	}
	return out, nil
}
