package core_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

func TestAutoSegment_SplitsEstimateAcrossWorkDays(t *testing.T) {
	t.Parallel()

	_, svc := newTestService()
	b := mustCreateBacklog(t, svc, "P1")
	task := mustCreateTask(t, svc, core.CreateTaskInput{
		BacklogID: b.ID, Title: "migration", EstimatedHours: hoursPtr(25),
	})

	segments, err := svc.AutoSegment(context.Background(), task.ID, 10, date(2026, time.March, 2), "")
	if err != nil {
		t.Fatalf("AutoSegment returned error: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}

	wantDays := []time.Time{
		date(2026, time.March, 2),
		date(2026, time.March, 3),
		date(2026, time.March, 4),
	}
	wantHours := []float64{10, 10, 5}
	for i, seg := range segments {
		if !core.DateOf(seg.StartsAt).Equal(wantDays[i]) {
			t.Fatalf("segment %d: expected day %s, got %s", i+1,
				wantDays[i].Format("2006-01-02"), seg.StartsAt.Format("2006-01-02"))
		}
		if seg.StartsAt.Hour() != 9 || seg.StartsAt.Minute() != 0 {
			t.Fatalf("segment %d: expected 09:00 start, got %s", i+1, seg.StartsAt.Format("15:04"))
		}
		if seg.Hours() != wantHours[i] {
			t.Fatalf("segment %d: expected %vh, got %vh", i+1, wantHours[i], seg.Hours())
		}
		wantDesc := fmt.Sprintf("Parte %d - migration", i+1)
		if seg.Description != wantDesc {
			t.Fatalf("segment %d: expected description %q, got %q", i+1, wantDesc, seg.Description)
		}
	}
}

func TestAutoSegment_StartsOnNextWorkDay(t *testing.T) {
	t.Parallel()

	_, svc := newTestService()
	b := mustCreateBacklog(t, svc, "P1")
	task := mustCreateTask(t, svc, core.CreateTaskInput{
		BacklogID: b.ID, Title: "task", EstimatedHours: hoursPtr(4),
	})

	// Saturday start slides to Monday
	segments, err := svc.AutoSegment(context.Background(), task.ID, 0, date(2026, time.March, 7), "10:30")
	if err != nil {
		t.Fatalf("AutoSegment returned error: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if !core.DateOf(segments[0].StartsAt).Equal(date(2026, time.March, 9)) {
		t.Fatalf("expected Monday start, got %s", segments[0].StartsAt.Format("2006-01-02"))
	}
	if segments[0].StartsAt.Hour() != 10 || segments[0].StartsAt.Minute() != 30 {
		t.Fatalf("expected 10:30 start, got %s", segments[0].StartsAt.Format("15:04"))
	}
}

func TestAutoSegment_ReplacesExistingSegments(t *testing.T) {
	t.Parallel()

	db, svc := newTestService()
	b := mustCreateBacklog(t, svc, "P1")
	task := mustCreateTask(t, svc, core.CreateTaskInput{
		BacklogID: b.ID, Title: "task", EstimatedHours: hoursPtr(8),
	})

	if _, err := svc.AutoSegment(context.Background(), task.ID, 4, date(2026, time.March, 2), ""); err != nil {
		t.Fatalf("first AutoSegment returned error: %v", err)
	}
	if _, err := svc.AutoSegment(context.Background(), task.ID, 8, date(2026, time.March, 2), ""); err != nil {
		t.Fatalf("second AutoSegment returned error: %v", err)
	}

	segments, err := db.ListSegments(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("ListSegments returned error: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected the old split replaced, got %d segments", len(segments))
	}
}

func TestAutoSegment_RequiresEstimate(t *testing.T) {
	t.Parallel()

	_, svc := newTestService()
	b := mustCreateBacklog(t, svc, "P1")
	task := mustCreateTask(t, svc, core.CreateTaskInput{BacklogID: b.ID, Title: "task"})

	_, err := svc.AutoSegment(context.Background(), task.ID, 10, date(2026, time.March, 2), "")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCompleteSegment_MarksAndBooksHours(t *testing.T) {
	t.Parallel()

	_, svc := newTestService()
	b := mustCreateBacklog(t, svc, "P1")
	task := mustCreateTask(t, svc, core.CreateTaskInput{
		BacklogID: b.ID, Title: "task", EstimatedHours: hoursPtr(16),
	})
	segments, err := svc.AutoSegment(context.Background(), task.ID, 10, date(2026, time.March, 2), "")
	if err != nil {
		t.Fatalf("AutoSegment returned error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}

	result, err := svc.CompleteSegment(context.Background(), segments[0].ID, 9.5, "faltou revisão")
	if err != nil {
		t.Fatalf("CompleteSegment returned error: %v", err)
	}
	if !strings.Contains(result.Segment.Description, "- CONCLUÍDO: faltou revisão") {
		t.Fatalf("expected completion marker with notes, got %q", result.Segment.Description)
	}
	if result.Task.LoggedHours != 9.5 {
		t.Fatalf("expected 9.5h logged, got %v", result.Task.LoggedHours)
	}
	if result.Task.Status == core.StatusDone {
		t.Fatalf("task must not finish while a segment is open")
	}

	// completing twice is rejected
	_, err = svc.CompleteSegment(context.Background(), segments[0].ID, 1, "")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on double completion, got %v", err)
	}
}

func TestCompleteSegment_LastSegmentFinishesTask(t *testing.T) {
	t.Parallel()

	_, svc := newTestService()
	b := mustCreateBacklog(t, svc, "P1")
	task := mustCreateTask(t, svc, core.CreateTaskInput{
		BacklogID: b.ID, Title: "task", EstimatedHours: hoursPtr(16),
	})
	segments, err := svc.AutoSegment(context.Background(), task.ID, 10, date(2026, time.March, 2), "")
	if err != nil {
		t.Fatalf("AutoSegment returned error: %v", err)
	}

	if _, err := svc.CompleteSegment(context.Background(), segments[0].ID, 10, ""); err != nil {
		t.Fatalf("first CompleteSegment returned error: %v", err)
	}
	result, err := svc.CompleteSegment(context.Background(), segments[1].ID, 6, "")
	if err != nil {
		t.Fatalf("second CompleteSegment returned error: %v", err)
	}

	if result.Task.Status != core.StatusDone {
		t.Fatalf("expected task done, got %s", result.Task.Status)
	}
	if result.Task.CompletedAt == nil || result.Task.ActuallyStartedAt == nil {
		t.Fatalf("expected both observed timestamps set")
	}
	if result.Task.ColumnID != colDone {
		t.Fatalf("expected task moved to the done column, got column %d", result.Task.ColumnID)
	}
	if result.Task.LoggedHours != 16 {
		t.Fatalf("expected 16h logged, got %v", result.Task.LoggedHours)
	}
}

func TestMoveSegmentWeek_KeepsDurationAndTimeOfDay(t *testing.T) {
	t.Parallel()

	_, svc := newTestService()
	b := mustCreateBacklog(t, svc, "P1")
	task := mustCreateTask(t, svc, core.CreateTaskInput{
		BacklogID: b.ID, Title: "task", EstimatedHours: hoursPtr(4),
	})
	segments, err := svc.AutoSegment(context.Background(), task.ID, 0, date(2026, time.March, 3), "10:30")
	if err != nil {
		t.Fatalf("AutoSegment returned error: %v", err)
	}

	moved, err := svc.MoveSegmentWeek(context.Background(), segments[0].ID, date(2026, time.March, 11), "")
	if err != nil {
		t.Fatalf("MoveSegmentWeek returned error: %v", err)
	}
	if !core.DateOf(moved.StartsAt).Equal(date(2026, time.March, 9)) {
		t.Fatalf("expected segment on the target Monday, got %s", moved.StartsAt.Format("2006-01-02"))
	}
	if moved.StartsAt.Hour() != 10 || moved.StartsAt.Minute() != 30 {
		t.Fatalf("expected original time of day kept, got %s", moved.StartsAt.Format("15:04"))
	}
	if moved.Hours() != 4 {
		t.Fatalf("expected 4h duration kept, got %v", moved.Hours())
	}

	retimed, err := svc.MoveSegmentWeek(context.Background(), segments[0].ID, date(2026, time.March, 16), "08:00")
	if err != nil {
		t.Fatalf("MoveSegmentWeek returned error: %v", err)
	}
	if retimed.StartsAt.Hour() != 8 || retimed.StartsAt.Minute() != 0 {
		t.Fatalf("expected 08:00 start, got %s", retimed.StartsAt.Format("15:04"))
	}
}

func weeklyViewFixture(t *testing.T, dir core.ProjectDirectory) (*fakeStore, *core.Service) {
	t.Helper()

	db := newFakeStore()
	svc := core.NewService(discardLogger(), db, fixedClock{now: testNow}, noHolidays{}, dir)

	active := mustCreateBacklog(t, svc, "P1")
	inactive := mustCreateBacklog(t, svc, "P2")

	t1 := mustCreateTask(t, svc, core.CreateTaskInput{
		BacklogID: active.ID, Title: "active work", Specialist: strPtr("Ana"), EstimatedHours: hoursPtr(4),
	})
	t2 := mustCreateTask(t, svc, core.CreateTaskInput{
		BacklogID: inactive.ID, Title: "stale work", Specialist: strPtr("Ana"), EstimatedHours: hoursPtr(2),
	})
	if _, err := svc.AutoSegment(context.Background(), t1.ID, 0, date(2026, time.March, 2), ""); err != nil {
		t.Fatalf("AutoSegment returned error: %v", err)
	}
	if _, err := svc.AutoSegment(context.Background(), t2.ID, 0, date(2026, time.March, 3), ""); err != nil {
		t.Fatalf("AutoSegment returned error: %v", err)
	}
	return db, svc
}

func TestSpecialistWeeklyView_FiltersInactiveProjects(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{active: map[string]struct{}{"P1": {}}}
	_, svc := weeklyViewFixture(t, dir)

	weeks, err := svc.SpecialistWeeklyView(context.Background(), "Ana", date(2026, time.March, 2), "")
	if err != nil {
		t.Fatalf("SpecialistWeeklyView returned error: %v", err)
	}
	if len(weeks) != 1 {
		t.Fatalf("expected 1 week, got %d", len(weeks))
	}
	week := weeks[0]
	if len(week.Days) != 5 {
		t.Fatalf("expected Mon-Fri days, got %d", len(week.Days))
	}
	if week.TotalHours != 4 {
		t.Fatalf("expected only the active project's 4h, got %v", week.TotalHours)
	}
	if len(week.Days[0].Segments) != 1 || week.Days[0].Segments[0].ProjectID != "P1" {
		t.Fatalf("expected Monday to hold the active segment")
	}
	if len(week.Days[1].Segments) != 0 {
		t.Fatalf("expected the inactive project's Tuesday segment filtered out")
	}
}

func TestSpecialistWeeklyView_DegradesWhenDirectoryIsDown(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{err: fmt.Errorf("%w: macro offline", core.ErrUpstreamUnavailable)}
	_, svc := weeklyViewFixture(t, dir)

	weeks, err := svc.SpecialistWeeklyView(context.Background(), "Ana", date(2026, time.March, 2), "")
	if err != nil {
		t.Fatalf("expected graceful degradation, got %v", err)
	}
	if weeks[0].TotalHours != 6 {
		t.Fatalf("expected the unfiltered 6h, got %v", weeks[0].TotalHours)
	}
}

func TestSpecialistWeeklyView_ExtendedMode(t *testing.T) {
	t.Parallel()

	_, svc := weeklyViewFixture(t, nil)

	weeks, err := svc.SpecialistWeeklyView(context.Background(), "Ana", date(2026, time.March, 2), core.WeeklyViewExtended)
	if err != nil {
		t.Fatalf("SpecialistWeeklyView returned error: %v", err)
	}
	if len(weeks) != 4 {
		t.Fatalf("expected 4 weeks, got %d", len(weeks))
	}
	if !weeks[1].WeekStart.Equal(date(2026, time.March, 9)) {
		t.Fatalf("expected second week to start 2026-03-09, got %s", weeks[1].WeekStart)
	}
}

func TestSpecialistWeeklyView_InvalidMode(t *testing.T) {
	t.Parallel()

	_, svc := newTestService()

	_, err := svc.SpecialistWeeklyView(context.Background(), "Ana", date(2026, time.March, 2), "quarterly")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
