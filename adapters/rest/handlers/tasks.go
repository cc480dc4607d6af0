package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/adapters/rest"
	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
	"github.com/eduardokochhann/app.control360.pmo-sub000/pkg/res"
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func NewCreateTaskHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.CreateTaskIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		priority, ok := rest.ParsePriority(in.Priority)
		if !ok {
			res.Error(w, "invalid priority", http.StatusBadRequest)
			return
		}
		start, err := rest.ParseDate(in.StartDate)
		if err != nil {
			res.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		due, err := rest.ParseDate(in.DueDate)
		if err != nil {
			res.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.CreateTask(ctx, core.CreateTaskInput{
			BacklogID:      in.BacklogID,
			ColumnID:       in.ColumnID,
			Title:          in.Title,
			Description:    in.Description,
			Priority:       priority,
			EstimatedHours: in.EstimatedHours,
			LoggedHours:    in.LoggedHours,
			StartDate:      start,
			DueDate:        due,
			Specialist:     in.Specialist,
			IsGeneric:      in.IsGeneric,
			IsUnplanned:    in.IsUnplanned,
		})
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusCreated)
	}
}

func NewGetTaskHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.GetTask(ctx, id)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusOK)
	}
}

func NewListTasksHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var f core.TaskFilter
		if v := q.Get("backlog_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id <= 0 {
				res.Error(w, "invalid backlog_id", http.StatusBadRequest)
				return
			}
			f.BacklogID = &id
		}
		if v := q.Get("sprint_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id <= 0 {
				res.Error(w, "invalid sprint_id", http.StatusBadRequest)
				return
			}
			f.SprintID = &id
		}
		if v := q.Get("status"); v != "" {
			st, ok := rest.ParseStatus(v)
			if !ok {
				res.Error(w, "invalid status", http.StatusBadRequest)
				return
			}
			f.Status = &st
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		items, err := svc.ListTasks(ctx, f)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"tasks": items}, http.StatusOK)
	}
}

func NewPatchTaskHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var in rest.PatchTaskIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var p core.TaskPatch
		p.Title = in.Title
		p.Description = in.Description
		p.LoggedHours = in.LoggedHours
		p.Specialist = in.Specialist
		p.ColumnID = in.ColumnID
		p.IsGeneric = in.IsGeneric
		p.IsUnplanned = in.IsUnplanned

		if in.Priority != nil {
			priority, ok := rest.ParsePriority(*in.Priority)
			if !ok || priority == "" {
				res.Error(w, "invalid priority", http.StatusBadRequest)
				return
			}
			p.Priority = &priority
		}

		value, clear, err := rest.ParseEstimate(in.EstimatedHours)
		if err != nil {
			res.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.EstimatedHours, p.ClearEstimate = value, clear

		if in.StartDate != nil {
			d, err := rest.ParseDate(*in.StartDate)
			if err != nil {
				res.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			p.StartDate = d
		}
		if in.DueDate != nil {
			d, err := rest.ParseDate(*in.DueDate)
			if err != nil {
				res.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			p.DueDate = d
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.UpdateTask(ctx, id, p)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusOK)
	}
}

func NewDeleteTaskHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.DeleteTask(ctx, id); err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"ok": true}, http.StatusOK)
	}
}

func NewMoveTaskHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var in rest.MoveTaskIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.MoveTask(ctx, id, in.ColumnID, in.Position)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusOK)
	}
}

func NewAssignSprintHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var in rest.AssignSprintIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.AssignToSprint(ctx, id, in.SprintID, in.Position)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, t, http.StatusOK)
	}
}

func NewAutoSegmentHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var in rest.AutoSegmentIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		start, err := rest.ParseDate(in.StartDate)
		if err != nil {
			res.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var startDate time.Time
		if start != nil {
			startDate = *start
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		segments, err := svc.AutoSegment(ctx, id, in.MaxHours, startDate, in.StartTime)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"segments": segments}, http.StatusCreated)
	}
}
