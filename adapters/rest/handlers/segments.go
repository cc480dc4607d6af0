package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/adapters/rest"
	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
	"github.com/eduardokochhann/app.control360.pmo-sub000/pkg/res"
)

func NewCompleteSegmentHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var in rest.CompleteSegmentIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		result, err := svc.CompleteSegment(ctx, id, in.LoggedHours, in.Notes)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, result, http.StatusOK)
	}
}

func NewMoveSegmentWeekHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var in rest.MoveSegmentWeekIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		week, err := rest.ParseDate(in.WeekStart)
		if err != nil || week == nil {
			res.Error(w, "invalid week_start", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		seg, err := svc.MoveSegmentWeek(ctx, id, *week, in.StartTime)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, seg, http.StatusOK)
	}
}
