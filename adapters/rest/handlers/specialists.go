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

func NewWeeklyViewHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		q := r.URL.Query()

		var weekStart time.Time
		if v := q.Get("start"); v != "" {
			d, err := rest.ParseDate(v)
			if err != nil {
				res.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			weekStart = *d
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		weeks, err := svc.SpecialistWeeklyView(ctx, name, weekStart, q.Get("mode"))
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"weeks": weeks}, http.StatusOK)
	}
}

func NewRedistributeHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		var in rest.RedistributeIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		report, err := svc.RedistributeSpecialist(ctx, name, in.MaxHoursPerWeek, in.WeeksAhead)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, report, http.StatusOK)
	}
}

func NewGetSpecialistConfigHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		cfg, err := svc.GetSpecialistConfig(ctx, name)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, cfg, http.StatusOK)
	}
}

func NewPutSpecialistConfigHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		var in rest.SpecialistConfigIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		workdays, err := rest.ParseWorkdays(in.Workdays)
		if err != nil {
			res.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		holidays := make([]time.Time, 0, len(in.CustomHolidays))
		for _, s := range in.CustomHolidays {
			d, err := rest.ParseDate(s)
			if err != nil || d == nil {
				res.Error(w, "invalid custom holiday", http.StatusBadRequest)
				return
			}
			holidays = append(holidays, *d)
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		cfg, err := svc.PutSpecialistConfig(ctx, core.SpecialistConfig{
			Name:             name,
			DailyHours:       in.DailyHours,
			Workdays:         workdays,
			BufferPct:        in.BufferPct,
			ConsiderHolidays: in.ConsiderHolidays,
			CustomHolidays:   holidays,
		})
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, cfg, http.StatusOK)
	}
}
