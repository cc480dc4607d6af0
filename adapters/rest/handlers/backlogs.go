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

func NewCreateBacklogHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.CreateBacklogIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		available := true
		if in.AvailableForSprint != nil {
			available = *in.AvailableForSprint
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		b, err := svc.CreateBacklog(ctx, in.ProjectID, available)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, b, http.StatusCreated)
	}
}

func NewGetBacklogHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		b, err := svc.GetBacklog(ctx, id)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, b, http.StatusOK)
	}
}

func NewListColumnsHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		cols, err := svc.ListColumns(ctx)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"columns": cols}, http.StatusOK)
	}
}
