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

func listKeyOf(in rest.ListKeyIn) core.ListKey {
	return core.ListKey{
		SprintID:  in.SprintID,
		BacklogID: in.BacklogID,
		ColumnID:  in.ColumnID,
	}
}

func NewValidateListHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.ListKeyIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		ok, err := svc.ValidateList(ctx, listKeyOf(in))
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"consistent": ok}, http.StatusOK)
	}
}

func NewRebalanceListHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.ListKeyIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.RebalanceList(ctx, listKeyOf(in)); err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"ok": true}, http.StatusOK)
	}
}

func NewReorderListHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.ListKeyIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if len(in.TaskIDs) == 0 {
			res.Error(w, "task_ids required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.ReorderList(ctx, listKeyOf(in), in.TaskIDs); err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"ok": true}, http.StatusOK)
	}
}
