package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/adapters/rest"
	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
	"github.com/eduardokochhann/app.control360.pmo-sub000/pkg/res"
)

func NewPingHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.Ping(ctx); err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, map[string]any{"status": "ok"}, http.StatusOK)
	}
}
