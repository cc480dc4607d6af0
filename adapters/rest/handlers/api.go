package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

// Register mounts every API route on the mux. Handlers share one request
// timeout and the service logger.
func Register(mux *http.ServeMux, log *slog.Logger, svc *core.Service, timeout time.Duration) {
	mux.HandleFunc("GET /api/ping", NewPingHandler(log, svc, timeout))

	mux.HandleFunc("POST /api/backlogs", NewCreateBacklogHandler(log, svc, timeout))
	mux.HandleFunc("GET /api/backlogs/{id}", NewGetBacklogHandler(log, svc, timeout))
	mux.HandleFunc("GET /api/columns", NewListColumnsHandler(log, svc, timeout))

	mux.HandleFunc("POST /api/tasks", NewCreateTaskHandler(log, svc, timeout))
	mux.HandleFunc("GET /api/tasks", NewListTasksHandler(log, svc, timeout))
	mux.HandleFunc("GET /api/tasks/{id}", NewGetTaskHandler(log, svc, timeout))
	mux.HandleFunc("PATCH /api/tasks/{id}", NewPatchTaskHandler(log, svc, timeout))
	mux.HandleFunc("DELETE /api/tasks/{id}", NewDeleteTaskHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/tasks/{id}/move", NewMoveTaskHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/tasks/{id}/sprint", NewAssignSprintHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/tasks/{id}/segments/auto", NewAutoSegmentHandler(log, svc, timeout))

	mux.HandleFunc("POST /api/segments/{id}/complete", NewCompleteSegmentHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/segments/{id}/week", NewMoveSegmentWeekHandler(log, svc, timeout))

	mux.HandleFunc("POST /api/sprints", NewCreateSprintHandler(log, svc, timeout))
	mux.HandleFunc("GET /api/sprints", NewListSprintsHandler(log, svc, timeout))
	mux.HandleFunc("GET /api/sprints/{id}", NewGetSprintHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/sprints/{id}/archive", NewArchiveSprintHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/sprints/{id}/calculate", NewCalculateDatesHandler(log, svc, timeout))
	mux.HandleFunc("GET /api/sprints/{id}/alerts", NewCapacityAlertsHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/sprints/calculate", NewBatchCalculateHandler(log, svc, timeout))

	mux.HandleFunc("GET /api/specialists/{name}/week", NewWeeklyViewHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/specialists/{name}/redistribute", NewRedistributeHandler(log, svc, timeout))
	mux.HandleFunc("GET /api/specialists/{name}/config", NewGetSpecialistConfigHandler(log, svc, timeout))
	mux.HandleFunc("PUT /api/specialists/{name}/config", NewPutSpecialistConfigHandler(log, svc, timeout))

	mux.HandleFunc("POST /api/lists/validate", NewValidateListHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/lists/rebalance", NewRebalanceListHandler(log, svc, timeout))
	mux.HandleFunc("POST /api/lists/reorder", NewReorderListHandler(log, svc, timeout))
}
