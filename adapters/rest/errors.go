package rest

import (
	"errors"
	"net/http"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
	"github.com/eduardokochhann/app.control360.pmo-sub000/pkg/res"
)

func WriteErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		res.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrNotFound):
		res.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidTransition):
		res.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrUpstreamUnavailable):
		res.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		// consistency violations included: diagnostics go to the log,
		// the caller gets a generic signal
		res.Error(w, "internal error", http.StatusInternalServerError)
	}
}
