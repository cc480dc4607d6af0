package rest_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eduardokochhann/app.control360.pmo-sub000/adapters/rest"
	"github.com/eduardokochhann/app.control360.pmo-sub000/core"

	"github.com/stretchr/testify/assert"
)

func TestWriteErr_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: empty title", core.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: task 7", core.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: todo -> done", core.ErrInvalidTransition), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: macro offline", core.ErrUpstreamUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: duplicate positions", core.ErrConsistency), http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		rest.WriteErr(rec, tc.err)
		assert.Equal(t, tc.want, rec.Code, "error %v", tc.err)
	}
}

func TestWriteErr_InternalErrorsAreOpaque(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rest.WriteErr(rec, fmt.Errorf("%w: positions 100/100", core.ErrConsistency))
	assert.NotContains(t, rec.Body.String(), "positions")
	assert.Contains(t, rec.Body.String(), "internal error")
}
