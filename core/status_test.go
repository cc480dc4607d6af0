package core_test

import (
	"testing"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

func TestMapColumnName_ExactMatches(t *testing.T) {
	t.Parallel()

	cases := map[string]core.Status{
		"A Fazer":      core.StatusTODO,
		"  todo  ":     core.StatusTODO,
		"Em Andamento": core.StatusInProgress,
		"DOING":        core.StatusInProgress,
		"Revisão":      core.StatusReview,
		"revisao":      core.StatusReview,
		"Concluído":    core.StatusDone,
		"done":         core.StatusDone,
		"Arquivado":    core.StatusArchived,
	}
	for name, want := range cases {
		got, ok := core.MapColumnName(name)
		if !ok || got != want {
			t.Fatalf("%q: expected %s, got %s (ok=%v)", name, want, got, ok)
		}
	}
}

func TestMapColumnName_SubstringFallback(t *testing.T) {
	t.Parallel()

	got, ok := core.MapColumnName("Sprint 3 - Em Andamento")
	if !ok || got != core.StatusInProgress {
		t.Fatalf("expected substring match to in_progress, got %s (ok=%v)", got, ok)
	}
}

func TestMapColumnName_UnknownAndAmbiguous(t *testing.T) {
	t.Parallel()

	if _, ok := core.MapColumnName("Parking Lot"); ok {
		t.Fatalf("unknown name must not map")
	}
	if _, ok := core.MapColumnName(""); ok {
		t.Fatalf("empty name must not map")
	}
	// matches both todo ("a fazer") and done ("feito") synonyms
	if _, ok := core.MapColumnName("a fazer ou feito"); ok {
		t.Fatalf("ambiguous name must not map")
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := [][2]core.Status{
		{core.StatusTODO, core.StatusInProgress},
		{core.StatusInProgress, core.StatusTODO},
		{core.StatusInProgress, core.StatusReview},
		{core.StatusInProgress, core.StatusDone},
		{core.StatusReview, core.StatusDone},
		{core.StatusReview, core.StatusInProgress},
		{core.StatusDone, core.StatusReview},
		{core.StatusArchived, core.StatusTODO},
		{core.StatusDone, core.StatusDone}, // identity
	}
	for _, edge := range allowed {
		if !core.CanTransition(edge[0], edge[1]) {
			t.Fatalf("expected %s -> %s to be allowed", edge[0], edge[1])
		}
	}

	forbidden := [][2]core.Status{
		{core.StatusTODO, core.StatusReview},
		{core.StatusTODO, core.StatusDone},
		{core.StatusDone, core.StatusTODO},
		{core.StatusDone, core.StatusInProgress},
		{core.StatusArchived, core.StatusDone},
	}
	for _, edge := range forbidden {
		if core.CanTransition(edge[0], edge[1]) {
			t.Fatalf("expected %s -> %s to be rejected", edge[0], edge[1])
		}
	}
}
