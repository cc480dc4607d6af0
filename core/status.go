package core

import "strings"

// columnSynonyms maps normalised column names to canonical statuses.
// Boards here are bilingual: the seeded lanes are Portuguese, imported
// boards often come with English names.
var columnSynonyms = map[string]Status{
	"a fazer":   StatusTODO,
	"à fazer":   StatusTODO,
	"todo":      StatusTODO,
	"to do":     StatusTODO,
	"pendente":  StatusTODO,
	"backlog":   StatusTODO,

	"em andamento": StatusInProgress,
	"andamento":    StatusInProgress,
	"in progress":  StatusInProgress,
	"doing":        StatusInProgress,
	"fazendo":      StatusInProgress,
	"em execução":  StatusInProgress,
	"em execucao":  StatusInProgress,

	"revisão":    StatusReview,
	"revisao":    StatusReview,
	"em revisão": StatusReview,
	"em revisao": StatusReview,
	"review":     StatusReview,
	"validação":  StatusReview,
	"validacao":  StatusReview,

	"concluído":  StatusDone,
	"concluido":  StatusDone,
	"concluída":  StatusDone,
	"concluida":  StatusDone,
	"done":       StatusDone,
	"feito":      StatusDone,
	"finalizado": StatusDone,
	"entregue":   StatusDone,

	"arquivado": StatusArchived,
	"archived":  StatusArchived,
	"arquivo":   StatusArchived,
}

// MapColumnName canonicalises a free-text column name to a status.
// First pass is an exact match on the normalised name, second pass a
// substring match; an ambiguous or missing match returns ok=false and the
// task keeps its prior status.
func MapColumnName(name string) (Status, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}

	if st, ok := columnSynonyms[n]; ok {
		return st, true
	}

	var (
		found Status
		hits  int
	)
	for syn, st := range columnSynonyms {
		if strings.Contains(n, syn) {
			if hits == 0 || st == found {
				found = st
				hits++
				continue
			}
			// two different statuses match: ambiguous
			return "", false
		}
	}
	if hits == 0 {
		return "", false
	}
	return found, true
}

var validTransitions = map[Status]map[Status]bool{
	StatusTODO:       {StatusInProgress: true, StatusArchived: true},
	StatusInProgress: {StatusTODO: true, StatusReview: true, StatusDone: true, StatusArchived: true},
	StatusReview:     {StatusInProgress: true, StatusDone: true, StatusArchived: true},
	StatusDone:       {StatusReview: true, StatusArchived: true},
	StatusArchived:   {StatusTODO: true},
}

// CanTransition reports whether moving from one status to another is
// allowed. Identity transitions are always valid.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	return validTransitions[from][to]
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusTODO, StatusInProgress, StatusReview, StatusDone, StatusArchived:
		return true
	}
	return false
}

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
