package core

import (
	"context"
	"fmt"
	"strings"
)

const (
	SeverityCritical      = "critical"
	SeverityWarning       = "warning"
	SeverityUnderutilised = "underutilized"
	SeverityOK            = "ok"

	HealthCritical = "critical"
	HealthWarning  = "warning"
	HealthHealthy  = "healthy"

	SuggestionRedistribution = "capacity_redistribution"
	SuggestionSprintScope    = "sprint_scope"
	SuggestionOptimization   = "capacity_optimization"
)

type SpecialistLoad struct {
	Specialist     string  `json:"specialist"`
	TaskCount      int     `json:"task_count"`
	EstimatedHours float64 `json:"estimated_hours"`
	CapacityHours  float64 `json:"capacity_hours"`
	Utilisation    float64 `json:"utilisation_pct"`
	Severity       string  `json:"severity"`
}

type Suggestion struct {
	Kind        string   `json:"kind"`
	Specialists []string `json:"specialists,omitempty"`
	Message     string   `json:"message"`
}

type CapacityReport struct {
	SprintID           int64            `json:"sprint_id"`
	SprintName         string           `json:"sprint_name"`
	Health             string           `json:"health"`
	OverallUtilisation float64          `json:"overall_utilisation_pct"`
	Specialists        []SpecialistLoad `json:"specialists"`
	Suggestions        []Suggestion     `json:"suggestions"`
}

// SprintCapacityAlerts aggregates per-specialist load against working
// calendar capacity over the sprint window and derives the alert levels
// and heuristic suggestions of the planning screen.
func (s *Service) SprintCapacityAlerts(ctx context.Context, sprintID int64) (CapacityReport, error) {
	if sprintID <= 0 {
		return CapacityReport{}, fmt.Errorf("%w: sprint id", ErrInvalidInput)
	}

	sprint, err := s.store.GetSprint(ctx, sprintID)
	if err != nil {
		return CapacityReport{}, err
	}
	tasks, err := s.store.ListTasksInList(ctx, ListKey{SprintID: sprintID})
	if err != nil {
		return CapacityReport{}, err
	}

	report := CapacityReport{
		SprintID:   sprint.ID,
		SprintName: sprint.Name,
		Health:     HealthHealthy,
	}

	var totalEffort, totalCapacity float64
	groups := groupBySpecialist(tasks)
	for _, name := range sortedSpecialists(groups) {
		cfg, err := s.loadSpecialistConfig(ctx, s.store, &name)
		if err != nil {
			return CapacityReport{}, err
		}

		var effort float64
		for _, t := range groups[name] {
			if t.EstimatedHours != nil {
				effort += *t.EstimatedHours
			}
		}
		capacity := s.CapacityHours(sprint.StartDate, sprint.EndDate, cfg)

		load := SpecialistLoad{
			Specialist:     name,
			TaskCount:      len(groups[name]),
			EstimatedHours: effort,
			CapacityHours:  capacity,
			Severity:       SeverityOK,
		}
		if capacity > 0 {
			load.Utilisation = effort / capacity * 100
		}
		switch {
		case capacity == 0 && effort > 0:
			load.Severity = SeverityCritical
		case load.Utilisation > 150:
			load.Severity = SeverityCritical
		case load.Utilisation > 100 || (load.Utilisation > 80 && capacity > 0):
			load.Severity = SeverityWarning
		case load.Utilisation < 60:
			load.Severity = SeverityUnderutilised
		}

		totalEffort += effort
		totalCapacity += capacity
		report.Specialists = append(report.Specialists, load)
	}

	if totalCapacity > 0 {
		report.OverallUtilisation = totalEffort / totalCapacity * 100
	}

	var anyWarning bool
	for _, load := range report.Specialists {
		switch load.Severity {
		case SeverityCritical:
			report.Health = HealthCritical
		case SeverityWarning:
			anyWarning = true
		}
	}
	if report.Health != HealthCritical && (anyWarning || report.OverallUtilisation > 85) {
		report.Health = HealthWarning
	}

	report.Suggestions = buildSuggestions(report)
	return report, nil
}

func buildSuggestions(r CapacityReport) []Suggestion {
	var out []Suggestion

	var overloaded, idle []string
	for _, load := range r.Specialists {
		if load.Utilisation > 100 || (load.CapacityHours == 0 && load.EstimatedHours > 0) {
			overloaded = append(overloaded, load.Specialist)
		}
		if load.Severity == SeverityUnderutilised && load.CapacityHours > 0 {
			idle = append(idle, load.Specialist)
		}
	}

	if len(overloaded) > 0 {
		out = append(out, Suggestion{
			Kind:        SuggestionRedistribution,
			Specialists: overloaded,
			Message:     fmt.Sprintf("redistribute load from: %s", strings.Join(overloaded, ", ")),
		})
	}
	if r.OverallUtilisation > 90 {
		out = append(out, Suggestion{
			Kind:    SuggestionSprintScope,
			Message: fmt.Sprintf("sprint is at %.0f%% of capacity; consider reducing scope", r.OverallUtilisation),
		})
	}
	if len(idle) > 0 {
		out = append(out, Suggestion{
			Kind:        SuggestionOptimization,
			Specialists: idle,
			Message:     fmt.Sprintf("free capacity available at: %s", strings.Join(idle, ", ")),
		})
	}
	return out
}
