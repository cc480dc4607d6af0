package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	defaultMaxHoursPerWeek = 40.0
	defaultWeeksAhead      = 4
)

type RedistributionMove struct {
	SegmentID int64     `json:"segment_id"`
	Hours     float64   `json:"hours"`
	FromWeek  time.Time `json:"from_week"`
	ToWeek    time.Time `json:"to_week"`
}

type WeekLoad struct {
	WeekStart   time.Time `json:"week_start"`
	HoursBefore float64   `json:"hours_before"`
	HoursAfter  float64   `json:"hours_after"`
}

type RedistributionReport struct {
	Specialist      string               `json:"specialist"`
	MaxHoursPerWeek float64              `json:"max_hours_per_week"`
	Moves           []RedistributionMove `json:"moves"`
	Weeks           []WeekLoad           `json:"weeks"`
}

// RedistributeSpecialist scans the specialist's upcoming weeks and moves
// the smallest segments out of overloaded weeks into the earliest week
// with room, appending a new week when none has. Moved segments keep
// their weekday, time-of-day and duration. This is a heuristic, not an
// optimiser: it stops as soon as no week exceeds the cap.
func (s *Service) RedistributeSpecialist(ctx context.Context, specialist string, maxHoursPerWeek float64, weeksAhead int) (RedistributionReport, error) {
	specialist = strings.TrimSpace(specialist)
	if specialist == "" {
		return RedistributionReport{}, fmt.Errorf("%w: empty specialist", ErrInvalidInput)
	}
	if maxHoursPerWeek == 0 {
		maxHoursPerWeek = defaultMaxHoursPerWeek
	}
	if maxHoursPerWeek < 0 {
		return RedistributionReport{}, fmt.Errorf("%w: negative weekly cap", ErrInvalidInput)
	}
	if weeksAhead == 0 {
		weeksAhead = defaultWeeksAhead
	}
	if weeksAhead < 0 {
		return RedistributionReport{}, fmt.Errorf("%w: negative horizon", ErrInvalidInput)
	}

	report := RedistributionReport{
		Specialist:      specialist,
		MaxHoursPerWeek: maxHoursPerWeek,
	}

	err := s.store.Tx(ctx, func(q Queries) error {
		horizonStart := MondayOf(s.clock.Now())
		horizonEnd := horizonStart.AddDate(0, 0, weeksAhead*7)

		segments, err := q.ListSegmentsBySpecialist(ctx, specialist, horizonStart, horizonEnd)
		if err != nil {
			return err
		}

		weeks := make(map[time.Time][]SegmentWithTask)
		for _, seg := range segments {
			wk := MondayOf(seg.StartsAt)
			weeks[wk] = append(weeks[wk], seg)
		}

		loads := make(map[time.Time]float64)
		before := make(map[time.Time]float64)
		for wk, segs := range weeks {
			for _, seg := range segs {
				loads[wk] += seg.Hours()
			}
			before[wk] = loads[wk]
		}

		lastWeek := horizonStart.AddDate(0, 0, (weeksAhead-1)*7)
		for wk := horizonStart; !wk.After(lastWeek); wk = wk.AddDate(0, 0, 7) {
			if loads[wk] <= maxHoursPerWeek {
				continue
			}

			// smallest segments first, so the board changes as little
			// as possible
			candidates := append([]SegmentWithTask(nil), weeks[wk]...)
			sort.Slice(candidates, func(i, j int) bool {
				return candidates[i].Hours() < candidates[j].Hours()
			})

			for _, seg := range candidates {
				if loads[wk] <= maxHoursPerWeek {
					break
				}
				hours := seg.Hours()

				target := time.Time{}
				for cand := wk.AddDate(0, 0, 7); !cand.After(lastWeek); cand = cand.AddDate(0, 0, 7) {
					if loads[cand]+hours <= maxHoursPerWeek {
						target = cand
						break
					}
				}
				if target.IsZero() {
					lastWeek = lastWeek.AddDate(0, 0, 7)
					target = lastWeek
				}

				delta := target.Sub(MondayOf(seg.StartsAt))
				moved := seg.Segment
				moved.StartsAt = moved.StartsAt.Add(delta)
				moved.EndsAt = moved.EndsAt.Add(delta)
				if err := q.UpdateSegment(ctx, moved); err != nil {
					return err
				}

				loads[wk] -= hours
				loads[target] += hours
				report.Moves = append(report.Moves, RedistributionMove{
					SegmentID: seg.ID,
					Hours:     hours,
					FromWeek:  wk,
					ToWeek:    target,
				})
			}
		}

		for wk := horizonStart; !wk.After(lastWeek); wk = wk.AddDate(0, 0, 7) {
			report.Weeks = append(report.Weeks, WeekLoad{
				WeekStart:   wk,
				HoursBefore: before[wk],
				HoursAfter:  loads[wk],
			})
		}
		return nil
	})
	if err != nil {
		return RedistributionReport{}, err
	}
	return report, nil
}
