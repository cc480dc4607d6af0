package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

func (q queries) InsertSegment(ctx context.Context, s *core.Segment) error {
	const query = `
		INSERT INTO task_segments(task_id, starts_at, ends_at, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;
	`
	err := q.ext.QueryRowxContext(ctx, query,
		s.TaskID, s.StartsAt, s.EndsAt, s.Description).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("segment task: %w", core.ErrNotFound)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("segment window: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("insert segment: %w", err)
	}
	return nil
}

func (q queries) GetSegment(ctx context.Context, id int64) (core.Segment, error) {
	const query = `SELECT id, task_id, starts_at, ends_at, description, created_at
		FROM task_segments WHERE id = $1`

	var s core.Segment
	if err := sqlx.GetContext(ctx, q.ext, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Segment{}, fmt.Errorf("segment %d: %w", id, core.ErrNotFound)
		}
		return core.Segment{}, fmt.Errorf("get segment: %w", err)
	}
	return s, nil
}

func (q queries) ListSegments(ctx context.Context, taskID int64) ([]core.Segment, error) {
	const query = `SELECT id, task_id, starts_at, ends_at, description, created_at
		FROM task_segments WHERE task_id = $1 ORDER BY starts_at ASC`

	var out []core.Segment
	if err := sqlx.SelectContext(ctx, q.ext, &out, query, taskID); err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	return out, nil
}

func (q queries) DeleteSegmentsForTask(ctx context.Context, taskID int64) error {
	const query = `DELETE FROM task_segments WHERE task_id = $1`

	if _, err := q.ext.ExecContext(ctx, query, taskID); err != nil {
		return fmt.Errorf("delete segments: %w", err)
	}
	return nil
}

func (q queries) UpdateSegment(ctx context.Context, s core.Segment) error {
	const query = `
		UPDATE task_segments
		SET starts_at = $2, ends_at = $3, description = $4
		WHERE id = $1;
	`
	res, err := q.ext.ExecContext(ctx, query, s.ID, s.StartsAt, s.EndsAt, s.Description)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("segment window: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("update segment: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return fmt.Errorf("segment %d: %w", s.ID, core.ErrNotFound)
	}
	return nil
}

// ListSegmentsBySpecialist matches the specialist case-insensitively and
// ignoring surrounding whitespace, the way board imports leave the field.
func (q queries) ListSegmentsBySpecialist(ctx context.Context, specialist string, from, to time.Time) ([]core.SegmentWithTask, error) {
	const query = `
		SELECT s.id, s.task_id, s.starts_at, s.ends_at, s.description, s.created_at,
		       t.title AS task_title, b.project_id AS project_id,
		       t.specialist AS task_specialist
		FROM task_segments s
		JOIN tasks t ON t.id = s.task_id
		JOIN backlogs b ON b.id = t.backlog_id
		WHERE lower(trim(t.specialist)) = lower(trim($1))
		  AND s.starts_at >= $2 AND s.starts_at < $3
		ORDER BY s.starts_at ASC;
	`

	var out []core.SegmentWithTask
	if err := sqlx.SelectContext(ctx, q.ext, &out, query, specialist, from, to); err != nil {
		return nil, fmt.Errorf("list segments by specialist: %w", err)
	}
	return out, nil
}

// ---- specialist configs

func (q queries) GetSpecialistConfig(ctx context.Context, name string) (core.SpecialistConfig, error) {
	const query = `SELECT name, daily_hours, workdays, buffer_pct, consider_holidays
		FROM specialist_configs WHERE name = $1`

	var cfg core.SpecialistConfig
	if err := sqlx.GetContext(ctx, q.ext, &cfg, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.SpecialistConfig{}, fmt.Errorf("specialist %q: %w", name, core.ErrNotFound)
		}
		return core.SpecialistConfig{}, fmt.Errorf("get specialist config: %w", err)
	}

	const holidaysQuery = `SELECT day FROM specialist_holidays WHERE specialist = $1 ORDER BY day ASC`
	if err := sqlx.SelectContext(ctx, q.ext, &cfg.CustomHolidays, holidaysQuery, name); err != nil {
		return core.SpecialistConfig{}, fmt.Errorf("get specialist holidays: %w", err)
	}
	return cfg, nil
}

func (q queries) PutSpecialistConfig(ctx context.Context, cfg core.SpecialistConfig) error {
	const query = `
		INSERT INTO specialist_configs(name, daily_hours, workdays, buffer_pct, consider_holidays)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET daily_hours = EXCLUDED.daily_hours,
		    workdays = EXCLUDED.workdays,
		    buffer_pct = EXCLUDED.buffer_pct,
		    consider_holidays = EXCLUDED.consider_holidays;
	`
	_, err := q.ext.ExecContext(ctx, query,
		cfg.Name, cfg.DailyHours, cfg.Workdays, cfg.BufferPct, cfg.ConsiderHolidays)
	if err != nil {
		return fmt.Errorf("put specialist config: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx,
		`DELETE FROM specialist_holidays WHERE specialist = $1`, cfg.Name); err != nil {
		return fmt.Errorf("reset specialist holidays: %w", err)
	}
	for _, day := range cfg.CustomHolidays {
		_, err := q.ext.ExecContext(ctx,
			`INSERT INTO specialist_holidays(specialist, day) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, cfg.Name, day)
		if err != nil {
			return fmt.Errorf("insert specialist holiday: %w", err)
		}
	}
	return nil
}
