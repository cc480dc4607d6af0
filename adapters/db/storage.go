package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

type DB struct {
	log  *slog.Logger
	conn *sqlx.DB
	queries
}

func New(log *slog.Logger, address string) (*DB, error) {
	conn, err := sqlx.Connect("pgx", address)
	if err != nil {
		log.Error("connection problem", "address", address, "error", err)
		return nil, err
	}
	return &DB{log: log, conn: conn, queries: queries{ext: conn}}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Tx runs fn against a single transaction; fn's error rolls everything
// back.
func (db *DB) Tx(ctx context.Context, fn func(q core.Queries) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(queries{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.log.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	return tx.Commit()
}

// queries implements core.Queries over either the pool or an open
// transaction.
type queries struct {
	ext sqlx.ExtContext
}

// ---- Backlogs

func (q queries) CreateBacklog(ctx context.Context, b *core.Backlog) error {
	const query = `
		INSERT INTO backlogs(project_id, available_for_sprint)
		VALUES ($1, $2)
		RETURNING id, created_at;
	`
	err := q.ext.QueryRowxContext(ctx, query, b.ProjectID, b.AvailableForSprint).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("backlog for project %q exists: %w", b.ProjectID, core.ErrInvalidInput)
		}
		return fmt.Errorf("insert backlog: %w", err)
	}
	return nil
}

func (q queries) GetBacklog(ctx context.Context, id int64) (core.Backlog, error) {
	const query = `SELECT id, project_id, available_for_sprint, created_at FROM backlogs WHERE id = $1`

	var b core.Backlog
	if err := sqlx.GetContext(ctx, q.ext, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Backlog{}, fmt.Errorf("backlog %d: %w", id, core.ErrNotFound)
		}
		return core.Backlog{}, fmt.Errorf("get backlog: %w", err)
	}
	return b, nil
}

// ---- Columns

func (q queries) GetColumn(ctx context.Context, id int64) (core.Column, error) {
	const query = `SELECT id, name, display_order FROM board_columns WHERE id = $1`

	var c core.Column
	if err := sqlx.GetContext(ctx, q.ext, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Column{}, fmt.Errorf("column %d: %w", id, core.ErrNotFound)
		}
		return core.Column{}, fmt.Errorf("get column: %w", err)
	}
	return c, nil
}

func (q queries) ListColumns(ctx context.Context) ([]core.Column, error) {
	const query = `SELECT id, name, display_order FROM board_columns ORDER BY display_order ASC`

	var out []core.Column
	if err := sqlx.SelectContext(ctx, q.ext, &out, query); err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	return out, nil
}

// ---- Sprints

func (q queries) CreateSprint(ctx context.Context, s *core.Sprint) error {
	const query = `
		INSERT INTO sprints(name, start_date, end_date, goal, criticality)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at;
	`
	err := q.ext.QueryRowxContext(ctx, query,
		s.Name, s.StartDate, s.EndDate, s.Goal, s.Criticality).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("sprint window: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("insert sprint: %w", err)
	}
	return nil
}

func (q queries) GetSprint(ctx context.Context, id int64) (core.Sprint, error) {
	const query = `
		SELECT id, name, start_date, end_date, goal, criticality,
		       archived, archived_at, archive_note, created_at
		FROM sprints
		WHERE id = $1;
	`

	var s core.Sprint
	if err := sqlx.GetContext(ctx, q.ext, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Sprint{}, fmt.Errorf("sprint %d: %w", id, core.ErrNotFound)
		}
		return core.Sprint{}, fmt.Errorf("get sprint: %w", err)
	}
	return s, nil
}

func (q queries) ListSprints(ctx context.Context, includeArchived bool) ([]core.Sprint, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, name, start_date, end_date, goal, criticality,
		archived, archived_at, archive_note, created_at FROM sprints`)
	if !includeArchived {
		sb.WriteString(` WHERE archived = false`)
	}
	sb.WriteString(` ORDER BY start_date DESC, id DESC`)

	var out []core.Sprint
	if err := sqlx.SelectContext(ctx, q.ext, &out, sb.String()); err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	return out, nil
}

func (q queries) UpdateSprint(ctx context.Context, s core.Sprint) error {
	const query = `
		UPDATE sprints
		SET name = $2, start_date = $3, end_date = $4, goal = $5,
		    criticality = $6, archived = $7, archived_at = $8, archive_note = $9
		WHERE id = $1;
	`
	res, err := q.ext.ExecContext(ctx, query, s.ID,
		s.Name, s.StartDate, s.EndDate, s.Goal,
		s.Criticality, s.Archived, s.ArchivedAt, s.ArchiveNote)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("sprint window: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("update sprint: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return fmt.Errorf("sprint %d: %w", s.ID, core.ErrNotFound)
	}
	return nil
}

// ---- pg helpers

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
