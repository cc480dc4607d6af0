package db

import (
	_ "embed"
	"fmt"
)

//go:embed migrations/01_create_backlogs.up.sql
var createBacklogsUp string

//go:embed migrations/02_create_columns.up.sql
var createColumnsUp string

//go:embed migrations/03_create_sprints.up.sql
var createSprintsUp string

//go:embed migrations/04_create_tasks.up.sql
var createTasksUp string

//go:embed migrations/05_create_task_segments.up.sql
var createTaskSegmentsUp string

//go:embed migrations/06_create_specialist_configs.up.sql
var createSpecialistConfigsUp string

// Migrate applies the schema. Statements are idempotent so startup can
// run them unconditionally.
func (db *DB) Migrate() error {
	db.log.Debug("running pmo migrations")

	steps := []struct {
		name string
		sql  string
	}{
		{"backlogs", createBacklogsUp},
		{"columns", createColumnsUp},
		{"sprints", createSprintsUp},
		{"tasks", createTasksUp},
		{"task_segments", createTaskSegmentsUp},
		{"specialist_configs", createSpecialistConfigsUp},
	}
	for _, step := range steps {
		if _, err := db.conn.Exec(step.sql); err != nil {
			return fmt.Errorf("apply %s migration: %w", step.name, err)
		}
	}

	db.log.Debug("pmo migrations finished")
	return nil
}
