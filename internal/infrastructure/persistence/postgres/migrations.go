package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// Schema for the five attestation tables. Referential integrity and the
// closed grade range 2..5 are enforced by the store; the core assumes them.
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator applies embedded migrations in order, tracking them in a
// version table.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a migrator with the embedded registry migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: Migrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if needed.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

// AppliedVersions returns the versions already applied.
func (m *Migrator) AppliedVersions(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time

		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}

		applied[version] = appliedAt
	}

	return applied, rows.Err()
}

// Migrate applies all pending migrations, each in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.AppliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, isApplied := applied[mig.Version]; isApplied {
			continue
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}

			insertQuery := fmt.Sprintf(
				"INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := tx.Exec(ctx, insertQuery, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", mig.Version, mig.Name, err)
		}
	}

	return nil
}

// Status returns every migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Migration, len(m.migrations))
	copy(result, m.migrations)

	for i := range result {
		if appliedAt, ok := applied[result[i].Version]; ok {
			result[i].IsApplied = true
			result[i].AppliedAt = appliedAt
		}
	}

	return result, nil
}

// Migrations returns all embedded migrations.
func Migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_attestation_tables",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_search_indexes",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS student_groups (
	group_id BIGSERIAL PRIMARY KEY,
	group_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS students (
	student_id BIGSERIAL PRIMARY KEY,
	last_name TEXT NOT NULL,
	first_name TEXT NOT NULL,
	record_book_number TEXT NOT NULL UNIQUE,
	group_id BIGINT NOT NULL REFERENCES student_groups(group_id)
);

CREATE TABLE IF NOT EXISTS attestation_types (
	type_id BIGSERIAL PRIMARY KEY,
	type_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS commission_members (
	member_id BIGSERIAL PRIMARY KEY,
	full_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attestation_results (
	result_id BIGSERIAL PRIMARY KEY,
	student_id BIGINT NOT NULL REFERENCES students(student_id),
	type_id BIGINT NOT NULL REFERENCES attestation_types(type_id),
	member_id BIGINT NOT NULL REFERENCES commission_members(member_id),
	grade INTEGER NOT NULL CHECK (grade BETWEEN 2 AND 5),
	topic TEXT NOT NULL DEFAULT '',
	exam_date DATE NOT NULL
);
`

const migration001Down = `
DROP TABLE IF EXISTS attestation_results;
DROP TABLE IF EXISTS commission_members;
DROP TABLE IF EXISTS attestation_types;
DROP TABLE IF EXISTS students;
DROP TABLE IF EXISTS student_groups;
`

const migration002Up = `
CREATE INDEX IF NOT EXISTS idx_students_last_name ON students (last_name);
CREATE INDEX IF NOT EXISTS idx_students_group_id ON students (group_id);
CREATE INDEX IF NOT EXISTS idx_results_student_id ON attestation_results (student_id);
CREATE INDEX IF NOT EXISTS idx_results_type_id ON attestation_results (type_id);
CREATE INDEX IF NOT EXISTS idx_results_member_id ON attestation_results (member_id);
`

const migration002Down = `
DROP INDEX IF EXISTS idx_results_member_id;
DROP INDEX IF EXISTS idx_results_type_id;
DROP INDEX IF EXISTS idx_results_student_id;
DROP INDEX IF EXISTS idx_students_group_id;
DROP INDEX IF EXISTS idx_students_last_name;
`
