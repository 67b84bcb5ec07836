package postgres

import (
	"context"

	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
	"github.com/attestation-hub/attestation-registry/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// DIRECTORY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// DirectoryRepository implements student.DirectoryRepository for PostgreSQL.
type DirectoryRepository struct {
	conn *Connection
}

// NewDirectoryRepository creates a new DirectoryRepository.
func NewDirectoryRepository(conn *Connection) *DirectoryRepository {
	return &DirectoryRepository{conn: conn}
}

// LoadDirectory returns the full roster of students ordered by last name
// ascending, one entry per student with the login display label
// "LastName FirstName (RecordBookNumber)". Runs once per process lifetime.
func (r *DirectoryRepository) LoadDirectory(ctx context.Context) ([]student.DirectoryEntry, error) {
	query := `
		SELECT student_id, last_name, first_name, record_book_number
		FROM students
		ORDER BY last_name
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("student", "LoadDirectory", shared.ErrQuery,
			"failed to query student directory", err)
	}
	defer rows.Close()

	entries := make([]student.DirectoryEntry, 0)
	for rows.Next() {
		var (
			id                            int64
			lastName, firstName, recBook string
		)
		if err := rows.Scan(&id, &lastName, &firstName, &recBook); err != nil {
			return nil, shared.WrapError("student", "LoadDirectory", shared.ErrQuery,
				"failed to scan directory row", err)
		}
		entries = append(entries, student.DirectoryEntry{
			StudentID: id,
			Label:     student.FormatLabel(lastName, firstName, recBook),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("student", "LoadDirectory", shared.ErrQuery,
			"failed to read directory rows", err)
	}

	return entries, nil
}
