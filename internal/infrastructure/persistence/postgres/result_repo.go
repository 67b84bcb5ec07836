package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/attestation-hub/attestation-registry/internal/domain/attestation"
	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESULT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ResultRepository implements attestation.ResultRepository for PostgreSQL.
type ResultRepository struct {
	conn *Connection
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(conn *Connection) *ResultRepository {
	return &ResultRepository{conn: conn}
}

// searchPattern builds the case-insensitive substring pattern for the admin
// listing. An empty search text matches every row.
func searchPattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Operations
// ─────────────────────────────────────────────────────────────────────────────

// ListForAdmin returns the full admin listing filtered by search text.
// A row matches when the text is a case-insensitive substring of the
// student's last name OR first name OR group name.
func (r *ResultRepository) ListForAdmin(ctx context.Context, search string) ([]attestation.AdminRow, error) {
	query := `
		SELECT ar.result_id,
			   s.last_name || ' ' || s.first_name,
			   g.group_name,
			   at.type_name,
			   ar.grade,
			   cm.full_name,
			   ar.exam_date
		FROM attestation_results ar
		JOIN students s ON ar.student_id = s.student_id
		JOIN student_groups g ON s.group_id = g.group_id
		JOIN attestation_types at ON ar.type_id = at.type_id
		JOIN commission_members cm ON ar.member_id = cm.member_id
		WHERE LOWER(s.last_name) LIKE $1
		   OR LOWER(s.first_name) LIKE $1
		   OR LOWER(g.group_name) LIKE $1
		ORDER BY g.group_name, s.last_name
	`

	rows, err := r.conn.Query(ctx, query, searchPattern(search))
	if err != nil {
		return nil, shared.WrapError("attestation", "ListForAdmin", shared.ErrQuery,
			"failed to query admin listing", err)
	}
	defer rows.Close()

	return scanAdminRows(rows)
}

// GroupStatistics returns one row per group that has at least one result,
// ordered by average grade descending. StudentCount counts distinct
// students of the group with at least one result.
func (r *ResultRepository) GroupStatistics(ctx context.Context) ([]attestation.GroupStat, error) {
	query := `
		SELECT g.group_name,
			   COUNT(DISTINCT s.student_id),
			   AVG(ar.grade::FLOAT)
		FROM attestation_results ar
		JOIN students s ON ar.student_id = s.student_id
		JOIN student_groups g ON s.group_id = g.group_id
		GROUP BY g.group_name
		ORDER BY AVG(ar.grade::FLOAT) DESC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("attestation", "GroupStatistics", shared.ErrQuery,
			"failed to query group statistics", err)
	}
	defer rows.Close()

	stats := make([]attestation.GroupStat, 0)
	for rows.Next() {
		var gs attestation.GroupStat
		if err := rows.Scan(&gs.GroupName, &gs.StudentCount, &gs.AverageGrade); err != nil {
			return nil, shared.WrapError("attestation", "GroupStatistics", shared.ErrQuery,
				"failed to scan group statistics row", err)
		}
		stats = append(stats, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("attestation", "GroupStatistics", shared.ErrQuery,
			"failed to read group statistics rows", err)
	}

	return stats, nil
}

// ResultsByStudent returns one student's results. Zero rows is an empty
// slice, not an error.
func (r *ResultRepository) ResultsByStudent(ctx context.Context, studentID int64) ([]attestation.StudentRow, error) {
	query := `
		SELECT at.type_name, ar.grade, ar.topic, cm.full_name, ar.exam_date
		FROM attestation_results ar
		JOIN attestation_types at ON ar.type_id = at.type_id
		JOIN commission_members cm ON ar.member_id = cm.member_id
		WHERE ar.student_id = $1
		ORDER BY ar.exam_date, at.type_name
	`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, shared.WrapError("attestation", "ResultsByStudent", shared.ErrQuery,
			"failed to query student results", err)
	}
	defer rows.Close()

	results := make([]attestation.StudentRow, 0)
	for rows.Next() {
		var sr attestation.StudentRow
		if err := rows.Scan(&sr.TypeName, &sr.Grade, &sr.Topic, &sr.MemberName, &sr.ExamDate); err != nil {
			return nil, shared.WrapError("attestation", "ResultsByStudent", shared.ErrQuery,
				"failed to scan student result row", err)
		}
		results = append(results, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("attestation", "ResultsByStudent", shared.ErrQuery,
			"failed to read student result rows", err)
	}

	return results, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Write Operations
// ─────────────────────────────────────────────────────────────────────────────

// UpdateGrade applies a single-row, single-field grade update inside a
// transaction: the store commits on success and is left unchanged on
// failure. Re-applying the same grade is observable as success.
func (r *ResultRepository) UpdateGrade(ctx context.Context, id attestation.ResultID, grade attestation.Grade) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE attestation_results SET grade = $1 WHERE result_id = $2",
			int(grade), int64(id),
		)
		if err != nil {
			if IsCheckViolation(err) {
				return shared.WrapError("attestation", "UpdateGrade", shared.ErrMutation,
					"grade rejected by store constraint", err)
			}
			return shared.WrapError("attestation", "UpdateGrade", shared.ErrMutation,
				"failed to update grade", err)
		}

		if tag.RowsAffected() == 0 {
			return shared.ErrResultNotFound
		}

		return nil
	})
}

// scanAdminRows collects the joined admin listing rows.
func scanAdminRows(rows pgx.Rows) ([]attestation.AdminRow, error) {
	out := make([]attestation.AdminRow, 0)
	for rows.Next() {
		var ar attestation.AdminRow
		if err := rows.Scan(&ar.ResultID, &ar.StudentName, &ar.GroupName,
			&ar.TypeName, &ar.Grade, &ar.MemberName, &ar.ExamDate); err != nil {
			return nil, shared.WrapError("attestation", "ListForAdmin", shared.ErrQuery,
				"failed to scan admin row", err)
		}
		out = append(out, ar)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("attestation", "ListForAdmin", shared.ErrQuery,
			"failed to read admin rows", err)
	}
	return out, nil
}
