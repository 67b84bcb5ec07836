// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"time"

	"github.com/attestation-hub/attestation-registry/internal/domain/attestation"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST FOR ADMIN QUERY
// Административная выборка всех результатов с живой фильтрацией.
// Фильтр перезапрашивается у хранилища на каждое изменение строки поиска,
// а не применяется к снимку в памяти: данные всегда свежие, состояние проще.
// ══════════════════════════════════════════════════════════════════════════════

// ListForAdminQuery содержит параметры административной выборки.
type ListForAdminQuery struct {
	// Search - текст фильтра. Строка попадает в выборку, если текст
	// является подстрокой (без учёта регистра) фамилии, имени или
	// имени группы. Пустая строка возвращает все строки.
	Search string
}

// AdminRowDTO - строка административной таблицы.
type AdminRowDTO struct {
	// ResultID - идентификатор результата (нужен для редактирования).
	ResultID int64 `json:"result_id"`

	// StudentName - фамилия и имя студента.
	StudentName string `json:"student_name"`

	// GroupName - имя группы.
	GroupName string `json:"group_name"`

	// TypeName - вид аттестации.
	TypeName string `json:"type_name"`

	// Grade - оценка (2..5).
	Grade int `json:"grade"`

	// Failing - признак неудовлетворительной оценки.
	Failing bool `json:"failing"`

	// MemberName - член комиссии, принимавший аттестацию.
	MemberName string `json:"member_name"`

	// ExamDate - дата аттестации.
	ExamDate time.Time `json:"exam_date"`
}

// ListForAdminResult содержит результат административной выборки.
type ListForAdminResult struct {
	// Rows - строки выборки в порядке: группа, затем фамилия.
	Rows []AdminRowDTO `json:"rows"`

	// Search - фильтр, по которому строилась выборка.
	Search string `json:"search"`

	// GeneratedAt - момент выполнения запроса.
	GeneratedAt time.Time `json:"generated_at"`
}

// ListForAdminHandler обрабатывает административную выборку.
type ListForAdminHandler struct {
	results attestation.ResultRepository
}

// NewListForAdminHandler создаёт обработчик.
func NewListForAdminHandler(results attestation.ResultRepository) *ListForAdminHandler {
	return &ListForAdminHandler{results: results}
}

// Handle выполняет выборку. Ноль строк - пустой результат, не ошибка.
func (h *ListForAdminHandler) Handle(ctx context.Context, q ListForAdminQuery) (*ListForAdminResult, error) {
	rows, err := h.results.ListForAdmin(ctx, q.Search)
	if err != nil {
		return nil, err
	}

	dtos := make([]AdminRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = AdminRowDTO{
			ResultID:    int64(row.ResultID),
			StudentName: row.StudentName,
			GroupName:   row.GroupName,
			TypeName:    row.TypeName,
			Grade:       int(row.Grade),
			Failing:     row.Grade.IsFailing(),
			MemberName:  row.MemberName,
			ExamDate:    row.ExamDate,
		}
	}

	return &ListForAdminResult{
		Rows:        dtos,
		Search:      q.Search,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
