package query

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/attestation-hub/attestation-registry/internal/domain/attestation"
	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT RESULTS QUERY
// Личная выборка студента: его результаты плюс средний балл (GPA).
// Средний балл - среднее арифметическое оценок; отсутствует ("нет оценок"),
// когда у студента нет ни одного результата.
// ══════════════════════════════════════════════════════════════════════════════

// StudentResultsQuery содержит параметры личной выборки.
type StudentResultsQuery struct {
	// StudentID - идентификатор студента.
	StudentID int64
}

// Validate проверяет корректность параметров запроса.
func (q *StudentResultsQuery) Validate() error {
	if q.StudentID <= 0 {
		return shared.NewDomainError("student", "Results", shared.ErrValidation,
			"student id must be positive")
	}
	return nil
}

// StudentRowDTO - строка личной таблицы студента.
type StudentRowDTO struct {
	// TypeName - дисциплина или вид аттестации.
	TypeName string `json:"type_name"`

	// Grade - оценка (2..5).
	Grade int `json:"grade"`

	// Topic - тема или номер билета, может быть пустой.
	Topic string `json:"topic"`

	// MemberName - принимавший член комиссии.
	MemberName string `json:"member_name"`

	// ExamDate - дата аттестации.
	ExamDate time.Time `json:"exam_date"`
}

// StudentResultsResult содержит результаты студента и его средний балл.
type StudentResultsResult struct {
	// Rows - результаты студента.
	Rows []StudentRowDTO `json:"rows"`

	// Average - средний балл; nil, когда результатов нет.
	Average *float64 `json:"average,omitempty"`

	// Band - полоса среднего балла для отображения; пустая без оценок.
	Band attestation.GPABand `json:"band,omitempty"`

	// GeneratedAt - момент выполнения запроса.
	GeneratedAt time.Time `json:"generated_at"`
}

// HasAverage возвращает true, когда у студента есть хотя бы одна оценка.
func (r *StudentResultsResult) HasAverage() bool {
	return r.Average != nil
}

// StudentResultsHandler обрабатывает личную выборку.
type StudentResultsHandler struct {
	results attestation.ResultRepository
}

// NewStudentResultsHandler создаёт обработчик.
func NewStudentResultsHandler(results attestation.ResultRepository) *StudentResultsHandler {
	return &StudentResultsHandler{results: results}
}

// Handle выполняет выборку и вычисляет средний балл одной поездкой
// в хранилище: среднее считается по уже полученным оценкам.
func (h *StudentResultsHandler) Handle(ctx context.Context, q StudentResultsQuery) (*StudentResultsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.results.ResultsByStudent(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	dtos := make([]StudentRowDTO, len(rows))
	grades := make([]float64, len(rows))
	for i, row := range rows {
		dtos[i] = StudentRowDTO{
			TypeName:   row.TypeName,
			Grade:      int(row.Grade),
			Topic:      row.Topic,
			MemberName: row.MemberName,
			ExamDate:   row.ExamDate,
		}
		grades[i] = float64(row.Grade)
	}

	result := &StudentResultsResult{
		Rows:        dtos,
		GeneratedAt: time.Now().UTC(),
	}

	if len(grades) > 0 {
		mean, err := stats.Mean(grades)
		if err != nil {
			return nil, shared.WrapError("student", "Results", shared.ErrQuery,
				"failed to compute average grade", err)
		}
		result.Average = &mean
		result.Band = attestation.GPABandOf(mean)
	}

	return result, nil
}
