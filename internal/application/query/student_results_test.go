package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestation-hub/attestation-registry/internal/domain/attestation"
	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

func TestStudentResults_AverageIsExactMean(t *testing.T) {
	// Студент с оценками [4, 5, 3] -> средний балл ровно 4.00.
	date := testRecords()[0].examDate
	repo := &fakeResultRepo{records: append(testRecords(), fakeRecord{
		resultID: 5, studentID: 10, lastName: "Иванов", firstName: "Петр",
		groupName: "IT-21", typeName: "Госэкзамен", grade: 3,
		memberName: "Орлов Д.С.", examDate: date,
	})}
	h := NewStudentResultsHandler(repo)

	result, err := h.Handle(context.Background(), StudentResultsQuery{StudentID: 10})
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)
	require.True(t, result.HasAverage())
	assert.InDelta(t, 4.0, *result.Average, 1e-9)
	assert.Equal(t, "4.00", attestation.FormatGPA(*result.Average))
	assert.Equal(t, attestation.BandMid, result.Band)
}

func TestStudentResults_NoGradesMeansNoAverage(t *testing.T) {
	repo := &fakeResultRepo{records: testRecords()}
	h := NewStudentResultsHandler(repo)

	result, err := h.Handle(context.Background(), StudentResultsQuery{StudentID: 999})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.False(t, result.HasAverage())
	assert.Nil(t, result.Average)
	assert.Empty(t, result.Band)
}

func TestStudentResults_BandThresholds(t *testing.T) {
	date := testRecords()[0].examDate
	repo := &fakeResultRepo{records: []fakeRecord{
		{resultID: 1, studentID: 1, grade: 5, examDate: date},
		{resultID: 2, studentID: 1, grade: 4, examDate: date},
		{resultID: 3, studentID: 2, grade: 2, examDate: date},
	}}
	h := NewStudentResultsHandler(repo)

	high, err := h.Handle(context.Background(), StudentResultsQuery{StudentID: 1})
	require.NoError(t, err)
	assert.Equal(t, attestation.BandHigh, high.Band) // 4.5

	low, err := h.Handle(context.Background(), StudentResultsQuery{StudentID: 2})
	require.NoError(t, err)
	assert.Equal(t, attestation.BandLow, low.Band) // 2.0
}

func TestStudentResults_Validation(t *testing.T) {
	repo := &fakeResultRepo{}
	h := NewStudentResultsHandler(repo)

	_, err := h.Handle(context.Background(), StudentResultsQuery{StudentID: 0})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(context.Background(), StudentResultsQuery{StudentID: -5})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
