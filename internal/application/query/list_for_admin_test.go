package query

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

func TestListForAdmin_EmptySearchReturnsAll(t *testing.T) {
	repo := &fakeResultRepo{records: testRecords()}
	h := NewListForAdminHandler(repo)

	result, err := h.Handle(context.Background(), ListForAdminQuery{Search: ""})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 4)
	assert.Equal(t, "", result.Search)
}

func TestListForAdmin_SubstringOrSemantics(t *testing.T) {
	repo := &fakeResultRepo{records: testRecords()}
	h := NewListForAdminHandler(repo)

	tests := []struct {
		name   string
		search string
		want   int
	}{
		{"по фамилии", "иванов", 2},
		{"по имени", "Серик", 1},
		{"по группе", "эк-11", 1},
		{"частичное совпадение", "ов", 4}, // Иванов, Ахметов (имя Серик нет, фамилия да), Сидорова
		{"без совпадений", "Петренко", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.Handle(context.Background(), ListForAdminQuery{Search: tt.search})
			require.NoError(t, err)
			assert.Len(t, result.Rows, tt.want)

			// Каждая строка обязана содержать текст фильтра в фамилии,
			// имени или группе (семантика ИЛИ, без учёта регистра).
			needle := strings.ToLower(tt.search)
			for _, row := range result.Rows {
				haystack := strings.ToLower(row.StudentName + " " + row.GroupName)
				assert.Contains(t, haystack, needle)
			}
		})
	}
}

func TestListForAdmin_Ordering(t *testing.T) {
	repo := &fakeResultRepo{records: testRecords()}
	h := NewListForAdminHandler(repo)

	result, err := h.Handle(context.Background(), ListForAdminQuery{})
	require.NoError(t, err)

	// Группа по возрастанию, внутри группы - фамилия по возрастанию.
	require.Len(t, result.Rows, 4)
	assert.Equal(t, "IT-21", result.Rows[0].GroupName)
	assert.Equal(t, "Ахметов Серик", result.Rows[0].StudentName)
	assert.Equal(t, "Иванов Петр", result.Rows[1].StudentName)
	assert.Equal(t, "ЭК-11", result.Rows[3].GroupName)
}

func TestListForAdmin_FailingFlag(t *testing.T) {
	repo := &fakeResultRepo{records: testRecords()}
	h := NewListForAdminHandler(repo)

	result, err := h.Handle(context.Background(), ListForAdminQuery{Search: "Сидорова"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 2, result.Rows[0].Grade)
	assert.True(t, result.Rows[0].Failing)
}

func TestListForAdmin_ZeroRowsIsEmptyNotError(t *testing.T) {
	repo := &fakeResultRepo{}
	h := NewListForAdminHandler(repo)

	result, err := h.Handle(context.Background(), ListForAdminQuery{Search: ""})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestListForAdmin_QueryErrorPropagates(t *testing.T) {
	repo := &fakeResultRepo{
		listErr: shared.NewDomainError("attestation", "ListForAdmin", shared.ErrQuery, "boom"),
	}
	h := NewListForAdminHandler(repo)

	_, err := h.Handle(context.Background(), ListForAdminQuery{})
	assert.ErrorIs(t, err, shared.ErrQuery)
}
