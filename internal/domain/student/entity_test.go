package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "Иванов Петр (ZK-01)", FormatLabel("Иванов", "Петр", "ZK-01"))

	s := &Student{LastName: "Ахметов", FirstName: "Серик", RecordBook: "ZK-17"}
	assert.Equal(t, "Ахметов Серик (ZK-17)", s.DisplayLabel())
}

func TestDirectory_Resolve(t *testing.T) {
	dir := NewDirectory([]DirectoryEntry{
		{StudentID: 1, Label: "Ахметов Серик (ZK-17)"},
		{StudentID: 2, Label: "Иванов Петр (ZK-01)"},
	})

	id, err := dir.Resolve("Иванов Петр (ZK-01)")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	// Точное совпадение: частичная подпись не разрешается.
	_, err = dir.Resolve("Иванов Петр")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = dir.Resolve("Сидоров Иван (ZK-99)")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDirectory_PreservesOrder(t *testing.T) {
	entries := []DirectoryEntry{
		{StudentID: 3, Label: "Ахметов Серик (ZK-17)"},
		{StudentID: 1, Label: "Иванов Петр (ZK-01)"},
		{StudentID: 2, Label: "Сидорова Анна (ZK-05)"},
	}
	dir := NewDirectory(entries)

	assert.Equal(t, 3, dir.Len())
	assert.Equal(t, []string{
		"Ахметов Серик (ZK-17)",
		"Иванов Петр (ZK-01)",
		"Сидорова Анна (ZK-05)",
	}, dir.Labels())
}

func TestDirectory_EntriesCopy(t *testing.T) {
	dir := NewDirectory([]DirectoryEntry{
		{StudentID: 1, Label: "Иванов Петр (ZK-01)"},
	})

	entries := dir.Entries()
	entries[0].Label = "mutated"

	// Справочник неизменяем на время жизни процесса.
	assert.Equal(t, "Иванов Петр (ZK-01)", dir.Labels()[0])
}

func TestDirectory_Empty(t *testing.T) {
	dir := NewDirectory(nil)

	assert.Equal(t, 0, dir.Len())
	_, err := dir.Resolve("кто угодно")
	assert.Error(t, err)
}
