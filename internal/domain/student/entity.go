// Package student содержит доменную модель студента и справочник для входа.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"fmt"

	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Group представляет учебную группу.
type Group struct {
	ID   int64
	Name string
}

// Student представляет студента. Ядро только читает студентов;
// их жизненный цикл поддерживается вне этой системы.
type Student struct {
	ID         int64
	LastName   string
	FirstName  string
	RecordBook string // номер зачётной книжки
	GroupID    int64
}

// DisplayLabel возвращает подпись студента для экрана входа:
// "Фамилия Имя (номер зачётки)".
func (s *Student) DisplayLabel() string {
	return FormatLabel(s.LastName, s.FirstName, s.RecordBook)
}

// FormatLabel собирает подпись из составных частей.
func FormatLabel(lastName, firstName, recordBook string) string {
	return fmt.Sprintf("%s %s (%s)", lastName, firstName, recordBook)
}

// ══════════════════════════════════════════════════════════════════════════════
// DIRECTORY
// Справочник "подпись → идентификатор", загружаемый один раз при старте
// процесса и неизменяемый до перезапуска. Новые студенты не появляются
// в справочнике без перезапуска - это принятое окно устаревания.
// ══════════════════════════════════════════════════════════════════════════════

// DirectoryEntry - одна запись справочника.
type DirectoryEntry struct {
	StudentID int64
	Label     string
}

// Directory - неизменяемый справочник студентов для экрана входа.
type Directory struct {
	entries []DirectoryEntry
	byLabel map[string]int64
}

// NewDirectory строит справочник из упорядоченной последовательности записей.
// Порядок записей сохраняется (по фамилии по возрастанию, как вернул загрузчик).
func NewDirectory(entries []DirectoryEntry) *Directory {
	byLabel := make(map[string]int64, len(entries))
	for _, e := range entries {
		byLabel[e.Label] = e.StudentID
	}
	return &Directory{
		entries: entries,
		byLabel: byLabel,
	}
}

// Entries возвращает записи справочника в порядке загрузки.
func (d *Directory) Entries() []DirectoryEntry {
	out := make([]DirectoryEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Labels возвращает подписи в порядке загрузки.
func (d *Directory) Labels() []string {
	labels := make([]string, len(d.entries))
	for i, e := range d.entries {
		labels[i] = e.Label
	}
	return labels
}

// Len возвращает размер справочника.
func (d *Directory) Len() int {
	return len(d.entries)
}

// Resolve возвращает идентификатор студента по точному совпадению подписи.
// Возвращает ErrUnknownLabel, если подпись отсутствует в справочнике.
func (d *Directory) Resolve(label string) (int64, error) {
	id, ok := d.byLabel[label]
	if !ok {
		return 0, shared.ErrUnknownLabel
	}
	return id, nil
}
