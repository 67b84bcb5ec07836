// Package attestation содержит доменную модель итоговой аттестации.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package attestation

import (
	"fmt"
	"time"

	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Grade представляет оценку по итоговой аттестации.
// Допустимый диапазон закрыт: {2, 3, 4, 5}.
type Grade int

const (
	// GradeMin - минимально допустимая оценка ("неудовлетворительно").
	GradeMin Grade = 2
	// GradeMax - максимально допустимая оценка ("отлично").
	GradeMax Grade = 5
)

// IsValid проверяет, что оценка находится в закрытом диапазоне 2..5.
func (g Grade) IsValid() bool {
	return g >= GradeMin && g <= GradeMax
}

// IsFailing возвращает true для неудовлетворительной оценки.
func (g Grade) IsFailing() bool {
	return g == GradeMin
}

// Validate возвращает ошибку валидации для оценки вне диапазона.
func (g Grade) Validate() error {
	if !g.IsValid() {
		return shared.ErrGradeOutOfRange
	}
	return nil
}

// ResultID представляет уникальный идентификатор результата аттестации.
type ResultID int64

// IsValid проверяет, что идентификатор положительный.
func (id ResultID) IsValid() bool {
	return id > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Type представляет вид аттестации (экзамен, защита и т.д.).
type Type struct {
	ID   int64
	Name string
}

// CommissionMember представляет члена комиссии, принимавшего аттестацию.
type CommissionMember struct {
	ID       int64
	FullName string
}

// Result представляет один зафиксированный результат аттестации.
// Единственная изменяемая сущность ядра, и единственное изменяемое
// поле через открытый контракт - Grade.
type Result struct {
	ID        ResultID
	StudentID int64
	TypeID    int64
	MemberID  int64
	Grade     Grade
	Topic     string // тема или номер билета, может быть пустой
	ExamDate  time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATES & READ MODELS
// ══════════════════════════════════════════════════════════════════════════════

// GroupStat - агрегированная статистика по одной группе.
// В выборку попадают только группы, имеющие хотя бы один результат.
type GroupStat struct {
	// GroupName - отображаемое имя группы.
	GroupName string

	// StudentCount - число различных студентов группы с результатами.
	StudentCount int

	// AverageGrade - средняя оценка по всем результатам студентов группы.
	AverageGrade float64
}

// GPABand классифицирует средний балл для отображения.
type GPABand string

const (
	// BandHigh - средний балл 4.5 и выше.
	BandHigh GPABand = "high"
	// BandMid - средний балл от 3.5 до 4.5.
	BandMid GPABand = "mid"
	// BandLow - средний балл ниже 3.5.
	BandLow GPABand = "low"
)

// GPABandOf возвращает полосу для среднего балла.
func GPABandOf(avg float64) GPABand {
	switch {
	case avg >= 4.5:
		return BandHigh
	case avg >= 3.5:
		return BandMid
	default:
		return BandLow
	}
}

// FormatGPA форматирует средний балл с двумя знаками после запятой.
func FormatGPA(avg float64) string {
	return fmt.Sprintf("%.2f", avg)
}
