package attestation

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// AdminRow - строка административной выборки: результат, соединённый со
// студентом, группой, видом аттестации и членом комиссии.
type AdminRow struct {
	ResultID    ResultID
	StudentName string // фамилия и имя через пробел
	GroupName   string
	TypeName    string
	Grade       Grade
	MemberName  string
	ExamDate    time.Time
}

// StudentRow - строка личной выборки студента.
type StudentRow struct {
	TypeName   string
	Grade      Grade
	Topic      string
	MemberName string
	ExamDate   time.Time
}

// ResultRepository определяет операции чтения и единственную операцию
// записи над результатами аттестации.
type ResultRepository interface {
	// ListForAdmin возвращает полную выборку для администратора.
	// Строка попадает в выборку, если search является подстрокой
	// (без учёта регистра) фамилии, имени или имени группы; пустая
	// строка возвращает все строки. Сортировка: группа, затем фамилия.
	// Ноль строк - пустой срез, не ошибка.
	ListForAdmin(ctx context.Context, search string) ([]AdminRow, error)

	// GroupStatistics возвращает по одной строке на каждую группу,
	// имеющую хотя бы один результат, по убыванию среднего балла.
	GroupStatistics(ctx context.Context) ([]GroupStat, error)

	// ResultsByStudent возвращает результаты одного студента.
	// Ноль строк - пустой срез, не ошибка.
	ResultsByStudent(ctx context.Context, studentID int64) ([]StudentRow, error)

	// UpdateGrade атомарно обновляет оценку одного результата.
	// Возвращает ErrResultNotFound, если строка отсутствует.
	// Повторное применение той же оценки наблюдается как успех.
	UpdateGrade(ctx context.Context, id ResultID, grade Grade) error
}
