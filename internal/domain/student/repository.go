package student

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// DirectoryRepository загружает справочник студентов для экрана входа.
type DirectoryRepository interface {
	// LoadDirectory возвращает упорядоченную последовательность записей
	// (идентификатор, подпись) по возрастанию фамилии. Выполняется ровно
	// один раз при старте процесса; ошибка здесь фатальна.
	LoadDirectory(ctx context.Context) ([]DirectoryEntry, error)
}
