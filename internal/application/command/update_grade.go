// Package command contains write operations following CQRS pattern.
// Commands modify state and return nothing beyond success or failure.
package command

import (
	"context"
	"log/slog"

	"github.com/attestation-hub/attestation-registry/internal/domain/attestation"
	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE GRADE COMMAND
// Единственная операция записи ядра: атомарное обновление оценки одного
// результата. Оценка вне {2,3,4,5} отклоняется до обращения к хранилищу.
// Команда не обновляет представления - вызывающая сторона перечитывает
// нужную выборку после успеха.
// ══════════════════════════════════════════════════════════════════════════════

// StatsInvalidator drops the cached group statistics view after a write.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// UpdateGradeCommand содержит параметры обновления оценки.
type UpdateGradeCommand struct {
	// ResultID - идентификатор изменяемого результата.
	ResultID int64

	// Grade - новая оценка, обязана быть в диапазоне 2..5.
	Grade int
}

// Validate проверяет команду. При ошибке обращения к хранилищу не будет.
func (c *UpdateGradeCommand) Validate() error {
	if c.ResultID <= 0 {
		return shared.NewDomainError("attestation", "UpdateGrade", shared.ErrValidation,
			"result id must be positive")
	}
	return attestation.Grade(c.Grade).Validate()
}

// UpdateGradeHandler обрабатывает команду обновления оценки.
type UpdateGradeHandler struct {
	results attestation.ResultRepository
	cache   StatsInvalidator // nil, если кеширование отключено
	log     *slog.Logger
}

// NewUpdateGradeHandler создаёт обработчик.
func NewUpdateGradeHandler(results attestation.ResultRepository, log *slog.Logger) *UpdateGradeHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UpdateGradeHandler{results: results, log: log}
}

// WithStatsInvalidator включает сброс кеша статистики после записи.
func (h *UpdateGradeHandler) WithStatsInvalidator(cache StatsInvalidator) *UpdateGradeHandler {
	h.cache = cache
	return h
}

// Handle выполняет обновление. Операция идемпотентна: повторное
// применение той же оценки наблюдается как успех.
func (h *UpdateGradeHandler) Handle(ctx context.Context, cmd UpdateGradeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	err := h.results.UpdateGrade(ctx, attestation.ResultID(cmd.ResultID), attestation.Grade(cmd.Grade))
	if err != nil {
		return err
	}

	h.log.Info("grade updated",
		"result_id", cmd.ResultID,
		"grade", cmd.Grade,
	)

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			// Кеш со своим TTL догонит; запись уже зафиксирована.
			h.log.Warn("failed to invalidate stats cache", "error", err)
		}
	}

	return nil
}
