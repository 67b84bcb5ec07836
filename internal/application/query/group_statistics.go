package query

import (
	"context"
	"time"

	"github.com/attestation-hub/attestation-registry/internal/domain/attestation"
)

// ══════════════════════════════════════════════════════════════════════════════
// GROUP STATISTICS QUERY
// Агрегированная статистика по группам: по одной строке на каждую группу,
// имеющую хотя бы один результат, по убыванию среднего балла. Группы без
// результатов в выборку не попадают - поведение эталона сохранено.
// ══════════════════════════════════════════════════════════════════════════════

// StatsCache - необязательный кеш представления статистики.
// Любая ошибка чтения трактуется как промах; запись выполняется
// по возможности и не влияет на результат запроса.
type StatsCache interface {
	Get(ctx context.Context) ([]attestation.GroupStat, error)
	Set(ctx context.Context, stats []attestation.GroupStat) error
}

// GroupStatisticsQuery - запрос статистики. Параметров нет.
type GroupStatisticsQuery struct{}

// GroupStatDTO - строка статистики по одной группе.
type GroupStatDTO struct {
	// GroupName - имя группы.
	GroupName string `json:"group_name"`

	// StudentCount - число различных студентов группы с результатами.
	StudentCount int `json:"student_count"`

	// AverageGrade - средняя оценка по всем результатам группы.
	AverageGrade float64 `json:"average_grade"`
}

// GroupStatisticsResult содержит статистику по группам.
type GroupStatisticsResult struct {
	// Stats - строки статистики по убыванию среднего балла.
	Stats []GroupStatDTO `json:"stats"`

	// FromCache - получен ли результат из кеша.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - момент выполнения запроса.
	GeneratedAt time.Time `json:"generated_at"`
}

// GroupStatisticsHandler обрабатывает запрос статистики.
type GroupStatisticsHandler struct {
	results attestation.ResultRepository
	cache   StatsCache // nil, если кеширование отключено
}

// NewGroupStatisticsHandler создаёт обработчик без кеша.
func NewGroupStatisticsHandler(results attestation.ResultRepository) *GroupStatisticsHandler {
	return &GroupStatisticsHandler{results: results}
}

// WithCache включает кеш представления статистики.
func (h *GroupStatisticsHandler) WithCache(cache StatsCache) *GroupStatisticsHandler {
	h.cache = cache
	return h
}

// Handle выполняет запрос, при включённом кеше - сквозное чтение.
func (h *GroupStatisticsHandler) Handle(ctx context.Context, _ GroupStatisticsQuery) (*GroupStatisticsResult, error) {
	if h.cache != nil {
		if stats, err := h.cache.Get(ctx); err == nil {
			return newGroupStatisticsResult(stats, true), nil
		}
	}

	stats, err := h.results.GroupStatistics(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		// Best effort: промах кеша не делает запрос ошибочным.
		_ = h.cache.Set(ctx, stats)
	}

	return newGroupStatisticsResult(stats, false), nil
}

func newGroupStatisticsResult(stats []attestation.GroupStat, fromCache bool) *GroupStatisticsResult {
	dtos := make([]GroupStatDTO, len(stats))
	for i, gs := range stats {
		dtos[i] = GroupStatDTO{
			GroupName:    gs.GroupName,
			StudentCount: gs.StudentCount,
			AverageGrade: gs.AverageGrade,
		}
	}

	return &GroupStatisticsResult{
		Stats:       dtos,
		FromCache:   fromCache,
		GeneratedAt: time.Now().UTC(),
	}
}
