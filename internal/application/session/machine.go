// Package session реализует машину состояний навигации реестра аттестации.
// Машина - единственная точка входа презентационного слоя в ядро: она
// хранит активную роль, решает, какие операции достижимы, и немедленно
// наполняет представление при входе в роль.
//
// Состояния: Anonymous -> {AdminSession, StudentSession}, обе сессии
// возвращаются в Anonymous по явному выходу. Других переходов нет;
// вложенных и параллельных сессий нет.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/attestation-hub/attestation-registry/internal/application/command"
	"github.com/attestation-hub/attestation-registry/internal/application/query"
	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
	"github.com/attestation-hub/attestation-registry/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATES & ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// State - состояние навигации.
type State string

const (
	// StateAnonymous - роль не выбрана, доступен только вход.
	StateAnonymous State = "anonymous"
	// StateAdmin - административная сессия.
	StateAdmin State = "admin"
	// StateStudent - сессия студента.
	StateStudent State = "student"
)

var (
	// ErrSuperseded возвращается, когда поисковый запрос был вытеснен
	// более новым до завершения. Результат такого запроса отбрасывается,
	// чтобы устаревшие строки не перезаписали свежие.
	ErrSuperseded = errors.New("session: search superseded by a newer request")

	// ErrAlreadyInSession возвращается при попытке входа из активной сессии.
	ErrAlreadyInSession = shared.NewDomainError("session", "Login", shared.ErrForbidden,
		"logout before starting a new session")
)

// ReportExporter сериализует материализованную административную выборку
// в файловый артефакт. Реализация находится в infrastructure/export.
type ReportExporter interface {
	Export(rows []query.AdminRowDTO, now time.Time) (string, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// Единый общий секрет, сравнение на равенство - как в эталоне. Функция
// выделена, чтобы более сильную схему можно было подставить, не трогая
// машину состояний: секрет в формате bcrypt ($2...) сверяется как хеш.
// ══════════════════════════════════════════════════════════════════════════════

// Authenticate сверяет введённый пароль с настроенным секретом.
func Authenticate(input, secret string) bool {
	if secret == "" {
		return false
	}
	if strings.HasPrefix(secret, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(input)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(input), []byte(secret)) == 1
}

// ══════════════════════════════════════════════════════════════════════════════
// MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// Services - сервисы ядра, которыми управляет машина.
type Services struct {
	AdminListing   *query.ListForAdminHandler
	GroupStats     *query.GroupStatisticsHandler
	StudentResults *query.StudentResultsHandler
	UpdateGrade    *command.UpdateGradeHandler
	Exporter       ReportExporter
}

// Machine - машина состояний навигации. Явный сессионный контекст:
// справочник внедряется при создании, роль и идентификатор меняются
// только самой машиной.
type Machine struct {
	directory *student.Directory
	services  Services
	secret    string
	log       *slog.Logger

	mu           sync.Mutex
	state        State
	sessionID    uuid.UUID
	studentID    int64
	studentLabel string

	// Материализованная административная выборка и её фильтр -
	// именно они уходят в экспорт, без свежего запроса.
	listing []query.AdminRowDTO
	search  string

	// Живой поиск: новый запрос отменяет незавершённый старый.
	searchGen    uint64
	searchCancel context.CancelFunc
}

// NewMachine создаёт машину в состоянии Anonymous.
func NewMachine(directory *student.Directory, services Services, adminSecret string, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		directory: directory,
		services:  services,
		secret:    adminSecret,
		log:       log,
		state:     StateAnonymous,
	}
}

// State возвращает текущее состояние.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID возвращает идентификатор активной сессии (uuid.Nil в Anonymous).
func (m *Machine) SessionID() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// StudentID возвращает идентификатор студента активной сессии (0 вне её).
func (m *Machine) StudentID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.studentID
}

// StudentLabel возвращает подпись студента активной сессии.
func (m *Machine) StudentLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.studentLabel
}

// Labels возвращает подписи справочника для экрана входа.
func (m *Machine) Labels() []string {
	return m.directory.Labels()
}

// CurrentSearch возвращает последний применённый фильтр.
func (m *Machine) CurrentSearch() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.search
}

// ─────────────────────────────────────────────────────────────────────────────
// Transitions
// ─────────────────────────────────────────────────────────────────────────────

// SelectStudent переводит Anonymous -> StudentSession по точному совпадению
// подписи в справочнике; иначе состояние не меняется и возвращается ошибка
// валидации. При входе немедленно выполняется личная выборка студента.
func (m *Machine) SelectStudent(ctx context.Context, label string) (*query.StudentResultsResult, error) {
	m.mu.Lock()
	if m.state != StateAnonymous {
		m.mu.Unlock()
		return nil, ErrAlreadyInSession
	}
	m.mu.Unlock()

	id, err := m.directory.Resolve(label)
	if err != nil {
		return nil, err
	}

	result, err := m.services.StudentResults.Handle(ctx, query.StudentResultsQuery{StudentID: id})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.state = StateStudent
	m.sessionID = uuid.New()
	m.studentID = id
	m.studentLabel = label
	sessionID := m.sessionID
	m.mu.Unlock()

	m.log.Info("student session started",
		"session_id", sessionID.String(),
		"student_id", id,
	)

	return result, nil
}

// SubmitAdminPassword переводит Anonymous -> AdminSession при верном
// секрете; иначе состояние не меняется и возвращается ошибка
// аутентификации. При входе немедленно выполняется полная выборка.
func (m *Machine) SubmitAdminPassword(ctx context.Context, password string) (*query.ListForAdminResult, error) {
	m.mu.Lock()
	if m.state != StateAnonymous {
		m.mu.Unlock()
		return nil, ErrAlreadyInSession
	}
	m.mu.Unlock()

	if !Authenticate(password, m.secret) {
		return nil, shared.ErrWrongPassword
	}

	result, err := m.services.AdminListing.Handle(ctx, query.ListForAdminQuery{Search: ""})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.state = StateAdmin
	m.sessionID = uuid.New()
	m.studentID = 0
	m.studentLabel = ""
	m.listing = result.Rows
	m.search = ""
	sessionID := m.sessionID
	m.mu.Unlock()

	m.log.Info("admin session started", "session_id", sessionID.String())

	return result, nil
}

// Logout возвращает любую сессию в Anonymous.
func (m *Machine) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateAnonymous {
		return
	}

	if m.searchCancel != nil {
		m.searchCancel()
		m.searchCancel = nil
	}

	m.log.Info("session ended",
		"session_id", m.sessionID.String(),
		"state", string(m.state),
	)

	m.state = StateAnonymous
	m.sessionID = uuid.Nil
	m.studentID = 0
	m.studentLabel = ""
	m.listing = nil
	m.search = ""
}

// ─────────────────────────────────────────────────────────────────────────────
// Admin operations
// ─────────────────────────────────────────────────────────────────────────────

// Search выполняет живую фильтрацию: один запрос к хранилищу на каждое
// изменение строки поиска. Новый вызов отменяет контекст незавершённого
// предыдущего и вытесняет его результат: вытесненный вызов возвращает
// ErrSuperseded, его строки отбрасываются.
func (m *Machine) Search(ctx context.Context, text string) (*query.ListForAdminResult, error) {
	m.mu.Lock()
	if m.state != StateAdmin {
		m.mu.Unlock()
		return nil, shared.ErrNotAdmin
	}
	if m.searchCancel != nil {
		m.searchCancel()
	}
	searchCtx, cancel := context.WithCancel(ctx)
	m.searchCancel = cancel
	m.searchGen++
	gen := m.searchGen
	m.mu.Unlock()

	result, err := m.services.AdminListing.Handle(searchCtx, query.ListForAdminQuery{Search: text})

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.searchGen || m.state != StateAdmin {
		return nil, ErrSuperseded
	}
	m.searchCancel = nil

	if err != nil {
		// Представление остаётся неизменным: listing не трогаем.
		return nil, err
	}

	m.listing = result.Rows
	m.search = text
	return result, nil
}

// GroupStatistics возвращает статистику по группам. Только для админа.
func (m *Machine) GroupStatistics(ctx context.Context) (*query.GroupStatisticsResult, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}
	return m.services.GroupStats.Handle(ctx, query.GroupStatisticsQuery{})
}

// UpdateGrade обновляет оценку одного результата. Только для админа.
// Представление не обновляется: после успеха вызывающая сторона
// перезапускает Search с текущим фильтром.
func (m *Machine) UpdateGrade(ctx context.Context, resultID int64, grade int) error {
	if err := m.requireAdmin(); err != nil {
		return err
	}
	return m.services.UpdateGrade.Handle(ctx, command.UpdateGradeCommand{
		ResultID: resultID,
		Grade:    grade,
	})
}

// ExportListing экспортирует именно ту выборку, что материализована в
// административном представлении (с последним применённым фильтром),
// без свежего запроса к хранилищу. Только для админа.
func (m *Machine) ExportListing(now time.Time) (string, error) {
	m.mu.Lock()
	if m.state != StateAdmin {
		m.mu.Unlock()
		return "", shared.ErrNotAdmin
	}
	rows := make([]query.AdminRowDTO, len(m.listing))
	copy(rows, m.listing)
	m.mu.Unlock()

	path, err := m.services.Exporter.Export(rows, now)
	if err != nil {
		return "", err
	}

	m.log.Info("listing exported", "path", path, "rows", len(rows))
	return path, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Student operations
// ─────────────────────────────────────────────────────────────────────────────

// MyResults возвращает результаты студента активной сессии. Машина не
// конструирует запрос по чужому идентификатору: используется только
// идентификатор, зафиксированный при входе.
func (m *Machine) MyResults(ctx context.Context) (*query.StudentResultsResult, error) {
	m.mu.Lock()
	if m.state != StateStudent {
		m.mu.Unlock()
		return nil, shared.ErrNotStudent
	}
	id := m.studentID
	m.mu.Unlock()

	return m.services.StudentResults.Handle(ctx, query.StudentResultsQuery{StudentID: id})
}

func (m *Machine) requireAdmin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAdmin {
		return shared.ErrNotAdmin
	}
	return nil
}
