// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds that map onto the failure taxonomy of the registry.
// Use errors.Is() against these to classify any error the core returns.
var (
	// ErrConnectivity - хранилище недоступно при старте. Фатальная ошибка,
	// ни один экран не показывается.
	ErrConnectivity = errors.New("store unreachable")

	// ErrQuery - чтение из хранилища не удалось. Сообщается пользователю,
	// представление остаётся пустым или неизменным.
	ErrQuery = errors.New("query failed")

	// ErrValidation - некорректный ввод (выбор при входе, оценка вне 2..5).
	// Обращение к хранилищу не выполняется.
	ErrValidation = errors.New("validation error")

	// ErrAuthentication - неверный пароль администратора.
	ErrAuthentication = errors.New("authentication failed")

	// ErrMutation - обновление оценки не удалось, частичной записи нет.
	ErrMutation = errors.New("mutation failed")

	// ErrExport - запись файла отчёта не удалась.
	ErrExport = errors.New("export failed")

	// Entity errors
	ErrNotFound = errors.New("entity not found")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "attestation", "student", "session"
	Op      string // operation that failed, e.g. "UpdateGrade"
	Kind    error  // base error kind for errors.Is() checking
	Message string // human-readable message
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Attestation domain errors
var (
	ErrResultNotFound  = NewDomainError("attestation", "UpdateGrade", ErrNotFound, "attestation result not found")
	ErrGradeOutOfRange = NewDomainError("attestation", "Validate", ErrValidation, "grade must be between 2 and 5")
)

// Student domain errors
var (
	ErrStudentNotFound = NewDomainError("student", "Resolve", ErrNotFound, "student not found")
	ErrUnknownLabel    = NewDomainError("student", "Resolve", ErrValidation, "name is not present in the directory")
	ErrDirectoryEmpty  = NewDomainError("student", "Load", ErrQuery, "student directory is empty")
)

// Session domain errors
var (
	ErrWrongPassword  = NewDomainError("session", "Authenticate", ErrAuthentication, "wrong administrator password")
	ErrNotAdmin       = NewDomainError("session", "Gate", ErrForbidden, "operation requires an administrator session")
	ErrNotStudent     = NewDomainError("session", "Gate", ErrForbidden, "operation requires a student session")
	ErrForeignStudent = NewDomainError("session", "Gate", ErrForbidden, "cannot read another student's records")
)

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFatal reports whether the error must terminate the process.
// Only startup connectivity failures are fatal; everything else is
// reported at the point of the triggering action.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConnectivity)
}
