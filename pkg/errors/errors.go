package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError представляет ошибку приложения с кодом и контекстом
type AppError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
	Context interface{} `json:"context,omitempty"`
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap позволяет использовать errors.Is и errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы копии из WithContext/WithError
// совпадали с предопределенными значениями
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(ctx interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Context: ctx,
	}
}

// WithError добавляет underlying ошибку
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		Context: e.Context,
	}
}

// Предопределенные ошибки
var (
	// Ошибки записей
	ErrAppointmentNotFound = &AppError{
		Code:    "APPOINTMENT_NOT_FOUND",
		Message: "turno no encontrado",
	}

	ErrInvalidField = &AppError{
		Code:    "INVALID_FIELD",
		Message: "campo desconocido",
	}

	// Ошибки хранилища
	ErrStorageRead = &AppError{
		Code:    "STORAGE_READ",
		Message: "error al leer el almacenamiento",
	}

	ErrStorageWrite = &AppError{
		Code:    "STORAGE_WRITE",
		Message: "error al guardar en el almacenamiento",
	}

	ErrStorageUnavailable = &AppError{
		Code:    "STORAGE_UNAVAILABLE",
		Message: "almacenamiento no disponible",
	}

	// Ошибки каталога
	ErrCatalogFetch = &AppError{
		Code:    "CATALOG_FETCH",
		Message: "No se pudieron cargar los tratamientos",
	}

	// Ошибки уведомлений
	ErrNotification = &AppError{
		Code:    "NOTIFICATION",
		Message: "error al enviar la notificación",
	}

	// Системные ошибки
	ErrConfigurationInvalid = &AppError{
		Code:    "CONFIGURATION_INVALID",
		Message: "configuración inválida",
	}
)

// IsAppError проверяет, является ли ошибка AppError (в том числе обернутой)
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError извлекает AppError из цепочки ошибок
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
