package validation

import (
	"strings"

	"github.com/vitalis/turnos/pkg/metrics"
)

// FieldError - ошибка валидации одного поля
type FieldError struct {
	Field   Field  `json:"-"`
	Message string `json:"message"`
}

// Error реализует интерфейс error
func (e *FieldError) Error() string {
	return e.Field.String() + ": " + e.Message
}

// Errors - ошибки по всем невалидным полям в порядке отображения
type Errors []FieldError

// Error реализует интерфейс error
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for i := range e {
		parts = append(parts, e[i].Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has проверяет, есть ли ошибка для поля
func (e Errors) Has(f Field) bool {
	for i := range e {
		if e[i].Field == f {
			return true
		}
	}
	return false
}

// Map возвращает пары поле -> сообщение
func (e Errors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for i := range e {
		out[e[i].Field.String()] = e[i].Message
	}
	return out
}

// Err возвращает nil, если ошибок нет
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidateOne проверяет одно поле (проверка при потере фокуса)
func ValidateOne(f Field, value string) *FieldError {
	if Validate(f, value) {
		return nil
	}
	metrics.RecordValidationFailure(f.String())
	return &FieldError{Field: f, Message: Message(f)}
}

// ValidateAll проверяет все обязательные поля без остановки на первой ошибке
func ValidateAll(values map[Field]string) Errors {
	var errs Errors
	for _, f := range RequiredFields() {
		if fe := ValidateOne(f, values[f]); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}
