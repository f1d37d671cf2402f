package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// Field - идентификатор поля формы записи
type Field int

const (
	FieldName Field = iota
	FieldNationalID
	FieldPhone
	FieldEmail
	FieldOffice
	FieldDay
	FieldTreatment
	FieldNotes
)

// Фиксированные справочники клиники
var (
	offices = []string{"Colonia Tirolesa", "Villa Carlos Paz"}
	days    = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// String возвращает ключ поля, используемый в JSON и формах
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldNationalID:
		return "nationalId"
	case FieldPhone:
		return "phone"
	case FieldEmail:
		return "email"
	case FieldOffice:
		return "office"
	case FieldDay:
		return "day"
	case FieldTreatment:
		return "treatment"
	case FieldNotes:
		return "notes"
	default:
		return "unknown"
	}
}

// Required сообщает, обязательно ли поле
func (f Field) Required() bool {
	switch f {
	case FieldName, FieldNationalID, FieldPhone, FieldEmail, FieldOffice, FieldDay:
		return true
	default:
		return false
	}
}

// ParseField разбирает ключ поля. Принимаются и ключи исходной формы
// (nombre, dni, telefono, consultorio, dia, tratamiento, observaciones).
func ParseField(key string) (Field, bool) {
	switch strings.TrimSpace(key) {
	case "name", "nombre":
		return FieldName, true
	case "nationalId", "dni":
		return FieldNationalID, true
	case "phone", "telefono":
		return FieldPhone, true
	case "email":
		return FieldEmail, true
	case "office", "consultorio":
		return FieldOffice, true
	case "day", "dia":
		return FieldDay, true
	case "treatment", "tratamiento":
		return FieldTreatment, true
	case "notes", "observaciones":
		return FieldNotes, true
	default:
		return 0, false
	}
}

// RequiredFields возвращает обязательные поля в порядке отображения
func RequiredFields() []Field {
	return []Field{FieldName, FieldNationalID, FieldPhone, FieldEmail, FieldOffice, FieldDay}
}

// Offices возвращает список филиалов клиники
func Offices() []string {
	return append([]string(nil), offices...)
}

// Days возвращает рабочие дни недели
func Days() []string {
	return append([]string(nil), days...)
}

// Message возвращает текст ошибки для поля
func Message(f Field) string {
	switch f {
	case FieldName:
		return "El nombre debe tener al menos 2 palabras."
	case FieldNationalID:
		return "El DNI debe tener entre 7 y 8 dígitos."
	case FieldPhone:
		return "El teléfono debe tener al menos 10 dígitos."
	case FieldEmail:
		return "Por favor, ingresa un correo electrónico válido."
	case FieldOffice:
		return "Por favor, selecciona un consultorio."
	case FieldDay:
		return "Por favor, selecciona un día válido."
	default:
		return ""
	}
}

// Validate проверяет значение поля. Пустое значение или строка из пробелов
// не проходит ни одно обязательное поле; необязательные поля всегда валидны.
func Validate(f Field, value string) bool {
	if !f.Required() {
		return true
	}
	if isBlank(value) {
		return false
	}

	switch f {
	case FieldName:
		return ValidateName(value)
	case FieldNationalID:
		return ValidateNationalID(value)
	case FieldPhone:
		return ValidatePhone(value)
	case FieldEmail:
		return ValidateEmail(value)
	case FieldOffice:
		return ValidateOffice(value)
	case FieldDay:
		return ValidateDay(value)
	default:
		return true
	}
}

// ValidateName требует минимум два слова, разделенных пробелом
func ValidateName(value string) bool {
	if isBlank(value) {
		return false
	}
	count := 0
	for _, part := range strings.Split(strings.TrimSpace(value), " ") {
		if part != "" {
			count++
		}
	}
	return count >= 2
}

// ValidateNationalID проверяет DNI: только цифры, от 7 до 8 символов
func ValidateNationalID(value string) bool {
	return isDigits(value) && len(value) >= 7 && len(value) <= 8
}

// ValidatePhone проверяет телефон: только цифры, минимум 10 символов
func ValidatePhone(value string) bool {
	return isDigits(value) && len(value) >= 10
}

// ValidateEmail проверяет форму local@domain.tld без пробелов.
// \s в RE2 знает только ASCII, поэтому Unicode-пробелы проверяются отдельно.
func ValidateEmail(value string) bool {
	return strings.IndexFunc(value, isSpace) < 0 && emailRegex.MatchString(value)
}

// ValidateOffice проверяет точное совпадение с филиалом клиники
func ValidateOffice(value string) bool {
	return contains(offices, value)
}

// ValidateDay проверяет точное совпадение с рабочим днем
func ValidateDay(value string) bool {
	return contains(days, value)
}

// isSpace - пробельный символ, включая \v, NBSP, U+2000..U+200A и BOM
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
