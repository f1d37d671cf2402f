package appointments

import "context"

// Тексты подтверждения разрушительных действий
const (
	ConfirmDeleteMessage = "¿Eliminar este turno?"
	ConfirmClearMessage  = "¿Eliminar todo el historial?"
)

// Confirmer - внешний диалог подтверждения (да/нет)
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// ConfirmFunc адаптирует функцию к Confirmer
type ConfirmFunc func(ctx context.Context, message string) bool

// Confirm вызывает функцию
func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool {
	return f(ctx, message)
}

// Always - подтверждение, которое всегда принимает заданное решение
type Always bool

// Confirm возвращает зафиксированное решение
func (a Always) Confirm(ctx context.Context, message string) bool {
	return bool(a)
}
