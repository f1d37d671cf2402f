package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/vitalis/turnos/internal/appointments"
	"github.com/vitalis/turnos/internal/storage/models"
	"github.com/vitalis/turnos/pkg/errors"
	"github.com/vitalis/turnos/pkg/metrics"
)

// MessageSender - часть API бота, нужная для уведомлений
type MessageSender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*tgmodels.Message, error)
}

// Notifier отправляет новые записи в чат персонала клиники
type Notifier struct {
	sender MessageSender
	chatID int64
}

// New создает бота без запроса getMe при старте
func New(token string, chatID int64) (*Notifier, error) {
	b, err := tgbot.New(token, tgbot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return NewWithSender(b, chatID), nil
}

// NewWithSender создает уведомитель поверх произвольного отправителя
func NewWithSender(sender MessageSender, chatID int64) *Notifier {
	return &Notifier{sender: sender, chatID: chatID}
}

// NotifyBooked отправляет сообщение о новой записи
func (n *Notifier) NotifyBooked(ctx context.Context, a models.Appointment) error {
	_, err := n.sender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: n.chatID,
		Text:   FormatBooking(a),
	})
	if err != nil {
		metrics.RecordNotification("telegram", "error")
		return errors.ErrNotification.WithError(err).WithContext(map[string]interface{}{
			"appointment_id": a.ID.String(),
		})
	}

	metrics.RecordNotification("telegram", "success")
	return nil
}

// FormatBooking формирует текст уведомления для персонала
func FormatBooking(a models.Appointment) string {
	var b strings.Builder
	b.WriteString("Nuevo turno solicitado\n")
	fmt.Fprintf(&b, "Nombre: %s\n", a.Name)
	fmt.Fprintf(&b, "DNI: %s\n", a.NationalID)
	fmt.Fprintf(&b, "Teléfono: %s\n", a.Phone)
	fmt.Fprintf(&b, "Email: %s\n", a.Email)
	fmt.Fprintf(&b, "Consultorio: %s\n", a.Office)
	if hours, ok := appointments.HoursFor(a.Day); ok {
		fmt.Fprintf(&b, "Día: %s (%s)\n", a.Day, hours)
	} else {
		fmt.Fprintf(&b, "Día: %s\n", a.Day)
	}
	if a.HasTreatment() {
		fmt.Fprintf(&b, "Tratamiento: %s\n", a.Treatment)
	}
	if a.HasNotes() {
		fmt.Fprintf(&b, "Observaciones: %s\n", a.Notes)
	}
	fmt.Fprintf(&b, "Fecha de solicitud: %s", a.CreatedAt)
	return b.String()
}
