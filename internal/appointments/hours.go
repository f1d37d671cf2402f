package appointments

import (
	"github.com/vitalis/turnos/internal/validation"
)

// officeHours - рабочие часы по дням недели, только для отображения
var officeHours = map[string]string{
	"Lunes":     "9:00 AM - 6:00 PM",
	"Martes":    "9:00 AM - 6:00 PM",
	"Miércoles": "9:00 AM - 6:00 PM",
	"Jueves":    "9:00 AM - 6:00 PM",
	"Viernes":   "9:00 AM - 6:00 PM",
	"Sábado":    "9:00 AM - 1:00 PM",
}

// ContactNote - текст под сводкой записи
const ContactNote = "Nos pondremos en contacto contigo para confirmar el horario específico."

// HoursFor возвращает часы работы для дня
func HoursFor(day string) (string, bool) {
	h, ok := officeHours[day]
	return h, ok
}

// DayHours - день и часы работы
type DayHours struct {
	Day   string `json:"day"`
	Hours string `json:"hours"`
}

// Schedule возвращает часы работы в порядке дней недели
func Schedule() []DayHours {
	days := validation.Days()
	out := make([]DayHours, 0, len(days))
	for _, d := range days {
		out = append(out, DayHours{Day: d, Hours: officeHours[d]})
	}
	return out
}

// Summary - сводка перед подтверждением записи
type Summary struct {
	Office string `json:"office"`
	Day    string `json:"day"`
	Hours  string `json:"hours"`
	Note   string `json:"note"`
}

// Summarize строит сводку, если выбраны допустимые филиал и день
func Summarize(office, day string) (Summary, bool) {
	if !validation.ValidateOffice(office) || !validation.ValidateDay(day) {
		return Summary{}, false
	}
	return Summary{
		Office: office,
		Day:    day,
		Hours:  officeHours[day],
		Note:   ContactNote,
	}, true
}
