package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Appointment представляет запись на прием (turno)
type Appointment struct {
	ID         AppointmentID `json:"id"`
	Name       string        `json:"name"`
	NationalID string        `json:"nationalId"`
	Phone      string        `json:"phone"`
	Email      string        `json:"email"`
	Office     string        `json:"office"`
	Day        string        `json:"day"`
	Treatment  string        `json:"treatment,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	CreatedAt  string        `json:"createdAt"`
}

// HasTreatment проверяет, выбрана ли процедура
func (a *Appointment) HasTreatment() bool {
	return a.Treatment != ""
}

// HasNotes проверяет, оставлены ли комментарии
func (a *Appointment) HasNotes() bool {
	return a.Notes != ""
}

// Profile возвращает персональные данные из записи
func (a *Appointment) Profile() PersonalProfile {
	return PersonalProfile{
		Name:       a.Name,
		NationalID: a.NationalID,
		Phone:      a.Phone,
		Email:      a.Email,
	}
}

// AppointmentID - момент создания записи в миллисекундах.
// В JSON пишется числом, но при чтении принимается и строка из цифр.
type AppointmentID int64

// String возвращает десятичное представление идентификатора
func (id AppointmentID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON принимает как число, так и строку
func (id *AppointmentID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return fmt.Errorf("appointment id is null")
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid appointment id %q: %w", raw, err)
	}
	*id = AppointmentID(v)
	return nil
}

// PersonalProfile - кэш последних введенных персональных данных
type PersonalProfile struct {
	Name       string `json:"name"`
	NationalID string `json:"nationalId"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// IsEmpty проверяет, что ни одно поле не заполнено
func (p PersonalProfile) IsEmpty() bool {
	return p.Name == "" && p.NationalID == "" && p.Phone == "" && p.Email == ""
}

// Treatment представляет процедуру из каталога
type Treatment struct {
	Name     string `json:"name"`
	CSSClass string `json:"cssClass"`
}

// UnmarshalJSON принимает также ключи исходного каталога (nombre, clase)
func (t *Treatment) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string `json:"name"`
		CSSClass string `json:"cssClass"`
		Nombre   string `json:"nombre"`
		Clase    string `json:"clase"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Name = raw.Name
	if t.Name == "" {
		t.Name = raw.Nombre
	}
	t.CSSClass = raw.CSSClass
	if t.CSSClass == "" {
		t.CSSClass = raw.Clase
	}
	return nil
}
