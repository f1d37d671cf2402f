// Package appointments владеет упорядоченной коллекцией записей и кэшем
// персональных данных; все чтения и записи идут через storage.Records.
package appointments

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vitalis/turnos/internal/storage"
	"github.com/vitalis/turnos/internal/storage/models"
	"github.com/vitalis/turnos/internal/validation"
	"github.com/vitalis/turnos/pkg/logger"
	"github.com/vitalis/turnos/pkg/metrics"
)

// CreatedAtLayout - формат даты создания (как toLocaleString('es-AR'))
const CreatedAtLayout = "2/1/2006, 15:04:05"

// ConfirmationMessage - текст после успешной записи
const ConfirmationMessage = "¡Turno confirmado exitosamente!"

// notifyTimeout ограничивает одну отправку уведомления
const notifyTimeout = 15 * time.Second

// Notifier получает уведомление о новой записи
type Notifier interface {
	NotifyBooked(ctx context.Context, appointment models.Appointment) error
}

// HistoryEntry - запись в истории с порядковым номером "Turno #N"
type HistoryEntry struct {
	Index       int                `json:"index"`
	Title       string             `json:"title"`
	Hours       string             `json:"hours"`
	Appointment models.Appointment `json:"appointment"`
}

// Store - хранилище записей на прием
type Store struct {
	mu           sync.Mutex
	records      *storage.Records
	appointments []models.Appointment
	lastID       int64

	now      func() time.Time
	location *time.Location
	notifier Notifier
	notifyWG sync.WaitGroup
	logger   *logger.Logger
}

// Option настраивает Store
type Option func(*Store)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLocation задает часовой пояс клиники для createdAt
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithNotifier подключает уведомления о новых записях
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithLogger задает логгер
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New создает хранилище и загружает сохраненную коллекцию
func New(ctx context.Context, records *storage.Records, opts ...Option) *Store {
	s := &Store{
		records:  records,
		now:      time.Now,
		location: time.Local,
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(logger.String("component", "appointments"))

	s.Load(ctx)
	return s
}

// Load перечитывает коллекцию из хранилища. Отсутствующие или
// поврежденные данные дают пустую коллекцию.
func (s *Store) Load(ctx context.Context) []models.Appointment {
	loaded := s.records.LoadAppointments(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.appointments = loaded
	for _, a := range loaded {
		if int64(a.ID) > s.lastID {
			s.lastID = int64(a.ID)
		}
	}
	metrics.SetStoredAppointments(len(s.appointments))

	return s.copyLocked()
}

// List возвращает копию коллекции в порядке добавления
func (s *Store) List() []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyLocked()
}

// History возвращает записи с номерами "Turno #N" и часами работы
func (s *Store) History() []HistoryEntry {
	list := s.List()
	out := make([]HistoryEntry, 0, len(list))
	for i, a := range list {
		hours, _ := HoursFor(a.Day)
		out = append(out, HistoryEntry{
			Index:       i + 1,
			Title:       "Turno #" + strconv.Itoa(i+1),
			Hours:       hours,
			Appointment: a,
		})
	}
	return out
}

// Create проверяет все обязательные поля и сохраняет новую запись.
// При ошибках валидации возвращает validation.Errors, коллекция не меняется.
func (s *Store) Create(ctx context.Context, fields map[string]string) (*models.Appointment, error) {
	values := normalize(fields)
	if errs := validation.ValidateAll(values); len(errs) > 0 {
		s.logger.Debug("Appointment rejected by validation",
			logger.Any("fields", errs.Map()),
		)
		return nil, errs
	}

	s.mu.Lock()

	now := s.now()
	appointment := models.Appointment{
		ID:         models.AppointmentID(s.nextIDLocked(now)),
		Name:       values[validation.FieldName],
		NationalID: values[validation.FieldNationalID],
		Phone:      values[validation.FieldPhone],
		Email:      values[validation.FieldEmail],
		Office:     values[validation.FieldOffice],
		Day:        values[validation.FieldDay],
		Treatment:  values[validation.FieldTreatment],
		Notes:      values[validation.FieldNotes],
		CreatedAt:  now.In(s.location).Format(CreatedAtLayout),
	}

	s.appointments = append(s.appointments, appointment)
	if err := s.records.SaveAppointments(ctx, s.appointments); err != nil {
		s.appointments = s.appointments[:len(s.appointments)-1]
		s.mu.Unlock()
		s.logger.Error("Failed to persist appointment", logger.Error(err))
		return nil, err
	}
	count := len(s.appointments)

	if err := s.records.SaveProfile(ctx, appointment.Profile()); err != nil {
		s.logger.Warn("Failed to cache personal profile", logger.Error(err))
	}
	s.mu.Unlock()

	metrics.RecordAppointmentCreated(appointment.Office, appointment.Day)
	metrics.SetStoredAppointments(count)
	s.logger.Info("Appointment created",
		logger.String("id", appointment.ID.String()),
		logger.String("office", appointment.Office),
		logger.String("day", appointment.Day),
	)

	if s.notifier != nil {
		s.notifyAsync(ctx, appointment)
	}

	return &appointment, nil
}

// DeleteByID удаляет первую запись с совпадающим id (сравнение строк).
// Возвращает, была ли запись удалена.
func (s *Store) DeleteByID(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, a := range s.appointments {
		if a.ID.String() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	remaining := make([]models.Appointment, 0, len(s.appointments)-1)
	remaining = append(remaining, s.appointments[:idx]...)
	remaining = append(remaining, s.appointments[idx+1:]...)

	if err := s.records.SaveAppointments(ctx, remaining); err != nil {
		s.logger.Error("Failed to persist deletion",
			logger.String("id", id),
			logger.Error(err),
		)
		return false, err
	}
	s.appointments = remaining

	metrics.RecordAppointmentDeleted()
	metrics.SetStoredAppointments(len(s.appointments))
	s.logger.Info("Appointment deleted", logger.String("id", id))

	return true, nil
}

// Clear очищает коллекцию и удаляет сохраненный ключ целиком
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.records.RemoveAppointments(ctx); err != nil {
		s.logger.Error("Failed to clear history", logger.Error(err))
		return err
	}
	removed := len(s.appointments)
	s.appointments = []models.Appointment{}

	metrics.RecordHistoryCleared()
	metrics.SetStoredAppointments(0)
	s.logger.Info("History cleared", logger.Int("removed", removed))

	return nil
}

// ConfirmAndDelete удаляет запись, только если пользователь подтвердил
func (s *Store) ConfirmAndDelete(ctx context.Context, id string, c Confirmer) (bool, error) {
	if c == nil || !c.Confirm(ctx, ConfirmDeleteMessage) {
		return false, nil
	}
	return s.DeleteByID(ctx, id)
}

// ConfirmAndClear очищает историю, только если пользователь подтвердил
func (s *Store) ConfirmAndClear(ctx context.Context, c Confirmer) (bool, error) {
	if c == nil || !c.Confirm(ctx, ConfirmClearMessage) {
		return false, nil
	}
	if err := s.Clear(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// LoadProfile возвращает кэш персональных данных для предзаполнения формы
func (s *Store) LoadProfile(ctx context.Context) (*models.PersonalProfile, bool) {
	return s.records.LoadProfile(ctx)
}

// Ping проверяет доступность хранилища
func (s *Store) Ping(ctx context.Context) error {
	return s.records.Ping(ctx)
}

// notifyAsync отправляет уведомление в фоне: запись уже сохранена,
// и ответ клиенту не ждет внешний канал
func (s *Store) notifyAsync(ctx context.Context, appointment models.Appointment) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)

	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		defer cancel()

		if err := s.notifier.NotifyBooked(ctx, appointment); err != nil {
			s.logger.Warn("Booking notification failed",
				logger.String("id", appointment.ID.String()),
				logger.Error(err),
			)
		}
	}()
}

// Wait дожидается отправки уведомлений, запущенных Create
func (s *Store) Wait() {
	s.notifyWG.Wait()
}

// nextIDLocked выдает id = текущее время в мс, но строго больше предыдущего
func (s *Store) nextIDLocked(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) copyLocked() []models.Appointment {
	out := make([]models.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// normalize обрезает пробелы и сводит ключи формы к полям.
// Канонический ключ имеет приоритет над испанским синонимом.
func normalize(fields map[string]string) map[validation.Field]string {
	values := make(map[validation.Field]string, len(fields))
	for key, raw := range fields {
		f, ok := validation.ParseField(key)
		if !ok {
			continue
		}
		if _, exists := values[f]; exists && key != f.String() {
			continue
		}
		values[f] = strings.TrimSpace(raw)
	}
	return values
}
