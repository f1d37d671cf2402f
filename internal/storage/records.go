package storage

import (
	"context"
	"encoding/json"

	"github.com/vitalis/turnos/internal/storage/models"
	"github.com/vitalis/turnos/pkg/errors"
	"github.com/vitalis/turnos/pkg/logger"
	"github.com/vitalis/turnos/pkg/metrics"
)

// Records - граница сериализации: хранит записи и профиль как JSON
// поверх KeyValueStore. Ошибки чтения и разбора не поднимаются выше,
// а превращаются в "нет данных".
type Records struct {
	kv     KeyValueStore
	logger *logger.Logger
}

// NewRecords создает адаптер записей поверх key-value хранилища
func NewRecords(kv KeyValueStore, log *logger.Logger) *Records {
	if log == nil {
		log = logger.NewNop()
	}
	return &Records{
		kv:     kv,
		logger: log.WithFields(logger.String("component", "records")),
	}
}

// LoadAppointments читает коллекцию записей; при отсутствии или
// поврежденных данных возвращает пустую коллекцию
func (r *Records) LoadAppointments(ctx context.Context) []models.Appointment {
	var appointments []models.Appointment
	if !r.read(ctx, KeyAppointments, &appointments) {
		return []models.Appointment{}
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return appointments
}

// SaveAppointments заменяет всю сохраненную коллекцию одной записью
func (r *Records) SaveAppointments(ctx context.Context, appointments []models.Appointment) error {
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return r.write(ctx, KeyAppointments, appointments)
}

// RemoveAppointments удаляет ключ коллекции целиком
func (r *Records) RemoveAppointments(ctx context.Context) error {
	if err := r.kv.Remove(ctx, KeyAppointments); err != nil {
		metrics.RecordStorageOperation("remove", KeyAppointments, "error")
		return errors.ErrStorageWrite.WithError(err).WithContext(map[string]interface{}{
			"key": KeyAppointments,
		})
	}
	metrics.RecordStorageOperation("remove", KeyAppointments, "success")
	return nil
}

// LoadProfile читает кэш персональных данных
func (r *Records) LoadProfile(ctx context.Context) (*models.PersonalProfile, bool) {
	var profile models.PersonalProfile
	if !r.read(ctx, KeyPersonalProfile, &profile) {
		return nil, false
	}
	if profile.IsEmpty() {
		return nil, false
	}
	return &profile, true
}

// SaveProfile перезаписывает кэш персональных данных
func (r *Records) SaveProfile(ctx context.Context, profile models.PersonalProfile) error {
	return r.write(ctx, KeyPersonalProfile, profile)
}

// Ping проверяет хранилище, если оно это поддерживает
func (r *Records) Ping(ctx context.Context) error {
	p, ok := r.kv.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return errors.ErrStorageUnavailable.WithError(err)
	}
	return nil
}

func (r *Records) read(ctx context.Context, key string, dst interface{}) bool {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		metrics.RecordStorageOperation("get", key, "error")
		r.logger.Warn("Storage read failed, treating as empty",
			logger.String("key", key),
			logger.Error(errors.ErrStorageRead.WithError(err)),
		)
		return false
	}
	if !ok {
		metrics.RecordStorageOperation("get", key, "miss")
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		metrics.RecordStorageOperation("get", key, "corrupt")
		r.logger.Warn("Stored value is not valid JSON, treating as empty",
			logger.String("key", key),
			logger.Error(errors.ErrStorageRead.WithError(err)),
		)
		return false
	}
	metrics.RecordStorageOperation("get", key, "success")
	return true
}

func (r *Records) write(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.ErrStorageWrite.WithError(err).WithContext(map[string]interface{}{
			"key": key,
		})
	}
	if err := r.kv.Set(ctx, key, string(data)); err != nil {
		metrics.RecordStorageOperation("set", key, "error")
		return errors.ErrStorageWrite.WithError(err).WithContext(map[string]interface{}{
			"key": key,
		})
	}
	metrics.RecordStorageOperation("set", key, "success")
	return nil
}
