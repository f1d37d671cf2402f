package storage

import (
	"context"
)

// Ключи хранилища
const (
	KeyAppointments    = "appointments"
	KeyPersonalProfile = "personalProfile"
)

// KeyValueStore определяет строковое key-value хранилище
type KeyValueStore interface {
	// Get возвращает значение и признак его наличия
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Storage объединяет key-value хранилище с управлением подключением
type Storage interface {
	KeyValueStore
	Close() error
	Ping(ctx context.Context) error
}
