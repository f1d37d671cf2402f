package memory

import (
	"context"
	"sync"
)

// Storage - key-value хранилище в памяти процесса.
// Используется в тестах и в режиме STORAGE_DRIVER=memory.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
}

// New создает пустое хранилище в памяти
func New() *Storage {
	return &Storage{values: make(map[string]string)}
}

// Get возвращает значение по ключу
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

// Set сохраняет значение по ключу
func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Remove удаляет ключ; отсутствие ключа не является ошибкой
func (s *Storage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Has проверяет наличие ключа
func (s *Storage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.values[key]
	return ok
}

// Close ничего не делает
func (s *Storage) Close() error {
	return nil
}

// Ping всегда успешен
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
