package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultPrefix - пространство имен ключей по умолчанию
const DefaultPrefix = "vitalis:"

// Options - параметры подключения к Redis
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStorage реализует key-value хранилище поверх Redis.
// Каждый ключ хранится как отдельная строка с префиксом.
type RedisStorage struct {
	client *goredis.Client
	prefix string
	owned  bool
}

// New подключается к Redis и проверяет соединение
func New(ctx context.Context, opts Options) (*RedisStorage, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	s := NewWithClient(client, opts.Prefix)
	s.owned = true
	return s, nil
}

// NewWithClient оборачивает существующий клиент; клиент не закрывается в Close
func NewWithClient(client *goredis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStorage{client: client, prefix: prefix}
}

func (s *RedisStorage) key(k string) string {
	return s.prefix + k
}

// Get возвращает значение по ключу
func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return value, true, nil
}

// Set сохраняет значение без срока жизни
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Remove удаляет ключ
func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает клиент, если он был создан этим хранилищем
func (s *RedisStorage) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}
