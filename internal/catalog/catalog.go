package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/vitalis/turnos/internal/storage/models"
	"github.com/vitalis/turnos/pkg/errors"
	"github.com/vitalis/turnos/pkg/logger"
	"github.com/vitalis/turnos/pkg/metrics"
)

// Loader загружает статический JSON-список процедур
type Loader struct {
	client *http.Client
	url    string
	logger *logger.Logger
}

// NewLoader создает загрузчик. Таймаут у клиента не задается:
// запрос ограничен только контекстом процесса.
func NewLoader(url string, client *http.Client, log *logger.Logger) *Loader {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{
		client: client,
		url:    url,
		logger: log.WithFields(logger.String("component", "catalog")),
	}
}

// Fetch выполняет один GET и разбирает массив процедур
func (l *Loader) Fetch(ctx context.Context) ([]models.Treatment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, errors.ErrCatalogFetch.WithError(err).WithContext(map[string]interface{}{
			"url": l.url,
		})
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.ErrCatalogFetch.WithError(err).WithContext(map[string]interface{}{
			"url": l.url,
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.ErrCatalogFetch.WithError(fmt.Errorf("unexpected status %d", resp.StatusCode)).WithContext(map[string]interface{}{
			"url":    l.url,
			"status": resp.StatusCode,
		})
	}

	var treatments []models.Treatment
	if err := json.NewDecoder(resp.Body).Decode(&treatments); err != nil {
		return nil, errors.ErrCatalogFetch.WithError(fmt.Errorf("decode catalog: %w", err)).WithContext(map[string]interface{}{
			"url": l.url,
		})
	}
	if treatments == nil {
		treatments = []models.Treatment{}
	}

	return treatments, nil
}

// Catalog хранит загруженный список процедур только для чтения
type Catalog struct {
	loader *Loader

	mu         sync.RWMutex
	treatments []models.Treatment
	loaded     bool
}

// New создает пустой каталог
func New(loader *Loader) *Catalog {
	return &Catalog{
		loader:     loader,
		treatments: []models.Treatment{},
	}
}

// Load загружает каталог. Ошибка логируется и не поднимается выше:
// каталог остается пустым, запись работает без выбора процедуры.
func (c *Catalog) Load(ctx context.Context) {
	treatments, err := c.loader.Fetch(ctx)
	if err != nil {
		metrics.RecordCatalogFetch("error", 0)
		c.loader.logger.Error("Failed to load treatment catalog",
			logger.String("url", c.loader.url),
			logger.Error(err),
		)
		return
	}

	c.mu.Lock()
	c.treatments = treatments
	c.loaded = true
	c.mu.Unlock()

	metrics.RecordCatalogFetch("success", len(treatments))
	c.loader.logger.Info("Treatment catalog loaded", logger.Int("treatments", len(treatments)))
}

// Treatments возвращает копию списка процедур
func (c *Catalog) Treatments() []models.Treatment {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Treatment, len(c.treatments))
	copy(out, c.treatments)
	return out
}

// Names возвращает названия процедур для выпадающего списка
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.treatments))
	for _, t := range c.treatments {
		out = append(out, t.Name)
	}
	return out
}

// Loaded сообщает, была ли успешная загрузка
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loaded
}
