package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики сервиса записи
var (
	// Метрики записей
	AppointmentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalis_appointments_created_total",
			Help: "Общее количество созданных записей",
		},
		[]string{"office", "day"},
	)

	AppointmentsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitalis_appointments_deleted_total",
			Help: "Общее количество удаленных записей",
		},
	)

	HistoryCleared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitalis_history_cleared_total",
			Help: "Сколько раз была очищена история записей",
		},
	)

	StoredAppointments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitalis_appointments_stored",
			Help: "Текущее количество записей в хранилище",
		},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalis_validation_failures_total",
			Help: "Количество ошибок валидации по полям",
		},
		[]string{"field"},
	)

	// Метрики хранилища
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalis_storage_operations_total",
			Help: "Общее количество операций с хранилищем",
		},
		[]string{"operation", "key", "status"},
	)

	// Метрики каталога
	CatalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalis_catalog_fetches_total",
			Help: "Количество загрузок каталога процедур",
		},
		[]string{"status"},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitalis_catalog_treatments",
			Help: "Количество процедур в загруженном каталоге",
		},
	)

	// Метрики уведомлений
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalis_notifications_sent_total",
			Help: "Общее количество отправленных уведомлений",
		},
		[]string{"channel", "status"},
	)

	// Метрики производительности
	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitalis_memory_usage_bytes",
			Help: "Использование памяти в байтах",
		},
	)

	GoroutinesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitalis_goroutines_count",
			Help: "Количество активных горутин",
		},
	)

	// Метрики HTTP сервера
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalis_http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitalis_http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitalis_http_rate_limited_total",
			Help: "Количество запросов, отклоненных rate limiter",
		},
	)
)

// RecordAppointmentCreated записывает метрику создания записи
func RecordAppointmentCreated(office, day string) {
	AppointmentsCreated.WithLabelValues(office, day).Inc()
}

// RecordAppointmentDeleted записывает метрику удаления записи
func RecordAppointmentDeleted() {
	AppointmentsDeleted.Inc()
}

// RecordHistoryCleared записывает метрику очистки истории
func RecordHistoryCleared() {
	HistoryCleared.Inc()
}

// SetStoredAppointments устанавливает текущее количество записей
func SetStoredAppointments(count int) {
	StoredAppointments.Set(float64(count))
}

// RecordValidationFailure записывает ошибку валидации поля
func RecordValidationFailure(field string) {
	ValidationFailures.WithLabelValues(field).Inc()
}

// RecordStorageOperation записывает метрику операции с хранилищем
func RecordStorageOperation(operation, key, status string) {
	StorageOperations.WithLabelValues(operation, key, status).Inc()
}

// RecordCatalogFetch записывает результат загрузки каталога
func RecordCatalogFetch(status string, size int) {
	CatalogFetches.WithLabelValues(status).Inc()
	if status == "success" {
		CatalogSize.Set(float64(size))
	}
}

// RecordNotification записывает метрику отправки уведомления
func RecordNotification(channel, status string) {
	NotificationsSent.WithLabelValues(channel, status).Inc()
}

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}

// RecordRateLimited записывает отклоненный запрос
func RecordRateLimited() {
	RateLimited.Inc()
}
