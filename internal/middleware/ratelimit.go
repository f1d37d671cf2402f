package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/vitalis/turnos/pkg/logger"
	"github.com/vitalis/turnos/pkg/metrics"
)

// TokenBucket реализует алгоритм Token Bucket для rate limiting
type TokenBucket struct {
	capacity   float64
	tokens     float64
	refillRate float64 // токенов в секунду
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// NewTokenBucket создает новый TokenBucket
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity int, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Allow проверяет, доступен ли токен
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// RateLimiter ограничивает частоту запросов по ключу (IP клиента)
type RateLimiter struct {
	limiters   map[string]*TokenBucket
	lastAccess map[string]time.Time
	mu         sync.Mutex
	capacity   int
	refillRate float64
	now        func() time.Time
	logger     *logger.Logger

	cleanupInterval time.Duration
	idleTTL         time.Duration
	done            chan struct{}
	closeOnce       sync.Once
}

// NewRateLimiter создает rate limiter: requests запросов за window
func NewRateLimiter(requests int, window time.Duration, log *logger.Logger) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if log == nil {
		log = logger.NewNop()
	}

	rl := &RateLimiter{
		limiters:        make(map[string]*TokenBucket),
		lastAccess:      make(map[string]time.Time),
		capacity:        requests,
		refillRate:      float64(requests) / window.Seconds(),
		now:             time.Now,
		logger:          log,
		cleanupInterval: 5 * time.Minute,
		idleTTL:         10 * time.Minute,
		done:            make(chan struct{}),
	}

	go rl.cleanupRoutine()

	return rl
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = newTokenBucket(rl.capacity, rl.refillRate, rl.now)
		rl.limiters[key] = limiter
	}
	rl.lastAccess[key] = rl.now()
	rl.mu.Unlock()

	return limiter.Allow()
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

// cleanup удаляет limiters, которые давно не использовались
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	var cleaned int

	for key, lastAccessed := range rl.lastAccess {
		if lastAccessed.Before(cutoff) {
			delete(rl.limiters, key)
			delete(rl.lastAccess, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		rl.logger.Debug("Cleaned up rate limiters",
			logger.Int("cleaned_count", cleaned),
			logger.Int("remaining_count", len(rl.limiters)),
		)
	}
}

// Close останавливает cleanup routine
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

// RateLimit создает HTTP middleware для rate limiting по IP клиента
func RateLimit(limiter *RateLimiter, proxies ProxyTrust) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := proxies.ClientIP(r)

			if !limiter.Allow(key) {
				limiter.logger.WithContext(r.Context()).Warn("Rate limit exceeded",
					logger.String("ip", key),
					logger.String("user_agent", r.UserAgent()),
				)
				metrics.RecordRateLimited()

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"status":  "error",
					"message": "Demasiadas solicitudes, intente nuevamente en unos minutos",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ProxyTrust - сети доверенных прокси. Заголовки с адресом клиента
// учитываются, только если соединение пришло от такого прокси.
type ProxyTrust struct {
	prefixes []netip.Prefix
}

// NewProxyTrust создает набор доверенных сетей
func NewProxyTrust(prefixes []netip.Prefix) ProxyTrust {
	return ProxyTrust{prefixes: append([]netip.Prefix(nil), prefixes...)}
}

// Trusted проверяет, входит ли адрес в доверенные сети
func (p ProxyTrust) Trusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range p.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP возвращает адрес клиента с учетом доверенных прокси
func (p ProxyTrust) ClientIP(r *http.Request) string {
	remote := RemoteHost(r)
	if !p.Trusted(remote) {
		return remote
	}

	headers := []string{
		"CF-Connecting-IP", // Cloudflare
		"X-Forwarded-For",
		"X-Real-IP", // Nginx
	}

	for _, header := range headers {
		ip := strings.TrimSpace(r.Header.Get(header))
		if ip == "" {
			continue
		}
		// X-Forwarded-For может содержать несколько IP через запятую
		if header == "X-Forwarded-For" {
			if first, _, found := strings.Cut(ip, ","); found {
				return strings.TrimSpace(first)
			}
		}
		return ip
	}

	return remote
}

// RemoteHost возвращает IP из RemoteAddr без порта
func RemoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
