// Package metrics собирает метрики Prometheus сервиса рейтинга.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Направления изменения рейтинга (метка direction)
const (
	DirectionPositive = "positive"
	DirectionNegative = "negative"
	DirectionZero     = "zero"
)

// Manager владеет реестром и всеми метриками сервиса.
type Manager struct {
	namespace         string
	histogramBuckets  []float64
	registry          *prometheus.Registry
	runtimeCollectors bool

	// Рейтинг
	scoreUpdates   *prometheus.CounterVec
	scoreLatency   prometheus.Histogram
	scoreErrors    prometheus.Counter
	scoreDeltaSize prometheus.Histogram

	// Статистика серверов (обновляется фоновой задачей)
	guildUsers     *prometheus.GaugeVec
	guildAverage   *prometheus.GaugeVec
	guildHighest   *prometheus.GaugeVec
	guildLowest    *prometheus.GaugeVec
	statsRefreshes *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Админка
	adminSessions prometheus.Gauge
}

// NewManager создаёт менеджер метрик и регистрирует метрики в реестре.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "socialcredit",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if m.runtimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoreUpdates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "score_updates_total",
		Help:      "Применённые изменения рейтинга по направлению",
	}, []string{"direction"})

	m.scoreLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "score_update_duration_seconds",
		Help:      "Длительность транзакции изменения рейтинга",
		Buckets:   m.histogramBuckets,
	})

	m.scoreErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "score_update_errors_total",
		Help:      "Неудачные изменения рейтинга (ошибки хранилища)",
	})

	m.scoreDeltaSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "score_change_magnitude",
		Help:      "Абсолютная величина изменения рейтинга",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	m.guildUsers = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "guild",
		Name:      "users",
		Help:      "Пользователи с рейтингом на сервере",
	}, []string{"guild_id"})

	m.guildAverage = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "guild",
		Name:      "average_score",
		Help:      "Средний рейтинг на сервере",
	}, []string{"guild_id"})

	m.guildHighest = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "guild",
		Name:      "highest_score",
		Help:      "Максимальный рейтинг на сервере",
	}, []string{"guild_id"})

	m.guildLowest = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "guild",
		Name:      "lowest_score",
		Help:      "Минимальный рейтинг на сервере",
	}, []string{"guild_id"})

	m.statsRefreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "stats_refresh_total",
		Help:      "Запуски обновления статистики серверов по результату",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP-запросы по маршруту, методу и коду ответа",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Длительность HTTP-запросов",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})

	m.adminSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "admin",
		Name:      "sessions",
		Help:      "Открытые сессии администратора",
	})
}

// Registry возвращает реестр метрик.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдаёт метрики в формате Prometheus (GET /metrics).
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScoreUpdate учитывает одно изменение рейтинга.
func (m *Manager) ObserveScoreUpdate(change int64, elapsed time.Duration, err error) {
	m.scoreLatency.Observe(elapsed.Seconds())
	if err != nil {
		m.scoreErrors.Inc()
		return
	}

	switch {
	case change > 0:
		m.scoreUpdates.WithLabelValues(DirectionPositive).Inc()
		m.scoreDeltaSize.Observe(float64(change))
	case change < 0:
		m.scoreUpdates.WithLabelValues(DirectionNegative).Inc()
		m.scoreDeltaSize.Observe(-float64(change))
	default:
		m.scoreUpdates.WithLabelValues(DirectionZero).Inc()
	}
}

// SetGuildStats выставляет gauge-метрики сервера.
func (m *Manager) SetGuildStats(guildID string, users int64, average float64, highest, lowest int64) {
	m.guildUsers.WithLabelValues(guildID).Set(float64(users))
	m.guildAverage.WithLabelValues(guildID).Set(average)
	m.guildHighest.WithLabelValues(guildID).Set(float64(highest))
	m.guildLowest.WithLabelValues(guildID).Set(float64(lowest))
}

// RecordStatsRefresh учитывает запуск фонового обновления статистики.
func (m *Manager) RecordStatsRefresh(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.statsRefreshes.WithLabelValues(result).Inc()
}

// SetAdminSessions выставляет число открытых админ-сессий.
func (m *Manager) SetAdminSessions(n int) {
	m.adminSessions.Set(float64(n))
}

// Middleware учитывает HTTP-запросы. Метка route — шаблон маршрута chi,
// чтобы ID в пути не раздували кардинальность.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
