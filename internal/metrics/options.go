package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option настраивает Manager.
type Option func(*Manager)

// WithNamespace задаёт namespace всех метрик.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets задаёт бакеты гистограмм задержек (в секундах).
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry задаёт реестр. По умолчанию создаётся свой, без глобального.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// WithRuntimeCollectors добавляет стандартные метрики Go и процесса.
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.runtimeCollectors = true
	}
}
