package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Measurements collects measurements for prometheus.
type Measurements struct {
	histograms map[string]prometheus.Observer
	counters   map[string]prometheus.Counter
	gauge      map[string]prometheus.Gauge
}

// CreateUpdateObservableHistogram creates or updates observable histogram.
func (m *Measurements) CreateUpdateObservableHistogram(name, description string) {
	m.histograms[name] = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: name,
		Help: description,
	})
}

// RecordHistogramTime records histogram time if entity with given name exists.
func (m *Measurements) RecordHistogramTime(name string, t time.Duration) bool {
	if v, ok := m.histograms[name]; ok {
		v.Observe(float64(t.Microseconds()))
		return true
	}
	return false
}

// RecordHistogramValue records histogram value if entity with given name exists.
func (m *Measurements) RecordHistogramValue(name string, f float64) bool {
	if v, ok := m.histograms[name]; ok {
		v.Observe(f)
		return true
	}
	return false
}

// CreateUpdateObservableCounter creates or updates observable counter.
func (m *Measurements) CreateUpdateObservableCounter(name, description string) {
	m.counters[name] = promauto.NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: description,
	})
}

// IncrementCounter increments the counter if entity with given name exists.
func (m *Measurements) IncrementCounter(name string) bool {
	if v, ok := m.counters[name]; ok {
		v.Inc()
		return true
	}
	return false
}

// CreateUpdateObservableGauge creates or updates observable gauge.
func (m *Measurements) CreateUpdateObservableGauge(name, description string) {
	m.gauge[name] = promauto.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: description,
	})
}

// AddToGauge adds to gauge the value if entity with given name exists.
func (m *Measurements) AddToGauge(name string, f float64) bool {
	if v, ok := m.gauge[name]; ok {
		v.Add(f)
		return true
	}
	return false
}

// RemoveFromGauge subtracts from gauge the value if entity with given name exists.
func (m *Measurements) RemoveFromGauge(name string, f float64) bool {
	if v, ok := m.gauge[name]; ok {
		v.Sub(f)
		return true
	}
	return false
}

// IncrementGauge increments gauge the value if entity with given name exists.
func (m *Measurements) IncrementGauge(name string) bool {
	if v, ok := m.gauge[name]; ok {
		v.Inc()
		return true
	}
	return false
}

// DecrementGauge decrements gauge the value if entity with given name exists.
func (m *Measurements) DecrementGauge(name string) bool {
	if v, ok := m.gauge[name]; ok {
		v.Dec()
		return true
	}
	return false
}

// SetGauge sets the gauge to the value if entity with given name exists.
func (m *Measurements) SetGauge(name string, f float64) bool {
	if v, ok := m.gauge[name]; ok {
		v.Set(f)
		return true
	}
	return false
}

// SetToCurrentTimeGauge sets the gauge to the current time if entity with given name exists.
func (m *Measurements) SetToCurrentTimeGauge(name string) bool {
	if v, ok := m.gauge[name]; ok {
		v.SetToCurrentTime()
		return true
	}
	return false
}

// Run starts the server with the prometheus telemetry endpoint.
// Returns Measurements structure if successfully started or cancels context otherwise.
// Default port of 2112 is used if port value is set to 0.
func Run(ctx context.Context, cancel context.CancelFunc, port int) (*Measurements, error) {
	if port > 65535 || port < 0 {
		return nil, fmt.Errorf("port range allowed is from 1 to 65535, received %d", port)
	}
	if port == 0 {
		port = 2112
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			cancel()
		}
	}()
	go func() {
		<-ctx.Done()
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), time.Second*5)
		defer cancelShutdown()
		srv.Shutdown(ctxShutdown)
	}()

	return &Measurements{
		histograms: make(map[string]prometheus.Observer),
		counters:   make(map[string]prometheus.Counter),
		gauge:      make(map[string]prometheus.Gauge),
	}, nil
}
