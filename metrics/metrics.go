// Package metrics instruments KEM schemes with Prometheus collectors.
//
// Only call counts, error counts and durations are recorded. Decapsulation
// never reports whether a ciphertext was accepted: implicit rejection must
// not be observable through metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/katzenpost/hpqc/kem"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "mlkem"
	subsystem = "kem"
)

// Operation labels.
const (
	OpKeyGen      = "keygen"
	OpEncapsulate = "encapsulate"
	OpDecapsulate = "decapsulate"
)

// Metrics holds the collectors shared by every instrumented scheme.
type Metrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	durations  *prometheus.SummaryVec
}

// New creates the collectors and registers them with reg. Registering twice
// with the same registry reuses the collectors already present.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operations_total",
				Help:      "Number of KEM operations",
			},
			[]string{"scheme", "op"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "failures_total",
				Help:      "Number of KEM operations that returned an error",
			},
			[]string{"scheme", "op"},
		),
		durations: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace:  namespace,
				Subsystem:  subsystem,
				Name:       "operation_duration_seconds",
				Help:       "Duration of KEM operations",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"scheme", "op"},
		),
	}

	var err error
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	if m.durations, err = register(reg, m.durations); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(scheme, op string, start time.Time, err error) {
	m.operations.WithLabelValues(scheme, op).Inc()
	m.durations.WithLabelValues(scheme, op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.WithLabelValues(scheme, op).Inc()
	}
}

// Instrument wraps s so that key generation, encapsulation and
// decapsulation are recorded in m. Keys produced by the wrapper are the
// wrapped scheme's own keys.
func (m *Metrics) Instrument(s kem.Scheme) kem.Scheme {
	return &instrumented{Scheme: s, m: m}
}

// Instrument creates collectors on reg and wraps s with them.
func Instrument(s kem.Scheme, reg prometheus.Registerer) (kem.Scheme, error) {
	m, err := New(reg)
	if err != nil {
		return nil, err
	}
	return m.Instrument(s), nil
}

type instrumented struct {
	kem.Scheme
	m *Metrics
}

func (i *instrumented) GenerateKeyPair() (kem.PublicKey, kem.PrivateKey, error) {
	start := time.Now()
	pk, sk, err := i.Scheme.GenerateKeyPair()
	i.m.observe(i.Name(), OpKeyGen, start, err)
	return pk, sk, err
}

func (i *instrumented) DeriveKeyPair(seed []byte) (kem.PublicKey, kem.PrivateKey) {
	start := time.Now()
	pk, sk := i.Scheme.DeriveKeyPair(seed)
	i.m.observe(i.Name(), OpKeyGen, start, nil)
	return pk, sk
}

func (i *instrumented) Encapsulate(pk kem.PublicKey) (ct, ss []byte, err error) {
	start := time.Now()
	ct, ss, err = i.Scheme.Encapsulate(pk)
	i.m.observe(i.Name(), OpEncapsulate, start, err)
	return ct, ss, err
}

func (i *instrumented) Decapsulate(sk kem.PrivateKey, ct []byte) ([]byte, error) {
	start := time.Now()
	ss, err := i.Scheme.Decapsulate(sk, ct)
	i.m.observe(i.Name(), OpDecapsulate, start, err)
	return ss, err
}
