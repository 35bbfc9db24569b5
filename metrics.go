package jit_amm_pool

import "github.com/prometheus/client_golang/prometheus"

// poolMetrics is the pool's optional prometheus instrumentation. A pool
// built without a registry (NewPool with cfg.Registry == nil) simply
// leaves every counter/histogram nil: Inc/Observe on a nil metric is
// guarded by the helper methods below instead of prometheus panicking on
// a nil receiver.
type poolMetrics struct {
	swaps           prometheus.Counter
	mints           prometheus.Counter
	burns           prometheus.Counter
	ticksCrossed    prometheus.Histogram
	protocolFees0   prometheus.Counter
	protocolFees1   prometheus.Counter
}

func newPoolMetrics(reg prometheus.Registerer, poolAddress string) *poolMetrics {
	if reg == nil {
		return nil
	}
	labels := prometheus.Labels{"pool": poolAddress}
	m := &poolMetrics{
		swaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "jit_amm",
			Name:        "swaps_total",
			Help:        "Number of swaps executed against this pool.",
			ConstLabels: labels,
		}),
		mints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "jit_amm",
			Name:        "mints_total",
			Help:        "Number of mint operations (range or limit) against this pool.",
			ConstLabels: labels,
		}),
		burns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "jit_amm",
			Name:        "burns_total",
			Help:        "Number of burn operations (range or limit) against this pool.",
			ConstLabels: labels,
		}),
		ticksCrossed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "jit_amm",
			Name:        "ticks_crossed",
			Help:        "Number of limit-order ticks fully crossed per swap.",
			Buckets:     prometheus.LinearBuckets(0, 1, 10),
			ConstLabels: labels,
		}),
		protocolFees0: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "jit_amm",
			Name:        "protocol_fees_token0_total",
			Help:        "Accumulated protocol fee, token0 units.",
			ConstLabels: labels,
		}),
		protocolFees1: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "jit_amm",
			Name:        "protocol_fees_token1_total",
			Help:        "Accumulated protocol fee, token1 units.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.swaps, m.mints, m.burns, m.ticksCrossed, m.protocolFees0, m.protocolFees1)
	return m
}

func (m *poolMetrics) recordSwap(numTicksCrossed int) {
	if m == nil {
		return
	}
	m.swaps.Inc()
	m.ticksCrossed.Observe(float64(numTicksCrossed))
}

func (m *poolMetrics) recordMint() {
	if m == nil {
		return
	}
	m.mints.Inc()
}

func (m *poolMetrics) recordBurn() {
	if m == nil {
		return
	}
	m.burns.Inc()
}

func (m *poolMetrics) recordProtocolFee0(amount float64) {
	if m == nil || amount <= 0 {
		return
	}
	m.protocolFees0.Add(amount)
}

func (m *poolMetrics) recordProtocolFee1(amount float64) {
	if m == nil || amount <= 0 {
		return
	}
	m.protocolFees1.Add(amount)
}
