package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "watchonly"

// SyncMetrics collects the metrics of the wallet syncs.
type SyncMetrics struct {
	syncs            *prometheus.CounterVec
	syncDuration     prometheus.Histogram
	scannedAddresses *prometheus.GaugeVec
	usedAddresses    *prometheus.GaugeVec
	utxos            prometheus.Gauge
	tipHeight        prometheus.Gauge
}

// NewSyncMetrics creates the sync metrics and registers them to the given
// registerer, if not nil.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_total",
			Help:      "Number of wallet syncs by result.",
		}, []string{"result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of successful wallet syncs.",
			Buckets:   prometheus.DefBuckets,
		}),
		scannedAddresses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scanned_addresses",
			Help:      "Number of addresses scanned by the last sync by branch.",
		}, []string{"branch"}),
		usedAddresses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "used_addresses",
			Help:      "Number of used addresses found by the last sync by branch.",
		}, []string{"branch"}),
		utxos: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "utxos",
			Help:      "Number of utxos found by the last sync.",
		}),
		tipHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tip_height",
			Help:      "Chain tip height as of the last sync.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.syncs, m.syncDuration, m.scannedAddresses, m.usedAddresses,
			m.utxos, m.tipHeight,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// ObserveSync records the outcome of a sync.
func (m *SyncMetrics) ObserveSync(duration time.Duration, err error) {
	if err != nil {
		m.syncs.WithLabelValues("failure").Inc()
		return
	}
	m.syncs.WithLabelValues("success").Inc()
	m.syncDuration.Observe(duration.Seconds())
}

// SetBranchAddresses records the address usage found for a branch.
func (m *SyncMetrics) SetBranchAddresses(branch string, scanned, used int) {
	m.scannedAddresses.WithLabelValues(branch).Set(float64(scanned))
	m.usedAddresses.WithLabelValues(branch).Set(float64(used))
}

// SetChainState records the number of utxos and the tip height.
func (m *SyncMetrics) SetChainState(utxos int, tipHeight uint32) {
	m.utxos.Set(float64(utxos))
	m.tipHeight.Set(float64(tipHeight))
}
