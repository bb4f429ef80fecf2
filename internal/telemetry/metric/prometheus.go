package metric

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "refstore"

// Operation result labels.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultMismatch = "mismatch"
	ResultOverflow = "overflow"
	ResultError    = "error"
)

// Registry holds all store metrics.
type Registry struct {
	registry *prometheus.Registry

	OpsTotal       *prometheus.CounterVec
	OpDuration     *prometheus.HistogramVec
	RecordsCreated prometheus.Counter
	RecordsDeleted prometheus.Counter
}

// NewRegistry creates a registry with all store metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_total",
			Help:      "Total store operations by op and result",
		}, []string{"op", "result"}),

		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "op_duration_seconds",
			Help:      "Store operation latency in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"op"}),

		RecordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Records written with a reference count of 1 for a new key",
		}),

		RecordsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_deleted_total",
			Help:      "Records removed after their last reference was released",
		}),
	}

	r.registry.MustRegister(
		r.OpsTotal,
		r.OpDuration,
		r.RecordsCreated,
		r.RecordsDeleted,
	)

	return r
}

// Registerer returns the underlying registry for additional collectors,
// such as engine metrics.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer returns the underlying registry for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveOp records one completed operation.
func (r *Registry) ObserveOp(op, result string, elapsed time.Duration) {
	r.OpsTotal.WithLabelValues(op, result).Inc()
	r.OpDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// IncRecordsCreated counts a new record.
func (r *Registry) IncRecordsCreated() {
	r.RecordsCreated.Inc()
}

// IncRecordsDeleted counts a removed record.
func (r *Registry) IncRecordsDeleted() {
	r.RecordsDeleted.Inc()
}

// Sample is one gathered counter or gauge value.
type Sample struct {
	Name   string  `json:"name" yaml:"name"`
	Labels string  `json:"labels" yaml:"labels"`
	Value  float64 `json:"value" yaml:"value"`
}

// Snapshot gathers counters and gauges as flat samples sorted by name.
// Histograms are reported as their sample count under name_count.
func (r *Registry) Snapshot() ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: formatLabels(m.GetLabel())}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				s.Name += "_count"
				s.Value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return strings.Join(parts, ",")
}
