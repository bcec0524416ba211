// Package metrics provides Prometheus collectors for content loading,
// legacy resampling and pose composition.
//
// All Recorder methods are safe to call on a nil *Recorder, so collaborators
// can take an optional recorder without guarding every call.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Failure reasons used as label values.
const (
	ReasonDecode   = "decode"
	ReasonInvalid  = "invalid"
	ReasonRead     = "read"
	ReasonNoPlayer = "no_player_keyframes"
	ReasonEasing   = "unknown_easing"
	ReasonLegacy   = "legacy_lookup"
)

// Event kinds used as label values.
const (
	EventSound     = "sound"
	EventParticles = "particles"
	EventCallback  = "callback"
)

// defaultBucketStart is the first resample duration bucket in seconds.
const defaultBucketStart = 0.0005

// Recorder owns the collectors.
type Recorder struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	recordsLoaded    *prometheus.CounterVec
	recordsFailed    *prometheus.CounterVec
	resampleDuration prometheus.Histogram
	resampledFrames  prometheus.Counter
	framesComposed   prometheus.Counter
	activeChannels   prometheus.Gauge
	eventsDispatched *prometheus.CounterVec
}

// New creates a recorder. Without WithPrometheusRegistry the collectors are
// registered on a private registry, returned by Registry.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace:        "animcore",
		histogramBuckets: prometheus.ExponentialBuckets(defaultBucketStart, 2, 12),
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}

	r.initializeMetrics()
	return r
}

// Registry returns the registerer the collectors live on.
func (r *Recorder) Registry() prometheus.Registerer {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) initializeMetrics() {
	auto := promauto.With(r.registry)

	r.recordsLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "content_records_loaded_total",
		Help:      "Animation records successfully loaded, by source file",
	}, []string{"source"})

	r.recordsFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "content_records_failed_total",
		Help:      "Animation records skipped because they could not be loaded",
	}, []string{"source", "reason"})

	r.resampleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "resample_duration_seconds",
		Help:      "Time spent resampling legacy item animations",
		Buckets:   r.histogramBuckets,
	})

	r.resampledFrames = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "resampled_keyframes_total",
		Help:      "Dense item keyframes produced by the resampler",
	})

	r.framesComposed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "frames_composed_total",
		Help:      "Frames produced by the composer",
	})

	r.activeChannels = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "composer_active_channels",
		Help:      "Animation categories currently playing in the composer",
	})

	r.eventsDispatched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "events_dispatched_total",
		Help:      "Timeline events dispatched to sinks, by kind",
	}, []string{"kind"})
}

// RecordLoaded counts a successfully loaded record.
func (r *Recorder) RecordLoaded(source string) {
	if r == nil {
		return
	}
	r.recordsLoaded.WithLabelValues(source).Inc()
}

// RecordFailed counts a skipped record.
func (r *Recorder) RecordFailed(source, reason string) {
	if r == nil {
		return
	}
	r.recordsFailed.WithLabelValues(source, reason).Inc()
}

// ObserveResample records one resampling run.
func (r *Recorder) ObserveResample(elapsed time.Duration, keyframes int) {
	if r == nil {
		return
	}
	r.resampleDuration.Observe(elapsed.Seconds())
	r.resampledFrames.Add(float64(keyframes))
}

// RecordComposed counts a composed frame.
func (r *Recorder) RecordComposed() {
	if r == nil {
		return
	}
	r.framesComposed.Inc()
}

// SetActiveChannels reports the number of playing categories.
func (r *Recorder) SetActiveChannels(n int) {
	if r == nil {
		return
	}
	r.activeChannels.Set(float64(n))
}

// RecordEvents counts dispatched events of one kind.
func (r *Recorder) RecordEvents(kind string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.eventsDispatched.WithLabelValues(kind).Add(float64(n))
}

// WriteText writes the recorder's metrics in the Prometheus text format.
// It fails when the registry cannot be gathered from.
func (r *Recorder) WriteText(w io.Writer) error {
	if r == nil {
		return nil
	}
	gatherer, ok := r.registry.(prometheus.Gatherer)
	if !ok {
		return fmt.Errorf("registry %T cannot be gathered", r.registry)
	}

	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}
