// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the service registers. Created once at
// startup and injected where needed.
type Metrics struct {
	// Upload / retrieval
	UploadsTotal   prometheus.Counter
	UploadBytes    prometheus.Counter
	VideosServed   prometheus.Counter
	VideosNotFound prometheus.Counter

	// Transcription
	TranscriptionRequests  prometheus.Counter
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  *prometheus.CounterVec
	RecognitionDuration    prometheus.Histogram
	AlignmentDuration      prometheus.Histogram

	// Model cache
	ModelConstructions *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on the default
// registry.
func NewMetrics() *Metrics {
	return &Metrics{
		UploadsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vt_uploads_total",
			Help: "Total number of media uploads accepted",
		}),
		UploadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vt_upload_bytes_total",
			Help: "Total bytes of uploaded media persisted",
		}),
		VideosServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vt_videos_served_total",
			Help: "Total number of media retrievals served",
		}),
		VideosNotFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vt_videos_not_found_total",
			Help: "Total number of retrievals for unknown video ids",
		}),
		TranscriptionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vt_transcription_requests_total",
			Help: "Total number of transcription requests",
		}),
		TranscriptionSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vt_transcription_successes_total",
			Help: "Total number of transcriptions completed with word alignment",
		}),
		TranscriptionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vt_transcription_failures_total",
			Help: "Total number of failed transcriptions by error kind",
		}, []string{"kind"}),
		RecognitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vt_recognition_duration_seconds",
			Help:    "Wall time of the recognition stage",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		AlignmentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vt_alignment_duration_seconds",
			Help:    "Wall time of the alignment stage",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		ModelConstructions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vt_model_constructions_total",
			Help: "Total number of model loads by kind",
		}, []string{"kind"}),
	}
}
