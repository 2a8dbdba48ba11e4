package processors

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"videoTranscribe/metrics"
)

// ModelCache owns every model handle in the process: one recognition
// model and one alignment model per (language, variant) pair. Entries
// are created on first use and live until shutdown; the key space is a
// handful of deployment languages, so there is no eviction.
//
// Each entry builds under its own lock and publishes through an atomic
// pointer, so a multi-second load for one language never blocks hits
// on another and a handle only becomes visible fully constructed.
// Failures are returned to the caller, never cached; the next call
// retries from scratch.
type ModelCache struct {
	recCfg       RecognitionConfig
	alignVariant string
	metrics      *metrics.Metrics

	// Construction seams; overridden in tests.
	buildRecognition func(RecognitionConfig) (*RecognitionModel, error)
	buildAlignment   func(runnerURL, language, variant string) (*AlignmentModel, error)

	mu    sync.Mutex
	rec   cacheEntry[RecognitionModel]
	align map[alignKey]*cacheEntry[AlignmentModel]
}

type alignKey struct {
	Language string
	Variant  string
}

type cacheEntry[M any] struct {
	mu    sync.Mutex
	model atomic.Pointer[M]
}

// get returns the published handle or runs build exactly once among
// racing callers. The caller's context is only honored before the
// build starts: a construction underway always completes and
// publishes, since other callers will reuse the handle.
func (e *cacheEntry[M]) get(ctx context.Context, build func() (*M, error)) (*M, error) {
	if m := e.model.Load(); m != nil {
		return m, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if m := e.model.Load(); m != nil {
		return m, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := build()
	if err != nil {
		return nil, err
	}
	e.model.Store(m)
	return m, nil
}

// NewModelCache creates an empty cache bound to the process-wide
// recognition configuration and default alignment variant. m may be
// nil.
func NewModelCache(recCfg RecognitionConfig, alignVariant string, m *metrics.Metrics) *ModelCache {
	return &ModelCache{
		recCfg:           recCfg,
		alignVariant:     alignVariant,
		metrics:          m,
		buildRecognition: newRecognitionModel,
		buildAlignment:   newAlignmentModel,
		align:            make(map[alignKey]*cacheEntry[AlignmentModel]),
	}
}

func (c *ModelCache) countConstruction(kind string) {
	if c.metrics != nil {
		c.metrics.ModelConstructions.WithLabelValues(kind).Inc()
	}
}

// RecognitionModel returns the process-wide recognition handle,
// constructing it on first use. Concurrent first calls serialize on
// the entry lock; exactly one construction runs and every caller
// observes the same handle.
func (c *ModelCache) RecognitionModel(ctx context.Context) (*RecognitionModel, error) {
	return c.rec.get(ctx, func() (*RecognitionModel, error) {
		m, err := c.buildRecognition(c.recCfg)
		if err == nil {
			c.countConstruction("recognition")
		}
		return m, err
	})
}

// AlignmentModel returns the handle for (language, variant),
// constructing it on first use. An empty variant selects the
// process-wide default. Same construct-once contract as
// RecognitionModel, scoped per key.
func (c *ModelCache) AlignmentModel(ctx context.Context, language, variant string) (*AlignmentModel, error) {
	if variant == "" {
		variant = c.alignVariant
	}
	key := alignKey{Language: language, Variant: variant}

	c.mu.Lock()
	e := c.align[key]
	if e == nil {
		e = &cacheEntry[AlignmentModel]{}
		c.align[key] = e
	}
	c.mu.Unlock()

	return e.get(ctx, func() (*AlignmentModel, error) {
		m, err := c.buildAlignment(c.recCfg.RunnerURL, language, variant)
		if err == nil {
			c.countConstruction("alignment")
		}
		return m, err
	})
}

// Stats reports which handles are resident. Used by the health
// endpoint; never blocks behind an in-flight construction. Languages
// are reported once even when several variants are resident.
func (c *ModelCache) Stats() (recognitionLoaded bool, alignmentLanguages []string) {
	recognitionLoaded = c.rec.model.Load() != nil
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool)
	for key, e := range c.align {
		if e.model.Load() != nil && !seen[key.Language] {
			seen[key.Language] = true
			alignmentLanguages = append(alignmentLanguages, key.Language)
		}
	}
	sort.Strings(alignmentLanguages)
	return recognitionLoaded, alignmentLanguages
}
