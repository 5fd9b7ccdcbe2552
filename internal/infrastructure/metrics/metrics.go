package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheError  = "error"
	CacheStored = "stored"
)

// Click tracking outcomes.
const (
	ClickRecorded    = "recorded"
	ClickBot         = "bot"
	ClickUnknownSlug = "unknown_slug"
	ClickDropped     = "dropped"
	ClickFailed      = "failed"
)

var (
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slug_cache_lookups_total",
			Help: "Slug cache lookups by result",
		},
		[]string{"result"},
	)

	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slug_cache_writes_total",
			Help: "Slug cache populate attempts by result",
		},
		[]string{"result"},
	)

	ClickEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "click_events_total",
			Help: "Click tracking events by outcome",
		},
		[]string{"outcome"},
	)

	SlugCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slug_collisions_total",
			Help: "Generated slug candidates that were already taken",
		},
	)
)
