package tracing

// Span names. Phase spans append the state machine state to SpanPrefixPhase,
// e.g. "init.phase.loading".
const (
	SpanInitRun     = "init.run"
	SpanPrefixPhase = "init.phase."
	SpanWatchReload = "watch.reload"
)

// Attribute keys attached to initialization spans.
const (
	AttrRunID        = "run.id"
	AttrAttempt      = "run.attempt"
	AttrPhase        = "phase.name"
	AttrBlocksLoaded = "blocks.loaded"
	AttrBlocksTotal  = "blocks.total"
	AttrSources      = "sources.count"
	AttrSourcesFail  = "sources.failed"
	AttrCacheHits    = "cache.hits"
	AttrCacheMisses  = "cache.misses"
)
