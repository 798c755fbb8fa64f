// Package loader collects block definitions from independent sources with a
// bounded concurrent fan-out. A failing source never takes its siblings
// down: every outcome is collected and the decision of what to do about
// failures belongs to the caller.
package loader

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/log"
)

// DefaultConcurrency bounds parallel source loads when the config is silent.
const DefaultConcurrency = 4

// ErrNoSources reports a load pass that ended with zero definitions, either
// because no sources are configured or because every source failed or came
// back empty.
var ErrNoSources = errors.New("no block definitions loaded")

// Source produces block definitions from one origin: the embedded palette,
// a directory, a catalog file, or anything programmatic.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]block.Definition, error)
}

// Warner is implemented by sources that record non-fatal skips during Load,
// such as malformed entries in an otherwise readable file. TakeWarnings
// drains them and is called once after each Load returns. A Source takes
// part in at most one Load at a time.
type Warner interface {
	TakeWarnings() []string
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc struct {
	SourceName string
	Fn         func(ctx context.Context) ([]block.Definition, error)
}

func (s SourceFunc) Name() string { return s.SourceName }

func (s SourceFunc) Load(ctx context.Context) ([]block.Definition, error) {
	return s.Fn(ctx)
}

// ErrorRecord ties a load failure to the source that produced it.
type ErrorRecord struct {
	Source string
	Err    error
}

func (e ErrorRecord) Error() string {
	return fmt.Sprintf("source %q: %v", e.Source, e.Err)
}

func (e ErrorRecord) Unwrap() error { return e.Err }

// Batch is the combined outcome of loading every source.
type Batch struct {
	// Definitions from all successful sources, flattened in source order.
	Definitions []block.Definition

	// Errors holds one record per failed source.
	Errors []ErrorRecord

	// Warnings records empty sources and skipped entries.
	Warnings []string

	// Sources is how many sources were attempted; Failed how many errored.
	Sources int
	Failed  int
}

// Config holds loader settings.
type Config struct {
	// Concurrency bounds parallel source loads. Values below 1 fall back
	// to DefaultConcurrency.
	Concurrency int
}

// Loader runs the fan-out.
type Loader struct {
	concurrency int
}

// New creates a Loader.
func New(cfg Config) *Loader {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Loader{concurrency: cfg.Concurrency}
}

// Load fans out over sources and collects every outcome. Load itself never
// fails: per-source errors and panics land in Batch.Errors and an all-fail
// batch simply carries zero definitions. Results are reassembled in source
// order, so output does not depend on goroutine scheduling.
func (l *Loader) Load(ctx context.Context, sources []Source) *Batch {
	batch := &Batch{Sources: len(sources)}
	if len(sources) == 0 {
		batch.Warnings = append(batch.Warnings, "no definition sources configured")
		return batch
	}

	type slot struct {
		defs     []block.Definition
		warnings []string
		err      error
	}
	results := make([]slot, len(sources))

	sem := make(chan struct{}, l.concurrency)
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error(log.CatLoader, "Source panic recovered",
						"source", src.Name(),
						"panic", r,
						"stack", string(debug.Stack()))
					results[i] = slot{err: fmt.Errorf("panic: %v", r)}
				}
			}()

			sem <- struct{}{}
			defer func() { <-sem }()

			defs, err := src.Load(ctx)
			var warnings []string
			if w, ok := src.(Warner); ok {
				warnings = w.TakeWarnings()
			}
			results[i] = slot{defs: defs, warnings: warnings, err: err}
		}(i, src)
	}
	wg.Wait()

	for i, res := range results {
		name := sources[i].Name()
		batch.Warnings = append(batch.Warnings, res.warnings...)
		if res.err != nil {
			batch.Failed++
			batch.Errors = append(batch.Errors, ErrorRecord{Source: name, Err: res.err})
			log.ErrorErr(log.CatLoader, "source failed", res.err, "source", name)
			continue
		}
		if len(res.defs) == 0 {
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("source %q produced no definitions", name))
			continue
		}
		batch.Definitions = append(batch.Definitions, res.defs...)
		log.Debug(log.CatLoader, "source loaded", "source", name, "blocks", len(res.defs))
	}

	log.Info(log.CatLoader, "batch loaded",
		"sources", batch.Sources,
		"failed", batch.Failed,
		"blocks", len(batch.Definitions))
	return batch
}
