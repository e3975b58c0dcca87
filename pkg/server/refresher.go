package server

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/benchmark"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/exposition"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/gitinfo"
)

// Refresher is a background service that periodically re-scans the
// benchmark results directory, re-renders the exposition payload, and
// replaces the served snapshot.
type Refresher interface {
	Start(ctx context.Context) error
	Stop() error
}

// Compile-time interface check.
var _ Refresher = (*refresher)(nil)

type refresher struct {
	log        logrus.FieldLogger
	resultsDir string
	interval   time.Duration
	collector  *benchmark.Collector
	target     Server
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewRefresher creates a refresher that feeds target from resultsDir at
// the given interval.
func NewRefresher(
	log logrus.FieldLogger,
	resultsDir string,
	interval time.Duration,
	target Server,
) Refresher {
	return &refresher{
		log:        log.WithField("component", "refresher"),
		resultsDir: resultsDir,
		interval:   interval,
		collector:  benchmark.NewCollector(log),
		target:     target,
		done:       make(chan struct{}),
	}
}

// Start launches the background goroutine. One pass runs immediately so
// the served snapshot reflects the directory at startup; subsequent
// passes tick at the configured interval.
func (r *refresher) Start(ctx context.Context) error {
	r.log.WithField("interval", r.interval.String()).
		Info("Starting snapshot refresher")

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		r.runPass(ctx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.runPass(ctx)
			case <-r.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop signals the refresher goroutine to stop and waits for it.
func (r *refresher) Stop() error {
	close(r.done)
	r.wg.Wait()

	r.log.Info("Snapshot refresher stopped")

	return nil
}

// runPass executes one discovery, decode, and render cycle and swaps
// the result in. An empty directory replaces the snapshot with an empty
// payload rather than leaving stale metrics behind.
func (r *refresher) runPass(ctx context.Context) {
	start := time.Now()

	files := benchmark.Discover(r.resultsDir)
	records, skipped := r.collector.Collect(files)
	meta := gitinfo.Resolve(ctx)
	lines := exposition.Render(records, meta)

	r.target.ReplaceSnapshot(exposition.Payload(lines))

	r.log.WithFields(logrus.Fields{
		"files":    len(files),
		"skipped":  skipped,
		"records":  len(records),
		"lines":    len(lines),
		"duration": time.Since(start),
	}).Debug("Snapshot refreshed")
}
