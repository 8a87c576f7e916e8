package workers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Workers runs a fixed set of workers together.
type Workers struct {
	workers []Worker
	names   []string
}

// New returns an empty set.
func New() *Workers {
	return &Workers{}
}

// Add registers a worker under name, used in error messages.
func (w *Workers) Add(name string, worker Worker) *Workers {
	w.workers = append(w.workers, worker)
	w.names = append(w.names, name)
	return w
}

// Run starts every worker and blocks until all of them have returned.
// The first worker error cancels the context of the others and is
// returned.
func (w *Workers) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for i, worker := range w.workers {
		name := w.names[i]
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil {
				return fmt.Errorf("worker %s: %w", name, err)
			}
			return nil
		})
	}

	return g.Wait()
}
