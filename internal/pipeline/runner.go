package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome pairs a section result with its position in the outline. Err is
// set for sections whose chain failed; other sections are unaffected.
type Outcome struct {
	Index  int
	Result SectionResult
	Err    error
}

// RunDocument processes all sections of the request concurrently, bounded
// by the configured concurrency limit. Outcomes come back in outline order.
// Sections run independently; a transport failure in one does not stop the
// others, but caller cancellation stops everything.
func (p *Pipeline) RunDocument(ctx context.Context, req Request) ([]Outcome, error) {
	outcomes := make([]Outcome, len(req.Sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.DefaultConcurrency)

	for i, sec := range req.Sections {
		i, sec := i, sec
		g.Go(func() error {
			res, err := p.RunSection(gctx, req, sec)
			outcomes[i] = Outcome{Index: i, Result: res, Err: err}
			// Only cancellation aborts the whole run; per-section errors
			// stay in their outcome slot.
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
