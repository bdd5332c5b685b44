package harness

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/billmania/foam-cutter/kinematics"
)

// Target is a named solver to sweep
type Target struct {
	Name   string
	Solver kinematics.Solver
}

// RunAll sweeps every target concurrently over the same grid. Reports are
// returned in target order. The first failing sweep cancels the rest.
// Sinks passed in opts are shared by all sweeps and must be safe for
// concurrent use.
func RunAll(ctx context.Context, targets []Target, g Grid, opts ...Option) ([]*Report, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	reports := make([]*Report, len(targets))
	eg, ctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		i, t := i, t
		eg.Go(func() error {
			o := append(append([]Option(nil), opts...), WithName(t.Name))
			r, err := Sweep(ctx, t.Solver, g, o...)
			reports[i] = r
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
