package sim

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/dynamo"
)

// Ensemble runs one scenario at several time-scales concurrently. Each member
// gets real time inversely proportional to its scale, so every member targets
// the same simulated time and the results should agree to within one step.
type Ensemble struct {
	cfg     *config.Config
	scales  []float64
	workers int
	logger  *log.Logger
}

func NewEnsemble(cfg *config.Config, scales []float64, logger *log.Logger) *Ensemble {
	return &Ensemble{
		cfg:     cfg,
		scales:  scales,
		workers: runtime.GOMAXPROCS(0),
		logger:  logger,
	}
}

// SetWorkers bounds how many members run at once.
func (e *Ensemble) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Run integrates simTime simulated seconds per member, fed in frames of the
// scenario's frame duration.
func (e *Ensemble) Run(ctx context.Context, simTime float64) ([]*Result, error) {
	for _, s := range e.scales {
		if !(s > 0) || s > MaxTimeScale {
			return nil, fmt.Errorf("ensemble scale %v outside (0, %v]: %w", s, MaxTimeScale, dynamo.ErrParameterBounds)
		}
	}

	results := make([]*Result, len(e.scales))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, scale := range e.scales {
		g.Go(func() error {
			cfg := e.cfg.Clone()
			cfg.TimeScale = scale
			cfg.Name = fmt.Sprintf("%s@%g", e.cfg.Name, scale)

			s, err := FromConfig(cfg, nil, e.logger)
			if err != nil {
				return err
			}

			wall := time.Duration(simTime / scale * float64(time.Second))
			res, err := s.RunHeadless(ctx, RunOptions{Wall: wall, Frame: cfg.Frame}, nil)
			if err != nil {
				return fmt.Errorf("scale %g: %w", scale, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
