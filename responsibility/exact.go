package responsibility

import (
	"context"
	"math/bits"

	"golang.org/x/sync/errgroup"

	"blame/groups"
	"blame/progress"
	"blame/solver"
)

// ComputeExactPessimistic implements the exact pessimistic calculator: after s.Prepare has
// run, enumerate all 2^n coalitions; for every losing coalition B of
// size s and every player p not in B, if B∪{p} is winning, p is
// pivotal for B and count_by_size[s+1] is incremented for p.
//
// This needs no Game clone at all — IsGameWinning is pure bitmask
// lookup against the solver's cached minima — so it is parallelised
// purely over the coalition-index space, reusing solver's BlockQueue
// and the same block-of-coalitions scheme the solver itself uses.
func ComputeExactPessimistic(ctx context.Context, s *solver.CachedGameSolver, sg groups.StateGroups, nworkers int, reporter *progress.Reporter) ([]*Result, error) {
	n := sg.Len()
	if nworkers < 1 {
		nworkers = 1
	}
	limit := uint64(1) << uint(n)
	queue := solver.NewBlockQueue(limit)

	perWorker := make([][]*Result, nworkers)
	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < nworkers; w++ {
		w := w
		eg.Go(func() error {
			local := newResultSet(n)
			for {
				select {
				case <-egCtx.Done():
					return egCtx.Err()
				default:
				}

				start, end, ok := queue.Next()
				if !ok {
					perWorker[w] = local
					return nil
				}
				for b := start; b < end; b++ {
					if s.IsGameWinning(b) {
						continue
					}
					size := bits.OnesCount64(b)
					for p := 0; p < n; p++ {
						bit := uint64(1) << uint(p)
						if b&bit != 0 {
							continue
						}
						c := b | bit
						if s.IsGameWinning(c) {
							local[p].CountBySize[size+1].Add(local[p].CountBySize[size+1], one)
						}
					}
				}
				if reporter != nil {
					reporter.Advance(float64(end - start))
				}
			}
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := newResultSet(n)
	for _, local := range perWorker {
		for p := range merged {
			merged[p].Add(local[p])
		}
	}
	return merged, nil
}

func newResultSet(n int) []*Result {
	rs := make([]*Result, n)
	for p := range rs {
		rs[p] = NewResult(p, n)
	}
	return rs
}
