// Package solver implements the cached exact game solver:
// coalitions are enumerated in population-count order, minimal winning
// coalitions are cached, and supersets of a known minimum are pruned by
// monotonicity rather than re-solved.
package solver

import (
	"context"
	"math/bits"

	"golang.org/x/sync/errgroup"

	"blame/game"
	"blame/groups"
	"blame/log"
	"blame/progress"
)

// CachedGameSolver answers IsGameWinning(coalition) after Prepare has
// enumerated every coalition up to size n, the number of players.
type CachedGameSolver struct {
	sg groups.StateGroups
	n  int

	// minima holds every discovered minimal winning coalition. Appended
	// to only between size rounds; read unsynchronised during a round,
	// preserving the population-count enumeration order.
	minima []uint64
}

// New returns a solver over the given player grouping. It does not
// itself hold a Game; Prepare takes one (and clones it per worker).
func New(sg groups.StateGroups) *CachedGameSolver {
	return &CachedGameSolver{sg: sg, n: sg.Len()}
}

// Prepare enumerates all 2^n coalitions in population-count order,
// distributing each size round's work across nworkers clones of g. If
// reporter is non-nil, it is advanced by one unit per completed round
// for an external progress display; reporter may be nil.
func (s *CachedGameSolver) Prepare(ctx context.Context, g *game.Game, nworkers int, reporter *progress.Reporter) error {
	if nworkers < 1 {
		nworkers = 1
	}
	limit := uint64(1) << uint(s.n)

	for size := 0; size <= s.n; size++ {
		newMinima, err := s.runRound(ctx, g, nworkers, limit, size)
		if err != nil {
			return err
		}
		// Barrier: every worker has returned, so this append is the
		// sole writer before the next round's unsynchronised reads
		// begin.
		s.minima = append(s.minima, newMinima...)
		if reporter != nil {
			reporter.Advance(1)
		}
	}
	return nil
}

func (s *CachedGameSolver) runRound(ctx context.Context, g *game.Game, nworkers int, limit uint64, size int) ([]uint64, error) {
	queue := NewBlockQueue(limit)
	perWorker := make([][]uint64, nworkers)

	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < nworkers; w++ {
		w := w
		eg.Go(func() error {
			clone := g.Clone()
			var localMinima []uint64
			for {
				select {
				case <-egCtx.Done():
					return egCtx.Err()
				default:
				}

				start, end, ok := queue.Next()
				if !ok {
					perWorker[w] = localMinima
					return nil
				}
				if !BlockRelevantToSize(start, size) {
					continue
				}
				for coalition := start; coalition < end; coalition++ {
					if bits.OnesCount64(coalition) != size {
						continue
					}
					if s.isKnownWinning(coalition) {
						continue
					}
					if s.evaluate(clone, coalition) == game.SafeWins {
						localMinima = append(localMinima, coalition)
					}
				}
			}
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var newMinima []uint64
	for _, m := range perWorker {
		newMinima = append(newMinima, m...)
	}
	return newMinima, nil
}

// evaluate installs coalition on clone, solves, and clears it again so
// the clone returns to its pre-call state (a round-trip
// invariant applies per-evaluation, not just per-Game-lifetime).
func (s *CachedGameSolver) evaluate(clone *game.Game, coalition uint64) game.Winner {
	s.sg.SetStateMask(clone, coalition)
	w := clone.Solve()
	s.sg.ClearStateMask(clone, coalition)
	return w
}

// isKnownWinning reports whether coalition is a superset of any
// already-confirmed minimal winning coalition. Reads s.minima without
// synchronisation; callers only rely on this being safe because minima
// is never mutated during a round.
func (s *CachedGameSolver) isKnownWinning(coalition uint64) bool {
	for _, min := range s.minima {
		if (min|coalition)^coalition == 0 {
			return true
		}
	}
	return false
}

// IsGameWinning reports whether coalition is winning for Safe: true iff
// it is a superset of some enumerated minimal winning coalition. Only
// sound for coalitions whose minimal witnesses were discovered at or
// below the highest size round Prepare has completed.
func (s *CachedGameSolver) IsGameWinning(coalition uint64) bool {
	return s.isKnownWinning(coalition)
}

// Minima returns the full set of discovered minimal winning coalitions,
// primarily for debugging and the -debug CLI dump.
func (s *CachedGameSolver) Minima() []uint64 {
	return append([]uint64(nil), s.minima...)
}

// WarnIfUnsound logs (rather than fails) an internal consistency check
// useful during development: the empty coalition must not be winning
// unless n == 0, since an n=0 game has nothing to place in a coalition
// at all.
func (s *CachedGameSolver) WarnIfUnsound() {
	if s.n > 0 && s.IsGameWinning(0) {
		log.L().Warnw("solver: empty coalition reported winning for n>0", "n", s.n)
	}
}
