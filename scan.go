package dbscan

import (
	"context"
	"errors"
	"fmt"
)

// Partition is the outcome of one clustering run over points 0..n-1:
// committed clusters in discovery order plus the points left as noise.
// Every point belongs to exactly one cluster or to the noise set.
type Partition struct {
	// Clusters holds the committed clusters in the order they were found.
	// Within a cluster, points appear in the order the expansion reached them.
	Clusters [][]int

	// Noise holds the points not density-reachable from any core point,
	// in ascending index order.
	Noise []int

	// Incomplete is true when the run was cancelled before classifying
	// every point. An incomplete partition covers only the points that were
	// classified before cancellation and must not be treated as a valid
	// clustering of the full dataset.
	Incomplete bool
}

// Scanner runs density-based clustering over any RangeQuery. The radius type
// parameter R matches the RangeQuery it drives, so distances need not be
// float64 as long as the query can compare them.
//
// A Scanner is stateless between runs and may be reused, but a single run
// owns its classification state exclusively; do not mutate the underlying
// dataset while Run is in flight.
type Scanner[R any] struct {
	query    RangeQuery[R]
	radius   R
	minPts   int
	progress ProgressFunc
}

// NewScanner creates a Scanner over the given range query. minPts is the
// minimum neighborhood size (the point itself included) for a point to be a
// core point; it must be >= 1.
func NewScanner[R any](query RangeQuery[R], radius R, minPts int) (*Scanner[R], error) {
	if query == nil {
		return nil, errors.New("dbscan: range query must not be nil")
	}
	if minPts < 1 {
		return nil, fmt.Errorf("dbscan: MinPts must be >= 1, got %d", minPts)
	}
	return &Scanner[R]{query: query, radius: radius, minPts: minPts}, nil
}

// SetProgress installs an optional progress observer. Pass nil to disable.
func (s *Scanner[R]) SetProgress(fn ProgressFunc) { s.progress = fn }

// scanState is the mutable classification state of one run. processed grows
// monotonically; noise membership is provisional until the run completes,
// since a noise point reached later by a core point's neighborhood moves
// into that cluster.
type scanState struct {
	processed    *bitset
	noise        *bitset
	clusters     [][]int
	numProcessed int
	numNoise     int
}

func (st *scanState) markNoise(id int) {
	if !st.noise.Has(id) {
		st.noise.Set(id)
		st.numNoise++
	}
}

func (st *scanState) unmarkNoise(id int) {
	if st.noise.Has(id) {
		st.noise.Clear(id)
		st.numNoise--
	}
}

// partition freezes the current state into a Partition.
func (st *scanState) partition(n int) *Partition {
	clusters := st.clusters
	if clusters == nil {
		clusters = [][]int{}
	}
	noise := make([]int, 0, st.numNoise)
	for id := 0; id < n; id++ {
		if st.noise.Has(id) {
			noise = append(noise, id)
		}
	}
	return &Partition{Clusters: clusters, Noise: noise}
}

// Run clusters points 0..n-1.
//
// Border points reachable from more than one core point join whichever
// cluster's expansion reaches them first, so their assignment depends on the
// enumeration order over points and the worklist order within one expansion.
// For a fixed RangeQuery and parameters the result is fully deterministic.
//
// ctx is checked once per point in the outer loop and once per worklist
// element inside an expansion. On cancellation Run returns the partial
// partition with Incomplete set, together with the context's error. A
// RangeQuery failure abandons the run and returns no partition at all.
func (s *Scanner[R]) Run(ctx context.Context, n int) (*Partition, error) {
	st := &scanState{
		processed: newBitset(n),
		noise:     newBitset(n),
	}

	if n < s.minPts {
		// No point can ever be a core point.
		for id := 0; id < n; id++ {
			st.processed.Set(id)
			st.markNoise(id)
		}
		st.numProcessed = n
		s.report(st)
		return st.partition(n), nil
	}

	for id := 0; id < n; id++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			p := st.partition(n)
			p.Incomplete = true
			return p, ctxErr
		}
		if !st.processed.Has(id) {
			if err := s.expand(ctx, st, id, n); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					p := st.partition(n)
					p.Incomplete = true
					return p, err
				}
				return nil, fmt.Errorf("dbscan: range query for point %d: %w", id, err)
			}
		}
		s.report(st)
		if st.numProcessed == n {
			break
		}
	}

	return st.partition(n), nil
}

// expand classifies one yet-unprocessed seed point. A non-core seed becomes
// provisional noise. A core seed grows a cluster by draining a worklist of
// its density-reachable neighbors; noise points swept up along the way are
// reclassified into the cluster but never re-enter the worklist, since they
// were already found to be non-core. Points already committed to an earlier
// cluster stay there: border points belong to the first cluster that reaches
// them.
func (s *Scanner[R]) expand(ctx context.Context, st *scanState, seed, n int) error {
	neighbors, err := s.query.Neighbors(seed, s.radius)
	if err != nil {
		return err
	}

	if len(neighbors) < s.minPts {
		st.processed.Set(seed)
		st.numProcessed++
		st.markNoise(seed)
		return nil
	}

	// seed is a core point: start a cluster from its neighborhood.
	var cluster, seeds []int
	for _, nb := range neighbors {
		if !st.processed.Has(nb) {
			cluster = append(cluster, nb)
			st.processed.Set(nb)
			st.numProcessed++
			// The seed itself never enters its own worklist.
			if nb != seed {
				seeds = append(seeds, nb)
			}
		} else if st.noise.Has(nb) {
			cluster = append(cluster, nb)
			st.unmarkNoise(nb)
		}
	}

	for len(seeds) > 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		o := seeds[len(seeds)-1]
		seeds = seeds[:len(seeds)-1]

		neighborhood, err := s.query.Neighbors(o, s.radius)
		if err != nil {
			return err
		}
		if len(neighborhood) >= s.minPts {
			for _, nb := range neighborhood {
				unclassified := !st.processed.Has(nb)
				inNoise := st.noise.Has(nb)
				if unclassified || inNoise {
					if unclassified {
						seeds = append(seeds, nb)
						st.numProcessed++
					}
					cluster = append(cluster, nb)
					st.processed.Set(nb)
					if inNoise {
						st.unmarkNoise(nb)
					}
				}
			}
		}

		// Everything is classified and nothing is left to reclaim.
		if st.numProcessed == n && st.numNoise == 0 {
			break
		}
	}

	if len(cluster) >= s.minPts {
		st.clusters = append(st.clusters, cluster)
		return nil
	}

	// Unreachable when the range query honors its contract: the seed's own
	// neighborhood already contributed >= minPts members. Degrade to noise
	// rather than dropping points.
	for _, id := range cluster {
		st.markNoise(id)
	}
	st.processed.Set(seed)
	st.markNoise(seed)
	return nil
}

func (s *Scanner[R]) report(st *scanState) {
	if s.progress != nil {
		s.progress(st.numProcessed, len(st.clusters))
	}
}
