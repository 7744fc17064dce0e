package dbscan

import "fmt"

// RangeQuery answers epsilon-neighborhood queries over a fixed dataset of
// points identified by dense indices 0..n-1.
//
// Neighbors returns the indices of every point whose distance to point id is
// <= radius, always including id itself (a point is at distance zero from
// itself). No ordering is required, but results must be deterministic for a
// fixed dataset and radius, and the query must not mutate the dataset.
//
// The radius type is generic so distance values need not be real numbers;
// any type the implementation can compare against its own distances works.
// Implementations backed by fallible storage may return an error, which
// aborts the clustering run.
type RangeQuery[R any] interface {
	Neighbors(id int, radius R) ([]int, error)
}

// BruteForceIndex answers range queries by scanning every point.
// It needs no preprocessing and works with any DistanceMetric.
type BruteForceIndex struct {
	data   []float64
	n      int
	dims   int
	metric DistanceMetric
}

// NewBruteForceIndex creates a brute-force index over flat row-major data
// with n points of dimensionality dims.
func NewBruteForceIndex(data []float64, n, dims int, metric DistanceMetric) *BruteForceIndex {
	return &BruteForceIndex{data: data, n: n, dims: dims, metric: metric}
}

// Neighbors returns every point within radius of point id, id included.
func (b *BruteForceIndex) Neighbors(id int, radius float64) ([]int, error) {
	query := b.data[id*b.dims : (id+1)*b.dims]
	rRadius := distToRdist(b.metric, radius)

	var result []int
	for j := 0; j < b.n; j++ {
		pt := b.data[j*b.dims : (j+1)*b.dims]
		if b.metric.ReducedDistance(query, pt) <= rRadius {
			result = append(result, j)
		}
	}
	return result, nil
}

// PrecomputedIndex answers range queries from a precomputed n*n distance
// matrix in flat row-major order: matrix[i*n+j] is the distance between
// points i and j.
type PrecomputedIndex struct {
	matrix []float64
	n      int
}

// NewPrecomputedIndex creates an index over a flat n*n distance matrix.
// Returns an error if the matrix length does not match n*n.
func NewPrecomputedIndex(matrix []float64, n int) (*PrecomputedIndex, error) {
	if len(matrix) != n*n {
		return nil, fmt.Errorf("dbscan: distance matrix length %d does not match n*n = %d (n=%d)", len(matrix), n*n, n)
	}
	return &PrecomputedIndex{matrix: matrix, n: n}, nil
}

// Neighbors returns every point whose stored distance to id is <= radius.
func (p *PrecomputedIndex) Neighbors(id int, radius float64) ([]int, error) {
	row := p.matrix[id*p.n : (id+1)*p.n]

	var result []int
	for j, d := range row {
		if d <= radius {
			result = append(result, j)
		}
	}
	return result, nil
}

// TreeIndex adapts a SpatialTree into a RangeQuery. The tree owns a copy of
// the point data, so queries look up the point by index and run a radius
// search against the tree.
type TreeIndex struct {
	tree SpatialTree
}

// NewTreeIndex wraps a spatial tree as a range query.
func NewTreeIndex(tree SpatialTree) *TreeIndex {
	return &TreeIndex{tree: tree}
}

// Neighbors returns every point within radius of point id, id included.
func (t *TreeIndex) Neighbors(id int, radius float64) ([]int, error) {
	dims := t.tree.NumFeatures()
	point := t.tree.Data()[id*dims : (id+1)*dims]
	return t.tree.QueryRadius(point, radius), nil
}
