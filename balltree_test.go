package dbscan

import (
	"math/rand"
	"testing"
)

func TestBallTree_Construction_BasicProperties(t *testing.T) {
	data := []float64{
		0, 0,
		1, 0,
		2, 0,
		0, 3,
		1, 3,
		2, 3,
	}
	n, dims := 6, 2
	tree := NewBallTree(data, n, dims, EuclideanMetric{}, 2)

	if tree.NumPoints() != n {
		t.Errorf("NumPoints() = %d, want %d", tree.NumPoints(), n)
	}
	if tree.NumFeatures() != dims {
		t.Errorf("NumFeatures() = %d, want %d", tree.NumFeatures(), dims)
	}

	idx := tree.IdxArray()
	seen := make(map[int]bool)
	for _, v := range idx {
		if v < 0 || v >= n || seen[v] {
			t.Fatalf("IdxArray is not a permutation: %v", idx)
		}
		seen[v] = true
	}
}

func TestBallTree_Construction_RadiusCoversPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	n, dims := 50, 2
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = rng.Float64() * 10
	}
	metric := EuclideanMetric{}
	tree := NewBallTree(data, n, dims, metric, 5)

	// Every node's ball must enclose all of its points.
	for nodeID, nd := range tree.NodeDataArray() {
		centroid := tree.centroids[nodeID*dims : (nodeID+1)*dims]
		for i := nd.IdxStart; i < nd.IdxEnd; i++ {
			ptIdx := tree.idxArray[i]
			pt := data[ptIdx*dims : (ptIdx+1)*dims]
			if d := metric.Distance(centroid, pt); d > nd.Radius+floatTol {
				t.Errorf("node %d: point %d at distance %v outside radius %v", nodeID, ptIdx, d, nd.Radius)
			}
		}
	}
}

func TestBallTree_QueryRadius_BruteForceMatch(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	n, dims := 120, 3
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = rng.Float64() * 10
	}

	for _, metric := range []DistanceMetric{
		EuclideanMetric{},
		ManhattanMetric{},
		ChebyshevMetric{},
		MinkowskiMetric{P: 3},
	} {
		for _, leafSize := range []int{1, 5, 40} {
			tree := NewBallTree(data, n, dims, metric, leafSize)
			for _, radius := range []float64{0, 0.5, 2.0, 8.0} {
				for q := 0; q < n; q += 7 {
					query := data[q*dims : (q+1)*dims]
					got := tree.QueryRadius(query, radius)
					want := bruteRadius(data, n, dims, query, radius, metric)
					if !radiusResultsMatch(got, want) {
						t.Fatalf("metric=%T leafSize=%d radius=%v query=%d: tree=%v brute=%v",
							metric, leafSize, radius, q, got, want)
					}
				}
			}
		}
	}
}

func TestBallTree_QueryRadius_EmptyTree(t *testing.T) {
	tree := NewBallTree(nil, 0, 2, EuclideanMetric{}, 10)
	if got := tree.QueryRadius([]float64{0, 0}, 100); len(got) != 0 {
		t.Errorf("QueryRadius on empty tree = %v, want empty", got)
	}
}

func TestTreeIndex_MatchesBruteForceIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n, dims := 80, 2
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = rng.Float64() * 6
	}
	metric := EuclideanMetric{}
	brute := NewBruteForceIndex(data, n, dims, metric)

	for _, tree := range []SpatialTree{
		NewKDTree(data, n, dims, metric, 8),
		NewBallTree(data, n, dims, metric, 8),
	} {
		idx := NewTreeIndex(tree)
		for id := 0; id < n; id += 5 {
			got, err := idx.Neighbors(id, 1.0)
			if err != nil {
				t.Fatalf("%T: Neighbors: %v", tree, err)
			}
			want, err := brute.Neighbors(id, 1.0)
			if err != nil {
				t.Fatalf("brute Neighbors: %v", err)
			}
			if !radiusResultsMatch(got, want) {
				t.Errorf("%T id=%d: tree=%v brute=%v", tree, id, got, want)
			}
		}
	}
}
