package dbscan

import (
	"context"
	"fmt"
	"math"
	"runtime"
)

// Algorithm selects the range-query index backing the scan.
type Algorithm string

const (
	AlgorithmAuto     Algorithm = "auto"
	AlgorithmBrute    Algorithm = "brute"
	AlgorithmKDTree   Algorithm = "kdtree"
	AlgorithmBallTree Algorithm = "balltree"
)

// Config controls DBSCAN clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Eps is the neighborhood radius: two points are neighbors when their
	// distance is <= Eps. Must be finite and >= 0. Default: 0.5.
	Eps float64

	// MinPts is the minimum neighborhood size, the point itself included,
	// for a point to be a core point. Must be >= 1. Default: 5.
	MinPts int

	// Metric is the distance function used to measure point similarity.
	// Built-in: EuclideanMetric, ManhattanMetric, CosineMetric,
	// ChebyshevMetric, MinkowskiMetric. Use DistanceFunc to wrap a custom
	// function. Default: EuclideanMetric.
	Metric DistanceMetric

	// Algorithm selects the range-query index.
	// "auto" picks based on metric and dimensionality.
	// "brute" scans all points per query (see Workers below).
	// "kdtree"/"balltree" build a spatial tree first.
	// Default: "auto".
	Algorithm Algorithm

	// LeafSize controls the maximum number of points in a spatial tree leaf
	// node. Larger values trade query cost for faster tree construction.
	// Only used with tree-based algorithms. Default: 40.
	LeafSize int

	// Workers controls the number of goroutines used to precompute the
	// pairwise distance matrix on the brute-force path. With Workers > 1 the
	// brute path trades O(n²) memory for one-pass distance computation;
	// set Workers to 1 to scan points per query in O(n) memory instead.
	// 0 means use runtime.NumCPU(). Default: 0 (auto).
	Workers int

	// Progress is an optional observer called after each point decision and
	// each committed cluster. nil disables reporting and changes nothing
	// about the clustering itself.
	Progress ProgressFunc
}

// Result contains the output of DBSCAN clustering.
type Result struct {
	// Labels assigns each point to a cluster (0-indexed cluster ID) or -1
	// for noise.
	Labels []int

	// Clusters holds the committed clusters in discovery order. Every
	// cluster has at least MinPts members.
	Clusters [][]int

	// Noise holds the points not density-reachable from any core point,
	// in ascending index order.
	Noise []int

	// Incomplete is true when the run was cancelled partway. An incomplete
	// result covers only the points classified before cancellation.
	Incomplete bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Eps:    0.5,
		MinPts: 5,
		Metric: EuclideanMetric{},
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.MinPts < 1 {
		return fmt.Errorf("dbscan: MinPts must be >= 1, got %d", cfg.MinPts)
	}
	if math.IsNaN(cfg.Eps) || math.IsInf(cfg.Eps, 0) || cfg.Eps < 0 {
		return fmt.Errorf("dbscan: Eps must be finite and >= 0, got %f", cfg.Eps)
	}
	switch cfg.Algorithm {
	case AlgorithmAuto, AlgorithmBrute, AlgorithmKDTree, AlgorithmBallTree:
		// valid
	default:
		return fmt.Errorf("dbscan: invalid Algorithm %q", cfg.Algorithm)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("dbscan: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// emptyResult returns a Result with empty, non-nil fields.
func emptyResult() *Result {
	return &Result{
		Labels:   []int{},
		Clusters: [][]int{},
		Noise:    []int{},
	}
}

// Cluster performs DBSCAN clustering on the given data.
// Each element is a point (float64 slice); all points must have the same
// dimensionality. Returns an error if the config is invalid.
func Cluster(data [][]float64, cfg Config) (*Result, error) {
	return ClusterContext(context.Background(), data, cfg)
}

// ClusterContext is Cluster with cancellation. ctx is checked between point
// decisions; on cancellation the partial result is returned with Incomplete
// set, together with the context's error.
func ClusterContext(ctx context.Context, data [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	n := len(data)
	if n == 0 {
		return emptyResult(), nil
	}

	dims := len(data[0])
	flatData := make([]float64, n*dims)
	for i, row := range data {
		copy(flatData[i*dims:], row)
	}

	algo, err := selectAlgorithm(cfg, dims)
	if err != nil {
		return nil, err
	}

	var query RangeQuery[float64]
	switch algo {
	case AlgorithmKDTree:
		query = NewTreeIndex(NewKDTree(flatData, n, dims, cfg.Metric, cfg.LeafSize))
	case AlgorithmBallTree:
		query = NewTreeIndex(NewBallTree(flatData, n, dims, cfg.Metric, cfg.LeafSize))
	default:
		// AlgorithmBrute. With more than one worker, precompute the full
		// distance matrix so each neighborhood query is a plain row scan.
		if cfg.Workers > 1 {
			matrix := ComputePairwiseDistancesParallel(flatData, n, dims, cfg.Metric, cfg.Workers)
			query, err = NewPrecomputedIndex(matrix, n)
			if err != nil {
				return nil, err
			}
		} else {
			query = NewBruteForceIndex(flatData, n, dims, cfg.Metric)
		}
	}

	return runScan(ctx, query, n, cfg)
}

// ClusterPrecomputed performs DBSCAN on a precomputed distance matrix.
// distMatrix is a flat []float64 of length n*n in row-major order, where
// distMatrix[i*n+j] is the distance between points i and j. The Config.Metric
// and Config.Algorithm fields are ignored since distances are already computed.
func ClusterPrecomputed(distMatrix []float64, n int, cfg Config) (*Result, error) {
	return ClusterPrecomputedContext(context.Background(), distMatrix, n, cfg)
}

// ClusterPrecomputedContext is ClusterPrecomputed with cancellation.
func ClusterPrecomputedContext(ctx context.Context, distMatrix []float64, n int, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	query, err := NewPrecomputedIndex(distMatrix, n)
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return emptyResult(), nil
	}

	return runScan(ctx, query, n, cfg)
}

// runScan drives the generic Scanner over a concrete float64 range query and
// reshapes its partition into a Result.
func runScan(ctx context.Context, query RangeQuery[float64], n int, cfg Config) (*Result, error) {
	scanner, err := NewScanner(query, cfg.Eps, cfg.MinPts)
	if err != nil {
		return nil, err
	}
	scanner.SetProgress(cfg.Progress)

	p, err := scanner.Run(ctx, n)
	if err != nil {
		if p != nil && p.Incomplete {
			return resultFromPartition(p, n), err
		}
		return nil, err
	}
	return resultFromPartition(p, n), nil
}

func resultFromPartition(p *Partition, n int) *Result {
	return &Result{
		Labels:     LabelsFromPartition(p, n),
		Clusters:   p.Clusters,
		Noise:      p.Noise,
		Incomplete: p.Incomplete,
	}
}
