package dbscan

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Eps != 0.5 {
		t.Errorf("Eps: got %f, want 0.5", cfg.Eps)
	}
	if cfg.MinPts != 5 {
		t.Errorf("MinPts: got %d, want 5", cfg.MinPts)
	}
	if _, ok := cfg.Metric.(EuclideanMetric); !ok {
		t.Errorf("Metric: got %T, want EuclideanMetric", cfg.Metric)
	}
	if cfg.Algorithm != "" {
		t.Errorf("Algorithm: got %q, want zero value (auto)", cfg.Algorithm)
	}
	if cfg.Progress != nil {
		t.Error("Progress: got non-nil, want nil")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"MinPts < 1", func(c *Config) { c.MinPts = 0 }},
		{"negative MinPts", func(c *Config) { c.MinPts = -2 }},
		{"negative Eps", func(c *Config) { c.Eps = -0.1 }},
		{"NaN Eps", func(c *Config) { c.Eps = math.NaN() }},
		{"infinite Eps", func(c *Config) { c.Eps = math.Inf(1) }},
		{"invalid algorithm", func(c *Config) { c.Algorithm = "quadtree" }},
		{"negative LeafSize", func(c *Config) { c.LeafSize = -1 }},
	}

	data := [][]float64{{1, 2}, {3, 4}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := Cluster(data, cfg)
			if err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestClusterEmptyData(t *testing.T) {
	cfg := DefaultConfig()
	result, err := Cluster([][]float64{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Labels) != 0 {
		t.Errorf("expected empty labels, got %d", len(result.Labels))
	}
	if result.Labels == nil || result.Clusters == nil || result.Noise == nil {
		t.Error("empty result fields must be non-nil")
	}
}

func TestClusterLineScenario(t *testing.T) {
	// 1-D points A=0, B=1, C=2, D=10, E=11 with Eps=1.5.
	data := [][]float64{{0}, {1}, {2}, {10}, {11}}

	cfg := DefaultConfig()
	cfg.Eps = 1.5
	cfg.MinPts = 2
	result, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{0, 0, 0, 1, 1}, result.Labels); diff != "" {
		t.Errorf("MinPts=2 labels mismatch (-want +got):\n%s", diff)
	}
	if len(result.Noise) != 0 {
		t.Errorf("MinPts=2 noise = %v, want empty", result.Noise)
	}

	cfg.MinPts = 3
	result, err = Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{0, 0, 0, -1, -1}, result.Labels); diff != "" {
		t.Errorf("MinPts=3 labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 4}, result.Noise); diff != "" {
		t.Errorf("MinPts=3 noise mismatch (-want +got):\n%s", diff)
	}
}

func TestClusterSinglePointMinPts1(t *testing.T) {
	data := [][]float64{{42, 17}}
	cfg := DefaultConfig()
	cfg.MinPts = 1
	result, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{0}, result.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if len(result.Clusters) != 1 {
		t.Errorf("clusters = %v, want one singleton", result.Clusters)
	}
}

// generateBlobs produces three Gaussian-ish blobs plus uniform background
// noise, deterministic for a fixed seed.
func generateBlobs(seed int64, perBlob, background int) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	centers := [][2]float64{{0, 0}, {20, 0}, {10, 18}}
	var data [][]float64
	for _, c := range centers {
		for i := 0; i < perBlob; i++ {
			data = append(data, []float64{
				c[0] + rng.NormFloat64(),
				c[1] + rng.NormFloat64(),
			})
		}
	}
	for i := 0; i < background; i++ {
		data = append(data, []float64{
			rng.Float64()*60 - 20,
			rng.Float64()*60 - 20,
		})
	}
	return data
}

// labelsEquivalent checks if two label arrays are equivalent under label
// permutation. Noise (-1) must match exactly.
func labelsEquivalent(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	mapping := make(map[int]int)
	for i := range a {
		if a[i] == -1 && b[i] == -1 {
			continue
		}
		if a[i] == -1 || b[i] == -1 {
			return false
		}
		if mapped, ok := mapping[a[i]]; ok {
			if mapped != b[i] {
				return false
			}
		} else {
			mapping[a[i]] = b[i]
		}
	}
	return true
}

func TestClusterCrossAlgorithmEquivalence(t *testing.T) {
	data := generateBlobs(42, 60, 15)

	cfg := DefaultConfig()
	cfg.Eps = 1.2
	cfg.MinPts = 5

	results := map[Algorithm]*Result{}
	for _, algo := range []Algorithm{AlgorithmBrute, AlgorithmKDTree, AlgorithmBallTree} {
		cfg.Algorithm = algo
		result, err := Cluster(data, cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", algo, err)
		}
		results[algo] = result
	}

	brute := results[AlgorithmBrute]
	for _, algo := range []Algorithm{AlgorithmKDTree, AlgorithmBallTree} {
		if !labelsEquivalent(brute.Labels, results[algo].Labels) {
			t.Errorf("%s labels are not equivalent to brute force", algo)
		}
		if diff := cmp.Diff(brute.Noise, results[algo].Noise); diff != "" {
			t.Errorf("%s noise differs from brute force (-brute +%s):\n%s", algo, algo, diff)
		}
	}
}

func TestClusterBruteWorkerPathsAgree(t *testing.T) {
	data := generateBlobs(9, 40, 10)

	cfg := DefaultConfig()
	cfg.Eps = 1.2
	cfg.MinPts = 4
	cfg.Algorithm = AlgorithmBrute

	cfg.Workers = 1 // per-query scan
	serial, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Workers = 4 // precomputed matrix
	parallel, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Errorf("worker paths disagree (-serial +parallel):\n%s", diff)
	}
}

func TestClusterPrecomputedMatchesCluster(t *testing.T) {
	data := generateBlobs(5, 30, 8)
	n := len(data)
	dims := len(data[0])
	flat := make([]float64, n*dims)
	for i, row := range data {
		copy(flat[i*dims:], row)
	}
	matrix := ComputePairwiseDistances(flat, n, dims, EuclideanMetric{})

	cfg := DefaultConfig()
	cfg.Eps = 1.2
	cfg.MinPts = 4
	cfg.Algorithm = AlgorithmBrute
	cfg.Workers = 1

	direct, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	precomputed, err := ClusterPrecomputed(matrix, n, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(direct, precomputed); diff != "" {
		t.Errorf("precomputed path disagrees (-direct +precomputed):\n%s", diff)
	}
}

func TestClusterPrecomputedSizeMismatch(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := ClusterPrecomputed(make([]float64, 10), 4, cfg); err == nil {
		t.Error("expected error for matrix length != n*n")
	}
}

func TestClusterContextCancellation(t *testing.T) {
	data := generateBlobs(8, 50, 10)

	cfg := DefaultConfig()
	cfg.Eps = 1.2
	cfg.MinPts = 4

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := ClusterContext(ctx, data, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("cancelled run must return the partial result")
	}
	if !result.Incomplete {
		t.Error("partial result not marked Incomplete")
	}
}

func TestClusterProgressDoesNotChangeResult(t *testing.T) {
	data := generateBlobs(3, 40, 10)

	cfg := DefaultConfig()
	cfg.Eps = 1.2
	cfg.MinPts = 4

	silent, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var calls int
	cfg.Progress = func(processed, clusters int) { calls++ }
	observed, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls == 0 {
		t.Error("progress observer never called")
	}
	if diff := cmp.Diff(silent, observed); diff != "" {
		t.Errorf("progress observer changed the result (-silent +observed):\n%s", diff)
	}
}

func TestLabelsFromPartition(t *testing.T) {
	p := &Partition{
		Clusters: [][]int{{0, 2}, {4, 3}},
		Noise:    []int{1, 5},
	}
	got := LabelsFromPartition(p, 6)
	want := []int{0, -1, 0, 1, 1, -1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}
