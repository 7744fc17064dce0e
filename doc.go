// Package dbscan implements Density-Based Spatial Clustering of
// Applications with Noise (DBSCAN).
//
// DBSCAN groups points that are packed closely together, growing each
// cluster outward from "core" points whose epsilon-neighborhood holds at
// least MinPts points. Points reachable from no core point are labeled
// noise. Unlike centroid methods it needs no cluster count up front and
// finds clusters of arbitrary shape.
//
// Basic usage:
//
//	cfg := dbscan.DefaultConfig()
//	cfg.Eps = 1.5
//	cfg.MinPts = 4
//	result, err := dbscan.Cluster(data, cfg)
//	// result.Labels[i] is the cluster ID for point i (-1 = noise)
//	// result.Clusters / result.Noise hold the same partition as id sets
//
// For precomputed distance matrices:
//
//	result, err := dbscan.ClusterPrecomputed(distMatrix, n, cfg)
//
// # Index selection
//
// By default (Algorithm: "auto"), Cluster picks the range-query index based
// on the metric and dimensionality. For axis-decomposable metrics on
// low-dimensional data it uses a KD-tree; otherwise a Ball tree when the
// metric obeys the triangle inequality, falling back to brute force. Set
// Config.Algorithm to force a choice:
//
//	cfg.Algorithm = dbscan.AlgorithmBrute     // per-query scan or full matrix
//	cfg.Algorithm = dbscan.AlgorithmKDTree    // KD-tree radius queries
//	cfg.Algorithm = dbscan.AlgorithmBallTree  // Ball tree radius queries
//
// # Custom datasets
//
// The clustering core is generic over the neighborhood source. Anything
// implementing [RangeQuery], such as a disk-backed index or a metric with
// non-numeric distances, can drive a [Scanner] directly:
//
//	s, err := dbscan.NewScanner(myIndex, myRadius, 4)
//	part, err := s.Run(ctx, numPoints)
//
// Border points reachable from two clusters join whichever cluster reaches
// them first; the result is deterministic for a fixed query and point order.
package dbscan
