package dbscan

// NodeData describes a single node in a spatial tree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
	Radius           float64 // ball tree radius; 0 for KD-tree
}

// SpatialTree is the read interface for KD-trees and Ball trees, used by
// tree-accelerated range queries.
type SpatialTree interface {
	// QueryRadius returns the original indices of every point within radius
	// of the query point (inclusive). Results are deterministic for a fixed
	// dataset but carry no ordering guarantee.
	QueryRadius(point []float64, radius float64) []int

	// Data returns the flat row-major point data owned by the tree.
	Data() []float64

	// NumPoints returns the number of points in the tree.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int

	// IdxArray returns the permutation array mapping tree-order positions
	// back to original point indices.
	IdxArray() []int

	// NodeDataArray returns the metadata for every node in the tree.
	NodeDataArray() []NodeData
}
