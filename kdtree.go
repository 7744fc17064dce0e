package dbscan

import (
	"math"
	"sort"
)

// KDTree is a KD-tree spatial index for epsilon-neighborhood queries.
// Points are stored in a flat row-major array and reordered internally via
// an index permutation array.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	idxArray []int      // permutation: tree-order position → original index
	nodes    []NodeData // one entry per tree node
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
	numNodes      int
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}

	// Copy data and build identity index array.
	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	// Pre-allocate tree arrays. A complete binary tree with n leaves of
	// size leafSize needs at most 2*ceil(n/leafSize) nodes, but we use
	// a generous upper bound since the median split may not be perfectly balanced.
	maxNodes := treeMaxNodes(n, leafSize)

	t := &KDTree{
		data:          dataCopy,
		n:             n,
		dims:          dims,
		leafSize:      leafSize,
		metric:        metric,
		idxArray:      idxArray,
		nodes:         make([]NodeData, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
		t.numNodes = treeCountNodes(t.nodes, 0, maxNodes)
	}

	return t
}

// treeMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func treeMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))) + 1.
	// Number of nodes in a complete binary tree of depth d = 2^(d+1) - 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// treeCountNodes counts how many nodes were actually initialized by the build.
func treeCountNodes(nodes []NodeData, nodeID, maxNodes int) int {
	if nodeID >= maxNodes {
		return 0
	}
	if nodes[nodeID].IdxStart == 0 && nodes[nodeID].IdxEnd == 0 && nodeID != 0 {
		return 0
	}
	count := 1
	if !nodes[nodeID].IsLeaf {
		count += treeCountNodes(nodes, 2*nodeID+1, maxNodes)
		count += treeCountNodes(nodes, 2*nodeID+2, maxNodes)
	}
	return count
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	// Grow arrays if needed (shouldn't happen with good upper bound).
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	}

	// Compute bounds for this node.
	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: false}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *KDTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[ptIdx*t.dims+d]
			if v < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = v
			}
			if v > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension.
func (t *KDTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		return data[sub[i]*dims+dim] < data[sub[j]*dims+dim]
	})
}

// --- SpatialTree interface ---

func (t *KDTree) Data() []float64           { return t.data }
func (t *KDTree) NumPoints() int            { return t.n }
func (t *KDTree) NumFeatures() int          { return t.dims }
func (t *KDTree) IdxArray() []int           { return t.idxArray }
func (t *KDTree) NodeDataArray() []NodeData { return t.nodes[:t.numNodes] }

// QueryRadius returns the original indices of every point within radius of
// the query point, the radius itself included. Results come back in tree
// traversal order, which is deterministic for a fixed dataset.
func (t *KDTree) QueryRadius(point []float64, radius float64) []int {
	if t.n == 0 {
		return nil
	}
	rRadius := distToRdist(t.metric, radius)
	var result []int
	t.radiusSearch(0, point, rRadius, &result)
	return result
}

// radiusSearch traverses the tree, pruning any node whose bounding box lies
// entirely beyond the radius in reduced-distance space.
func (t *KDTree) radiusSearch(nodeID int, query []float64, rRadius float64, out *[]int) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.IdxStart == node.IdxEnd && nodeID != 0 {
		return // uninitialized node
	}
	if t.minRdistPoint(nodeID, query) > rRadius {
		return
	}

	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			ptIdx := t.idxArray[i]
			pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
			if t.metric.ReducedDistance(query, pt) <= rRadius {
				*out = append(*out, ptIdx)
			}
		}
		return
	}

	t.radiusSearch(2*nodeID+1, query, rRadius, out)
	t.radiusSearch(2*nodeID+2, query, rRadius, out)
}

// minRdistPoint returns a lower bound in reduced-distance space on the
// distance between a point and any point in the given node. For axis-aligned
// boxes, this computes the per-dimension gap and aggregates according to
// the metric.
func (t *KDTree) minRdistPoint(node int, point []float64) float64 {
	if node >= len(t.nodes) {
		return math.Inf(1)
	}
	dims := t.dims
	base := node * dims

	switch m := t.metric.(type) {
	case ChebyshevMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			lo := t.nodeBoundsMin[base+j]
			hi := t.nodeBoundsMax[base+j]
			var d float64
			if point[j] < lo {
				d = lo - point[j]
			} else if point[j] > hi {
				d = point[j] - hi
			}
			if d > rdist {
				rdist = d
			}
		}
		return rdist

	case MinkowskiMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			lo := t.nodeBoundsMin[base+j]
			hi := t.nodeBoundsMax[base+j]
			var d float64
			if point[j] < lo {
				d = lo - point[j]
			} else if point[j] > hi {
				d = point[j] - hi
			}
			rdist += math.Pow(d, m.P)
		}
		return rdist

	default:
		// Euclidean, Manhattan, and others that decompose along axes.
		// For Euclidean: sum of squared per-dim gaps (reduced distance).
		// For Manhattan: sum of per-dim gaps (same as distance).
		var rdist float64
		p := metricP(t.metric)
		for j := 0; j < dims; j++ {
			lo := t.nodeBoundsMin[base+j]
			hi := t.nodeBoundsMax[base+j]
			var d float64
			if point[j] < lo {
				d = lo - point[j]
			} else if point[j] > hi {
				d = point[j] - hi
			}
			rdist += math.Pow(d, p)
		}
		return rdist
	}
}

// metricP returns the Minkowski exponent for the metric, defaulting to
// 2 for Euclidean and 1 for Manhattan.
func metricP(m DistanceMetric) float64 {
	switch v := m.(type) {
	case EuclideanMetric:
		return 2.0
	case ManhattanMetric:
		return 1.0
	case MinkowskiMetric:
		return v.P
	case ChebyshevMetric:
		return math.Inf(1)
	default:
		return 2.0 // fallback; Euclidean-like
	}
}
