package dbscan

// LabelsFromPartition converts a partition over n points into per-point
// labels: cluster IDs are 0-indexed in discovery order and -1 means noise.
// For an incomplete partition, points that were never classified also get -1.
func LabelsFromPartition(p *Partition, n int) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for c, cluster := range p.Clusters {
		for _, id := range cluster {
			labels[id] = c
		}
	}
	return labels
}
