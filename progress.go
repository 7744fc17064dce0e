package dbscan

// ProgressFunc receives clustering progress: the number of points that have
// been classified so far and the number of clusters committed so far. It is
// called after every top-level point decision and after every committed
// cluster. A nil ProgressFunc disables reporting; presence or absence of a
// ProgressFunc never changes the clustering itself.
type ProgressFunc func(pointsProcessed, clustersFound int)
