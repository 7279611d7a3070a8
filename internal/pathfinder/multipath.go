package pathfinder

// FindMultiplePaths finds up to maxPaths routes whose interiors share no node.
// After each success the interior of the found path is excluded from the next
// search, on top of any WithExcludeNodes given by the caller. It stops at the
// first search that finds nothing. A direct edge has no interior, so the same
// two-node path may be returned more than once. maxPaths <= 0 means DefaultMaxPaths.
func (p *Pathfinder) FindMultiplePaths(source, target string, maxPaths int, opts ...Option) ([]Path, error) {
	paths, _, err := p.FindMultiplePathsStats(source, target, maxPaths, opts...)
	return paths, err
}

// FindMultiplePathsStats is FindMultiplePaths plus statistics. Iterations sums
// every search; Truncated reports whether the search that ended the loop was
// cut off by MaxDepth.
func (p *Pathfinder) FindMultiplePathsStats(source, target string, maxPaths int, opts ...Option) ([]Path, SearchStats, error) {
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	var (
		paths    []Path
		interior []string
		total    SearchStats
	)
	for len(paths) < maxPaths {
		callOpts := append(opts[:len(opts):len(opts)], WithExcludeNodes(interior...))
		path, stats, err := p.FindPathStats(source, target, callOpts...)
		total.Iterations += stats.Iterations
		total.Truncated = stats.Truncated
		if err != nil {
			return paths, total, err
		}
		if path == nil {
			break
		}
		paths = append(paths, path)
		if len(path) > 2 {
			interior = append(interior, path[1:len(path)-1]...)
		}
	}
	return paths, total, nil
}
