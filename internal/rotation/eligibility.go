package rotation

// eligible returns the candidate indexes for the category at the given
// position, in stable catalog order. A track qualifies when it is unused this
// run and its artist clears the spacing window. Tracks excluded only by
// spacing are counted as near-misses in the run statistics.
func (rs *runState) eligible(cat Category, pos, spacing int) []int {
	var candidates []int
	for _, idx := range rs.pools[cat] {
		if rs.used[idx] {
			continue
		}
		if !rs.spacingOK(idx, pos, spacing) {
			rs.stats.SpacingSkips++
			continue
		}
		candidates = append(candidates, idx)
	}
	return candidates
}

// unusedIgnoringSpacing returns every unused track in the category's pool,
// spacing disregarded. Used by the terminal recovery branch.
func (rs *runState) unusedIgnoringSpacing(cat Category) []int {
	var candidates []int
	for _, idx := range rs.pools[cat] {
		if !rs.used[idx] {
			candidates = append(candidates, idx)
		}
	}
	return candidates
}
