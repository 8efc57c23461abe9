package rotation

// pick selects one track from a non-empty candidate list: the one least
// recently played, with never-played tracks first. Ties break on lowest play
// count, then on stable catalog order (candidates arrive in catalog order, so
// the earliest survivor wins).
func (rs *runState) pick(candidates []int) int {
	best := candidates[0]
	for _, idx := range candidates[1:] {
		if rs.staler(idx, best) {
			best = idx
		}
	}
	return best
}

// staler reports whether track a should be chosen over track b.
func (rs *runState) staler(a, b int) bool {
	ta, tb := rs.tracks[a], rs.tracks[b]

	switch {
	case ta.LastPlayed == nil && tb.LastPlayed != nil:
		return true
	case ta.LastPlayed != nil && tb.LastPlayed == nil:
		return false
	case ta.LastPlayed != nil && tb.LastPlayed != nil:
		if !ta.LastPlayed.Equal(*tb.LastPlayed) {
			return ta.LastPlayed.Before(*tb.LastPlayed)
		}
	}

	return ta.PlayCount < tb.PlayCount
}
