package rules

// CanonicalPair orders two user identifiers so that the unordered pair
// (a, b) always maps to the same (low, high) row key, regardless of which
// side initiated.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
