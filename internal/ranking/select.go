package ranking

// better reports whether a ranks ahead of b: higher score first, equal
// scores resolved by input position. Indices are unique, so this is a
// strict total order.
func better(a, b scoredEntry) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.index < b.index
}

// selectTop partitions entries in place so that the k best under better
// occupy entries[:k], in arbitrary order. Quickselect with median-of-three
// pivots: expected O(n), no allocation.
func selectTop(entries []scoredEntry, k int) {
	lo, hi := 0, len(entries)-1
	for lo < hi {
		medianToHi(entries, lo, hi)
		p := partition(entries, lo, hi)
		switch {
		case p == k-1:
			return
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partition applies the Lomuto scheme around the pivot at entries[hi] and
// returns its final position. Entries better than the pivot end up to its
// left.
func partition(entries []scoredEntry, lo, hi int) int {
	pivot := entries[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if better(entries[j], pivot) {
			entries[i], entries[j] = entries[j], entries[i]
			i++
		}
	}
	entries[i], entries[hi] = entries[hi], entries[i]
	return i
}

// medianToHi moves the median of entries[lo], entries[mid], entries[hi]
// into entries[hi] to serve as the partition pivot, guarding against
// quadratic behavior on sorted input.
func medianToHi(entries []scoredEntry, lo, hi int) {
	mid := lo + (hi-lo)/2
	if better(entries[mid], entries[lo]) {
		entries[lo], entries[mid] = entries[mid], entries[lo]
	}
	if better(entries[hi], entries[mid]) {
		entries[mid], entries[hi] = entries[hi], entries[mid]
	}
	if better(entries[mid], entries[lo]) {
		entries[lo], entries[mid] = entries[mid], entries[lo]
	}
	entries[mid], entries[hi] = entries[hi], entries[mid]
}
