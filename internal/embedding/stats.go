package embedding

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Puts      uint64
	Evictions uint64
	Size      int
	Capacity  int
}

// HitRatio returns hits / (hits + misses), or 0 when the cache has not been
// read yet.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
