package crawler

// seenSet tracks emitted identity keys for the lifetime of one run. The
// pipeline is strictly sequential, so no locking is needed; the set is
// discarded when the run ends.
type seenSet struct {
	keys map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{keys: make(map[string]struct{})}
}

// MarkIfNew stores the key if it has not been seen before and returns true.
func (s *seenSet) MarkIfNew(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Len reports how many distinct keys have been emitted.
func (s *seenSet) Len() int {
	return len(s.keys)
}
