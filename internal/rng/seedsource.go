package rng

import "sync"

// SeedSource is the process-wide, thread-safe master generator described
// in spec.md §4.3: a single Mersenne-Twister engine guarded by a mutex.
// Each worker draws exactly one uint32 from it at construction time and
// uses that value to seed its own, unshared local engine. This mirrors
// the original's ThreadSafeRandomNumberGenerator<std::mt19937>.
//
// Construct one SeedSource per training run and pass it by reference to
// every worker; the package keeps no package-level singleton.
type SeedSource struct {
	mu     sync.Mutex
	engine *mt19937
}

// NewSeedSource creates a master seed source seeded with the given value.
func NewSeedSource(seed uint64) *SeedSource {
	return &SeedSource{engine: newMT19937(uint32(seed) ^ uint32(seed>>32))}
}

// Next draws the next uint32 from the master engine. Safe for concurrent
// use by multiple workers.
func (s *SeedSource) Next() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.next()
}
