package cache

import "sync/atomic"

// CacheMetrics counts lookups per level. L2 errors include calls refused
// by an open circuit breaker.
type CacheMetrics struct {
	L1Hits   int64 `json:"l1_hits"`
	L2Hits   int64 `json:"l2_hits"`
	Misses   int64 `json:"misses"`
	L2Errors int64 `json:"l2_errors"`
	Sets     int64 `json:"sets"`
	Deletes  int64 `json:"deletes"`
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{}
}

func (m *CacheMetrics) RecordL1Hit()   { atomic.AddInt64(&m.L1Hits, 1) }
func (m *CacheMetrics) RecordL2Hit()   { atomic.AddInt64(&m.L2Hits, 1) }
func (m *CacheMetrics) RecordMiss()    { atomic.AddInt64(&m.Misses, 1) }
func (m *CacheMetrics) RecordL2Error() { atomic.AddInt64(&m.L2Errors, 1) }
func (m *CacheMetrics) RecordSet()     { atomic.AddInt64(&m.Sets, 1) }
func (m *CacheMetrics) RecordDelete()  { atomic.AddInt64(&m.Deletes, 1) }

func (m *CacheMetrics) Snapshot() CacheMetrics {
	return CacheMetrics{
		L1Hits:   atomic.LoadInt64(&m.L1Hits),
		L2Hits:   atomic.LoadInt64(&m.L2Hits),
		Misses:   atomic.LoadInt64(&m.Misses),
		L2Errors: atomic.LoadInt64(&m.L2Errors),
		Sets:     atomic.LoadInt64(&m.Sets),
		Deletes:  atomic.LoadInt64(&m.Deletes),
	}
}

// HitRate is the percentage of lookups answered by either level.
func (m *CacheMetrics) HitRate() float64 {
	s := m.Snapshot()
	hits := s.L1Hits + s.L2Hits
	total := hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total) * 100.0
}
