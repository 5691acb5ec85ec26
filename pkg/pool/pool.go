// Package pool pools the small scratch slices the retrieval hot path
// allocates on every query, to reduce GC pressure under sustained load.
package pool

import "sync"

var stringSlicePool = sync.Pool{
	New: func() interface{} {
		return make([]string, 0, 16)
	},
}

// GetStringSlice returns a zero-length string slice from the pool.
func GetStringSlice() []string {
	s := stringSlicePool.Get().([]string)
	return s[:0]
}

// PutStringSlice returns s to the pool for reuse.
func PutStringSlice(s []string) {
	stringSlicePool.Put(s)
}
