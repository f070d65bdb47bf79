package jsv

import (
	"strings"
	"sync"
)

// stringBuilderPool provides reusable string builders for top-level calls.
var stringBuilderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

// getPooledBuilder gets a builder from pool and resets it.
func getPooledBuilder() *strings.Builder {
	b := stringBuilderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

// putPooledBuilder returns a builder to the pool.
func putPooledBuilder(b *strings.Builder) {
	// Only return reasonably sized builders to the pool
	if b.Cap() < 64*1024 {
		stringBuilderPool.Put(b)
	}
}
