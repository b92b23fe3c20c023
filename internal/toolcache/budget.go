package toolcache

import "sync"

// Budget counts the uncached operations one (file, capability) pair has
// performed against a fixed limit. Used only ever increases within a run;
// the caller must check Remaining before an expensive operation and Spend
// only after it succeeded, so a failed call never consumes budget.
type Budget struct {
	mu    sync.Mutex
	used  int
	limit int
}

// NewBudget creates a Budget with the given limit. A negative limit is
// treated as zero, which blocks every uncached call.
func NewBudget(limit int) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: limit}
}

// Remaining returns how many uncached operations are still allowed.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limit - b.used
}

// Exhausted reports whether no budget is left.
func (b *Budget) Exhausted() bool {
	return b.Remaining() <= 0
}

// Spend records one successful operation. Calling Spend past the limit is a
// caller bug; the counter still increments so the overrun stays visible.
func (b *Budget) Spend() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used++
}

// Used returns the number of operations performed so far.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Limit returns the fixed limit set at construction.
func (b *Budget) Limit() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limit
}
