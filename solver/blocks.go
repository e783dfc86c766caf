package solver

import (
	"math/bits"
	"sync"
)

// BlockSize is the number of contiguous coalition integers handed to a
// worker per pop from the shared queue. It must be a power
// of two for the popcount-window pruning below to be sound.
const BlockSize = 4096

const blockShift = 12 // log2(BlockSize)

func init() {
	if 1<<blockShift != BlockSize {
		panic("solver: BlockSize must equal 1<<blockShift")
	}
}

// BlockQueue hands out contiguous, block-aligned ranges of [0, limit)
// to callers of Next, guarded by a single mutex: contention is
// O(blocks/threads), not O(coalitions/threads).
// Exported so the responsibility package's exhaustive pivotal-count
// pass can reuse the exact same work-distribution scheme the solver
// uses.
type BlockQueue struct {
	mu    sync.Mutex
	next  uint64
	limit uint64
}

// NewBlockQueue returns a queue over the coalition space [0, limit).
func NewBlockQueue(limit uint64) *BlockQueue {
	return &BlockQueue{limit: limit}
}

// Next returns the next [start, end) block, or ok=false once the
// queue is exhausted.
func (q *BlockQueue) Next() (start, end uint64, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.next >= q.limit {
		return 0, 0, false
	}
	start = q.next
	end = start + BlockSize
	if end > q.limit {
		end = q.limit
	}
	q.next = end
	return start, end, true
}

// BlockRelevantToSize reports whether any coalition in the block
// starting at a block-aligned `start` can have population count equal
// to size. A block of BlockSize contiguous integers, block-aligned, has
// its low blockShift bits ranging over every value in
// [0, BlockSize), so achievable popcounts span
// [popcount(highBits), popcount(highBits)+blockShift].
func BlockRelevantToSize(start uint64, size int) bool {
	highBits := start >> blockShift
	minPc := bits.OnesCount64(highBits)
	maxPc := minPc + blockShift
	return size >= minPc && size <= maxPc
}
