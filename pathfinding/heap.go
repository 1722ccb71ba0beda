package pathfinding

// heapEntry pairs a flat cell index with the priority it was queued at.
// A cell may be queued more than once with different priorities; stale
// entries are discarded on pop by the wavefront loop (lazy deletion).
type heapEntry struct {
	index    int
	priority uint32
}

// PriorityQueue is a binary min-heap over cell entries, ordered by priority.
// It is the transient working structure of a single wavefront expansion: the
// integration field owns one instance and reuses its backing slice across
// recomputes to avoid per-refresh allocation.
//
// An earlier A* pathfinder rescanned its open set linearly to find and update
// queued cells, which dominated recompute time on large grids. Duplicate
// entries plus the stale check replace that: every operation here is O(log n).
type PriorityQueue struct {
	entries []heapEntry
}

// NewPriorityQueue creates a queue with capacity for roughly one wavefront
// ring of a size-cell grid.
func NewPriorityQueue(size int) *PriorityQueue {
	return &PriorityQueue{entries: make([]heapEntry, 0, size/4+1)}
}

// Len returns the number of queued entries, including stale duplicates.
func (q *PriorityQueue) Len() int { return len(q.entries) }

// Reset empties the queue, keeping the backing slice.
func (q *PriorityQueue) Reset() { q.entries = q.entries[:0] }

// Push queues a cell at the given priority.
func (q *PriorityQueue) Push(index int, priority uint32) {
	q.entries = append(q.entries, heapEntry{index: index, priority: priority})
	i := len(q.entries) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if q.entries[parent].priority <= q.entries[i].priority {
			break
		}
		q.entries[parent], q.entries[i] = q.entries[i], q.entries[parent]
		i = parent
	}
}

// Pop removes and returns the entry with the lowest priority. It must not be
// called on an empty queue.
func (q *PriorityQueue) Pop() (int, uint32) {
	top := q.entries[0]
	n := len(q.entries) - 1
	q.entries[0] = q.entries[n]
	q.entries = q.entries[:n]

	i := 0
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		smallest := left
		if right := left + 1; right < n && q.entries[right].priority < q.entries[left].priority {
			smallest = right
		}
		if q.entries[i].priority <= q.entries[smallest].priority {
			break
		}
		q.entries[i], q.entries[smallest] = q.entries[smallest], q.entries[i]
		i = smallest
	}
	return top.index, top.priority
}
