// Package pqueue provides a binary min-heap ordered by a caller-supplied comparator.
// Used as the A* open set (ordered by f-score) and as the biome flood-fill frontier.
package pqueue

// Queue is a binary min-heap. The zero value is not usable; call New.
type Queue[T any] struct {
	items []T
	less  func(a, b T) bool
}

// New creates an empty queue ordered by less. capacity is a hint for the backing buffer.
func New[T any](less func(a, b T) bool, capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{
		items: make([]T, 0, capacity),
		less:  less,
	}
}

// Push adds an item. O(log n).
func (q *Queue[T]) Push(item T) {
	q.items = append(q.items, item)

	// Sift up
	i := len(q.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(q.items[i], q.items[parent]) {
			break
		}
		q.items[parent], q.items[i] = q.items[i], q.items[parent]
		i = parent
	}
}

// Pop removes and returns the minimum item. ok is false when the queue is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	n := len(q.items)
	if n == 0 {
		return item, false
	}

	item = q.items[0]
	last := q.items[n-1]
	var zero T
	q.items[n-1] = zero
	q.items = q.items[:n-1]
	if n == 1 {
		return item, true
	}
	q.items[0] = last

	// Sift down
	i := 0
	size := len(q.items)
	for {
		left := 2*i + 1
		if left >= size {
			break
		}
		smallest := left
		if right := left + 1; right < size && q.less(q.items[right], q.items[left]) {
			smallest = right
		}
		if !q.less(q.items[smallest], q.items[i]) {
			break
		}
		q.items[i], q.items[smallest] = q.items[smallest], q.items[i]
		i = smallest
	}
	return item, true
}

// Peek returns the minimum item without removing it.
func (q *Queue[T]) Peek() (item T, ok bool) {
	if len(q.items) == 0 {
		return item, false
	}
	return q.items[0], true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Reset empties the queue, keeping the buffer for reuse.
func (q *Queue[T]) Reset() {
	var zero T
	for i := range q.items {
		q.items[i] = zero
	}
	q.items = q.items[:0]
}
