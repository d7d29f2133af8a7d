package vectorindex

import "container/heap"

type candidate struct {
	id   int32
	dist float32
}

// minQueue pops the closest candidate first (expansion frontier).
type minQueue []candidate

func (q minQueue) Len() int            { return len(q) }
func (q minQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q minQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *minQueue) Push(x interface{}) { *q = append(*q, x.(candidate)) }
func (q *minQueue) Pop() interface{} {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}

func (q *minQueue) PushMin(c candidate) { heap.Push(q, c) }
func (q *minQueue) PopMin() candidate   { return heap.Pop(q).(candidate) }

// maxQueue pops the farthest candidate first (bounded result set).
type maxQueue []candidate

func (q maxQueue) Len() int            { return len(q) }
func (q maxQueue) Less(i, j int) bool  { return q[i].dist > q[j].dist }
func (q maxQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *maxQueue) Push(x interface{}) { *q = append(*q, x.(candidate)) }
func (q *maxQueue) Pop() interface{} {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}

func (q *maxQueue) PushMax(c candidate) { heap.Push(q, c) }
func (q *maxQueue) PopMax() candidate   { return heap.Pop(q).(candidate) }
func (q maxQueue) PeekMax() candidate   { return q[0] }
