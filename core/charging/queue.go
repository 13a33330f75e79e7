package charging

import "container/heap"

// queued is one waiting vehicle. seq preserves arrival order among equal
// priorities.
type queued struct {
	session  *session
	priority float64
	seq      uint64
}

// waitQueue is a max-heap on priority; ties pop in arrival order.
type waitQueue []*queued

func (q waitQueue) Len() int { return len(q) }

func (q waitQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q waitQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *waitQueue) Push(x any) { *q = append(*q, x.(*queued)) }

func (q *waitQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

func (q *waitQueue) push(s *session, priority float64, seq uint64) {
	heap.Push(q, &queued{session: s, priority: priority, seq: seq})
}

func (q *waitQueue) pop() *session {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*queued).session
}

// remove drops the entry for the given vehicle id, if present.
func (q *waitQueue) remove(vehicleID string) bool {
	for i, item := range *q {
		if item.session.vehicle.ID == vehicleID {
			heap.Remove(q, i)
			return true
		}
	}
	return false
}
