package internal

// NotifyQueue holds the values written while a source was already notifying, in write order.
type NotifyQueue struct {
	values []any
}

func NewNotifyQueue() *NotifyQueue {
	return &NotifyQueue{
		values: make([]any, 0),
	}
}

func (q *NotifyQueue) Enqueue(v any) {
	q.values = append(q.values, v)
}

func (q *NotifyQueue) Dequeue() (any, bool) {
	if len(q.values) == 0 {
		return nil, false
	}

	v := q.values[0]
	q.values[0] = nil
	q.values = q.values[1:]
	return v, true
}

func (q *NotifyQueue) Len() int {
	return len(q.values)
}

func (q *NotifyQueue) Clear() {
	q.values = q.values[:0]
}
