// Package pqueue is a small priority queue over opaque values. Insertion
// order is preserved among equal priorities, and an optional cap keeps
// only the best entries.
package pqueue

import "sort"

type order uint8

const (
	orderAsc order = iota
	orderDesc
)

type Option func(*Queue)

func WithOrderAsc() Option {
	return func(q *Queue) {
		q.order = orderAsc
	}
}

func WithOrderDesc() Option {
	return func(q *Queue) {
		q.order = orderDesc
	}
}

// WithCap keeps at most size entries: the smallest (asc) or largest
// (desc) by priority.
func WithCap(size uint) Option {
	return func(q *Queue) {
		q.cap = int(size)
	}
}

type item struct {
	value interface{}
	prior float64
}

func New(opts ...Option) *Queue {
	q := &Queue{order: orderAsc, cap: -1}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

type Queue struct {
	order order
	cap   int
	items []item
}

func (q *Queue) Len() int {
	return len(q.items)
}

// Push inserts a value with its priority, dropping the worst entry when
// the cap is exceeded. Ties keep first-pushed order.
func (q *Queue) Push(value interface{}, prior float64) {
	q.items = append(q.items, item{value: value, prior: prior})
	sort.SliceStable(q.items, func(i, j int) bool {
		if q.order == orderDesc {
			return q.items[i].prior > q.items[j].prior
		}
		return q.items[i].prior < q.items[j].prior
	})
	if q.cap >= 0 && len(q.items) > q.cap {
		q.items = q.items[:q.cap]
	}
}

// PopAll drains the queue in priority order.
func (q *Queue) PopAll() []interface{} {
	pulled := make([]interface{}, len(q.items))
	for i := range q.items {
		pulled[i] = q.items[i].value
	}
	q.items = q.items[:0]
	return pulled
}
