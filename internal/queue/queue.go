// Package queue implements the first-in-first-out queue of popups that were
// requested while another popup was showing.
package queue

import (
	"container/list"

	"github.com/zyedidia/generic/mapset"

	"github.com/jmylchreest/popstack/internal/popup"
)

// Queue holds pending popups in request order.
// A popup instance is queued at most once; membership is tracked by ID.
// Queue is not safe for concurrent use.
type Queue struct {
	items   *list.List // List of popup.Popup, front is next
	members mapset.Set[string]
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		items:   list.New(),
		members: mapset.New[string](),
	}
}

// Enqueue appends p. Returns false if p is nil or already queued.
func (q *Queue) Enqueue(p popup.Popup) bool {
	if p == nil || q.members.Has(p.ID()) {
		return false
	}
	q.items.PushBack(p)
	q.members.Put(p.ID())
	return true
}

// Dequeue removes and returns the oldest popup.
func (q *Queue) Dequeue() (popup.Popup, bool) {
	elem := q.items.Front()
	if elem == nil {
		return nil, false
	}
	p := q.items.Remove(elem).(popup.Popup)
	q.members.Remove(p.ID())
	return p, true
}

// Peek returns the oldest popup without removing it.
func (q *Queue) Peek() (popup.Popup, bool) {
	elem := q.items.Front()
	if elem == nil {
		return nil, false
	}
	return elem.Value.(popup.Popup), true
}

// Remove cancels a pending popup. Returns false if it was not queued.
func (q *Queue) Remove(p popup.Popup) bool {
	if p == nil || !q.members.Has(p.ID()) {
		return false
	}
	for elem := q.items.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(popup.Popup).ID() == p.ID() {
			q.items.Remove(elem)
			q.members.Remove(p.ID())
			return true
		}
	}
	return false
}

// Contains reports whether p is queued.
func (q *Queue) Contains(p popup.Popup) bool {
	return p != nil && q.members.Has(p.ID())
}

// Len returns the number of queued popups.
func (q *Queue) Len() int {
	return q.items.Len()
}

// Each calls fn for every queued popup, oldest first.
func (q *Queue) Each(fn func(p popup.Popup)) {
	for elem := q.items.Front(); elem != nil; elem = elem.Next() {
		fn(elem.Value.(popup.Popup))
	}
}

// Drain empties the queue and returns its former contents, oldest first.
func (q *Queue) Drain() []popup.Popup {
	drained := make([]popup.Popup, 0, q.items.Len())
	q.Each(func(p popup.Popup) {
		drained = append(drained, p)
	})
	q.items.Init()
	q.members = mapset.New[string]()
	return drained
}
