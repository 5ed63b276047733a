package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popstack/internal/popup"
)

type stubPopup struct{ id string }

func (p stubPopup) ID() string       { return p.id }
func (p stubPopup) Kind() popup.Kind { return "stub" }
func (p stubPopup) Activate()        {}
func (p stubPopup) Hide()            {}
func (p stubPopup) ForceHide()       {}
func (p stubPopup) OnBecameTop()     {}

func TestQueue_FIFO(t *testing.T) {
	q := New()
	assert.True(t, q.Enqueue(stubPopup{"a"}))
	assert.True(t, q.Enqueue(stubPopup{"b"}))
	assert.True(t, q.Enqueue(stubPopup{"c"}))
	assert.Equal(t, 3, q.Len())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", head.ID())

	var order []string
	for q.Len() > 0 {
		p, ok := q.Dequeue()
		require.True(t, ok)
		order = append(order, p.ID())
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)

	_, ok = q.Dequeue()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
}

func TestQueue_DeduplicatesByIdentity(t *testing.T) {
	q := New()
	assert.True(t, q.Enqueue(stubPopup{"a"}))
	assert.False(t, q.Enqueue(stubPopup{"a"}))
	assert.False(t, q.Enqueue(nil))
	assert.Equal(t, 1, q.Len())

	// Once dequeued the same instance may be queued again
	q.Dequeue()
	assert.True(t, q.Enqueue(stubPopup{"a"}))
}

func TestQueue_Remove(t *testing.T) {
	q := New()
	q.Enqueue(stubPopup{"a"})
	q.Enqueue(stubPopup{"b"})
	q.Enqueue(stubPopup{"c"})

	assert.True(t, q.Remove(stubPopup{"b"}))
	assert.False(t, q.Remove(stubPopup{"b"}))
	assert.False(t, q.Remove(nil))
	assert.False(t, q.Contains(stubPopup{"b"}))
	assert.True(t, q.Contains(stubPopup{"c"}))

	var ids []string
	q.Each(func(p popup.Popup) { ids = append(ids, p.ID()) })
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestQueue_Drain(t *testing.T) {
	q := New()
	q.Enqueue(stubPopup{"a"})
	q.Enqueue(stubPopup{"b"})

	drained := q.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, "a", drained[0].ID())
	assert.Equal(t, "b", drained[1].ID())
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Contains(stubPopup{"a"}))
	assert.Empty(t, q.Drain())
}
