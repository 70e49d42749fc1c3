package pqueue

import (
	"reflect"
	"testing"
)

func TestPopAllAscending(t *testing.T) {
	q := New(WithOrderAsc())
	q.Push("b", 2)
	q.Push("a", 1)
	q.Push("c", 3)
	got := q.PopAll()
	expected := []interface{}{"a", "b", "c"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("unexpected order, got %v, expected %v", got, expected)
	}
	if q.Len() != 0 {
		t.Errorf("queue must be empty after PopAll, len %d", q.Len())
	}
}

func TestDescendingWithCap(t *testing.T) {
	q := New(WithOrderDesc(), WithCap(2))
	q.Push(0, 0.1)
	q.Push(1, 0.9)
	q.Push(2, 0.5)
	q.Push(3, 0.7)
	got := q.PopAll()
	expected := []interface{}{1, 3}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("unexpected top entries, got %v, expected %v", got, expected)
	}
}

func TestTiesKeepPushOrder(t *testing.T) {
	q := New(WithOrderDesc())
	q.Push("first", 0.5)
	q.Push("second", 0.5)
	q.Push("third", 0.5)
	got := q.PopAll()
	expected := []interface{}{"first", "second", "third"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("equal priorities must keep push order, got %v", got)
	}
}
