package samknn

import "samstream/internal/instance"

// window is an ordered buffer of shared instance handles. The STM keeps
// arrival order and only ever drops from the front; the LTM additionally
// drops at arbitrary positions during cleaning and compression.
type window struct {
	items []*instance.Instance
}

func newWindow(capacity int) *window {
	return &window{items: make([]*instance.Instance, 0, capacity)}
}

func (w *window) add(in *instance.Instance) {
	w.items = append(w.items, in)
}

func (w *window) get(idx int) *instance.Instance {
	return w.items[idx]
}

func (w *window) len() int {
	return len(w.items)
}

// deleteFront drops the n oldest entries, compacting in place so the
// backing array never migrates.
func (w *window) deleteFront(n int) {
	w.items = w.items[:copy(w.items, w.items[n:])]
}

func (w *window) deleteAt(idx int) {
	w.items = append(w.items[:idx], w.items[idx+1:]...)
}

// without returns the buffer contents minus the entry at idx. The last
// position is returned as a subslice without copying.
func (w *window) without(idx int) []*instance.Instance {
	if idx == len(w.items)-1 {
		return w.items[:idx]
	}
	rest := make([]*instance.Instance, 0, len(w.items)-1)
	rest = append(rest, w.items[:idx]...)
	return append(rest, w.items[idx+1:]...)
}
