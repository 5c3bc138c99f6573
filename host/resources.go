package host

import (
	"sync"

	"github.com/kbukum/nativefetch/bridge"
)

// resource is anything the table can hold. close releases it early.
type resource interface {
	close()
}

// resourceTable maps resource ids to live resources. Ids are never reused.
type resourceTable struct {
	mu    sync.Mutex
	next  bridge.ResourceID
	items map[bridge.ResourceID]resource
}

func newResourceTable() *resourceTable {
	return &resourceTable{items: make(map[bridge.ResourceID]resource)}
}

func (t *resourceTable) add(r resource) bridge.ResourceID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.items[t.next] = r
	return t.next
}

func (t *resourceTable) get(rid bridge.ResourceID) (resource, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.items[rid]
	return r, ok
}

// take removes and returns the resource under rid.
func (t *resourceTable) take(rid bridge.ResourceID) (resource, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.items[rid]
	if ok {
		delete(t.items, rid)
	}
	return r, ok
}

// takeIf removes rid only while it still maps to r.
func (t *resourceTable) takeIf(rid bridge.ResourceID, r resource) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.items[rid]; !ok || cur != r {
		return false
	}
	delete(t.items, rid)
	return true
}

func (t *resourceTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// drain empties the table and returns what it held.
func (t *resourceTable) drain() []resource {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]resource, 0, len(t.items))
	for rid, r := range t.items {
		out = append(out, r)
		delete(t.items, rid)
	}
	return out
}
