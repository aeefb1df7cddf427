package http

import (
	"container/list"
	"sync"

	"github.com/figaro-dev/figaro/pkg/dataset"
	"github.com/figaro-dev/figaro/pkg/observability"
	"github.com/google/uuid"
)

// Registry holds uploaded datasets in memory, keyed by generated ID.
// When the registry exceeds maxSize, the least recently used dataset is
// evicted. Safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	maxSize  int
	entries  map[string]*list.Element
	eviction *list.List
}

type registryEntry struct {
	id string
	ds *dataset.Dataset
}

// NewRegistry creates a dataset registry bounded to maxSize entries.
// A maxSize of zero or less means unbounded.
func NewRegistry(maxSize int) *Registry {
	return &Registry{
		maxSize:  maxSize,
		entries:  make(map[string]*list.Element),
		eviction: list.New(),
	}
}

// Put stores a dataset and returns its generated ID.
func (r *Registry) Put(ds *dataset.Dataset) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	elem := r.eviction.PushFront(&registryEntry{id: id, ds: ds})
	r.entries[id] = elem

	if r.maxSize > 0 && r.eviction.Len() > r.maxSize {
		oldest := r.eviction.Back()
		r.eviction.Remove(oldest)
		delete(r.entries, oldest.Value.(*registryEntry).id)
	}

	observability.DatasetsLoaded.Inc()
	return id
}

// Get returns the dataset with the given ID and marks it as recently used.
func (r *Registry) Get(id string) (*dataset.Dataset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	r.eviction.MoveToFront(elem)
	return elem.Value.(*registryEntry).ds, true
}

// Len returns the number of stored datasets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
