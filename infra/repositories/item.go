package repositories

import (
	"sync"

	item "github.com/meizuflux/items-api/domain/item"
)

// ItemRepositoryMemory keeps the whole registry in one map guarded by a
// reader/writer lock: reads run concurrently, every mutation is exclusive.
type ItemRepositoryMemory struct {
	mutex sync.RWMutex
	items map[string]item.Item
}

func NewItemRepositoryMemory() *ItemRepositoryMemory {
	return &ItemRepositoryMemory{
		items: make(map[string]item.Item),
	}
}

// List returns a snapshot copy, so callers never observe later mutations.
func (r *ItemRepositoryMemory) List() map[string]item.Item {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	snapshot := make(map[string]item.Item, len(r.items))
	for id, it := range r.items {
		snapshot[id] = it
	}
	return snapshot
}

func (r *ItemRepositoryMemory) Get(id string) (item.Item, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	it, ok := r.items[id]
	return it, ok
}

func (r *ItemRepositoryMemory) Create(id string, it item.Item) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.items[id]; exists {
		return item.ErrAlreadyExists
	}
	r.items[id] = it
	return nil
}

func (r *ItemRepositoryMemory) Replace(id string, it item.Item) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.items[id]; !exists {
		return item.ErrNotFound
	}
	r.items[id] = it
	return nil
}

// ApplyPatch builds the merged record in full and stores it with a single map
// write while holding the write lock.
func (r *ItemRepositoryMemory) ApplyPatch(id string, p item.Patch) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	stored, exists := r.items[id]
	if !exists {
		return item.ErrNotFound
	}
	r.items[id] = stored.ApplyPatch(p)
	return nil
}

func (r *ItemRepositoryMemory) Delete(id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.items[id]; !exists {
		return item.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
