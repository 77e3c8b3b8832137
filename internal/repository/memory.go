package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryRepository keeps entities in process memory. It is safe for concurrent use.
type MemoryRepository[T Entity] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
	clone func(T) T

	// txMu is held by every write and by a whole Tx, so a rollback only
	// discards the transaction's own writes.
	txMu sync.Mutex
}

// MemoryOption configures a MemoryRepository.
type MemoryOption[T Entity] func(*MemoryRepository[T])

// WithClone sets the function used to copy entities in and out of the store.
// Entities holding slices or maps need one to avoid aliasing.
func WithClone[T Entity](clone func(T) T) MemoryOption[T] {
	return func(r *MemoryRepository[T]) {
		r.clone = clone
	}
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository[T Entity](opts ...MemoryOption[T]) *MemoryRepository[T] {
	r := &MemoryRepository[T]{
		items: make(map[string]T),
		clone: func(v T) T { return v },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Seed loads entities without conflict checks, replacing any with the same id.
func (r *MemoryRepository[T]) Seed(values ...T) {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range values {
		id := v.GetID()
		if _, ok := r.items[id]; !ok {
			r.order = append(r.order, id)
		}
		r.items[id] = r.clone(v)
	}
}

func (r *MemoryRepository[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.clone(r.items[id]))
	}
	return out, nil
}

func (r *MemoryRepository[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.clone(v), nil
}

func (r *MemoryRepository[T]) Create(ctx context.Context, v T) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return r.create(ctx, v)
}

func (r *MemoryRepository[T]) create(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := v.GetID()
	if id == "" {
		return fmt.Errorf("entity id cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; ok {
		return fmt.Errorf("%w: %s", ErrConflict, id)
	}
	r.items[id] = r.clone(v)
	r.order = append(r.order, id)
	return nil
}

func (r *MemoryRepository[T]) Update(ctx context.Context, v T) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return r.update(ctx, v)
}

func (r *MemoryRepository[T]) update(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := v.GetID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.items[id] = r.clone(v)
	return nil
}

func (r *MemoryRepository[T]) Delete(ctx context.Context, id string) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return r.delete(ctx, id)
}

func (r *MemoryRepository[T]) delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

// Tx snapshots the store, runs fn and restores the snapshot if fn fails.
func (r *MemoryRepository[T]) Tx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	order, items := r.snapshot()
	if err := fn(ctx, memoryTx[T]{r}); err != nil {
		r.restore(order, items)
		return err
	}
	return nil
}

func (r *MemoryRepository[T]) snapshot() ([]string, map[string]T) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make(map[string]T, len(r.items))
	for id, v := range r.items {
		items[id] = r.clone(v)
	}
	return slices.Clone(r.order), items
}

func (r *MemoryRepository[T]) restore(order []string, items map[string]T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = order
	r.items = items
}

// memoryTx is the repository handed to a transaction body; nested Tx calls join the outer one.
type memoryTx[T Entity] struct {
	*MemoryRepository[T]
}

// Writes inside a transaction already hold txMu.
func (t memoryTx[T]) Create(ctx context.Context, v T) error { return t.create(ctx, v) }

func (t memoryTx[T]) Update(ctx context.Context, v T) error { return t.update(ctx, v) }

func (t memoryTx[T]) Delete(ctx context.Context, id string) error { return t.delete(ctx, id) }

func (t memoryTx[T]) Tx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error {
	return fn(ctx, t)
}
