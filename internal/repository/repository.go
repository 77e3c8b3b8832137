// Package repository stores eCoA entities behind a small generic interface
// with an in-memory implementation and a gorm-backed one.
package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no entity has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an entity with the same id or unique key already exists.
	ErrConflict = errors.New("record already exists")
)

// Entity is anything stored by id.
type Entity interface {
	GetID() string
}

// Repository is the persistence contract the services depend on.
// List returns entities in insertion order.
type Repository[T Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, v T) error
	Update(ctx context.Context, v T) error
	Delete(ctx context.Context, id string) error
	// Tx runs fn atomically: if fn returns an error none of its writes are kept.
	Tx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error
}
