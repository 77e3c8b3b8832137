package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const defaultOrder = "created_at ASC, id ASC"

// GormRepository stores entities in a relational database through gorm.
type GormRepository[T Entity] struct {
	db     *gorm.DB
	order  string
	scopes []func(*gorm.DB) *gorm.DB
}

// GormOption configures a GormRepository.
type GormOption func(*gormOptions)

type gormOptions struct {
	order  string
	scopes []func(*gorm.DB) *gorm.DB
}

// WithOrder overrides the ORDER BY clause used by List.
func WithOrder(order string) GormOption {
	return func(o *gormOptions) {
		o.order = order
	}
}

// WithScopes adds scopes applied to every List query.
func WithScopes(scopes ...func(*gorm.DB) *gorm.DB) GormOption {
	return func(o *gormOptions) {
		o.scopes = append(o.scopes, scopes...)
	}
}

// NewGormRepository returns a repository backed by db.
func NewGormRepository[T Entity](db *gorm.DB, opts ...GormOption) *GormRepository[T] {
	o := gormOptions{order: defaultOrder}
	for _, opt := range opts {
		opt(&o)
	}
	return &GormRepository[T]{db: db, order: o.order, scopes: o.scopes}
}

func (r *GormRepository[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	q := r.db.WithContext(ctx).Scopes(r.scopes...)
	if r.order != "" {
		q = q.Order(r.order)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return out, nil
}

func (r *GormRepository[T]) Get(ctx context.Context, id string) (T, error) {
	var v T
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		var zero T
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return zero, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return v, nil
}

func (r *GormRepository[T]) Create(ctx context.Context, v T) error {
	if v.GetID() == "" {
		return fmt.Errorf("entity id cannot be empty")
	}
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrConflict, v.GetID())
		}
		return fmt.Errorf("failed to create record %s: %w", v.GetID(), err)
	}
	return nil
}

// Update writes every column of v, including zero values.
func (r *GormRepository[T]) Update(ctx context.Context, v T) error {
	res := r.db.WithContext(ctx).Model(&v).Select("*").Updates(&v)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrConflict, v.GetID())
		}
		return fmt.Errorf("failed to update record %s: %w", v.GetID(), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, v.GetID())
	}
	return nil
}

func (r *GormRepository[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Tx runs fn inside a database transaction. Nested calls become savepoints.
func (r *GormRepository[T]) Tx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &GormRepository[T]{db: tx, order: r.order, scopes: r.scopes})
	})
}
