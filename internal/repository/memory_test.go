package repository

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
	Tags []string
}

func (i item) GetID() string { return i.ID }

func cloneItem(i item) item {
	i.Tags = slices.Clone(i.Tags)
	return i
}

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository[item]()

	require.NoError(t, repo.Create(ctx, item{ID: "b", Name: "second"}))
	require.NoError(t, repo.Create(ctx, item{ID: "a", Name: "first"}))

	err := repo.Create(ctx, item{ID: "a"})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, []string{list[0].ID, list[1].ID}, "insertion order")

	require.NoError(t, repo.Update(ctx, item{ID: "a", Name: "renamed"}))
	got, _ = repo.Get(ctx, "a")
	assert.Equal(t, "renamed", got.Name)

	assert.ErrorIs(t, repo.Update(ctx, item{ID: "zz"}), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "b"))
	assert.ErrorIs(t, repo.Delete(ctx, "b"), ErrNotFound)
	_, err = repo.Get(ctx, "b")
	assert.True(t, errors.Is(err, ErrNotFound))

	list, _ = repo.List(ctx)
	assert.Len(t, list, 1)
}

func TestMemoryRepository_EmptyID(t *testing.T) {
	repo := NewMemoryRepository[item]()
	assert.Error(t, repo.Create(context.Background(), item{}))
}

func TestMemoryRepository_CopiesValues(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(WithClone(cloneItem))

	in := item{ID: "a", Tags: []string{"x"}}
	require.NoError(t, repo.Create(ctx, in))
	in.Tags[0] = "mutated"

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Tags)

	got.Tags[0] = "mutated"
	again, _ := repo.Get(ctx, "a")
	assert.Equal(t, []string{"x"}, again.Tags)
}

func TestMemoryRepository_TxRollback(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository[item]()
	repo.Seed(item{ID: "a", Name: "kept"})

	boom := errors.New("boom")
	err := repo.Tx(ctx, func(ctx context.Context, tx Repository[item]) error {
		require.NoError(t, tx.Create(ctx, item{ID: "b"}))
		require.NoError(t, tx.Update(ctx, item{ID: "a", Name: "changed"}))
		require.NoError(t, tx.Delete(ctx, "a"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, _ := repo.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].Name)
}

func TestMemoryRepository_FailedTxKeepsOutsideWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository[item]()

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- repo.Tx(ctx, func(ctx context.Context, tx Repository[item]) error {
			require.NoError(t, tx.Create(ctx, item{ID: "inside"}))
			close(started)
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	outsideDone := make(chan error, 1)
	go func() {
		outsideDone <- repo.Create(ctx, item{ID: "outside"})
	}()
	close(release)

	require.Error(t, <-txDone)
	require.NoError(t, <-outsideDone)

	_, err := repo.Get(ctx, "outside")
	require.NoError(t, err)
	_, err = repo.Get(ctx, "inside")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_TxCommitAndNesting(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository[item]()

	err := repo.Tx(ctx, func(ctx context.Context, tx Repository[item]) error {
		if err := tx.Create(ctx, item{ID: "a"}); err != nil {
			return err
		}
		return tx.Tx(ctx, func(ctx context.Context, inner Repository[item]) error {
			return inner.Create(ctx, item{ID: "b"})
		})
	})
	require.NoError(t, err)

	list, _ := repo.List(ctx)
	assert.Len(t, list, 2)
}

func TestMemoryRepository_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository[item]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('A' + i))
			_ = repo.Tx(ctx, func(ctx context.Context, tx Repository[item]) error {
				return tx.Create(ctx, item{ID: id})
			})
			_, _ = repo.List(ctx)
		}(i)
	}
	wg.Wait()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewMemoryRepository[item]()
	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
