package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OeunSochetra/storefront-api/internal/models"
	"github.com/OeunSochetra/storefront-api/internal/storage"
)

func TestUserUniqueness(t *testing.T) {
	t.Parallel()
	store := New()
	ctx := context.Background()

	first, err := store.CreateUser(ctx, models.User{Username: "alice", Email: "a@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	_, err = store.CreateUser(ctx, models.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
	var dup *storage.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	_, err = store.CreateUser(ctx, models.User{Username: "bob", Email: "a@example.com", PasswordHash: "h"})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestConcurrentRegistration_OneWinner(t *testing.T) {
	t.Parallel()
	store := New()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.CreateUser(ctx, models.User{
				Username: "alice",
				Email:    fmt.Sprintf("alice%d@example.com", i),
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, storage.ErrAlreadyExists)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()
	store := New()
	ctx := context.Background()

	created, err := store.CreateUser(ctx, models.User{Username: "alice", Email: "a@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, models.User{Username: "bob", Email: "b@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	email := "new@example.com"
	updated, err := store.UpdateUser(ctx, created.ID, storage.UserUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "alice", updated.Username, "unset fields stay untouched")
	assert.Equal(t, "h", updated.PasswordHash, "update never touches the hash")

	taken := "bob"
	_, err = store.UpdateUser(ctx, created.ID, storage.UserUpdate{Username: &taken})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = store.UpdateUser(ctx, "missing", storage.UserUpdate{Email: &email})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProductPaginationAndSearch(t *testing.T) {
	t.Parallel()
	store := New()
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		_, err := store.CreateProduct(ctx, models.Product{Name: fmt.Sprintf("Widget %d", i), Description: "d"})
		require.NoError(t, err)
	}
	_, err := store.CreateProduct(ctx, models.Product{Name: "Gadget", Description: "d"})
	require.NoError(t, err)

	page1, total, err := store.ListProducts(ctx, storage.ListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 13, total)
	assert.Len(t, page1, 10)
	assert.Equal(t, "Gadget", page1[0].Name, "newest first")

	page2, _, err := store.ListProducts(ctx, storage.ListFilter{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page2, 3)

	widgets, total, err := store.ListProducts(ctx, storage.ListFilter{Page: 1, PageSize: 10, Search: "widget"})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Len(t, widgets, 10)

	empty, total, err := store.ListProducts(ctx, storage.ListFilter{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 13, total)
	assert.Empty(t, empty)
}

func TestProductCRUD(t *testing.T) {
	t.Parallel()
	store := New()
	ctx := context.Background()

	created, err := store.CreateProduct(ctx, models.Product{Name: "Widget", Price: 9.99, Description: "d", Stock: 5})
	require.NoError(t, err)

	found, err := store.FindProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	updated, err := store.UpdateProduct(ctx, created.ID, models.Product{Name: "Widget v2", Price: 11, Description: "d2", Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", updated.Name)
	assert.Equal(t, created.ID, updated.ID)

	require.NoError(t, store.DeleteProduct(ctx, created.ID))
	_, err = store.FindProductByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.DeleteProduct(ctx, created.ID), storage.ErrNotFound)
}

func TestTopBooks(t *testing.T) {
	t.Parallel()
	store := New()
	ctx := context.Background()

	seed := []models.Book{
		{Title: "Mediocre", Author: "a", RatingStar: 3.0, RatingCount: 500},
		{Title: "Great", Author: "a", RatingStar: 4.8, RatingCount: 120},
		{Title: "Also great", Author: "a", RatingStar: 4.8, RatingCount: 80},
		{Title: "Good", Author: "a", RatingStar: 4.1, RatingCount: 200},
	}
	for _, book := range seed {
		_, err := store.CreateBook(ctx, book)
		require.NoError(t, err)
	}

	top, err := store.TopBooks(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "Great", top[0].Title)
	assert.Equal(t, "Also great", top[1].Title, "ties broken by rating count")
	assert.Equal(t, "Good", top[2].Title)
}
