package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steppingClock() func() time.Time {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestMemoryStoreInsertAssignsIdentityAndTimestamps(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	doc, err := s.Insert(ctx, "categories", Document{"name": "Governance", IDField: "client-chosen"})
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID())
	assert.NotEqual(t, "client-chosen", doc.ID())
	assert.False(t, doc.CreatedAt().IsZero())
	assert.Equal(t, doc[CreatedAtField], doc[UpdatedAtField])

	found, err := s.FindByID(ctx, "categories", doc.ID())
	require.NoError(t, err)
	assert.Equal(t, "Governance", found["name"])
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	s := NewMemoryStore().WithClock(steppingClock())
	ctx := context.Background()

	doc, err := s.Insert(ctx, "events", Document{"title": "Forum", "location": "Hall A"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, "events", doc.ID(), Document{"title": "Trade Forum", CreatedAtField: time.Time{}}, []string{"location"})
	require.NoError(t, err)
	assert.Equal(t, "Trade Forum", updated["title"])
	assert.NotContains(t, updated, "location")
	assert.Equal(t, doc[CreatedAtField], updated[CreatedAtField])
	assert.True(t, updated[UpdatedAtField].(time.Time).After(doc.CreatedAt()))

	_, err = s.Update(ctx, "events", "missing", Document{"title": "x"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "events", doc.ID()))
	assert.ErrorIs(t, s.Delete(ctx, "events", doc.ID()), ErrNotFound)

	_, err = s.FindByID(ctx, "events", doc.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreFindOrdersFiltersAndPages(t *testing.T) {
	s := NewMemoryStore().WithClock(steppingClock())
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := s.Insert(ctx, "blogs", Document{
			"title":       fmt.Sprintf("Post %02d", i),
			"isPublished": i%2 == 0,
			"tags":        []string{"news"},
		})
		require.NoError(t, err)
	}

	page, total, err := s.Find(ctx, "blogs", Query{Skip: 20, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page, 5)

	all, _, err := s.Find(ctx, "blogs", Query{})
	require.NoError(t, err)
	require.Len(t, all, 25)
	assert.Equal(t, "Post 24", all[0]["title"], "newest first")
	assert.Equal(t, "Post 00", all[24]["title"])

	published, total, err := s.Find(ctx, "blogs", Query{Equals: map[string]any{"isPublished": true}})
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
	assert.Len(t, published, 13)

	tagged, _, err := s.Find(ctx, "blogs", Query{Equals: map[string]any{"tags": "news"}})
	require.NoError(t, err)
	assert.Len(t, tagged, 25)

	searched, total, err := s.Find(ctx, "blogs", Query{Search: "post 1", SearchFields: []string{"title"}})
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	assert.Len(t, searched, 10)
	for _, q := range []Query{{Skip: -5, Limit: 3}, {Skip: 1 << 62, Limit: 10}, {Skip: 24, Limit: 1<<63 - 1}} {
		docs, total, err := s.Find(ctx, "blogs", q)
		require.NoError(t, err, "%+v", q)
		assert.Equal(t, int64(25), total)
		assert.LessOrEqual(t, len(docs), 3)
	}
}

func TestMemoryStoreFindOne(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Insert(ctx, "users", Document{"email": "admin@example.com"})
	require.NoError(t, err)

	doc, err := s.FindOne(ctx, "users", map[string]any{"email": "admin@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", doc["email"])

	_, err = s.FindOne(ctx, "users", map[string]any{"email": "nobody@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	doc, err := s.Insert(ctx, "notices", Document{"title": "Original"})
	require.NoError(t, err)
	doc["title"] = "Mutated"

	found, err := s.FindByID(ctx, "notices", doc.ID())
	require.NoError(t, err)
	assert.Equal(t, "Original", found["title"])
}
