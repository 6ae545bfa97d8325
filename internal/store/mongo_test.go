package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilterSearchQuotesInput(t *testing.T) {
	filter := buildFilter(Query{
		Equals:       map[string]any{"isPublished": true},
		Search:       "  a+b (beta) ",
		SearchFields: []string{"title", "content"},
	})

	assert.Equal(t, true, filter["isPublished"])

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)

	title := or[0].(bson.M)["title"].(primitive.Regex)
	assert.Equal(t, `a\+b \(beta\)`, title.Pattern)
	assert.Equal(t, "i", title.Options)
}

func TestBuildFilterWithoutSearch(t *testing.T) {
	filter := buildFilter(Query{Search: "governance"})
	assert.NotContains(t, filter, "$or", "search needs fields to apply")

	filter = buildFilter(Query{SearchFields: []string{"title"}})
	assert.Empty(t, filter)
}

func TestEqualsFilterConvertsHexIdentifiers(t *testing.T) {
	objID := primitive.NewObjectID()
	filter := equalsFilter(map[string]any{IDField: objID.Hex(), "category": "Trade Forums"})

	assert.Equal(t, objID, filter[IDField])
	assert.Equal(t, "Trade Forums", filter["category"])
}

func TestBuildUpdateProtectsImmutableFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	update := buildUpdate(
		Document{"title": "New", IDField: "x", CreatedAtField: now},
		[]string{"image", "title", CreatedAtField},
		now,
	)

	set := update["$set"].(bson.M)
	assert.Equal(t, "New", set["title"])
	assert.Equal(t, now, set[UpdatedAtField])
	assert.NotContains(t, set, IDField)
	assert.NotContains(t, set, CreatedAtField)

	unset := update["$unset"].(bson.M)
	assert.Equal(t, bson.M{"image": ""}, unset)
}

func TestBuildUpdateOmitsEmptyUnset(t *testing.T) {
	update := buildUpdate(Document{"title": "New"}, nil, time.Now())
	assert.NotContains(t, update, "$unset")
}

func TestFromBSONNormalisesDriverTypes(t *testing.T) {
	objID := primitive.NewObjectID()
	created := time.Date(2026, 2, 2, 8, 30, 0, 0, time.UTC)

	doc := fromBSON(bson.M{
		IDField:        objID,
		CreatedAtField: primitive.NewDateTimeFromTime(created),
		"order":        int32(3),
		"tags":         bson.A{"policy", "trade"},
		"mixed":        bson.A{"a", int64(2)},
	})

	assert.Equal(t, objID.Hex(), doc.ID())
	assert.True(t, created.Equal(doc.CreatedAt()))
	assert.Equal(t, float64(3), doc["order"])
	assert.Equal(t, []string{"policy", "trade"}, doc["tags"])
	assert.Equal(t, []any{"a", float64(2)}, doc["mixed"])
}

func TestFindOptionsSortAndPage(t *testing.T) {
	opts := findOptions(Query{Skip: 10, Limit: 10})

	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(10), *opts.Skip)
	assert.Equal(t, int64(10), *opts.Limit)
	assert.Equal(t, bson.D{{Key: CreatedAtField, Value: -1}, {Key: IDField, Value: -1}}, opts.Sort)
}
