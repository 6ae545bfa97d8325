package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore stores documents in a MongoDB database, one collection per resource.
type MongoStore struct {
	db      *mongo.Database
	timeout time.Duration
}

// NewMongoStore wraps a connected database. Each call is bounded by timeout.
func NewMongoStore(db *mongo.Database, timeout time.Duration) *MongoStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MongoStore{db: db, timeout: timeout}
}

func (s *MongoStore) FindByID(ctx context.Context, collection, id string) (Document, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.FindOne(ctx, collection, map[string]any{IDField: objID})
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter map[string]any) (Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, equalsFilter(filter)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", collection, err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, q Query) ([]Document, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	coll := s.db.Collection(collection)
	filter := buildFilter(q)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", collection, err)
	}

	cursor, err := coll.Find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, 0, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromBSON(raw))
	}
	return docs, total, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc Document) (Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	raw := bson.M{}
	for k, v := range doc {
		if isImmutable(k) {
			continue
		}
		raw[k] = v
	}
	objID := primitive.NewObjectID()
	raw[IDField] = objID
	raw[CreatedAtField] = now
	raw[UpdatedAtField] = now

	if _, err := s.db.Collection(collection).InsertOne(ctx, raw); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, set Document, unset []string) (Document, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	err = s.db.Collection(collection).
		FindOneAndUpdate(ctx, bson.M{IDField: objID}, buildUpdate(set, unset, time.Now().UTC()), opts).
		Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update in %s: %w", collection, err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{IDField: objID})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", collection, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// equalsFilter converts exact-match conditions, turning a hex _id into an ObjectID.
func equalsFilter(equals map[string]any) bson.M {
	filter := bson.M{}
	for k, v := range equals {
		if k == IDField {
			if hex, ok := v.(string); ok {
				if objID, err := primitive.ObjectIDFromHex(hex); err == nil {
					v = objID
				}
			}
		}
		filter[k] = v
	}
	return filter
}

func buildFilter(q Query) bson.M {
	filter := equalsFilter(q.Equals)

	search := strings.TrimSpace(q.Search)
	if search == "" || len(q.SearchFields) == 0 {
		return filter
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	or := bson.A{}
	for _, field := range q.SearchFields {
		or = append(or, bson.M{field: pattern})
	}
	filter["$or"] = or
	return filter
}

func findOptions(q Query) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: CreatedAtField, Value: -1}, {Key: IDField, Value: -1}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}

func buildUpdate(set Document, unset []string, now time.Time) bson.M {
	setDoc := bson.M{}
	for k, v := range set {
		if isImmutable(k) {
			continue
		}
		setDoc[k] = v
	}
	setDoc[UpdatedAtField] = now.Truncate(time.Millisecond)

	update := bson.M{"$set": setDoc}

	unsetDoc := bson.M{}
	for _, k := range unset {
		if isImmutable(k) {
			continue
		}
		if _, alsoSet := setDoc[k]; alsoSet {
			continue
		}
		unsetDoc[k] = ""
	}
	if len(unsetDoc) > 0 {
		update["$unset"] = unsetDoc
	}
	return update
}

// fromBSON normalises driver types so documents look the same whatever store produced them.
func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case time.Time:
		return val.UTC()
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case primitive.A:
		return normalizeArray(val)
	case []any:
		return normalizeArray(val)
	default:
		return v
	}
}

func normalizeArray(arr []any) any {
	strs := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			out := make([]any, 0, len(arr))
			for _, it := range arr {
				out = append(out, normalize(it))
			}
			return out
		}
		strs = append(strs, s)
	}
	return strs
}
