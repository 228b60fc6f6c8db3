package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/therealhieu/wee/internal/shortener"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// urlDocument is the BSON shape of a URL.
type urlDocument struct {
	Long           string     `bson:"long"`
	Short          string     `bson:"short"`
	Alias          *string    `bson:"alias,omitempty"`
	ExpirationDate *time.Time `bson:"expirationDate"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt"`
	UserID         string     `bson:"userId"`
}

func toDocument(url *shortener.URL) urlDocument {
	doc := urlDocument{
		Long:      url.Long,
		Short:     url.Short,
		Alias:     url.Alias,
		CreatedAt: url.CreatedAt.UTC(),
		UpdatedAt: url.UpdatedAt.UTC(),
		UserID:    url.UserID,
	}

	if url.ExpirationDate != nil {
		t := url.ExpirationDate.Time()
		doc.ExpirationDate = &t
	}

	return doc
}

func (d urlDocument) toURL() *shortener.URL {
	url := &shortener.URL{
		Long:      d.Long,
		Short:     d.Short,
		Alias:     d.Alias,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		UserID:    d.UserID,
	}

	if d.ExpirationDate != nil {
		date := shortener.DateOf(*d.ExpirationDate)
		url.ExpirationDate = &date
	}

	return url
}

// MongoStore is a MongoDB implementation of shortener.Repository.
type MongoStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoStore creates a store backed by the given collection.
func NewMongoStore(client *mongo.Client, database, collection string, logger *zap.Logger) *MongoStore {
	return &MongoStore{
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}
}

func (m *MongoStore) Get(ctx context.Context, short string) (*shortener.URL, error) {
	return m.findOne(ctx, bson.D{{Key: shortener.FieldShort, Value: short}})
}

func (m *MongoStore) Insert(ctx context.Context, url *shortener.URL) error {
	if url.Short == "" || url.Long == "" {
		return shortener.ErrInvalidURL
	}

	_, err := m.collection.InsertOne(ctx, toDocument(url))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			m.logger.Warn("duplicate key on insert", zap.String("short", url.Short), zap.Error(err))

			return shortener.Duplicate("mongo insert", err)
		}

		return shortener.Transient("mongo insert", err)
	}

	return nil
}

func (m *MongoStore) ReplaceIfExists(ctx context.Context, previousShort string, url *shortener.URL) error {
	err := m.collection.FindOneAndReplace(ctx,
		bson.D{{Key: shortener.FieldShort, Value: previousShort}},
		toDocument(url),
	).Err()

	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return errors.Wrapf(shortener.ErrNotFound, "replace %s", previousShort)
	case mongo.IsDuplicateKeyError(err):
		return shortener.Duplicate("mongo replace", err)
	default:
		return shortener.Transient("mongo replace", err)
	}
}

func (m *MongoStore) Find(ctx context.Context, filter shortener.Filter) (*shortener.URL, error) {
	if filter.IsEmpty() {
		return nil, shortener.ErrNotFound
	}

	// A short code wins over an alias that happens to spell the same code.
	if filter.Short != "" {
		url, err := m.findOne(ctx, bson.D{{Key: shortener.FieldShort, Value: filter.Short}})
		if !errors.Is(err, shortener.ErrNotFound) {
			return url, err
		}

		filter.Short = ""
		if filter.IsEmpty() {
			return nil, shortener.ErrNotFound
		}
	}

	return m.findOne(ctx, filterDocument(filter))
}

func (m *MongoStore) findOne(ctx context.Context, query bson.D) (*shortener.URL, error) {
	var doc urlDocument

	err := m.collection.FindOne(ctx, query).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shortener.ErrNotFound
		}

		return nil, shortener.Transient("mongo find", err)
	}

	return doc.toURL(), nil
}

func filterDocument(filter shortener.Filter) bson.D {
	var clauses bson.A

	if filter.Short != "" {
		clauses = append(clauses, bson.D{{Key: shortener.FieldShort, Value: filter.Short}})
	}

	if filter.Alias != "" {
		clauses = append(clauses, bson.D{{Key: shortener.FieldAlias, Value: filter.Alias}})
	}

	if filter.HasOwner() {
		clauses = append(clauses, bson.D{
			{Key: shortener.FieldUserID, Value: filter.UserID},
			{Key: shortener.FieldLong, Value: filter.Long},
		})
	}

	return bson.D{{Key: "$or", Value: clauses}}
}

// EnsureIndexes creates the indexes of shortener.DefaultIndexes, dropping any existing
// index on the same keys whose options differ.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	cursor, err := m.collection.Indexes().List(ctx)
	if err != nil {
		return shortener.Transient("list indexes", err)
	}

	var existing []bson.M
	if err = cursor.All(ctx, &existing); err != nil {
		return shortener.Transient("read indexes", err)
	}

	for _, index := range shortener.DefaultIndexes() {
		keys := indexKeys(index)

		if current := matchIndex(existing, keys); current != nil {
			if asBool(current["unique"]) == index.Unique && asBool(current["sparse"]) == index.Sparse {
				continue
			}

			name, _ := current["name"].(string)
			m.logger.Info("dropping index with stale options", zap.String("name", name))

			if _, err = m.collection.Indexes().DropOne(ctx, name); err != nil {
				return shortener.Transient("drop index "+name, err)
			}
		}

		name, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(index.Unique).SetSparse(index.Sparse),
		})
		if err != nil {
			return shortener.Transient("create index", err)
		}

		m.logger.Info("index ensured", zap.String("name", name))
	}

	return nil
}

// Ping checks MongoDB connectivity.
func (m *MongoStore) Ping(ctx context.Context) error {
	return m.collection.Database().Client().Ping(ctx, nil)
}

func indexKeys(index shortener.Index) bson.D {
	keys := make(bson.D, 0, len(index.Keys))

	for _, key := range index.Keys {
		keys = append(keys, bson.E{Key: key, Value: 1})
	}

	return keys
}

func matchIndex(existing []bson.M, keys bson.D) bson.M {
	for _, index := range existing {
		indexed, ok := index["key"].(bson.M)
		if !ok || len(indexed) != len(keys) {
			continue
		}

		matched := true

		for _, k := range keys {
			if _, ok := indexed[k.Key]; !ok {
				matched = false

				break
			}
		}

		if matched {
			return index
		}
	}

	return nil
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)

	return b
}
