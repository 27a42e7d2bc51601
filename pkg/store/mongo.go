package store

import (
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/fragmentgrid/pkg/cache"
	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

// MongoCollection is the collection holding fragment documents.
const MongoCollection = "fragments"

// optionalFields are the fragment fields that may be absent from a
// document. Saving a fragment unsets the ones it does not carry.
var optionalFields = []string{
	"notes", "tags", "direction",
	"show_content", "show_note", "show_tags",
	"created_at", "updated_at",
}

// mongoFragment is the stored shape: the fragment itself plus its layout
// state, in one document keyed by fragment id.
type mongoFragment struct {
	fragment.Fragment `bson:",inline"`

	Seq      int64              `bson:"seq"`
	Position *grid.Position     `bson:"position,omitempty"`
	Hint     fragment.Direction `bson:"hint,omitempty"`
}

// MongoStore keeps fragments in a MongoDB collection. Each fragment is one
// document that also carries its stored position and direction hint.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to uri and uses the named database. The server is
// pinged with retries before the store is returned.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if err := errors.ValidateURL(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(client.Ping(ctx, readpref.Primary()))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}
	return NewMongoStoreFromClient(client, database), nil
}

// NewMongoStoreFromClient wraps an existing client. Close disconnects it.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(MongoCollection),
		now:    time.Now,
	}
}

func (s *MongoStore) all(ctx context.Context) ([]mongoFragment, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, storeErr(err, "query fragments")
	}
	var docs []mongoFragment
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr(err, "decode fragments")
	}
	return docs, nil
}

func (s *MongoStore) Fragments(ctx context.Context) ([]fragment.Fragment, error) {
	docs, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]fragment.Fragment, len(docs))
	for i, d := range docs {
		out[i] = d.Fragment
	}
	return out, nil
}

func (s *MongoStore) Positions(ctx context.Context) (map[string]grid.Position, error) {
	docs, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]grid.Position)
	for _, d := range docs {
		if d.Position != nil {
			out[d.ID] = *d.Position
		}
	}
	return out, nil
}

func (s *MongoStore) Directions(ctx context.Context) (map[string]fragment.Direction, error) {
	docs, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]fragment.Direction)
	for _, d := range docs {
		if d.Hint != "" {
			out[d.ID] = d.Hint
		}
	}
	return out, nil
}

func (s *MongoStore) SaveFragments(ctx context.Context, frags []fragment.Fragment) error {
	if err := fragment.Validate(frags); err != nil {
		return err
	}
	now := s.now().UTC()

	models := make([]mongo.WriteModel, 0, len(frags))
	for i, f := range frags {
		f.UpdatedAt = now
		set, err := fieldsOf(f)
		if err != nil {
			return storeErr(err, "encode fragment %s", f.ID)
		}
		update := bson.M{"$set": set}

		setOnInsert := bson.M{"seq": now.UnixNano() + int64(i)}
		if f.CreatedAt.IsZero() {
			delete(set, "created_at")
			setOnInsert["created_at"] = now
		}
		update["$setOnInsert"] = setOnInsert

		unset := bson.M{}
		for _, name := range optionalFields {
			if _, ok := set[name]; !ok && setOnInsert[name] == nil {
				unset[name] = ""
			}
		}
		if len(unset) > 0 {
			update["$unset"] = unset
		}

		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": f.ID}).
			SetUpdate(update).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}
	_, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return storeErr(err, "save fragments")
}

func (s *MongoStore) DeleteFragment(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr(err, "delete fragment %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) ApplyPatch(ctx context.Context, patch map[string]grid.Position) error {
	if err := validatePatch(patch); err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}
	ids := make([]string, 0, len(patch))
	for id := range patch {
		ids = append(ids, id)
	}
	if err := s.requireAll(ctx, ids); err != nil {
		return err
	}

	models := make([]mongo.WriteModel, 0, len(patch))
	for id, p := range patch {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"position": p}}))
	}
	_, err := s.coll.BulkWrite(ctx, models)
	return storeErr(err, "apply patch")
}

func (s *MongoStore) SaveDirections(ctx context.Context, dirs map[string]fragment.Direction) error {
	if err := validateDirections(dirs); err != nil {
		return err
	}
	if len(dirs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(dirs))
	for id, d := range dirs {
		// No upsert: hints for unknown fragments are dropped.
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"hint": d}}))
	}
	_, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return storeErr(err, "save directions")
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the collection. Tests use it to clean up.
func (s *MongoStore) Drop(ctx context.Context) error {
	return storeErr(s.coll.Drop(ctx), "drop collection")
}

func (s *MongoStore) requireAll(ctx context.Context, ids []string) error {
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return storeErr(err, "lookup fragments")
	}
	var found []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &found); err != nil {
		return storeErr(err, "lookup fragments")
	}
	have := make(map[string]bool, len(found))
	for _, f := range found {
		have[f.ID] = true
	}
	slices.Sort(ids)
	for _, id := range ids {
		if !have[id] {
			return notFound(id)
		}
	}
	return nil
}

// fieldsOf encodes f to a flat field map without its _id.
func fieldsOf(f fragment.Fragment) (bson.M, error) {
	raw, err := bson.Marshal(f)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "_id")
	return m, nil
}

var _ Store = (*MongoStore)(nil)
