package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on the managed MongoDB backend.
// RunTransaction maps onto session transactions, which is what gives the
// challenge-accept path its read-check-write atomicity across sessions.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if dbName == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := validateKey(collection, id); err != nil {
		return nil, err
	}

	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		return nil, translateMongoErr(collection, id, err)
	}

	delete(raw, "_id")
	return NormalizeDocument(raw), nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc Document) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}

	_, err := s.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"_id": id},
		bson.M(doc),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return translateMongoErr(collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Document) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}

	res, err := s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M(fields)},
	)
	if err != nil {
		return translateMongoErr(collection, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}

	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return translateMongoErr(collection, id, err)
	}
	return nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, q Query) ([]Entry, error) {
	filter := bson.M{}
	for _, f := range q.Filters {
		switch f.Op {
		case OpEqual:
			filter[f.Field] = f.Value
		case OpNotEqual:
			filter[f.Field] = bson.M{"$ne": f.Value}
		case OpLess:
			filter[f.Field] = bson.M{"$lt": f.Value}
		case OpLessEq:
			filter[f.Field] = bson.M{"$lte": f.Value}
		case OpGreater:
			filter[f.Field] = bson.M{"$gt": f.Value}
		case OpGreaterEq:
			filter[f.Field] = bson.M{"$gte": f.Value}
		default:
			return nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}

	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, translateMongoErr(collection, "", err)
	}
	defer cursor.Close(ctx)

	var out []Entry
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}

		docID, _ := raw["_id"].(string)
		delete(raw, "_id")
		out = append(out, Entry{ID: docID, Doc: NormalizeDocument(raw)})
	}
	if err := cursor.Err(); err != nil {
		return nil, translateMongoErr(collection, "", err)
	}

	return out, nil
}

func (s *MongoStore) BatchSet(ctx context.Context, collection string, entries []Entry) error {
	for start := 0; start < len(entries); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(entries) {
			end = len(entries)
		}

		models := make([]mongo.WriteModel, 0, end-start)
		for _, e := range entries[start:end] {
			if err := validateKey(collection, e.ID); err != nil {
				return err
			}
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": e.ID}).
				SetReplacement(bson.M(e.Doc)).
				SetUpsert(true))
		}

		_, err := s.db.Collection(collection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
		if err != nil {
			return translateMongoErr(collection, "", err)
		}
	}
	return nil
}

func (s *MongoStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", ErrTransient, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc, s)
	})
	if err != nil {
		return translateMongoErr("", "", err)
	}
	return nil
}

func translateMongoErr(collection, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case err == mongo.ErrNoDocuments:
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		if cmdErr.HasErrorLabel("TransientTransactionError") ||
			cmdErr.HasErrorLabel("UnknownTransactionCommitResult") {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}

	// Domain errors raised inside a transaction callback pass through
	// untouched so callers can match their own sentinels.
	return err
}
