package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBlobStore is the self-hosted backend: same content-addressed contract
// as the Walrus client, backed by a Mongo collection keyed on the content id.
// Upserts make repeat Puts of identical bytes a no-op, matching the
// idempotence the interface promises.
type MongoBlobStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoBlobStore(ctx context.Context, uri, dbName, collName string) (*MongoBlobStore, error) {
	if uri == "" {
		return nil, errors.New("storage: mongo uri is empty")
	}
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(pctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &MongoBlobStore{
		client: cli,
		coll:   cli.Database(dbName).Collection(collName),
	}, nil
}

func (m *MongoBlobStore) Put(ctx context.Context, data []byte) (string, error) {
	id := ContentID(data)
	_, err := m.coll.UpdateByID(
		ctx,
		id,
		bson.M{
			"$set":         bson.M{"data": data},
			"$setOnInsert": bson.M{"createdAt": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return id, nil
}

func (m *MongoBlobStore) Get(ctx context.Context, id string) ([]byte, error) {
	var doc struct {
		Data []byte `bson:"data"`
	}
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return doc.Data, nil
}

func (m *MongoBlobStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return n > 0, nil
}

func (m *MongoBlobStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
