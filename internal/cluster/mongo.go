package cluster

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dropDatabas3/tenantplane/internal/domain"
)

// DialMongo establece una conexión MongoDB real.
func DialMongo(ctx context.Context, uri string) (Conn, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	// Connect no valida la topología: un ping confirma que el cluster responde
	// antes de memoizar la conexión.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &mongoConn{client: client}, nil
}

type mongoConn struct {
	client *mongo.Client
}

func (c *mongoConn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *mongoConn) Database(name string) Database {
	return &mongoDatabase{db: c.client.Database(name)}
}

func (c *mongoConn) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

type mongoDatabase struct {
	db *mongo.Database
}

func (d *mongoDatabase) Name() string { return d.db.Name() }

func (d *mongoDatabase) CreateCollection(ctx context.Context, name string) error {
	err := d.db.CreateCollection(ctx, name)
	if err == nil {
		return nil
	}
	if isNamespaceExists(err) {
		return fmt.Errorf("%s: %w", name, ErrCollectionExists)
	}
	return err
}

// isNamespaceExists detecta el error NamespaceExists (code 48) del servidor.
func isNamespaceExists(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Code == 48 || ce.Name == "NamespaceExists"
	}
	return false
}

func (d *mongoDatabase) ListCollectionNames(ctx context.Context) ([]string, error) {
	return d.db.ListCollectionNames(ctx, bson.D{})
}

func (d *mongoDatabase) InsertOne(ctx context.Context, collection string, doc any) error {
	_, err := d.db.Collection(collection).InsertOne(ctx, doc)
	return err
}

func (d *mongoDatabase) UpsertOne(ctx context.Context, collection string, filter map[string]any, doc any) error {
	_, err := d.db.Collection(collection).ReplaceOne(ctx, bson.M(filter), doc, options.Replace().SetUpsert(true))
	return err
}

func (d *mongoDatabase) FindOne(ctx context.Context, collection string, filter map[string]any, out any) error {
	err := d.db.Collection(collection).FindOne(ctx, bson.M(filter)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}

func (d *mongoDatabase) FindAll(ctx context.Context, collection string, filter map[string]any, out any) error {
	cur, err := d.db.Collection(collection).Find(ctx, bson.M(filter))
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (d *mongoDatabase) UpdateOne(ctx context.Context, collection string, filter map[string]any, set map[string]any) error {
	res, err := d.db.Collection(collection).UpdateOne(ctx, bson.M(filter), bson.M{"$set": bson.M(set)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (d *mongoDatabase) DeleteOne(ctx context.Context, collection string, filter map[string]any) error {
	res, err := d.db.Collection(collection).DeleteOne(ctx, bson.M(filter))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (d *mongoDatabase) Drop(ctx context.Context) error {
	return d.db.Drop(ctx)
}
