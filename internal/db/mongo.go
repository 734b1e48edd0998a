// Package db is the persistence gateway: it owns the process-wide mongo
// client and hands out named collection handles. No business logic lives here.
package db

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ChatCollection    = "chat"
	MessageCollection = "message"
	UserCollection    = "user"
	ItemCollection    = "item"
)

// Collection is the slice of *mongo.Collection the repositories use.
// Keeping it narrow lets tests stand in for storage with in-memory fakes.
type Collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Collections hands out named collection handles. The Gateway is the real
// implementation.
type Collections interface {
	Collection(ctx context.Context, name string) (Collection, error)
}

type Gateway struct {
	uri    string
	dbName string

	mu     sync.Mutex
	client *mongo.Client
}

func NewGateway(uri, dbName string) *Gateway {
	return &Gateway{uri: uri, dbName: dbName}
}

// connect establishes the client on first use; all operations share it.
func (g *Gateway) connect(ctx context.Context) (*mongo.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(g.uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	g.client = client
	return g.client, nil
}

func (g *Gateway) Collection(ctx context.Context, name string) (Collection, error) {
	client, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(g.dbName).Collection(name), nil
}

func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Disconnect(ctx)
	g.client = nil
	return err
}
