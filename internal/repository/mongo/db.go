package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection. The initial connect can
	// succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	err = client.Ping(pingCtx, readpref.Primary())
	if err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureUserIndexes creates the unique email index.
func EnsureUserIndexes(ctx context.Context, coll *mongo.Collection) {
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}

// EnsurePostIndexes supports the reverse-chronological feed query per room.
func EnsurePostIndexes(ctx context.Context, coll *mongo.Collection) {
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chatRoom", Value: 1}, {Key: "timestamp", Value: -1}},
	})
}

// EnsureCommentIndexes supports listing comments per post.
func EnsureCommentIndexes(ctx context.Context, coll *mongo.Collection) {
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}, {Key: "timestamp", Value: 1}},
	})
}

// EnsureNotificationIndexes supports the per-recipient inbox query.
func EnsureNotificationIndexes(ctx context.Context, coll *mongo.Collection) {
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
}

// EnsureFieldIndexes supports listing a farmer's fields.
func EnsureFieldIndexes(ctx context.Context, coll *mongo.Collection) {
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
}

// EnsureFieldCostIndexes keys the per-field yearly cost totals.
func EnsureFieldCostIndexes(ctx context.Context, coll *mongo.Collection) {
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "fieldId", Value: 1}, {Key: "year", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}

// EnsureRainfallIndexes keys the monthly rainfall totals.
func EnsureRainfallIndexes(ctx context.Context, coll *mongo.Collection) {
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "year", Value: 1}, {Key: "month", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}

// EnsureUploadIndexes supports listing a user's uploads.
func EnsureUploadIndexes(ctx context.Context, coll *mongo.Collection) {
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "uploadedAt", Value: -1}},
	})
}
