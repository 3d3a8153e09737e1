// Package mongodb provides the document store wiring: client lifecycle,
// database handle and index bootstrap.
package mongodb

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"

	"chatline/config"
	"chatline/internal/domain/lifecycle"
)

const (
	usersCollection    = "users"
	chatsCollection    = "chats"
	messagesCollection = "messages"

	uniqueUsernameIndex = "uniq_username"
	uniqueEmailIndex    = "uniq_email"
)

// Params holds dependencies for the mongo database handle, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New connects to mongo, verifies the connection, bootstraps the collection
// indexes and ties client shutdown to the fx lifecycle.
func New(params Params) (*mongo.Database, error) {
	cfg := params.Config.Mongo
	if cfg == nil {
		return nil, errors.New("mongo configuration must be provided")
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.PingTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongo")
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, errors.Wrap(err, "failed to ping mongo")
	}

	db := client.Database(cfg.Database)

	if err := EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, errors.Wrap(err, "failed to ensure indexes")
	}

	params.Logger.Info("Connected to mongo", slog.String("database", cfg.Database))

	params.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
			defer cancel()

			params.Logger.Info("Disconnecting mongo client")

			return errors.WithStack(client.Disconnect(shutdownCtx))
		},
	})

	return db, nil
}

// EnsureIndexes creates the indexes the store schema relies on. The unique
// indexes on username and email enforce global uniqueness at the store layer,
// so a concurrent duplicate registration loses atomically instead of winning
// the check-then-create race.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(uniqueUsernameIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(uniqueEmailIndex).SetUnique(true),
		},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return errors.Wrap(err, "failed to create user indexes")
	}

	chatIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "participants", Value: 1}},
			Options: options.Index().SetName("idx_participants"),
		},
	}
	if _, err := db.Collection(chatsCollection).Indexes().CreateMany(ctx, chatIndexes); err != nil {
		return errors.Wrap(err, "failed to create chat indexes")
	}

	// Compound index on (chat, createdAt) to support history reads by the
	// messaging layer.
	messageIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "chat", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("idx_chat_created"),
		},
	}
	if _, err := db.Collection(messagesCollection).Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return errors.Wrap(err, "failed to create message indexes")
	}

	return nil
}
