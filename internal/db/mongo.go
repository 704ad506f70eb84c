package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// LinksCollection коллекция с короткими ссылками. Переходы хранятся внутри документа ссылки.
const LinksCollection = "shorturls"

// NewMongoConnection подключается к MongoDB и проверяет доступность сервера.
func NewMongoConnection(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}
	if pingErr := client.Ping(ctx, readpref.Primary()); pingErr != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", pingErr)
	}
	return client.Database(database), nil
}

// MigrateMongo создает индексы коллекции ссылок.
func MigrateMongo(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(LinksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shortCode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
	})
	return err //nolint:wrapcheck
}
