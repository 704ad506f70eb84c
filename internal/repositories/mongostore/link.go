// Package mongostore предоставляет реализацию репозитория коротких ссылок для MongoDB.
//
// Одна ссылка хранится одним документом, переходы лежат внутри него в массиве clicks.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories"
)

type LinkRepo struct {
	coll *mongo.Collection
}

func NewLinkRepo(database *mongo.Database) *LinkRepo {
	return &LinkRepo{coll: database.Collection(db.LinksCollection)}
}

func byCode(shortCode string) bson.D {
	return bson.D{{Key: "shortCode", Value: shortCode}}
}

func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	if link.Clicks == nil {
		link.Clicks = []models.Click{}
	}
	if _, err := r.coll.InsertOne(ctx, link); err != nil {
		return fmt.Errorf("failed to create record %s: %w", link.ShortCode, convertErrorType(err))
	}
	return nil
}

func (r *LinkRepo) Exists(ctx context.Context, shortCode string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, byCode(shortCode), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check record %s: %w", shortCode, convertErrorType(err))
	}
	return n > 0, nil
}

func (r *LinkRepo) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	var link models.Link
	if err := r.coll.FindOne(ctx, byCode(shortCode)).Decode(&link); err != nil {
		return nil, fmt.Errorf("failed to get record by short code %s: %w", shortCode, convertErrorType(err))
	}
	if link.Clicks == nil {
		link.Clicks = []models.Click{}
	}
	return &link, nil
}

// List сортирует по createdAt, при равенстве по _id: ObjectID растёт в порядке вставки.
func (r *LinkRepo) List(ctx context.Context, limit int) ([]models.Link, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.D{{Key: "clicks", Value: 0}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", convertErrorType(err))
	}
	links := make([]models.Link, 0, limit)
	if err = cur.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", convertErrorType(err))
	}
	return links, nil
}

func (r *LinkRepo) Delete(ctx context.Context, shortCode string) error {
	res, err := r.coll.DeleteOne(ctx, byCode(shortCode))
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", shortCode, convertErrorType(err))
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("record %s: %w", shortCode, repositories.ErrNotFound)
	}
	return nil
}

func (r *LinkRepo) SetActive(ctx context.Context, shortCode string, active bool) error {
	res, err := r.coll.UpdateOne(ctx, byCode(shortCode),
		bson.D{{Key: "$set", Value: bson.D{{Key: "isActive", Value: active}}}})
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", shortCode, convertErrorType(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("record %s: %w", shortCode, repositories.ErrNotFound)
	}
	return nil
}

// AppendClick одним pipeline-обновлением дописывает переход и пересчитывает totalClicks как $size массива.
// Переход передаётся через $literal, чтобы строки вида "$..." не читались как пути к полям.
func (r *LinkRepo) AppendClick(ctx context.Context, shortCode string, click *models.Click) (int, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "clicks", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$clicks", bson.A{}}}},
			bson.D{{Key: "$literal", Value: bson.A{click}}},
		}}}}}}},
		{{Key: "$set", Value: bson.D{{Key: "totalClicks", Value: bson.D{{Key: "$size", Value: "$clicks"}}}}}},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "totalClicks", Value: 1}})

	var res struct {
		TotalClicks int `bson:"totalClicks"`
	}
	if err := r.coll.FindOneAndUpdate(ctx, byCode(shortCode), update, opts).Decode(&res); err != nil {
		return 0, fmt.Errorf("failed to append click to %s: %w", shortCode, convertErrorType(err))
	}
	return res.TotalClicks, nil
}

func (r *LinkRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "expiresAt", Value: bson.D{{Key: "$lt", Value: before}}}})
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired records: %w", convertErrorType(err))
	}
	return res.DeletedCount, nil
}

func (r *LinkRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary()) //nolint:wrapcheck
}

func convertErrorType(err error) error {
	if err == nil {
		return nil
	}

	var nativeErr error
	switch {
	case mongo.IsDuplicateKeyError(err):
		nativeErr = repositories.ErrDuplicateKey
	case errors.Is(err, mongo.ErrNoDocuments):
		nativeErr = repositories.ErrNotFound
	default:
		nativeErr = repositories.ErrUnknown
	}
	return fmt.Errorf("%w: %s", nativeErr, err.Error())
}
