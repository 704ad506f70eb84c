package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/repositories/memstore"
	"github.com/fsdevblog/shortlinks/internal/repositories/mongostore"
	"github.com/fsdevblog/shortlinks/internal/repositories/pg"
	"github.com/fsdevblog/shortlinks/internal/repositories/sql"
)

type Services struct {
	LinkService *LinkService
	PingService *PingService
}

// Factory собирает сервисы поверх подключения, полученного из db.NewConnectionFactory.
func Factory(conn any, sType db.StorageType, opts ...Option) (*Services, error) {
	repo, err := NewRepository(conn, sType)
	if err != nil {
		return nil, err
	}
	return &Services{
		LinkService: NewLinkService(repo, opts...),
		PingService: NewPingService(repo),
	}, nil
}

// NewRepository выбирает реализацию репозитория по типу хранилища.
func NewRepository(conn any, sType db.StorageType) (LinkRepository, error) {
	switch sType {
	case db.StorageTypeSQLite:
		gormDB, ok := conn.(*gorm.DB)
		if !ok {
			return nil, errors.New("invalid connection type. expected *gorm.DB")
		}
		return sql.NewLinkRepo(gormDB), nil
	case db.StorageTypePostgres:
		pool, ok := conn.(*pgxpool.Pool)
		if !ok {
			return nil, errors.New("invalid connection type. expected *pgxpool.Pool")
		}
		return pg.NewLinkRepo(pool), nil
	case db.StorageTypeMongo:
		database, ok := conn.(*mongo.Database)
		if !ok {
			return nil, errors.New("invalid connection type. expected *mongo.Database")
		}
		return mongostore.NewLinkRepo(database), nil
	case db.StorageTypeInMemory:
		store, ok := conn.(*db.MemoryStorage)
		if !ok {
			return nil, errors.New("invalid connection type. expected *db.MemoryStorage")
		}
		return memstore.NewLinkRepo(store), nil
	default:
		return nil, fmt.Errorf("unknown service type: %s", sType)
	}
}
