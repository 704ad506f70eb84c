package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type StorageType string

const (
	StorageTypeInMemory StorageType = "inMemory"
	StorageTypeSQLite   StorageType = "sqlite"
	StorageTypePostgres StorageType = "postgres"
	StorageTypeMongo    StorageType = "mongo"
)

// ParseStorageType проверяет, что строка описывает поддерживаемое хранилище.
func ParseStorageType(s string) (StorageType, error) {
	switch st := StorageType(s); st {
	case StorageTypeInMemory, StorageTypeSQLite, StorageTypePostgres, StorageTypeMongo:
		return st, nil
	default:
		return "", fmt.Errorf("unknown storage type: %s", s)
	}
}

type FactoryConfig struct {
	StorageType   StorageType
	PostgresDSN   *string
	SqliteDBPath  *string
	MongoURI      *string
	MongoDatabase string
}

// NewConnectionFactory открывает подключение к выбранному хранилищу и приводит схему в актуальное
// состояние. Возвращает *MemoryStorage, *gorm.DB, *pgxpool.Pool или *mongo.Database.
func NewConnectionFactory(ctx context.Context, config FactoryConfig) (any, error) {
	switch config.StorageType {
	case StorageTypePostgres:
		if config.PostgresDSN == nil || *config.PostgresDSN == "" {
			return nil, errors.New("postgres dsn is empty")
		}
		pool, err := NewPostgresConnection(ctx, *config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres connection: %w", err)
		}
		if migrateErr := MigratePostgres(ctx, pool); migrateErr != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", migrateErr)
		}
		return pool, nil
	case StorageTypeSQLite:
		if config.SqliteDBPath == nil || *config.SqliteDBPath == "" {
			return nil, errors.New("sqlite path is empty")
		}
		conn, err := NewSQLite(*config.SqliteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite connection: %w", err)
		}
		return conn, nil
	case StorageTypeMongo:
		if config.MongoURI == nil || *config.MongoURI == "" {
			return nil, errors.New("mongo uri is empty")
		}
		database, err := NewMongoConnection(ctx, *config.MongoURI, config.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to create mongo connection: %w", err)
		}
		if indexErr := MigrateMongo(ctx, database); indexErr != nil {
			_ = database.Client().Disconnect(ctx)
			return nil, fmt.Errorf("failed to create mongo indexes: %w", indexErr)
		}
		return database, nil
	case StorageTypeInMemory:
		return NewMemStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}

// Close закрывает подключение, полученное из NewConnectionFactory.
func Close(ctx context.Context, conn any) error {
	switch c := conn.(type) {
	case *gorm.DB:
		sqlDB, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql db: %w", err)
		}
		return sqlDB.Close() //nolint:wrapcheck
	case *pgxpool.Pool:
		c.Close()
		return nil
	case *mongo.Database:
		return c.Client().Disconnect(ctx) //nolint:wrapcheck
	case *MemoryStorage:
		return nil
	default:
		return fmt.Errorf("unknown connection type %T", conn)
	}
}
