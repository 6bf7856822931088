package storage

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/fixbot/internal/config"
	"github.com/ziadkadry99/fixbot/internal/db"
)

// Open returns the Backend selected by cfg. The sqlite driver stores
// blobs in database, which must be non-nil for that driver.
func Open(ctx context.Context, cfg config.StorageConfig, database *db.DB) (Backend, error) {
	switch cfg.Driver {
	case config.StorageSQLite, "":
		if database == nil {
			return nil, fmt.Errorf("sqlite storage needs an open database")
		}
		return NewSQLite(database), nil
	case config.StorageRedis:
		return DialRedis(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case config.StorageMongo:
		return DialMongo(ctx, MongoOptions{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	case config.StorageMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
