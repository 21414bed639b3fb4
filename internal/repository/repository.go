// Package repository persists RequirementRecords keyed by conversation id.
// The engine only needs a key-value/document contract: last write wins per
// conversation, no cross-session coordination.
package repository

import (
	"context"
	"fmt"

	"leasebot/internal/config"
	"leasebot/internal/model"
)

// Repository stores requirement records. Load returns (nil, nil) when the
// conversation has no stored record yet.
type Repository interface {
	Save(ctx context.Context, record *model.RequirementRecord) error
	Load(ctx context.Context, conversationID string) (*model.RequirementRecord, error)
	Close() error
}

// Open creates the repository selected by the store configuration.
func Open(ctx context.Context, cfg *config.StoreConfig) (Repository, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryRepository(), nil
	case "sqlite":
		return NewSQLiteRepository(cfg.SQLitePath)
	case "postgres":
		return NewPostgresRepository(cfg.PostgresDSN, cfg.MaxConnections, cfg.MaxIdleConnections)
	case "mongo":
		return NewMongoRepository(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
