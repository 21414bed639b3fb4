package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"leasebot/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS requirement_records (
	conversation_id TEXT PRIMARY KEY,
	budget          TEXT,
	total_size      TEXT,
	property_type   TEXT,
	city            TEXT,
	additional      JSONB NOT NULL DEFAULT '{}',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
)
`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Save upserts the record under its conversation id.
func (r *PostgresRepository) Save(ctx context.Context, record *model.RequirementRecord) error {
	additional, err := json.Marshal(record.Additional)
	if err != nil {
		return fmt.Errorf("failed to encode additional fields: %w", err)
	}
	query := `
		INSERT INTO requirement_records
			(conversation_id, budget, total_size, property_type, city, additional, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (conversation_id) DO UPDATE SET
			budget = EXCLUDED.budget,
			total_size = EXCLUDED.total_size,
			property_type = EXCLUDED.property_type,
			city = EXCLUDED.city,
			additional = EXCLUDED.additional,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		record.ConversationID,
		nullable(record, model.FieldBudget),
		nullable(record, model.FieldTotalSize),
		nullable(record, model.FieldPropertyType),
		nullable(record, model.FieldCity),
		string(additional),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Load fetches the record, or returns (nil, nil) when absent.
func (r *PostgresRepository) Load(ctx context.Context, conversationID string) (*model.RequirementRecord, error) {
	query := `
		SELECT conversation_id, budget, total_size, property_type, city, additional, created_at, updated_at
		FROM requirement_records
		WHERE conversation_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, conversationID)
	return scanRecord(row)
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
