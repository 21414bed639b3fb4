package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"leasebot/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS requirement_records (
	conversation_id TEXT PRIMARY KEY,
	budget          TEXT,
	total_size      TEXT,
	property_type   TEXT,
	city            TEXT,
	additional      TEXT NOT NULL DEFAULT '{}',
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
`

// SQLiteRepository stores records in an embedded SQLite database. The pure-Go
// driver keeps the binary free of cgo.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (and if needed creates) the database file.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Single writer avoids SQLITE_BUSY under concurrent sessions.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Save upserts the record under its conversation id.
func (r *SQLiteRepository) Save(ctx context.Context, record *model.RequirementRecord) error {
	additional, err := json.Marshal(record.Additional)
	if err != nil {
		return fmt.Errorf("failed to encode additional fields: %w", err)
	}
	query := `
		INSERT INTO requirement_records
			(conversation_id, budget, total_size, property_type, city, additional, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			budget = excluded.budget,
			total_size = excluded.total_size,
			property_type = excluded.property_type,
			city = excluded.city,
			additional = excluded.additional,
			updated_at = excluded.updated_at
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
func (r *SQLiteRepository) Load(ctx context.Context, conversationID string) (*model.RequirementRecord, error) {
	query := `
		SELECT conversation_id, budget, total_size, property_type, city, additional, created_at, updated_at
		FROM requirement_records
		WHERE conversation_id = ?
	`
	row := r.db.QueryRowContext(ctx, query, conversationID)
	return scanRecord(row)
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// rowScanner covers *sql.Row and *sqlx.Row alike.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.RequirementRecord, error) {
	var (
		id         string
		budget     sql.NullString
		totalSize  sql.NullString
		propType   sql.NullString
		city       sql.NullString
		additional string
		createdAt  time.Time
		updatedAt  time.Time
	)
	err := row.Scan(&id, &budget, &totalSize, &propType, &city, &additional, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	record := model.NewRequirementRecord(id)
	record.CreatedAt = createdAt
	record.UpdatedAt = updatedAt
	setNullable(record, model.FieldBudget, budget)
	setNullable(record, model.FieldTotalSize, totalSize)
	setNullable(record, model.FieldPropertyType, propType)
	setNullable(record, model.FieldCity, city)
	if err := json.Unmarshal([]byte(additional), &record.Additional); err != nil {
		return nil, fmt.Errorf("failed to decode additional fields: %w", err)
	}
	normalizeAdditional(record.Additional)
	return record, nil
}

func nullable(record *model.RequirementRecord, field string) sql.NullString {
	if value := record.RequiredValue(field); value != "" {
		return sql.NullString{String: value, Valid: true}
	}
	return sql.NullString{}
}

func setNullable(record *model.RequirementRecord, field string, value sql.NullString) {
	if value.Valid {
		v := value.String
		record.Required[field] = &v
	}
}

// normalizeAdditional restores integer typing lost to JSON round-tripping.
func normalizeAdditional(additional map[string]any) {
	for key, value := range additional {
		if f, ok := value.(float64); ok && f == float64(int(f)) {
			additional[key] = int(f)
		}
	}
}
