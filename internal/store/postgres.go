package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collection is one persisted KV row. The journal's entry array is stored
// as a single JSON value per key, mirroring the Redis backend.
type Collection struct {
	Key       string    `gorm:"primaryKey;size:200"`
	Value     []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Collection model
func (Collection) TableName() string {
	return "collections"
}

// Postgres is a KV backed by a Postgres table through gorm
type Postgres struct {
	db *gorm.DB
}

// NewPostgres creates a Postgres-backed KV and ensures its table exists
func NewPostgres(db *gorm.DB) (*Postgres, error) {
	if err := db.AutoMigrate(&Collection{}); err != nil {
		return nil, fmt.Errorf("migrate collections table: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Load implements KV
func (p *Postgres) Load(ctx context.Context, key string) ([]byte, error) {
	var row Collection
	result := p.db.WithContext(ctx).First(&row, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres load %q: %w", key, result.Error)
	}
	return row.Value, nil
}

// Save implements KV as an upsert on the key
func (p *Postgres) Save(ctx context.Context, key string, value []byte) error {
	row := Collection{Key: key, Value: value}
	result := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("postgres save %q: %w", key, result.Error)
	}
	return nil
}
