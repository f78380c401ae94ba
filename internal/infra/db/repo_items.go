// Package db is the gorm/postgres MemoryItemStore backend.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"recall/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("database unavailable")

type ItemRepository struct {
	db *gorm.DB
}

// Open connects to postgres and migrates the memory_items table.
func Open(dsn string) (*ItemRepository, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := gdb.AutoMigrate(&MemoryItemModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &ItemRepository{db: gdb}, nil
}

func NewItemRepository(gdb *gorm.DB) *ItemRepository {
	return &ItemRepository{db: gdb}
}

func (r *ItemRepository) Write(ctx context.Context, item domain.MemoryItem) error {
	if r.db == nil {
		return errDBUnavailable
	}
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return err
	}
	model := MemoryItemModel{
		ID:        item.ID,
		Text:      item.Text,
		Tags:      tags,
		Scope:     string(item.Scope),
		Consent:   string(item.Consent),
		CreatedAt: item.CreatedAt,
		ExpiresAt: item.ExpiresAt,
		ReceiptID: item.ReceiptID,
		Revoked:   item.Revoked,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ItemRepository) Search(ctx context.Context, query string, tags []string, limit int) ([]domain.SearchResult, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if limit < 1 {
		limit = 1
	}
	if limit > domain.SearchLimitMax {
		limit = domain.SearchLimitMax
	}

	q := r.db.WithContext(ctx).
		Model(&MemoryItemModel{}).
		Where("revoked = false").
		Where("expires_at IS NULL OR expires_at > NOW()")

	match := r.db.Where("LOWER(text) LIKE ?", "%"+escapeLike(query)+"%")
	for _, tag := range tags {
		match = match.Or("tags @> ?", mustJSON(tag))
	}
	q = q.Where(match)

	var models []MemoryItemModel
	if err := q.Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(models))
	for _, m := range models {
		var itemTags []string
		if err := json.Unmarshal(m.Tags, &itemTags); err != nil {
			itemTags = nil
		}
		text := m.Text
		if len(text) > domain.SnippetLength {
			text = text[:domain.SnippetLength]
		}
		results = append(results, domain.SearchResult{
			ID:        m.ID,
			Snippet:   text,
			Tags:      itemTags,
			CreatedAt: m.CreatedAt,
		})
	}
	return results, nil
}

// Revoke is a single conditional UPDATE so that concurrent revokes of one
// item resolve to exactly one winner at the database.
func (r *ItemRepository) Revoke(ctx context.Context, itemID string) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	var receiptID string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&MemoryItemModel{}).
			Where("id = ? AND revoked = false", itemID).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var model MemoryItemModel
		if err := tx.Select("receipt_id").Where("id = ?", itemID).First(&model).Error; err != nil {
			return err
		}
		receiptID = model.ReceiptID
		return nil
	})
	if err != nil {
		return "", err
	}
	return receiptID, nil
}

// escapeLike neutralizes LIKE metacharacters in user queries.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, lowerByte(s[i]))
	}
	return string(out)
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

func mustJSON(v any) []byte {
	b, err := json.Marshal([]any{v})
	if err != nil {
		return []byte("[]")
	}
	return b
}

var _ domain.MemoryItemStore = (*ItemRepository)(nil)
