package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry 是 kv_entries 表的一行
type Entry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "kv_entries"
}

// GormCache 把缓存落到数据库里，进程重启后仍然可读
type GormCache struct {
	db *gorm.DB
}

func NewGormCache(db *gorm.DB) *GormCache {
	return &GormCache{db: db}
}

// Migrate creates the kv_entries table.
func (c *GormCache) Migrate() error {
	return c.db.AutoMigrate(&Entry{})
}

func (c *GormCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	val, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := Entry{Key: key, Value: string(val), UpdatedAt: time.Now()}
	if ttl > 0 {
		expires := time.Now().Add(ttl)
		entry.ExpiresAt = &expires
	}

	// UPSERT: 最后一次写入覆盖之前的值
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

func (c *GormCache) Get(ctx context.Context, key string, target interface{}) error {
	var entry Entry
	err := c.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if entry.ExpiresAt != nil && time.Now().After(*entry.ExpiresAt) {
		return ErrCacheMiss
	}
	return json.Unmarshal([]byte(entry.Value), target)
}

func (c *GormCache) Delete(ctx context.Context, key string) error {
	return c.db.WithContext(ctx).Where("key = ?", key).Delete(&Entry{}).Error
}
