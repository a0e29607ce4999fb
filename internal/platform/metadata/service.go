package metadata

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- 通用读写 ---

// GetValue 从metadata表读取指定键的值，键不存在时返回空字符串。
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue 写入或更新指定键的值。
// 使用OnConflict子句完成原子的upsert。
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- 类型化的辅助函数 ---

// GetLastTemplateSync 读取最近一次模板同步的时间，从未同步过时返回零值。
func GetLastTemplateSync(db *gorm.DB) (time.Time, error) {
	valueStr, err := GetValue(db, LastTemplateSyncKey)
	if err != nil {
		return time.Time{}, err
	}
	if valueStr == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastTemplateSyncKey, err)
	}
	return t, nil
}

// SetLastTemplateSync 记录最近一次模板同步的时间。
func SetLastTemplateSync(db *gorm.DB, t time.Time) error {
	return SetValue(db, LastTemplateSyncKey, t.Format(time.RFC3339))
}

// SetSeedCompletedAt 记录模板种子数据导入完成的时间。
func SetSeedCompletedAt(db *gorm.DB, t time.Time) error {
	return SetValue(db, SeedCompletedAtKey, t.Format(time.RFC3339))
}
