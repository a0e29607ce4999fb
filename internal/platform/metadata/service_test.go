package metadata

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 为每个测试创建一个独立的内存SQLite数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	if err := db.AutoMigrate(&Metadata{}); err != nil {
		t.Fatalf("无法迁移测试数据库: %v", err)
	}
	return db
}

func TestGetValueUnknownKey(t *testing.T) {
	db := newTestDB(t)

	value, err := GetValue(db, "从未写过的键")
	if err != nil {
		t.Fatalf("读取不存在的键不应报错: %v", err)
	}
	if value != "" {
		t.Fatalf("不存在的键应返回空字符串, 实际: %q", value)
	}
}

func TestSetValueUpserts(t *testing.T) {
	db := newTestDB(t)

	if err := SetValue(db, "k", "v1"); err != nil {
		t.Fatalf("首次SetValue失败: %v", err)
	}
	if err := SetValue(db, "k", "v2"); err != nil {
		t.Fatalf("更新SetValue失败: %v", err)
	}

	value, err := GetValue(db, "k")
	if err != nil {
		t.Fatalf("GetValue失败: %v", err)
	}
	if value != "v2" {
		t.Fatalf("重复写入应覆盖旧值, 实际: %q", value)
	}

	var count int64
	db.Model(&Metadata{}).Where("key = ?", "k").Count(&count)
	if count != 1 {
		t.Fatalf("同一个键应只有一行记录, 实际: %d", count)
	}
}

func TestLastTemplateSyncRoundTrip(t *testing.T) {
	db := newTestDB(t)

	// 从未同步过时返回零值
	got, err := GetLastTemplateSync(db)
	if err != nil {
		t.Fatalf("GetLastTemplateSync失败: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("未同步过时应返回零值, 实际: %v", got)
	}

	// RFC3339精度为秒，测试时间不带纳秒
	at := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	if err := SetLastTemplateSync(db, at); err != nil {
		t.Fatalf("SetLastTemplateSync失败: %v", err)
	}
	got, err = GetLastTemplateSync(db)
	if err != nil {
		t.Fatalf("GetLastTemplateSync失败: %v", err)
	}
	if !got.Equal(at) {
		t.Fatalf("期望 %v, 实际: %v", at, got)
	}

	// 再次同步应覆盖旧时间
	later := at.Add(6 * time.Hour)
	if err := SetLastTemplateSync(db, later); err != nil {
		t.Fatalf("SetLastTemplateSync失败: %v", err)
	}
	got, err = GetLastTemplateSync(db)
	if err != nil {
		t.Fatalf("GetLastTemplateSync失败: %v", err)
	}
	if !got.Equal(later) {
		t.Fatalf("期望 %v, 实际: %v", later, got)
	}
}
