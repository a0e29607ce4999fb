package user

import (
	"fmt"

	"github.com/MemeVerse/memeverse-backend/internal/platform/database"
)

// 模块单例，由PrimeModule构造
var (
	globalRepository *Repository
	globalService    *Service
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移user表: %w", err)
	}
	fmt.Println("User数据库表迁移成功。")
	return nil
}

// PrimeModule 是user模块的初始化总入口
func PrimeModule() error {
	if err := migrateDB(); err != nil {
		return err
	}
	globalRepository = NewRepository(database.DB)
	globalService = NewService(globalRepository)
	return nil
}
