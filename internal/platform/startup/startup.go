package startup

import (
	"fmt"

	"github.com/MemeVerse/memeverse-backend/internal/meme"
	"github.com/MemeVerse/memeverse-backend/internal/platform/metadata"
	"github.com/MemeVerse/memeverse-backend/internal/template"
	"github.com/MemeVerse/memeverse-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := user.PrimeModule(); err != nil {
		return err
	}
	if err := meme.PrimeCachedDB(); err != nil {
		return err
	}

	// 表情包集合为空时从模板服务导入初始信息流。
	// 模板服务不可用不阻塞启动，信息流保持为空直到同步工作器补上。
	if err := template.SeedIfEmpty(); err != nil {
		fmt.Printf("警告: 模板种子数据导入失败: %v\n", err)
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// Redis重启恢复和定期对账都会走这里。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := meme.WarmupCache(); err != nil {
		return err
	}

	// 会话和点赞集合：会话随Redis丢失，用户重新登录即可；
	// 点赞集合已在WarmupCache中从SQLite恢复。
	fmt.Println("缓存热重建完成。")
	return nil
}
