package meme

import (
	"fmt"

	"github.com/MemeVerse/memeverse-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Meme{}, &Comment{}, &Like{}); err != nil {
		return fmt.Errorf("无法迁移meme表: %w", err)
	}
	fmt.Println("Meme数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQLite重建Redis中的点赞排行ZSET和每个用户的点赞集合。
// 应用启动、Redis重启恢复和定期对账都会调用它。
func WarmupCache() error {
	var memes []Meme
	if err := database.DB.Select("id", "likes").Find(&memes).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取表情包数据: %w", err)
	}
	var likes []Like
	if err := database.DB.Find(&likes).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取点赞关系: %w", err)
	}

	// 先清空旧的用户点赞集合，避免残留已取消的赞
	if err := deleteKeysByPrefix(database.Ctx, database.RDB, likedSetKeyPrefix); err != nil {
		return fmt.Errorf("无法清理旧的点赞集合: %w", err)
	}

	pipe := database.RDB.TxPipeline()
	pipe.Del(database.Ctx, LikesRankingKey)
	for _, m := range memes {
		pipe.ZAdd(database.Ctx, LikesRankingKey, redis.Z{
			Score:  float64(m.Likes),
			Member: m.ID,
		})
	}
	for _, l := range likes {
		pipe.SAdd(database.Ctx, LikedSetKey(l.Username), l.MemeID)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热点赞缓存到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个表情包的排行数据和 %d 条点赞关系到Redis。\n", len(memes), len(likes))
	return nil
}

// PrimeCachedDB 负责初始化meme模块的数据库、仓库单例和Redis缓存
func PrimeCachedDB() error {
	// 1. 迁移数据库表结构
	if err := migrateDB(); err != nil {
		return err
	}
	// 2. 构造仓库单例
	InitializeRepository()
	// 3. 将点赞数据预热到Redis
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
