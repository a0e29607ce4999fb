package meme

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// --- Redis 键名常量 ---

const (
	// LikesRankingKey 是一个 Redis Sorted Set 的键，用于按点赞数实时排序表情包。
	// Score: 点赞数
	// Member: 表情包ID
	LikesRankingKey = "meme:likes"

	// likedSetKeyPrefix 是每个用户"赞过的表情包"集合的键名前缀。
	// Key: user:liked:<username>
	// Member: 表情包ID
	likedSetKeyPrefix = "user:liked:"
)

// LikedSetKey 返回指定用户的点赞集合键名
func LikedSetKey(username string) string {
	return likedSetKeyPrefix + username
}

// deleteKeysByPrefix 是一个辅助函数，用于安全地按前缀删除key
func deleteKeysByPrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	var cursor uint64
	matchPattern := prefix + "*"
	const batchSize = 500 // 每次SCAN和DEL的数量

	for {
		keys, nextCursor, err := rdb.Scan(ctx, cursor, matchPattern, batchSize).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}
