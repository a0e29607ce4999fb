package meme

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"strconv"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/platform/database"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// actionKeyPrefix 是Redis中限流有序集合的键名前缀
	actionKeyPrefix = "ip_actions:"
)

// generateUniqueID 根据给定的时间生成一个16字节的、抗冲突的ID，并将其编码为Base64字符串。
// 结构: [ 8字节纳秒时间戳 (Big Endian) | 8字节随机数 ]
func generateUniqueID(t time.Time) (string, error) {
	b := make([]byte, 16)

	// 1. 写入8字节的纳秒时间戳
	timestamp := uint64(t.UnixNano())
	binary.BigEndian.PutUint64(b[0:8], timestamp)

	// 2. 写入8字节的随机数
	_, err := rand.Read(b[8:16])
	if err != nil {
		return "", err
	}

	// 3. 使用URL安全的Base64编码，没有padding，更紧凑
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AllowIPAction 基于Redis ZSET滑动窗口，判断来自某IP的某类操作是否还在频率限制内。
// 返回true表示放行并已记账。
func AllowIPAction(ip, action string, limit int64, window time.Duration) (bool, error) {
	now := time.Now()
	key := actionKeyPrefix + action + ":" + ip
	windowStart := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	// 1. 清理窗口外的旧记录并统计当前窗口内的次数
	pipe := database.RDB.TxPipeline()
	pipe.ZRemRangeByScore(database.Ctx, key, "0", windowStart)
	countCmd := pipe.ZCard(database.Ctx, key)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return false, err
	}
	if countCmd.Val() >= limit {
		return false, nil
	}

	// 2. 记账本次操作
	member, err := generateUniqueID(now)
	if err != nil {
		return false, err
	}
	record := database.RDB.TxPipeline()
	record.ZAdd(database.Ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	record.Expire(database.Ctx, key, window+time.Minute) // 比窗口稍长以作缓冲
	if _, err := record.Exec(database.Ctx); err != nil {
		return false, err
	}
	return true, nil
}

// RateLimitMiddleware 返回一个按IP限流的Gin中间件。
// Redis降级或限流器自身故障时直接放行，限流不应成为业务的单点。
func RateLimitMiddleware(action string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !database.IsRedisHealthy() {
			c.Next()
			return
		}
		allowed, err := AllowIPAction(c.ClientIP(), action, limit, window)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "操作过于频繁，请稍后再试"})
			return
		}
		c.Next()
	}
}
