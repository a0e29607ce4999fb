package user

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/platform/config"
	"github.com/MemeVerse/memeverse-backend/internal/platform/database"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionKeyPrefix 是Redis中会话记录的键名前缀。
	// Key: session:<sessionID>
	// Value: username
	SessionKeyPrefix = "session:"
)

// ErrSessionInvalid 表示会话令牌无效、过期或已被注销
var ErrSessionInvalid = errors.New("会话无效或已过期")

// secretKey 是服务器在启动时生成的32字节签名密钥。
// 重启后旧令牌全部失效，用户需要重新登录。
var secretKey []byte

// sessionTTL 是会话的有效期，来自配置
var sessionTTL = 7 * 24 * time.Hour

// SessionClaims 是会话JWT中携带的声明
type SessionClaims struct {
	Username  string `json:"username"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("会话签名密钥已成功生成。")
}

// ConfigureModule 应用认证相关的配置
func ConfigureModule(cfg config.AuthConfig) {
	if cfg.SessionTTL > 0 {
		sessionTTL = cfg.SessionTTL
	}
}

// CreateSession 为登录成功的用户创建会话：
// 在Redis中登记会话ID（可随注销撤销），并签发携带该ID的JWT。
func CreateSession(username string) (string, error) {
	sessionID := uuid.NewString()

	if err := database.RDB.Set(database.Ctx, SessionKeyPrefix+sessionID, username, sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("无法在Redis中登记会话: %w", err)
	}

	now := time.Now()
	claims := SessionClaims{
		Username:  username,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("无法签发会话令牌: %w", err)
	}
	return signed, nil
}

// parseSessionToken 校验令牌签名与有效期，返回其中的声明
func parseSessionToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名算法: %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrSessionInvalid
	}
	return claims, nil
}

// ValidateSession 校验会话令牌，返回对应的用户名。
// Redis健康时额外校验会话是否已被注销；降级时仅凭签名和有效期放行。
func ValidateSession(tokenStr string) (string, error) {
	claims, err := parseSessionToken(tokenStr)
	if err != nil {
		return "", err
	}

	if database.IsRedisHealthy() {
		stored, err := database.RDB.Get(database.Ctx, SessionKeyPrefix+claims.SessionID).Result()
		if err != nil || stored != claims.Username {
			return "", ErrSessionInvalid
		}
	}
	return claims.Username, nil
}

// DestroySession 注销一个会话，使其立刻失效
func DestroySession(tokenStr string) error {
	claims, err := parseSessionToken(tokenStr)
	if err != nil {
		return err
	}
	return database.RDB.Del(database.Ctx, SessionKeyPrefix+claims.SessionID).Err()
}
