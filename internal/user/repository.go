package user

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrUsernameTaken 表示注册的用户名已被占用，原记录不受影响
	ErrUsernameTaken = errors.New("用户名已被占用")
	// ErrUserNotFound 表示按用户名查找的用户不存在
	ErrUserNotFound = errors.New("用户不存在")
	// ErrMissingUsername 表示写入的用户记录缺少用户名，写入被显式拒绝
	ErrMissingUsername = errors.New("用户记录缺少用户名")
)

// Repository 封装了用户集合的持久化操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 构造一个用户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser 创建新用户。用户名重复时返回ErrUsernameTaken，不触碰已有记录。
func (r *Repository) CreateUser(u *User) error {
	if u == nil || u.Username == "" {
		return ErrMissingUsername
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("无法检查用户名是否已存在: %w", err)
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		return tx.Create(u).Error
	})
}

// GetUser 按用户名查找用户
func (r *Repository) GetUser(username string) (*User, error) {
	var u User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
