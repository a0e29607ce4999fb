package user

import "time"

// User 定义了用户在SQLite数据库中的持久化模型。
// Username是主键。密码只保存bcrypt哈希，任何接口都不返回它。
type User struct {
	Username     string `gorm:"primarykey;type:varchar(64)" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`

	// 可选的资料字段
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
