package meme

import "time"

// Meme 定义了表情包在SQLite数据库中的持久化模型。
// ID使用字符串主键：上传的表情包使用毫秒时间戳，模板服务导入的使用服务商分配的ID。
type Meme struct {
	ID       string `gorm:"primarykey;type:varchar(64)" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	ImageURL string `json:"imageUrl"`

	// User 是上传者的用户名。只作署名用，不强制外键约束。
	User string `gorm:"index" json:"user"`

	// Likes 是点赞计数，任何时刻都不会为负。
	Likes int `json:"likes"`

	// Category 是自由文本分类，例如 "Random"
	Category string `json:"category"`

	// Date 是创建时间，排序的依据
	Date time.Time `gorm:"index" json:"date"`

	// Comments 按插入顺序追加，读取时按自增ID升序返回
	Comments []Comment `gorm:"foreignKey:MemeID;constraint:OnDelete:CASCADE" json:"comments"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Comment 定义了内嵌于表情包的评论。
// 自增ID同时充当追加顺序，不单独建集合。
type Comment struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	MemeID    string    `gorm:"index;not null;type:varchar(64)" json:"-"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
}

// Like 记录了"某用户赞过某表情包"的关系，保证每人每图至多一个赞。
// Redis中的 user:liked:* 集合是这张表的缓存。
type Like struct {
	Username  string `gorm:"primaryKey;type:varchar(64)"`
	MemeID    string `gorm:"primaryKey;type:varchar(64)"`
	CreatedAt time.Time
}
