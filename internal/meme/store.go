package meme

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 存储层的错误类型。调用方通过errors.Is区分"没有数据"和"存储不可用"。
var (
	// ErrInvalidRecord 表示写入的记录缺少主键，写入被显式拒绝
	ErrInvalidRecord = errors.New("记录缺少主键，写入被拒绝")
	// ErrNotFound 表示按主键查找的记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrStorageUnavailable 表示底层存储引擎不可用或操作失败
	ErrStorageUnavailable = errors.New("存储不可用")
)

// Store 是表情包集合的持久化存储接口。
// 通过接口注入存储后端：正常环境注入SQLite实现，无数据库的环境注入不可用实现，
// 后者的所有操作都返回ErrStorageUnavailable而不是静默返回空结果。
type Store interface {
	// PutMeme 插入或完整替换主键相同的表情包（包括内嵌的评论列表）
	PutMeme(m *Meme) error
	// GetMeme 按主键查找单个表情包
	GetMeme(id string) (*Meme, error)
	// GetAllMemes 返回全部表情包，按Date降序排列
	GetAllMemes() ([]Meme, error)
	// DeleteMeme 删除指定主键的表情包，不存在时是无操作
	DeleteMeme(id string) error
	// ClearAllMemes 清空表情包集合（管理/测试用途）
	ClearAllMemes() error
}

// NewStore 根据注入的数据库句柄构造存储实现。
// db为nil时返回不可用实现，保证调用方拿到的错误是明确的ErrStorageUnavailable。
func NewStore(db *gorm.DB) Store {
	if db == nil {
		return unavailableStore{}
	}
	return &gormStore{db: db}
}

// gormStore 是基于GORM+SQLite的Store实现
type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) PutMeme(m *Meme) error {
	if m == nil || m.ID == "" {
		return ErrInvalidRecord
	}
	// 点赞计数不允许为负，写入时归一化
	if m.Likes < 0 {
		m.Likes = 0
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 完整替换语义：旧评论全部删除后按新列表的顺序重新插入
		if err := tx.Where("meme_id = ?", m.ID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		for i := range m.Comments {
			m.Comments[i].ID = 0
			m.Comments[i].MemeID = m.ID
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *gormStore) GetMeme(id string) (*Meme, error) {
	if id == "" {
		return nil, ErrInvalidRecord
	}
	var m Meme
	err := s.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("comments.id ASC")
	}).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if m.Comments == nil {
		m.Comments = []Comment{}
	}
	return &m, nil
}

func (s *gormStore) GetAllMemes() ([]Meme, error) {
	var memes []Meme
	err := s.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("comments.id ASC")
	}).Order("date DESC").Find(&memes).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	for i := range memes {
		if memes[i].Comments == nil {
			memes[i].Comments = []Comment{}
		}
	}
	return memes, nil
}

func (s *gormStore) DeleteMeme(id string) error {
	if id == "" {
		return nil // 缺少主键等价于删除不存在的记录，无操作
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meme_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meme_id = ?", id).Delete(&Like{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Meme{}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *gormStore) ClearAllMemes() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Like{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Meme{}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// unavailableStore 在没有可用存储后端时注入。
// 它把"存储不可用"显式暴露给调用方，而不是伪装成空集合。
type unavailableStore struct{}

func (unavailableStore) PutMeme(*Meme) error            { return ErrStorageUnavailable }
func (unavailableStore) GetMeme(string) (*Meme, error)  { return nil, ErrStorageUnavailable }
func (unavailableStore) GetAllMemes() ([]Meme, error)   { return nil, ErrStorageUnavailable }
func (unavailableStore) DeleteMeme(string) error        { return ErrStorageUnavailable }
func (unavailableStore) ClearAllMemes() error           { return ErrStorageUnavailable }
