package meme

import (
	"errors"
	"fmt"

	"github.com/MemeVerse/memeverse-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 互动操作的错误类型
var (
	// ErrAlreadyLiked 表示该用户已经赞过这个表情包
	ErrAlreadyLiked = errors.New("已经赞过这个表情包")
	// ErrNotLiked 表示该用户尚未赞过这个表情包，无法取消
	ErrNotLiked = errors.New("尚未赞过这个表情包")
)

// Repository 是所有调用方访问表情包数据的唯一入口。
// CRUD操作委托给注入的Store；点赞/评论等互动操作直接使用数据库事务，
// 并尽力维护Redis中的点赞排行与用户点赞集合缓存。
type Repository struct {
	store Store
	db    *gorm.DB
	rdb   *redis.Client
}

// NewRepository 构造一个仓库。rdb可以为nil，此时跳过全部缓存维护。
func NewRepository(store Store, db *gorm.DB, rdb *redis.Client) *Repository {
	return &Repository{store: store, db: db, rdb: rdb}
}

// globalRepository 是本模块的私有单例实例，由InitializeRepository构造
var globalRepository *Repository

// InitializeRepository 使用全局数据库句柄构造模块单例。
// 这个函数应该在应用启动时且仅调用一次。
func InitializeRepository() {
	globalRepository = NewRepository(NewStore(database.DB), database.DB, database.RDB)
	fmt.Println("表情包仓库 (Repository) 初始化成功。")
}

// Repo 返回模块单例，供template/upload等模块写入表情包
func Repo() *Repository {
	return globalRepository
}

// redisReady 判断当前是否应该维护Redis缓存
func (r *Repository) redisReady() bool {
	return r.rdb != nil && database.IsRedisHealthy()
}

// CreateMeme 新建或完整替换一个表情包，并把点赞数同步进排行缓存
func (r *Repository) CreateMeme(m *Meme) error {
	if err := r.store.PutMeme(m); err != nil {
		return err
	}
	if r.redisReady() {
		err := r.rdb.ZAdd(database.Ctx, LikesRankingKey, redis.Z{
			Score:  float64(m.Likes),
			Member: m.ID,
		}).Err()
		if err != nil {
			fmt.Printf("警告: 无法更新表情包 %s 的排行缓存: %v\n", m.ID, err)
		}
	}
	return nil
}

// GetMeme 按主键查找单个表情包
func (r *Repository) GetMeme(id string) (*Meme, error) {
	return r.store.GetMeme(id)
}

// GetAllMemes 返回全部表情包，按创建时间降序
func (r *Repository) GetAllMemes() ([]Meme, error) {
	return r.store.GetAllMemes()
}

// DeleteMeme 删除表情包及其评论、点赞关系，并从排行缓存中移除
func (r *Repository) DeleteMeme(id string) error {
	if err := r.store.DeleteMeme(id); err != nil {
		return err
	}
	if r.redisReady() {
		if err := r.rdb.ZRem(database.Ctx, LikesRankingKey, id).Err(); err != nil {
			fmt.Printf("警告: 无法从排行缓存移除表情包 %s: %v\n", id, err)
		}
	}
	return nil
}

// ClearAllMemes 清空表情包集合与排行缓存
func (r *Repository) ClearAllMemes() error {
	if err := r.store.ClearAllMemes(); err != nil {
		return err
	}
	if r.redisReady() {
		if err := r.rdb.Del(database.Ctx, LikesRankingKey).Err(); err != nil {
			fmt.Printf("警告: 无法清空排行缓存: %v\n", err)
		}
	}
	return nil
}

// Like 为表情包点赞。每个用户对同一表情包只能点一次赞。
// 返回更新后的点赞数。
func (r *Repository) Like(username, memeID string) (int, error) {
	var newLikes int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var m Meme
		// 行锁防止并发点赞时计数撕裂
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", memeID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&Like{}).Where("username = ? AND meme_id = ?", username, memeID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyLiked
		}

		if err := tx.Create(&Like{Username: username, MemeID: memeID}).Error; err != nil {
			return err
		}

		newLikes = m.Likes + 1
		return tx.Model(&Meme{}).Where("id = ?", memeID).Update("likes", newLikes).Error
	})
	if err != nil {
		return 0, err
	}

	r.syncLikeCaches(username, memeID, newLikes, true)
	return newLikes, nil
}

// Unlike 取消点赞。计数在0处截断，任何时刻都不会变成负数。
func (r *Repository) Unlike(username, memeID string) (int, error) {
	var newLikes int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var m Meme
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", memeID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		result := tx.Where("username = ? AND meme_id = ?", username, memeID).Delete(&Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotLiked
		}

		// 点赞计数截断在0，不会为负
		newLikes = m.Likes
		if newLikes > 0 {
			newLikes--
		}
		return tx.Model(&Meme{}).Where("id = ?", memeID).Update("likes", newLikes).Error
	})
	if err != nil {
		return 0, err
	}

	r.syncLikeCaches(username, memeID, newLikes, false)
	return newLikes, nil
}

// syncLikeCaches 尽力把一次点赞变更同步进Redis。
// 缓存失败只记录日志，SQLite才是权威数据，对账调度器会定期修复漂移。
func (r *Repository) syncLikeCaches(username, memeID string, likes int, liked bool) {
	if !r.redisReady() {
		return
	}
	pipe := r.rdb.TxPipeline()
	if liked {
		pipe.SAdd(database.Ctx, LikedSetKey(username), memeID)
	} else {
		pipe.SRem(database.Ctx, LikedSetKey(username), memeID)
	}
	pipe.ZAdd(database.Ctx, LikesRankingKey, redis.Z{Score: float64(likes), Member: memeID})
	if _, err := pipe.Exec(database.Ctx); err != nil {
		fmt.Printf("警告: 无法同步表情包 %s 的点赞缓存: %v\n", memeID, err)
	}
}

// AddComment 为表情包追加一条评论，评论顺序即追加顺序
func (r *Repository) AddComment(memeID, username, text string) (*Comment, error) {
	comment := Comment{MemeID: memeID, User: username, Text: text}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Meme{}).Where("id = ?", memeID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// HasLiked 查询某用户是否赞过某表情包。优先查Redis集合，降级时回退SQLite。
func (r *Repository) HasLiked(username, memeID string) (bool, error) {
	if r.redisReady() {
		liked, err := r.rdb.SIsMember(database.Ctx, LikedSetKey(username), memeID).Result()
		if err == nil {
			return liked, nil
		}
		fmt.Printf("警告: 查询点赞缓存失败，回退SQLite: %v\n", err)
	}
	var count int64
	if err := r.db.Model(&Like{}).Where("username = ? AND meme_id = ?", username, memeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LikedMemeIDs 返回某用户赞过的全部表情包ID
func (r *Repository) LikedMemeIDs(username string) ([]string, error) {
	if r.redisReady() {
		ids, err := r.rdb.SMembers(database.Ctx, LikedSetKey(username)).Result()
		if err == nil {
			return ids, nil
		}
		fmt.Printf("警告: 读取点赞缓存失败，回退SQLite: %v\n", err)
	}
	var ids []string
	if err := r.db.Model(&Like{}).Where("username = ?", username).Pluck("meme_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
