package meme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MemeVerse/memeverse-backend/internal/platform/database"
)

// defaultPageSize 是信息流每页的默认条数
const defaultPageSize = 6

// FeedQuery 描述一次信息流查询：标题搜索、分类过滤、排序方式和分页
type FeedQuery struct {
	Search   string
	Category string
	SortBy   string // "date" | "likes" | "comments"
	User     string // 非空时只返回该用户上传的表情包
	Page     int
	Limit    int
}

// FeedPage 是信息流查询的结果页
type FeedPage struct {
	Memes   []Meme `json:"memes"`
	Page    int    `json:"page"`
	Total   int    `json:"total"`
	HasMore bool   `json:"hasMore"`
}

// RankingEntry 是排行榜的一项：用户及其点赞最高的表情包
type RankingEntry struct {
	Rank int    `json:"rank"`
	User string `json:"user"`
	Meme Meme   `json:"meme"`
}

// QueryFeed 在全量数据上执行过滤、排序和分页。
// 数据规模是单机个人应用级别的，在内存中派生比下推SQL更直接。
func (r *Repository) QueryFeed(q FeedQuery) (*FeedPage, error) {
	memes, err := r.store.GetAllMemes()
	if err != nil {
		return nil, err
	}

	filtered := make([]Meme, 0, len(memes))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, m := range memes {
		if q.User != "" && m.User != q.User {
			continue
		}
		if q.Category != "" && q.Category != "All" && m.Category != q.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Title), search) {
			continue
		}
		filtered = append(filtered, m)
	}

	// GetAllMemes已按Date降序返回，date排序无需重排
	switch q.SortBy {
	case "likes":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Likes > filtered[j].Likes
		})
	case "comments":
		sort.SliceStable(filtered, func(i, j int) bool {
			return len(filtered[i].Comments) > len(filtered[j].Comments)
		})
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageSize
	}

	total := len(filtered)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &FeedPage{
		Memes:   filtered[start:end],
		Page:    page,
		Total:   total,
		HasMore: end < total,
	}, nil
}

// GetRankings 计算用户排行榜：每个用户取其点赞最高的一个表情包，
// 再按该表情包的点赞数降序排列。没有获赞的用户不上榜。
func (r *Repository) GetRankings() ([]RankingEntry, error) {
	memes, err := r.store.GetAllMemes()
	if err != nil {
		return nil, err
	}

	best := make(map[string]Meme)
	for _, m := range memes {
		if m.User == "" || m.Likes <= 0 {
			continue
		}
		if current, ok := best[m.User]; !ok || m.Likes > current.Likes {
			best[m.User] = m
		}
	}

	entries := make([]RankingEntry, 0, len(best))
	for user, m := range best {
		entries = append(entries, RankingEntry{User: user, Meme: m})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Meme.Likes != entries[j].Meme.Likes {
			return entries[i].Meme.Likes > entries[j].Meme.Likes
		}
		return entries[i].User < entries[j].User // 并列时按用户名保证顺序稳定
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// GetTopMemes 返回点赞最高的表情包。
// Redis健康时走排行ZSET，降级或缓存异常时回退到SQLite全量排序。
func (r *Repository) GetTopMemes(limit int) ([]Meme, error) {
	if limit < 1 {
		limit = defaultPageSize
	}

	if r.redisReady() {
		ids, err := r.rdb.ZRevRange(database.Ctx, LikesRankingKey, 0, int64(limit-1)).Result()
		if err == nil && len(ids) > 0 {
			memes := make([]Meme, 0, len(ids))
			for _, id := range ids {
				m, err := r.store.GetMeme(id)
				if err != nil {
					// 缓存中存在但库里已删除，留给对账调度器修复
					continue
				}
				memes = append(memes, *m)
			}
			return memes, nil
		}
		if err != nil {
			fmt.Printf("警告: 读取排行缓存失败，回退SQLite: %v\n", err)
		}
	}

	memes, err := r.store.GetAllMemes()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(memes, func(i, j int) bool {
		return memes[i].Likes > memes[j].Likes
	})
	if len(memes) > limit {
		memes = memes[:limit]
	}
	return memes, nil
}
