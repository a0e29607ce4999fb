package meme

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// defaultCategory 是未指定分类时的默认值
const defaultCategory = "Random"

// --- 请求模型 ---

// createMemeRequest 用于从模板或外链创建表情包。
// ID缺省时由服务端以毫秒时间戳生成。
type createMemeRequest struct {
	ID       string `json:"id"`
	Title    string `json:"title" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"required"`
	Category string `json:"category"`
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// --- 控制器函数 ---

// GetFeed 返回信息流：支持标题搜索、分类过滤、排序和分页
func GetFeed(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))

	feed, err := globalRepository.QueryFeed(FeedQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		SortBy:   c.DefaultQuery("sortBy", "date"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// GetMemeByID 返回单个表情包的详情
func GetMemeByID(c *gin.Context) {
	id := c.Param("id")
	m, err := globalRepository.GetMeme(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidRecord) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到ID为 %s 的表情包", id)})
			return
		}
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// CreateMeme 以当前登录用户的名义创建一个表情包
func CreateMeme(c *gin.Context) {
	var body createMemeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	username := c.GetString(user.UsernameKey)
	id := body.ID
	if id == "" {
		id = strconv.FormatInt(time.Now().UnixMilli(), 10)
	} else {
		// 客户端指定ID时检查归属：已存在且属于他人的表情包不允许覆盖
		existing, err := globalRepository.GetMeme(id)
		if err == nil && existing.User != username {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("ID为 %s 的表情包已存在", id)})
			return
		}
		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidRecord) {
			respondStoreError(c, err)
			return
		}
	}
	category := body.Category
	if category == "" {
		category = defaultCategory
	}

	m := Meme{
		ID:       id,
		Title:    body.Title,
		ImageURL: body.ImageURL,
		User:     username,
		Likes:    0,
		Category: category,
		Date:     time.Now(),
		Comments: []Comment{},
	}
	if err := globalRepository.CreateMeme(&m); err != nil {
		if errors.Is(err, ErrInvalidRecord) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRecord.Error()})
			return
		}
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// DeleteMemeByID 删除表情包，只有上传者本人可以删除
func DeleteMemeByID(c *gin.Context) {
	id := c.Param("id")
	m, err := globalRepository.GetMeme(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidRecord) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到ID为 %s 的表情包", id)})
			return
		}
		respondStoreError(c, err)
		return
	}

	if m.User != c.GetString(user.UsernameKey) {
		c.JSON(http.StatusForbidden, gin.H{"error": "只有上传者本人可以删除"})
		return
	}

	if err := globalRepository.DeleteMeme(id); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// LikeMeme 为表情包点赞
func LikeMeme(c *gin.Context) {
	username := c.GetString(user.UsernameKey)
	id := c.Param("id")

	likes, err := globalRepository.Like(username, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到ID为 %s 的表情包", id)})
		case errors.Is(err, ErrAlreadyLiked):
			c.JSON(http.StatusConflict, gin.H{"error": ErrAlreadyLiked.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "处理点赞失败"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "likes": likes})
}

// UnlikeMeme 取消点赞
func UnlikeMeme(c *gin.Context) {
	username := c.GetString(user.UsernameKey)
	id := c.Param("id")

	likes, err := globalRepository.Unlike(username, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到ID为 %s 的表情包", id)})
		case errors.Is(err, ErrNotLiked):
			c.JSON(http.StatusConflict, gin.H{"error": ErrNotLiked.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "处理取消点赞失败"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "likes": likes})
}

// AddCommentToMeme 为表情包追加一条评论
func AddCommentToMeme(c *gin.Context) {
	var body addCommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "评论内容不能为空"})
		return
	}

	id := c.Param("id")
	comment, err := globalRepository.AddComment(id, c.GetString(user.UsernameKey), body.Text)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到ID为 %s 的表情包", id)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发表评论失败"})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetRankingsHandler 返回用户排行榜
func GetRankingsHandler(c *gin.Context) {
	entries, err := globalRepository.GetRankings()
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetTopMemesHandler 返回点赞最高的表情包
func GetTopMemesHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	memes, err := globalRepository.GetTopMemes(limit)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, memes)
}

// GetUserMemes 返回某个用户上传的全部表情包（个人主页）
func GetUserMemes(c *gin.Context) {
	feed, err := globalRepository.QueryFeed(FeedQuery{
		User:  c.Param("username"),
		Page:  1,
		Limit: 1 << 30, // 个人主页不分页
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed.Memes)
}

// GetLikedMemes 返回当前用户赞过的表情包ID列表
func GetLikedMemes(c *gin.Context) {
	ids, err := globalRepository.LikedMemeIDs(c.GetString(user.UsernameKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取点赞记录失败"})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"liked": ids})
}

// respondStoreError 把存储层错误翻译成HTTP响应
func respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, ErrStorageUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储暂时不可用，请稍后重试"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "数据库查询失败"})
}
