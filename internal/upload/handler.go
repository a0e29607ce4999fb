package upload

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/meme"
	"github.com/MemeVerse/memeverse-backend/internal/platform/config"
	"github.com/MemeVerse/memeverse-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// 模块单例，由ConfigureModule构造
var globalClient *Client

// ConfigureModule 应用图床相关的配置
func ConfigureModule(cfg config.ImageHostConfig) {
	globalClient = NewClient(cfg)
}

// UploadMeme 处理表情包上传：
// 先把图片传到图床拿到托管URL，再以当前登录用户的名义写入表情包集合。
// 图床失败直接反馈给用户，由用户决定是否重试。
func UploadMeme(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "标题不能为空"})
		return
	}
	category := c.PostForm("category")
	if category == "" {
		category = "Random"
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少图片文件"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取上传的图片"})
		return
	}
	defer file.Close()

	imageURL, err := globalClient.UploadImage(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		fmt.Printf("图片上传失败: %v\n", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "图片上传失败，请稍后重试"})
		return
	}

	now := time.Now()
	m := meme.Meme{
		ID:       strconv.FormatInt(now.UnixMilli(), 10),
		Title:    title,
		ImageURL: imageURL,
		User:     c.GetString(user.UsernameKey),
		Likes:    0,
		Category: category,
		Date:     now,
		Comments: []meme.Comment{},
	}
	if err := meme.Repo().CreateMeme(&m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存表情包失败"})
		return
	}
	c.JSON(http.StatusCreated, m)
}
