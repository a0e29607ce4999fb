package template

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListTemplates 返回模板服务提供的全部模板（上传页的模板选择器）
func ListTemplates(c *gin.Context) {
	templates, err := globalClient.FetchTemplates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "获取模板列表失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, templates)
}
