package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- 请求与响应模型 ---

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --- 控制器函数 ---

// Signup 处理注册请求
func Signup(c *gin.Context) {
	var body signupRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	newUser, err := globalService.Signup(body.Username, body.Password, body.Email, body.Phone)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": ErrUsernameTaken.Error()})
		case errors.Is(err, ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidInput.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败，请稍后重试"})
		}
		return
	}

	c.JSON(http.StatusCreated, newUser)
}

// Login 处理登录请求，成功时签发会话Cookie
func Login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	u, err := globalService.Login(body.Username, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidInput):
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredentials.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败，请稍后重试"})
		}
		return
	}

	token, err := CreateSession(u.Username)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return
	}

	c.SetCookie(CookieName, token, int(sessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, u)
}

// Logout 注销当前会话并清除Cookie
func Logout(c *gin.Context) {
	if tokenStr, err := c.Cookie(CookieName); err == nil && tokenStr != "" {
		if err := DestroySession(tokenStr); err != nil && !errors.Is(err, ErrSessionInvalid) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "注销失败，请稍后重试"})
			return
		}
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// Me 返回当前登录用户的资料
func Me(c *gin.Context) {
	username := c.GetString(UsernameKey)
	u, err := globalRepository.GetUser(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// 会话还在但用户记录已不存在
			c.JSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "数据库查询失败"})
		return
	}
	c.JSON(http.StatusOK, u)
}
