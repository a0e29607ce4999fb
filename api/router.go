package api

import (
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/meme"
	"github.com/MemeVerse/memeverse-backend/internal/template"
	"github.com/MemeVerse/memeverse-backend/internal/upload"
	"github.com/MemeVerse/memeverse-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	// 所有API都先尝试解析会话，具体路由再决定是否强制登录
	api.Use(user.LoadUserMiddleware())
	{
		// 认证相关的路由组
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", user.Signup)
			authRoutes.POST("/login", user.Login)
			authRoutes.POST("/logout", user.Logout)
			authRoutes.GET("/me", user.RequireUserMiddleware(), user.Me)
		}

		// 表情包相关的路由组
		memeRoutes := api.Group("/memes")
		{
			memeRoutes.GET("", meme.GetFeed)
			memeRoutes.POST("", user.RequireUserMiddleware(), meme.CreateMeme)
			memeRoutes.GET("/top", meme.GetTopMemesHandler)
			memeRoutes.GET("/liked", user.RequireUserMiddleware(), meme.GetLikedMemes)
			memeRoutes.GET("/:id", meme.GetMemeByID)
			memeRoutes.DELETE("/:id", user.RequireUserMiddleware(), meme.DeleteMemeByID)

			// 点赞接口按IP限流，防止脚本刷赞
			memeRoutes.POST("/:id/like", user.RequireUserMiddleware(), meme.RateLimitMiddleware("like", 30, time.Minute), meme.LikeMeme)
			memeRoutes.DELETE("/:id/like", user.RequireUserMiddleware(), meme.RateLimitMiddleware("like", 30, time.Minute), meme.UnlikeMeme)

			memeRoutes.POST("/:id/comments", user.RequireUserMiddleware(), meme.AddCommentToMeme)
		}

		// 排行相关的路由
		api.GET("/rankings", meme.GetRankingsHandler)

		// 模板服务相关的路由
		api.GET("/templates", template.ListTemplates)

		// 用户主页相关的路由
		api.GET("/users/:username/memes", meme.GetUserMemes)

		// 上传相关的路由，同样按IP限流
		api.POST("/upload", user.RequireUserMiddleware(), meme.RateLimitMiddleware("upload", 10, time.Minute), upload.UploadMeme)
	}
}
