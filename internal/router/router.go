package router

import (
	"html/template"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/nightlight/internal/config"
	"github.com/nightlight/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("nightlight_session", store))

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"base": filepath.Base,
		"add": func(a, b int) int {
			return a + b
		},
	})
	if cfg.TemplateGlob != "" {
		r.LoadHTMLGlob(cfg.TemplateGlob)
	}

	// 静态文件服务，包含原图与各尺寸变体
	r.Static(cfg.ImageURLPath, cfg.ImageRoot)

	// 公开路由
	r.GET("/", api.ShowHome)
	r.GET("/post/:id", api.ShowPost)
	r.GET("/login", api.ShowLoginPage)
	r.POST("/login", api.Login)
	r.GET("/register", api.ShowRegisterPage)
	r.POST("/register", api.Register)
	r.GET("/logout", api.Logout)

	// 需要认证的路由
	auth := r.Group("")
	auth.Use(handler.AuthRequired())
	{
		auth.GET("/dash", api.ShowDashboard)
		auth.GET("/newpost", api.ShowNewPost)
		auth.POST("/postsubmit", api.SubmitPost)
	}

	return r
}
