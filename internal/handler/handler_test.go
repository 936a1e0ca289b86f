package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nightlight/internal/db"
	"github.com/nightlight/internal/service"
)

type stubHTMLRender struct{}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	return &stubHTMLInstance{name: name, data: data}
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&db.User{}, &db.Post{}, &db.PostImage{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return gdb
}

// setupHandlerTest 构建与生产路由一致的测试引擎，模板渲染用桩替代
func setupHandlerTest(t *testing.T) (*gin.Engine, *API) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := setupHandlerTestDB(t)
	images := service.NewImageService(service.DefaultImageConfig(t.TempDir(), "/static/images"))
	if err := images.EnsureLayout(); err != nil {
		t.Fatalf("ensure image layout: %v", err)
	}
	api := NewAPI(gdb, images)

	r := gin.New()
	r.HTMLRender = &stubHTMLRender{}
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("nightlight_session", store))

	r.GET("/", api.ShowHome)
	r.GET("/post/:id", api.ShowPost)
	r.GET("/login", api.ShowLoginPage)
	r.POST("/login", api.Login)
	r.GET("/register", api.ShowRegisterPage)
	r.POST("/register", api.Register)
	r.GET("/logout", api.Logout)

	auth := r.Group("")
	auth.Use(AuthRequired())
	{
		auth.GET("/dash", api.ShowDashboard)
		auth.GET("/newpost", api.ShowNewPost)
		auth.POST("/postsubmit", api.SubmitPost)
	}

	return r, api
}
