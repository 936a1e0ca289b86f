package handler

import (
	"gorm.io/gorm"

	"github.com/nightlight/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	posts    *service.PostService
	users    *service.UserService
	images   *service.ImageService
	imageURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, images *service.ImageService) *API {
	return &API{
		db:       gdb,
		posts:    service.NewPostService(gdb),
		users:    service.NewUserService(gdb),
		images:   images,
		imageURL: images.Config().URLPath,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
