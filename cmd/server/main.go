package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/nightlight/internal/config"
	"github.com/nightlight/internal/db"
	"github.com/nightlight/internal/handler"
	"github.com/nightlight/internal/router"
	"github.com/nightlight/internal/service"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 确保图片目录存在，缺失时直接失败而不是留到派生阶段逐个报错
	images := service.NewImageService(service.DefaultImageConfig(cfg.ImageRoot, cfg.ImageURLPath))
	if err := images.EnsureLayout(); err != nil {
		log.Fatalf("failed to prepare image directories: %v", err)
	}

	api := handler.NewAPI(db.DB, images)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg, api)
	log.Printf("Nightlight CMS started and listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
