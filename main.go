package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mirrorCheck/internal/app"
	"mirrorCheck/internal/config"
	"mirrorCheck/internal/storage"
	"mirrorCheck/internal/storage/redis"
)

func main() {
	// 优先读取.env文件
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// 设置Gin运行模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode) // 生产模式
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 初始化Redis缓存层（可选功能，未配置或连接失败时降级为纯进程内快照）
	cache := redis.NewSnapshotCache(cfg.RedisURL)
	defer cache.Close()

	if cache.IsEnabled() {
		log.Print("[INFO] Redis缓存已启用")
	} else {
		log.Print("[INFO] Redis未配置，使用进程内快照模式")
	}

	store, err := storage.NewStore()
	if err != nil {
		log.Fatalf("存储初始化失败: %v", err)
	}
	defer store.Close()

	srv := app.NewServer(cfg, store, cache)
	srv.Start(context.Background())
	defer srv.Shutdown()

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	srv.SetupRoutes(r)

	log.Printf("listening on %s", cfg.Port)
	if err := r.Run(cfg.Port); err != nil {
		log.Fatal(err)
	}
}
