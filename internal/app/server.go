package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrorCheck/internal/checker"
	"mirrorCheck/internal/config"
	"mirrorCheck/internal/dockercfg"
	"mirrorCheck/internal/probe"
	"mirrorCheck/internal/scheduler"
	"mirrorCheck/internal/storage"
	"mirrorCheck/internal/storage/redis"
)

// Server 查询面服务
// 持有探测聚合器、两级缓存（Redis易失层+进程内快照）、存储与配置生成器；
// 定时调度在Start中启动
type Server struct {
	cfg       *config.EnvConfig
	store     storage.Store
	cache     *redis.SnapshotCache
	checker   *checker.Checker
	synth     *dockercfg.Synthesizer
	snapshot  *snapshotCell
	scheduler *scheduler.Scheduler
}

// NewServer 组装服务
func NewServer(cfg *config.EnvConfig, store storage.Store, cache *redis.SnapshotCache) *Server {
	prober := probe.NewProber(cfg.ProbeTimeout)

	s := &Server{
		cfg:      cfg,
		store:    store,
		cache:    cache,
		checker:  checker.NewChecker(prober, store, cfg.MaxConcurrency),
		synth:    dockercfg.NewSynthesizer(cfg.DaemonJSONPath, cfg.DaemonBackupPath),
		snapshot: newSnapshotCell(),
	}
	s.scheduler = scheduler.NewScheduler(s.runScheduledCheck, cfg.CheckInterval)
	return s
}

// Start 启动后台任务：预热进程内快照，启动定时检测
func (s *Server) Start(ctx context.Context) {
	// 启动时从Redis预热进程内快照（重启后立即有数据可服务）
	if snap, err := s.cache.LoadSnapshot(ctx); err != nil {
		log.Printf("[WARN] 从Redis加载缓存失败: %v", err)
	} else if snap != nil {
		s.snapshot.set(snap)
		log.Print("[INFO] 从Redis加载缓存数据成功")
	}

	log.Printf("[INFO] 启动定时检测任务（间隔 %v）...", s.cfg.CheckInterval)
	s.scheduler.Start()
}

// Shutdown 优雅关闭后台任务
func (s *Server) Shutdown() {
	s.scheduler.Stop()
}

// SetupRoutes 路由注册
func (s *Server) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/mirrors", s.handleMirrors)
		api.POST("/test", s.handleTestSingle)
		api.POST("/test/all", s.handleTestAll)
		api.POST("/test/batch", s.handleTestBatch)
		api.GET("/test/cached", s.handleCachedResults)
		api.GET("/config/recommended", s.handleRecommendedConfig)
		api.POST("/config/update", s.handleConfigUpdate)
		api.GET("/history", s.handleHistory)
		api.GET("/statistics", s.handleStatistics)
		api.GET("/health", s.handleHealth)
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api/test/cached")
	})
}
