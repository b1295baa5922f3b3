package app

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mirrorCheck/internal/config"
	apperrors "mirrorCheck/internal/errors"
	"mirrorCheck/internal/model"
	"mirrorCheck/internal/util"
)

// TestSingleRequest 单源测试请求体
type TestSingleRequest struct {
	Mirror string `json:"mirror"`
}

// TestBatchRequest 批量测试请求体
// mirrors缺省时使用配置的完整列表；类型不是列表时绑定直接失败
type TestBatchRequest struct {
	Mirrors []string `json:"mirrors"`
}

// handleMirrors 获取镜像站列表
// GET /api/mirrors?mirrors=["https://..."]
func (s *Server) handleMirrors(c *gin.Context) {
	if raw := c.Query("mirrors"); raw != "" {
		var mirrors []string
		if err := util.UnmarshalJSON([]byte(raw), &mirrors); err == nil {
			RespondJSON(c, http.StatusOK, gin.H{"mirrors": mirrors})
			return
		}
	}
	RespondJSON(c, http.StatusOK, gin.H{"mirrors": s.cfg.Mirrors})
}

// handleTestSingle 测试单个镜像站（实时探测并落库）
// POST /api/test {"mirror": "https://..."}
func (s *Server) handleTestSingle(c *gin.Context) {
	var req TestSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Mirror == "" {
		BadRequest(c, "缺少 mirror 参数")
		return
	}

	result := s.checker.TestOne(c.Request.Context(), req.Mirror, true)
	RespondJSON(c, http.StatusOK, result)
}

// handleTestAll 测试所有镜像站（实时并发批次）
// POST /api/test/all {"mirrors": [...]}
//
// 与定时检测共用聚合器但不经过调度互斥门，两者可并行；落库是逐条
// upsert/append可安全交错，快照则整体覆盖、后完成者胜出
func (s *Server) handleTestAll(c *gin.Context) {
	mirrors, ok := s.bindMirrors(c)
	if !ok {
		return
	}

	batch := s.checker.RunBatch(c.Request.Context(), mirrors, true)

	// 手动批次同样刷新两级快照（last-writer-wins）
	snap := s.buildSnapshot(batch)
	if err := s.cache.SaveSnapshot(c.Request.Context(), snap); err != nil {
		log.Printf("[WARN] Redis 缓存失败: %v", err)
	}
	s.snapshot.set(snap)

	RespondJSON(c, http.StatusOK, batch)
}

// handleTestBatch 批量测试镜像站（SSE逐条进度）
// POST /api/test/batch {"mirrors": [...]}
//
// 刻意使用串行模式：进度事件必须按输入顺序产生，与并发批次是两种
// 不同的模式，不做统一
func (s *Server) handleTestBatch(c *gin.Context) {
	mirrors, ok := s.bindMirrors(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, _ := c.Writer.(http.Flusher)
	total := len(mirrors)

	batch := s.checker.RunSequential(c.Request.Context(), mirrors, true,
		func(completed int, result *model.ProbeResult) bool {
			c.SSEvent("message", gin.H{
				"progress": completed,
				"total":    total,
				"result":   result,
			})
			if flusher != nil {
				flusher.Flush()
			}
			return !c.IsAborted()
		})

	c.SSEvent("message", gin.H{
		"done":        true,
		"results":     batch.Results,
		"total":       batch.Total,
		"available":   batch.Available,
		"unavailable": batch.Unavailable,
	})
	if flusher != nil {
		flusher.Flush()
	}
}

// handleCachedResults 获取缓存的测试结果（优先Redis，其次进程内快照）
// GET /api/test/cached
func (s *Server) handleCachedResults(c *gin.Context) {
	snap := s.latestSnapshot(c.Request.Context())
	if snap == nil {
		// 尚无任何检测数据：返回空快照结构
		RespondJSON(c, http.StatusOK, &model.CachedSnapshot{Results: []*model.ProbeResult{}})
		return
	}
	RespondJSON(c, http.StatusOK, snap)
}

// handleRecommendedConfig 获取推荐的 Docker 配置（基于最新检测结果）
// GET /api/config/recommended
func (s *Server) handleRecommendedConfig(c *gin.Context) {
	snap := s.latestSnapshot(c.Request.Context())

	rec, err := s.synth.Synthesize(snap)
	if err != nil {
		RespondJSON(c, http.StatusOK, gin.H{
			"error":  err.Error(),
			"code":   string(apperrors.GetErrorCode(err)),
			"config": nil,
		})
		return
	}

	RespondJSON(c, http.StatusOK, gin.H{
		"config":          gin.H{"registry-mirrors": rec.Mirrors},
		"mirrors":         rec.Mirrors,
		"count":           rec.Count,
		"total_available": rec.TotalAvailable,
		"last_update":     rec.LastUpdate,
		"next_update":     rec.NextUpdate,
	})
}

// handleConfigUpdate 手动触发更新 Docker 配置
// POST /api/config/update
func (s *Server) handleConfigUpdate(c *gin.Context) {
	snap := s.latestSnapshot(c.Request.Context())
	if snap == nil || len(snap.Results) == 0 {
		RespondJSON(c, http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "暂无检测数据，请先执行检测",
		})
		return
	}

	rec, err := s.synth.Synthesize(snap)
	if err == nil {
		err = s.synth.Apply(rec)
	}
	if err != nil {
		// 无可用源是非致命状态，不算服务器错误
		status := http.StatusInternalServerError
		if apperrors.HasErrorCode(err, apperrors.ErrCodeNoAvailableMirrors) {
			status = http.StatusOK
		}
		RespondJSON(c, status, gin.H{
			"success": false,
			"error":   err.Error(),
			"code":    string(apperrors.GetErrorCode(err)),
		})
		return
	}

	RespondJSON(c, http.StatusOK, gin.H{
		"success":     true,
		"message":     "Docker 配置已更新",
		"config_path": s.cfg.DaemonJSONPath,
	})
}

// handleHistory 获取历史检测记录
// GET /api/history?mirror=https://...&limit=100
func (s *Server) handleHistory(c *gin.Context) {
	mirror := c.Query("mirror")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(config.DefaultHistoryLimit)))
	if err != nil || limit <= 0 {
		limit = config.DefaultHistoryLimit
	}
	if limit > config.MaxHistoryLimit {
		limit = config.MaxHistoryLimit
	}

	history, err := s.store.ListHistory(c.Request.Context(), mirror, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if history == nil {
		history = []*model.HistoryEntry{}
	}
	RespondJSON(c, http.StatusOK, gin.H{"history": history})
}

// handleStatistics 获取镜像源统计信息
// GET /api/statistics
func (s *Server) handleStatistics(c *gin.Context) {
	stats, err := s.store.ListStats(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if stats == nil {
		stats = []*model.MirrorStat{}
	}
	RespondJSON(c, http.StatusOK, gin.H{"statistics": stats})
}

// handleHealth 健康检查（附带存储层连通性）
// GET /api/health
func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{"status": "ok"}

	if err := s.store.Ping(c.Request.Context()); err != nil {
		resp["database"] = "unreachable"
	} else {
		resp["database"] = "ok"
	}

	if !s.cache.IsEnabled() {
		resp["redis"] = "disabled"
	} else if err := s.cache.HealthCheck(c.Request.Context()); err != nil {
		resp["redis"] = "unreachable"
	} else {
		resp["redis"] = "ok"
	}

	RespondJSON(c, http.StatusOK, resp)
}

// bindMirrors 解析批量测试请求体
// mirrors字段缺省回退到配置列表；类型非列表时返回400并结束请求
func (s *Server) bindMirrors(c *gin.Context) ([]string, bool) {
	var req TestBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		BadRequest(c, "mirrors 必须是列表")
		return nil, false
	}
	if len(req.Mirrors) == 0 {
		return s.cfg.Mirrors, true
	}
	return req.Mirrors, true
}
