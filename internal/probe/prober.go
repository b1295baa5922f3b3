package probe

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mirrorCheck/internal/config"
	"mirrorCheck/internal/model"
)

// 探测结果状态文案
const (
	StatusAvailable        = "可用"
	StatusAvailableAuth    = "可用（需要认证）"
	StatusConnectionFailed = "连接失败"
)

// userAgent 探测请求的UA标识
const userAgent = "Docker-Mirror-Checker/1.0"

// okCodes 直接判定服务可用的HTTP状态码（301/302说明服务在线但有跳转）
var okCodes = map[int]bool{
	http.StatusOK:               true,
	http.StatusMovedPermanently: true,
	http.StatusFound:            true,
}

// Prober 镜像源探测器，持有一个调优过的HTTP客户端
// 探测是纯检查，无副作用；单次调用内不做重试，只按顺序尝试多个路径
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

// NewProber 创建探测器
// timeout为单个HTTP请求的超时，不是整次多路径探测的总上限
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = config.DefaultProbeTimeout
	}

	dialer := &net.Dialer{
		Timeout:   config.HTTPDialTimeout,
		KeepAlive: config.HTTPKeepAliveInterval,
	}

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: config.HTTPTLSHandshakeTimeout,
		MaxIdleConns:        config.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: config.HTTPMaxIdleConnsPerHost,
		// 启用TLS会话缓存，周期性重测同一批源时减少重复握手
		TLSClientConfig: &tls.Config{
			ClientSessionCache: tls.NewLRUClientSessionCache(config.TLSSessionCacheSize),
			MinVersion:         tls.VersionTLS12,
		},
	}

	return &Prober{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			// 不跟随跳转：301/302本身就是"服务在线"的分类依据
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
	}
}

// Probe 对单个镜像源执行一次可用性检查
// 依次尝试 {mirror}/v2/ 和 {mirror}，第一个可分类的响应即终止后续尝试；
// 网络层失败（DNS/拒绝/超时）不重试当前路径，直接尝试下一个
func (p *Prober) Probe(ctx context.Context, mirror string) (available bool, status string, statusCode int) {
	base := strings.TrimRight(mirror, "/")
	testURLs := []string{
		base + "/v2/",
		base,
	}

	for _, testURL := range testURLs {
		code, err := p.request(ctx, testURL)
		if err != nil {
			// 连接层失败：换下一个路径
			continue
		}

		switch {
		case okCodes[code]:
			return true, StatusAvailable, code
		case code == http.StatusForbidden:
			return true, StatusAvailableAuth, code
		case code == http.StatusUnauthorized || code == http.StatusNotFound:
			// registry对匿名请求的正常拒绝，服务本身在线
			return true, "可用（HTTP " + strconv.Itoa(code) + "）", code
		default:
			return false, "HTTP 错误: " + strconv.Itoa(code), code
		}
	}

	return false, StatusConnectionFailed, 0
}

// DetailedProbe 执行探测并附带耗时：墙钟时间覆盖完整的多路径尝试
func (p *Prober) DetailedProbe(ctx context.Context, mirror string) *model.ProbeResult {
	start := time.Now()
	available, status, statusCode := p.Probe(ctx, mirror)
	elapsed := time.Since(start)

	return &model.ProbeResult{
		Mirror:       mirror,
		Available:    available,
		Status:       status,
		StatusCode:   statusCode,
		ResponseTime: roundMs(float64(elapsed) / float64(time.Millisecond)),
		TestTime:     model.Now(),
	}
}

// request 发送单个GET请求并返回状态码；响应体不读取，仅看状态行
func (p *Prober) request(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()

	return resp.StatusCode, nil
}

// roundMs 保留两位小数（与历史payload精度一致）
func roundMs(ms float64) float64 {
	return float64(int64(ms*100+0.5)) / 100
}
