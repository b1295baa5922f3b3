package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"mirrorCheck/internal/config"
	"mirrorCheck/internal/storage/redis"
	"mirrorCheck/internal/testutil"
	"mirrorCheck/internal/util"
)

func newTestServer(t *testing.T, mirrors ...string) (*Server, *gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	daemonPath := filepath.Join(dir, "daemon.json")

	cfg := &config.EnvConfig{
		Port:             ":8080",
		Mirrors:          mirrors,
		ProbeTimeout:     2 * time.Second,
		CheckInterval:    time.Hour,
		MaxConcurrency:   8,
		DaemonJSONPath:   daemonPath,
		DaemonBackupPath: daemonPath + ".bak",
	}

	srv := NewServer(cfg, testutil.SetupTestStore(t), redis.NewSnapshotCache(""))
	r := gin.New()
	srv.SetupRoutes(r)
	return srv, r, daemonPath
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := util.UnmarshalJSON(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response failed: %v\nbody: %s", err, w.Body.String())
	}
	return payload
}

// newMirrorEndpoint 模拟一个在线registry端点
func newMirrorEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleMirrors(t *testing.T) {
	_, r, _ := newTestServer(t, "https://a.io", "https://b.io")

	t.Run("configured_list", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/mirrors", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want 200", w.Code)
		}
		payload := decodeBody(t, w)
		mirrors, ok := payload["mirrors"].([]any)
		if !ok || len(mirrors) != 2 {
			t.Fatalf("mirrors=%v, want 2 entries", payload["mirrors"])
		}
	})

	t.Run("query_override", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, `/api/mirrors?mirrors=%5B%22https%3A%2F%2Fcustom.io%22%5D`, nil)
		payload := decodeBody(t, w)
		mirrors, ok := payload["mirrors"].([]any)
		if !ok || len(mirrors) != 1 || mirrors[0] != "https://custom.io" {
			t.Fatalf("mirrors=%v, want [https://custom.io]", payload["mirrors"])
		}
	})

	t.Run("malformed_query_falls_back", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/mirrors?mirrors=notjson", nil)
		payload := decodeBody(t, w)
		mirrors, ok := payload["mirrors"].([]any)
		if !ok || len(mirrors) != 2 {
			t.Fatalf("mirrors=%v, want configured fallback", payload["mirrors"])
		}
	})
}

func TestHandleTestSingle(t *testing.T) {
	endpoint := newMirrorEndpoint(t)
	_, r, _ := newTestServer(t, endpoint.URL)

	t.Run("missing_mirror", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/test", []byte(`{}`))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status=%d, want 400", w.Code)
		}
	})

	t.Run("ok", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/test", []byte(`{"mirror":"`+endpoint.URL+`"}`))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want 200", w.Code)
		}
		payload := decodeBody(t, w)
		if payload["available"] != true {
			t.Fatalf("available=%v, want true", payload["available"])
		}
		if payload["mirror"] != endpoint.URL {
			t.Fatalf("mirror=%v, want %s", payload["mirror"], endpoint.URL)
		}
	})
}

func TestHandleTestAll(t *testing.T) {
	endpoint := newMirrorEndpoint(t)
	srv, r, _ := newTestServer(t, endpoint.URL)

	t.Run("mirrors_not_a_list", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/test/all", []byte(`{"mirrors":"not-a-list"}`))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status=%d, want 400", w.Code)
		}
		payload := decodeBody(t, w)
		if payload["error"] != "mirrors 必须是列表" {
			t.Fatalf("error=%v, want mirrors 必须是列表", payload["error"])
		}
	})

	t.Run("runs_and_updates_snapshot", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/test/all", []byte(`{}`))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want 200", w.Code)
		}
		payload := decodeBody(t, w)
		if payload["total"] != float64(1) || payload["available"] != float64(1) {
			t.Fatalf("total/available=%v/%v, want 1/1", payload["total"], payload["available"])
		}

		// 手动批次同样写进程内快照
		snap := srv.snapshot.get()
		if snap == nil || snap.Total != 1 {
			t.Fatalf("snapshot=%+v, want total=1", snap)
		}
	})
}

func TestHandleCachedResults(t *testing.T) {
	endpoint := newMirrorEndpoint(t)

	t.Run("empty", func(t *testing.T) {
		_, r, _ := newTestServer(t, endpoint.URL)
		w := doRequest(t, r, http.MethodGet, "/api/test/cached", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want 200", w.Code)
		}
		payload := decodeBody(t, w)
		if payload["total"] != float64(0) {
			t.Fatalf("total=%v, want 0", payload["total"])
		}
	})

	t.Run("after_batch", func(t *testing.T) {
		_, r, _ := newTestServer(t, endpoint.URL)
		doRequest(t, r, http.MethodPost, "/api/test/all", []byte(`{}`))

		w := doRequest(t, r, http.MethodGet, "/api/test/cached", nil)
		payload := decodeBody(t, w)
		if payload["total"] != float64(1) {
			t.Fatalf("total=%v, want 1", payload["total"])
		}
		if payload["last_update"] == nil {
			t.Fatal("last_update is null after a batch")
		}
	})
}

func TestHandleRecommendedConfig(t *testing.T) {
	endpoint := newMirrorEndpoint(t)

	t.Run("no_data", func(t *testing.T) {
		_, r, _ := newTestServer(t, endpoint.URL)
		w := doRequest(t, r, http.MethodGet, "/api/config/recommended", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want 200", w.Code)
		}
		payload := decodeBody(t, w)
		if payload["config"] != nil {
			t.Fatalf("config=%v, want null", payload["config"])
		}
		if payload["code"] != "NO_DATA" {
			t.Fatalf("code=%v, want NO_DATA", payload["code"])
		}
	})

	t.Run("after_batch", func(t *testing.T) {
		_, r, _ := newTestServer(t, endpoint.URL)
		doRequest(t, r, http.MethodPost, "/api/test/all", []byte(`{}`))

		w := doRequest(t, r, http.MethodGet, "/api/config/recommended", nil)
		payload := decodeBody(t, w)

		cfgObj, ok := payload["config"].(map[string]any)
		if !ok {
			t.Fatalf("config=%v, want object", payload["config"])
		}
		mirrors, ok := cfgObj["registry-mirrors"].([]any)
		if !ok || len(mirrors) != 1 || mirrors[0] != endpoint.URL {
			t.Fatalf("registry-mirrors=%v, want [%s]", cfgObj["registry-mirrors"], endpoint.URL)
		}
		if payload["count"] != float64(1) {
			t.Fatalf("count=%v, want 1", payload["count"])
		}
	})
}

func TestHandleConfigUpdate(t *testing.T) {
	endpoint := newMirrorEndpoint(t)

	t.Run("no_data", func(t *testing.T) {
		_, r, _ := newTestServer(t, endpoint.URL)
		w := doRequest(t, r, http.MethodPost, "/api/config/update", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status=%d, want 400", w.Code)
		}
		payload := decodeBody(t, w)
		if payload["success"] != false {
			t.Fatalf("success=%v, want false", payload["success"])
		}
	})

	t.Run("writes_daemon_json", func(t *testing.T) {
		_, r, daemonPath := newTestServer(t, endpoint.URL)
		doRequest(t, r, http.MethodPost, "/api/test/all", []byte(`{}`))

		w := doRequest(t, r, http.MethodPost, "/api/config/update", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
		payload := decodeBody(t, w)
		if payload["success"] != true {
			t.Fatalf("success=%v, want true", payload["success"])
		}

		data, err := os.ReadFile(daemonPath)
		if err != nil {
			t.Fatalf("daemon.json not written: %v", err)
		}
		if !strings.Contains(string(data), endpoint.URL) {
			t.Fatalf("daemon.json missing mirror:\n%s", data)
		}
	})
}

func TestHandleHistoryAndStatistics(t *testing.T) {
	endpoint := newMirrorEndpoint(t)
	_, r, _ := newTestServer(t, endpoint.URL)

	// 先产生一条落库的探测
	doRequest(t, r, http.MethodPost, "/api/test", []byte(`{"mirror":"`+endpoint.URL+`"}`))

	t.Run("history", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/history", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want 200", w.Code)
		}
		payload := decodeBody(t, w)
		history, ok := payload["history"].([]any)
		if !ok || len(history) != 1 {
			t.Fatalf("history=%v, want 1 entry", payload["history"])
		}
	})

	t.Run("history_filter_no_match", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/history?mirror=https://none.io", nil)
		payload := decodeBody(t, w)
		history, ok := payload["history"].([]any)
		if !ok || len(history) != 0 {
			t.Fatalf("history=%v, want empty list (not null)", payload["history"])
		}
	})

	t.Run("statistics", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/api/statistics", nil)
		payload := decodeBody(t, w)
		stats, ok := payload["statistics"].([]any)
		if !ok || len(stats) != 1 {
			t.Fatalf("statistics=%v, want 1 entry", payload["statistics"])
		}
		entry := stats[0].(map[string]any)
		if entry["mirror_url"] != endpoint.URL {
			t.Fatalf("mirror_url=%v, want %s", entry["mirror_url"], endpoint.URL)
		}
	})
}

func TestHandleTestBatch_SSE(t *testing.T) {
	endpoint := newMirrorEndpoint(t)
	_, r, _ := newTestServer(t, endpoint.URL)

	w := doRequest(t, r, http.MethodPost, "/api/test/batch", []byte(`{}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content-type=%q, want text/event-stream", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, `"progress":1`) {
		t.Fatalf("missing progress event:\n%s", body)
	}
	if !strings.Contains(body, `"done":true`) {
		t.Fatalf("missing done event:\n%s", body)
	}
}

func TestHandleHealth(t *testing.T) {
	endpoint := newMirrorEndpoint(t)
	_, r, _ := newTestServer(t, endpoint.URL)

	w := doRequest(t, r, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
	payload := decodeBody(t, w)
	if payload["status"] != "ok" {
		t.Fatalf("status=%v, want ok", payload["status"])
	}
	if payload["database"] != "ok" {
		t.Fatalf("database=%v, want ok", payload["database"])
	}
	if payload["redis"] != "disabled" {
		t.Fatalf("redis=%v, want disabled", payload["redis"])
	}
}

func TestRootRedirect(t *testing.T) {
	endpoint := newMirrorEndpoint(t)
	_, r, _ := newTestServer(t, endpoint.URL)

	w := doRequest(t, r, http.MethodGet, "/", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status=%d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/api/test/cached" {
		t.Fatalf("location=%q, want /api/test/cached", loc)
	}
}
