package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newProberForTest() *Prober {
	return NewProber(2 * time.Second)
}

func TestProbe_StatusClassification(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		wantAvailable bool
		wantStatus    string
		wantCode      int
	}{
		{
			name:          "ok",
			handler:       func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			wantAvailable: true,
			wantStatus:    StatusAvailable,
			wantCode:      200,
		},
		{
			name:          "forbidden_means_auth_required",
			handler:       func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) },
			wantAvailable: true,
			wantStatus:    StatusAvailableAuth,
			wantCode:      403,
		},
		{
			name:          "unauthorized_registry_is_online",
			handler:       func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			wantAvailable: true,
			wantStatus:    "可用（HTTP 401）",
			wantCode:      401,
		},
		{
			name:          "not_found_registry_is_online",
			handler:       func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantAvailable: true,
			wantStatus:    "可用（HTTP 404）",
			wantCode:      404,
		},
		{
			name:          "server_error",
			handler:       func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			wantAvailable: false,
			wantStatus:    "HTTP 错误: 500",
			wantCode:      500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			available, status, code := newProberForTest().Probe(context.Background(), srv.URL)
			if available != tt.wantAvailable {
				t.Fatalf("available=%v, want %v", available, tt.wantAvailable)
			}
			if status != tt.wantStatus {
				t.Fatalf("status=%q, want %q", status, tt.wantStatus)
			}
			if code != tt.wantCode {
				t.Fatalf("statusCode=%d, want %d", code, tt.wantCode)
			}
		})
	}
}

func TestProbe_RedirectNotFollowed(t *testing.T) {
	// 302 本身就是"服务在线"的判定依据，不应跟随跳转
	redirected := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/elsewhere" {
			redirected = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	available, status, code := newProberForTest().Probe(context.Background(), srv.URL)
	if !available || status != StatusAvailable || code != 302 {
		t.Fatalf("got (%v, %q, %d), want (true, %q, 302)", available, status, code, StatusAvailable)
	}
	if redirected {
		t.Fatal("redirect was followed, expected CheckRedirect to stop it")
	}
}

func TestProbe_V2PathTriedFirst(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	newProberForTest().Probe(context.Background(), srv.URL+"/")
	if len(paths) != 1 || paths[0] != "/v2/" {
		t.Fatalf("paths=%v, want [/v2/]", paths)
	}
}

func TestProbe_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 端口已释放，所有路径都连接失败

	available, status, code := newProberForTest().Probe(context.Background(), srv.URL)
	if available {
		t.Fatal("expected unavailable for closed server")
	}
	if status != StatusConnectionFailed {
		t.Fatalf("status=%q, want %q", status, StatusConnectionFailed)
	}
	if code != 0 {
		t.Fatalf("statusCode=%d, want 0", code)
	}
}

func TestDetailedProbe_FillsTiming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := newProberForTest().DetailedProbe(context.Background(), srv.URL)
	if !result.Available {
		t.Fatalf("available=false, status=%q", result.Status)
	}
	if result.Mirror != srv.URL {
		t.Fatalf("mirror=%q, want %q", result.Mirror, srv.URL)
	}
	if result.ResponseTime < 10 {
		t.Fatalf("response_time=%.2fms, want >= 10ms", result.ResponseTime)
	}
	if result.TestTime.IsZero() {
		t.Fatal("test_time is zero")
	}
}

func TestRoundMs(t *testing.T) {
	if got := roundMs(123.456); got != 123.46 {
		t.Fatalf("roundMs(123.456)=%v, want 123.46", got)
	}
	if got := roundMs(0.004); got != 0 {
		t.Fatalf("roundMs(0.004)=%v, want 0", got)
	}
}
