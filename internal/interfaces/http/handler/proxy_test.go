package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codeforge/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProxyRouter(t *testing.T, cfg config.ProxyConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	h := NewProxyHandler(cfg, zap.NewNop())
	router := gin.New()
	router.GET("/api/v1/proxy/forward", h.Forward)
	router.POST("/api/v1/proxy/forward", h.Forward)
	router.GET("/api/v1/proxy/direct", h.Direct)
	router.POST("/api/v1/proxy/direct", h.Direct)
	return router
}

func TestProxyHandler_ForwardGet(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "bar", r.URL.Query().Get("foo"))
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy/forward?url="+upstream.URL+"%2Fresource%3Ffoo%3Dbar", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Upstream"))
}

func TestProxyHandler_ForwardsExtraQueryParams(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "bar", query.Get("foo"))
		assert.Equal(t, "2", query.Get("page"))
		// the reserved proxy parameters never reach the target
		assert.Empty(t, query.Get("url"))
		assert.Empty(t, query.Get("method"))
		// parameters encoded inside the target URL survive the merge
		assert.Equal(t, "1", query.Get("inline"))
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/proxy/forward?url="+upstream.URL+"%2Fresource%3Finline%3D1&foo=bar&page=2", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProxyHandler_MethodOverride(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/proxy/forward?url="+upstream.URL+"&method=delete", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProxyHandler_ForwardPostBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"name":"widget"}`, string(body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer upstream.Close()

	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proxy/forward?url="+upstream.URL,
		strings.NewReader(`{"name":"widget"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestProxyHandler_ForwardDropsAuthorization(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "custom-value", r.Header.Get("X-Custom"))
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy/forward?url="+upstream.URL, nil)
	req.Header.Set("Authorization", "Bearer session-token")
	req.Header.Set("X-Custom", "custom-value")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProxyHandler_DirectForwardsAuthorization(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer upstream-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy/direct?url="+upstream.URL, nil)
	req.Header.Set("Authorization", "Bearer upstream-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProxyHandler_StripsRequestHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Md5"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proxy/forward?url="+upstream.URL,
		strings.NewReader("payload"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-MD5", "abc123")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProxyHandler_PassesStatusThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer upstream.Close()

	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy/forward?url="+upstream.URL, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not here")
}

func TestProxyHandler_FollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("landed"))
	}))
	defer final.Close()
	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy/forward?url="+redirecting.URL, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "landed", w.Body.String())
}

func TestProxyHandler_MissingURL(t *testing.T) {
	router := newProxyRouter(t, config.ProxyConfig{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy/forward", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProxyHandler_InvalidURL(t *testing.T) {
	tests := []string{
		"not-a-url",
		"ftp://example.com/file",
		"%2Fonly%2Fa%2Fpath",
	}

	router := newProxyRouter(t, config.ProxyConfig{})

	for _, target := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy/forward?url="+target, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "target %q", target)
	}
}

func TestProxyHandler_UnreachableUpstream(t *testing.T) {
	router := newProxyRouter(t, config.ProxyConfig{Timeout: time.Second})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy/forward?url=http%3A%2F%2F127.0.0.1%3A1%2Fdead", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_UPSTREAM")
}

func TestProxyHandler_LimitsResponseSize(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 1024)))
	}))
	defer upstream.Close()

	router := newProxyRouter(t, config.ProxyConfig{MaxResponseSize: 100})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy/forward?url="+upstream.URL, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Body.String(), 100)
}
