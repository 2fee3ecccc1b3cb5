package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant": GetTenantID(c), "user": GetUserID(c)})
	})
	return r
}

func TestTenantMiddleware(t *testing.T) {
	t.Run("reads gateway headers", func(t *testing.T) {
		r := newRouter(TenantMiddleware(), RequireTenantID())
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Tenant-ID", "tenant-1")
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tenant":"tenant-1","user":"user-1"}`, w.Body.String())
	})

	t.Run("falls back to query param", func(t *testing.T) {
		r := newRouter(TenantMiddleware(), RequireTenantID())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?tenantId=tenant-2", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tenant":"tenant-2","user":""}`, w.Body.String())
	})

	t.Run("auth context wins", func(t *testing.T) {
		auth := func(c *gin.Context) {
			c.Set("tenant_id", "from-auth")
			c.Next()
		}
		r := newRouter(auth, TenantMiddleware())
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Tenant-ID", "from-header")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.JSONEq(t, `{"tenant":"from-auth","user":""}`, w.Body.String())
	})

	t.Run("missing tenant is rejected", func(t *testing.T) {
		r := newRouter(TenantMiddleware(), RequireTenantID())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "tenant ID is required")
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	defer limiter.Close()
	r := newRouter(TenantMiddleware(), RateLimit(limiter))

	send := func(tenant string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Tenant-ID", tenant)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusOK, send("b"), "buckets are per tenant")
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS([]string{"https://admin.example.com"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-User-ID")
}
