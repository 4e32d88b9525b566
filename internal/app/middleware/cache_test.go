package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestCacheServesRepeatedGets(t *testing.T) {
	PurgeCache()
	calls := 0
	r := gin.New()
	r.GET("/api/packages", Cache(CacheConfig{Expiration: time.Minute}), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	first := get("/api/packages?b=2&a=1")
	second := get("/api/packages?a=1&b=2")
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if second.Header().Get("X-Cache") != "HIT" || second.Body.String() != first.Body.String() {
		t.Fatalf("second response = %q (%s), want cached %q", second.Body.String(), second.Header().Get("X-Cache"), first.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}

	PurgeCacheByPrefix("/api/packages")
	get("/api/packages?a=1&b=2")
	if calls != 2 {
		t.Fatalf("handler calls after purge = %d, want 2", calls)
	}
}

func TestCacheSkipsErrors(t *testing.T) {
	PurgeCache()
	calls := 0
	r := gin.New()
	r.GET("/flaky", Cache(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusInternalServerError, gin.H{"calls": calls})
	})

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/flaky", nil))
	}
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
	if stats := CacheStats(); stats["total_items"] != 0 {
		t.Fatalf("stats = %v, want empty cache", stats)
	}
}
