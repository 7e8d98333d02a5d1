package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func TestNilCachePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var rc *ResponseCache

	hits := 0
	r := gin.New()
	r.GET("/devices", rc.Middleware("devices", nil), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "ok")
	})
	r.POST("/devices", rc.Invalidates("devices"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/devices", nil))
		if w.Header().Get(HeaderCache) != "" {
			t.Error("nil cache should not set X-Cache")
		}
	}
	if hits != 2 {
		t.Errorf("handler hits = %d, want 2", hits)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/devices", nil))
	if w.Code != http.StatusCreated {
		t.Errorf("POST status = %d", w.Code)
	}
}

func TestKeySeparatesViewersAndGenerations(t *testing.T) {
	rc := &ResponseCache{prefix: "hdb:cache"}

	a := rc.key("bookings", "0", "1", "/api/bookings?page=1")
	if a != rc.key("bookings", "0", "1", "/api/bookings?page=1") {
		t.Error("key should be deterministic")
	}
	if a == rc.key("bookings", "0", "2", "/api/bookings?page=1") {
		t.Error("different viewers must not share a key")
	}
	if a == rc.key("bookings", "1", "1", "/api/bookings?page=1") {
		t.Error("a bumped generation must produce a new key")
	}
	if rc.genKey("bookings") != "hdb:cache:bookings:gen" {
		t.Errorf("genKey = %q", rc.genKey("bookings"))
	}
}

func TestResponseCacheWithRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	rc := NewResponseCache(rdb, time.Minute)
	rc.prefix = "hdb:test:" + time.Now().Format("150405.000000")

	gin.SetMode(gin.TestMode)
	hits := 0
	r := gin.New()
	r.GET("/devices", rc.Middleware("devices", nil), func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})
	r.POST("/devices", rc.Invalidates("devices"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	get := func() string {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/devices", nil))
		return w.Header().Get(HeaderCache)
	}

	if got := get(); got != "MISS" {
		t.Errorf("first GET X-Cache = %q, want MISS", got)
	}
	if got := get(); got != "HIT" {
		t.Errorf("second GET X-Cache = %q, want HIT", got)
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/devices", nil))

	if got := get(); got != "MISS" {
		t.Errorf("GET after write X-Cache = %q, want MISS", got)
	}
	if hits != 2 {
		t.Errorf("handler hits = %d, want 2", hits)
	}
}
