package cache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const (
	HeaderCache  = "X-Cache"
	maxBodyBytes = 1 << 20
	opTimeout    = 500 * time.Millisecond
)

type entry struct {
	Status      int    `json:"s"`
	ContentType string `json:"t"`
	Body        []byte `json:"b"`
}

// ResponseCache stores successful GET responses per namespace. Writes bump
// the namespace generation so stale keys are never read again and expire
// on their own.
type ResponseCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewResponseCache returns nil when rdb is nil; a nil cache passes every
// request through.
func NewResponseCache(rdb *redis.Client, ttl time.Duration) *ResponseCache {
	if rdb == nil {
		return nil
	}
	return &ResponseCache{rdb: rdb, ttl: ttl, prefix: "hdb:cache"}
}

func (rc *ResponseCache) genKey(ns string) string {
	return rc.prefix + ":" + ns + ":gen"
}

// key separates callers because listings and visibility depend on the user.
func (rc *ResponseCache) key(ns, gen, viewer, uri string) string {
	sum := sha1.Sum([]byte(viewer + "|" + uri))
	return fmt.Sprintf("%s:%s:%s:%x", rc.prefix, ns, gen, sum[:])
}

func (rc *ResponseCache) generation(ctx context.Context, ns string) (string, error) {
	gen, err := rc.rdb.Get(ctx, rc.genKey(ns)).Result()
	if err == redis.Nil {
		return "0", nil
	}
	return gen, err
}

// Bump invalidates everything cached under ns.
func (rc *ResponseCache) Bump(ctx context.Context, ns string) error {
	if rc == nil {
		return nil
	}
	return rc.rdb.Incr(ctx, rc.genKey(ns)).Err()
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.buf.Len()+len(b) <= maxBodyBytes {
		w.buf.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	if w.buf.Len()+len(s) <= maxBodyBytes {
		w.buf.WriteString(s)
	}
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves GET requests for ns from Redis and stores 200
// responses. viewer names the caller for key separation. Redis failures
// degrade to an uncached request.
func (rc *ResponseCache) Middleware(ns string, viewer func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), opTimeout)
		gen, err := rc.generation(ctx, ns)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("namespace", ns).Msg("cache generation lookup failed")
			c.Next()
			return
		}

		who := ""
		if viewer != nil {
			who = viewer(c)
		}
		key := rc.key(ns, gen, who, c.Request.URL.RequestURI())

		ctx, cancel = context.WithTimeout(c.Request.Context(), opTimeout)
		raw, err := rc.rdb.Get(ctx, key).Bytes()
		cancel()
		if err == nil {
			var e entry
			if json.Unmarshal(raw, &e) == nil {
				c.Header(HeaderCache, "HIT")
				c.Data(e.Status, e.ContentType, e.Body)
				c.Abort()
				return
			}
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Header(HeaderCache, "MISS")
		c.Next()

		if cw.Status() != http.StatusOK || cw.buf.Len() == 0 || cw.buf.Len() >= maxBodyBytes {
			return
		}

		payload, err := json.Marshal(entry{
			Status:      cw.Status(),
			ContentType: cw.Header().Get("Content-Type"),
			Body:        cw.buf.Bytes(),
		})
		if err != nil {
			return
		}

		ctx, cancel = context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := rc.rdb.Set(ctx, key, payload, rc.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("namespace", ns).Msg("cache store failed")
		}
	}
}

// Invalidates bumps each namespace after a successful write.
func (rc *ResponseCache) Invalidates(namespaces ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if rc == nil || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		for _, ns := range namespaces {
			if err := rc.Bump(ctx, ns); err != nil {
				log.Warn().Err(err).Str("namespace", ns).Msg("cache invalidation failed")
			}
		}
	}
}
