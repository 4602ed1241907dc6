package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/store"
)

// RateLimiter 固定窗口限流（按客户端 IP）
// 计数放 Redis（多实例共享窗口）；Redis 不可用时放行（限流是保护层，不是正确性层）
type RateLimiter struct {
	kv     store.KV
	window time.Duration
	max    int
	logger *zap.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(kv store.KV, window time.Duration, max int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{kv: kv, window: window, max: max, logger: logger}
}

// Middleware 包装 handler
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "enviromon:ratelimit:" + clientIP(r)

		n, err := rl.kv.Incr(r.Context(), key, rl.window)
		if err != nil {
			rl.logger.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if n > int64(rl.max) {
			writeJSON(w, http.StatusTooManyRequests, Fail("too many requests, please try again later"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
