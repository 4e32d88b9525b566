package middleware

import (
	"sync"
	"time"

	"assetverse-http-service/internal/error/code"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// TokenBucket 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64    // 每秒填充的令牌数
	capacity   int        // 桶的容量
	tokens     float64    // 当前令牌数
	lastRefill time.Time  // 上次填充时间
	mu         sync.Mutex // 互斥锁
}

// NewTokenBucket 创建新的令牌桶限流器
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow 尝试获取令牌
func (tb *TokenBucket) Allow() bool {
	return tb.allowAt(time.Now())
}

func (tb *TokenBucket) allowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.lastRefill = now
		tb.tokens += elapsed * tb.rate
		if tb.tokens > float64(tb.capacity) {
			tb.tokens = float64(tb.capacity)
		}
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// idle 超过 d 未使用
func (tb *TokenBucket) idle(now time.Time, d time.Duration) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return now.Sub(tb.lastRefill) > d
}

// 限流类型
const (
	LimitByIP       = "ip"
	LimitByPath     = "path"
	LimitByCombined = "combined"
	LimitByCustom   = "custom"
)

// RateLimiterConfig 限流器配置
type RateLimiterConfig struct {
	Rate       float64                   // 每秒允许的请求数
	Burst      int                       // 允许的突发请求数
	ExpiryTime time.Duration             // 限流器闲置多久后回收
	LimitType  string                    // 限流类型: "ip", "path", "combined", "custom"
	KeyFunc    func(*gin.Context) string // 自定义键生成函数
}

// DefaultRateLimiterConfig 默认限流器配置
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:       10,
	Burst:      20,
	ExpiryTime: 1 * time.Hour,
	LimitType:  LimitByIP,
}

// limiterStore 一个限流中间件持有的令牌桶集合
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*TokenBucket
	cfg       RateLimiterConfig
	lastSweep time.Time
}

func newLimiterStore(cfg RateLimiterConfig) *limiterStore {
	return &limiterStore{
		limiters:  make(map[string]*TokenBucket),
		cfg:       cfg,
		lastSweep: time.Now(),
	}
}

// get 获取键对应的令牌桶，并顺带回收闲置的令牌桶
func (s *limiterStore) get(key string, now time.Time) *TokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.ExpiryTime > 0 && now.Sub(s.lastSweep) > s.cfg.ExpiryTime {
		for k, tb := range s.limiters {
			if tb.idle(now, s.cfg.ExpiryTime) {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	limiter, ok := s.limiters[key]
	if !ok {
		limiter = NewTokenBucket(s.cfg.Rate, s.cfg.Burst)
		s.limiters[key] = limiter
	}
	return limiter
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// keyFor 根据限流类型生成键
func (cfg RateLimiterConfig) keyFor(c *gin.Context) string {
	switch cfg.LimitType {
	case LimitByPath:
		return c.FullPath()
	case LimitByCombined:
		return c.ClientIP() + ":" + c.FullPath()
	case LimitByCustom:
		if cfg.KeyFunc != nil {
			if key := cfg.KeyFunc(c); key != "" {
				return key
			}
		}
	}
	return c.ClientIP()
}

// RateLimiter 创建限流中间件
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	var cfg RateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	} else {
		cfg = DefaultRateLimiterConfig
	}

	// 确保配置有效
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.LimitType == "" {
		cfg.LimitType = DefaultRateLimiterConfig.LimitType
	}
	if cfg.ExpiryTime == 0 {
		cfg.ExpiryTime = DefaultRateLimiterConfig.ExpiryTime
	}

	store := newLimiterStore(cfg)
	return func(c *gin.Context) {
		if !store.get(cfg.keyFor(c), time.Now()).Allow() {
			response.Fail(c, code.ErrTooManyRequests, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPRateLimiter 按IP限流
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:      rate,
		Burst:     burst,
		LimitType: LimitByIP,
	})
}

// CombinedRateLimiter 按IP和路由组合限流
func CombinedRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:      rate,
		Burst:     burst,
		LimitType: LimitByCombined,
	})
}

// SessionRateLimiter 按登录用户限流，未登录时退回按IP
func SessionRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:      rate,
		Burst:     burst,
		LimitType: LimitByCustom,
		KeyFunc: func(c *gin.Context) string {
			return CurrentSession(c).Email
		},
	})
}
