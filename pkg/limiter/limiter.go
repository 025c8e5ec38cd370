// Package limiter provides token-bucket rate limiting keyed by request path prefix
// Package limiter 提供按请求路径前缀划分的令牌桶限流
package limiter

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 令牌桶规则
type BucketRule struct {
	Key          string        // 路径前缀
	FillInterval time.Duration // 令牌填充间隔
	Capacity     int64         // 桶容量
	Quantum      int64         // 每次填充数量
}

// MethodLimiter matches the longest configured prefix of the request path
// MethodLimiter 按请求路径匹配最长的已配置前缀
type MethodLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*ratelimit.Bucket
	keys    []string
}

func NewMethodLimiter() Face {
	return &MethodLimiter{buckets: make(map[string]*ratelimit.Bucket)}
}

func (l *MethodLimiter) Key(c *gin.Context) string {
	path := c.Request.URL.Path
	l.mu.RLock()
	defer l.mu.RUnlock()
	best := ""
	for _, k := range l.keys {
		if strings.HasPrefix(path, k) && len(k) > len(best) {
			best = k
		}
	}
	return best
}

func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	if key == "" {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.buckets[key]
	return b, ok
}

func (l *MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rule := range rules {
		if _, ok := l.buckets[rule.Key]; ok {
			continue
		}
		l.buckets[rule.Key] = ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
		l.keys = append(l.keys, rule.Key)
	}
	return l
}
