package limiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMethodLimiterLongestPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewMethodLimiter().AddBuckets(
		BucketRule{Key: "/api/notes", FillInterval: time.Hour, Capacity: 1, Quantum: 1},
		BucketRule{Key: "/api/notes/share", FillInterval: time.Hour, Capacity: 2, Quantum: 2},
	)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/notes/share/abc", nil)
	assert.Equal(t, "/api/notes/share", l.Key(c))

	b, ok := l.GetBucket(l.Key(c))
	assert.True(t, ok)
	assert.Equal(t, int64(1), b.TakeAvailable(1))
	assert.Equal(t, int64(1), b.TakeAvailable(1))
	assert.Equal(t, int64(0), b.TakeAvailable(1))

	c.Request = httptest.NewRequest("GET", "/api/user/info", nil)
	_, ok = l.GetBucket(l.Key(c))
	assert.False(t, ok)
}
