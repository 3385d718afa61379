package middlewarectx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestVisitorLimiters_DropsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	v := &visitorLimiters{
		limit:    rate.Limit(0.001),
		burst:    1,
		now:      func() time.Time { return now },
		visitors: make(map[string]*visitorLimiter),
	}

	assert.True(t, v.allow("device:a"))
	assert.False(t, v.allow("device:a"))
	assert.True(t, v.allow("device:b"))
	assert.Len(t, v.visitors, 2)

	now = now.Add(limiterIdleTTL)
	assert.True(t, v.allow("device:c"))
	assert.Len(t, v.visitors, 1)
}
