package web

import (
	"time"

	"github.com/gin-gonic/gin"
)

// CurrentTimeFunc Current time. Can be mocked for testing.
var CurrentTimeFunc = time.Now

func StartRequest(c *gin.Context) {
	c.Set(RequestStartTimeKey, CurrentTimeFunc())
}

func requestDuration(c *gin.Context) time.Duration {
	startTime, ok := c.Value(RequestStartTimeKey).(time.Time)
	if !ok {
		return 0
	}
	return CurrentTimeFunc().Sub(startTime)
}
