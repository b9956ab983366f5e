package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamMonitorChannel returns the Redis PubSub channel carrying live
// violation events for an exam's proctor monitor.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

// ViolationRateKey returns the fixed-window rate limit key for a
// session's violation endpoint.
func (r *CacheKeyStruct) ViolationRateKey(sessionID string, window int64) string {
	return fmt.Sprintf("ratelimit:violations:%s:%d", sessionID, window)
}

var CacheKey = NewCacheKeyStruct()
