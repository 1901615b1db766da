package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 同一 key 在冷却间隔内只允许执行一次
// 用于限制验证码重发频率
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
	now   func() time.Time
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{now: time.Now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并占用一次执行机会
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	if interval <= 0 {
		return CheckResult{Allowed: true}
	}

	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	elapsed := now.Sub(entry.lastTime)
	if !entry.lastTime.IsZero() && elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 释放 key（发送失败时归还机会）
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// Sweep 清理超过 maxAge 的条目，防止 map 无限增长
func (r *CooldownLimiter) Sweep(maxAge time.Duration) int {
	removed := 0
	cutoff := r.now().Add(-maxAge)
	r.locks.Range(func(key, value any) bool {
		entry := value.(*lockEntry)
		entry.mu.Lock()
		stale := entry.lastTime.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			r.locks.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// CodeKey 验证码冷却 key
func CodeKey(email, intent string) string {
	return fmt.Sprintf("code:%s:%s", intent, email)
}
