package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/repository"
)

// CodePurgeTask 定时清理过期验证码与冷却记录
type CodePurgeTask struct {
	codes   repository.VerificationCodeRepository
	limiter *middleware.CooldownLimiter
	cron    *cron.Cron
	spec    string

	// 冷却记录超过该时长即可丢弃
	limiterMaxAge time.Duration
	timeout       time.Duration

	log *zerolog.Logger
	now func() time.Time
}

func NewCodePurgeTask(
	codes repository.VerificationCodeRepository,
	limiter *middleware.CooldownLimiter,
	spec string,
	limiterMaxAge time.Duration,
	log *zerolog.Logger,
) *CodePurgeTask {
	if limiterMaxAge <= 0 {
		limiterMaxAge = time.Hour
	}
	return &CodePurgeTask{
		codes:         codes,
		limiter:       limiter,
		cron:          cron.New(cron.WithSeconds()), // 秒级 cron 表达式
		spec:          spec,
		limiterMaxAge: limiterMaxAge,
		timeout:       time.Minute,
		log:           log,
		now:           time.Now,
	}
}

// Start 注册并启动定时任务
func (t *CodePurgeTask) Start() error {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		if _, err := t.RunOnce(ctx); err != nil {
			t.log.Error().Err(err).Msg("purge expired codes failed")
		}
	})
	if err != nil {
		return fmt.Errorf("无法注册验证码清理任务 (%s): %w", t.spec, err)
	}

	t.cron.Start()
	t.log.Info().Str("spec", t.spec).Msg("code purge task started")
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (t *CodePurgeTask) Stop() {
	<-t.cron.Stop().Done()
	t.log.Info().Msg("code purge task stopped")
}

// RunOnce 执行一次清理，返回删除的验证码数量
func (t *CodePurgeTask) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := t.codes.DeleteExpired(ctx, t.now())
	if err != nil {
		return 0, err
	}

	swept := 0
	if t.limiter != nil {
		swept = t.limiter.Sweep(t.limiterMaxAge)
	}

	if deleted > 0 || swept > 0 {
		t.log.Info().Int64("codes", deleted).Int("cooldowns", swept).Msg("purged expired verification state")
	}
	return deleted, nil
}
