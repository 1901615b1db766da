package task

import (
	"context"

	"github.com/rs/zerolog"

	"shopfront_api_202610/internal/config"
	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/repository"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
type TaskManager struct {
	purgeTask *CodePurgeTask
	log       *zerolog.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	Codes   repository.VerificationCodeRepository
	Limiter *middleware.CooldownLimiter
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg config.TaskConfig, verify config.VerifyConfig, log *zerolog.Logger) *TaskManager {
	tm := &TaskManager{log: log}

	if cfg.PurgeEnabled && deps.Codes != nil {
		// 冷却记录保留到重发间隔之后即可
		maxAge := verify.ResendInterval * 2
		tm.purgeTask = NewCodePurgeTask(deps.Codes, deps.Limiter, cfg.PurgeSpec, maxAge, log)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	if tm.purgeTask != nil {
		if err := tm.purgeTask.Start(); err != nil {
			return err
		}
	}
	tm.log.Info().Interface("tasks", tm.Status()).Msg("background tasks started")
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.purgeTask != nil {
		tm.purgeTask.Stop()
	}
}

// ==================== 手动触发接口 ====================

// TriggerPurge 立即清理一次过期验证码
func (tm *TaskManager) TriggerPurge(ctx context.Context) (int64, error) {
	if tm.purgeTask == nil {
		return 0, ErrTaskDisabled
	}
	return tm.purgeTask.RunOnce(ctx)
}

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"code_purge": tm.purgeTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
