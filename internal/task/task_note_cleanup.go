package task

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/app"
	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/pkg/util"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// init 自动注册清理任务
func init() {
	Register(func(appContainer *app.App) (Task, error) {
		cfg := appContainer.Config().App
		return NewNoteCleanupTask(appContainer.NoteRepo, appContainer.Logger(), cfg.SoftDeleteRetentionTime, cfg.CleanupCron)
	})
}

// NoteCleanupTask 物理删除超过保留时间的软删除笔记
type NoteCleanupTask struct {
	repo      domain.NoteRepository
	logger    *zap.Logger
	retention time.Duration
	schedule  cron.Schedule
	now       func() time.Time
}

// NewNoteCleanupTask 创建清理任务，保留时间为空或不大于 0 时返回 nil（不清理）
func NewNoteCleanupTask(repo domain.NoteRepository, logger *zap.Logger, retention, cronExpr string) (Task, error) {
	if retention == "" {
		return nil, nil
	}
	duration, err := util.ParseDuration(retention)
	if err != nil {
		return nil, errors.Wrap(err, "parse soft-delete-retention-time")
	}
	if duration <= 0 {
		return nil, nil
	}

	schedule, err := ParseSchedule(cronExpr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse cleanup-cron %q", cronExpr)
	}

	return &NoteCleanupTask{
		repo:      repo,
		logger:    logger,
		retention: duration,
		schedule:  schedule,
		now:       time.Now,
	}, nil
}

// Name 返回任务名称
func (t *NoteCleanupTask) Name() string {
	return "NoteCleanup"
}

// Schedule 返回执行计划
func (t *NoteCleanupTask) Schedule() cron.Schedule {
	return t.schedule
}

// IsStartupRun 是否立即执行一次
func (t *NoteCleanupTask) IsStartupRun() bool {
	return true
}

// Run 执行清理任务
func (t *NoteCleanupTask) Run(ctx context.Context) error {
	cutoff := t.now().Add(-t.retention).UnixMilli()

	removed, err := t.repo.DeletePhysicalByTime(ctx, cutoff)
	if err != nil {
		return errors.Wrap(err, "delete expired notes")
	}

	t.logger.Info("task log",
		zap.String("task", t.Name()),
		zap.Int64("removed", removed),
		zap.String("msg", "success"))
	return nil
}
