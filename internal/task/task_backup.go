package task

import (
	"context"
	"time"

	"github.com/haierkeys/collab-doc-service/internal/app"

	"go.uber.org/zap"
)

// BackupTask 定时全量备份任务
// 按配置的备份间隔将全部文档与版本账本上传到对象存储
type BackupTask struct {
	app    *app.App
	logger *zap.Logger
}

// Name returns the task name
func (t *BackupTask) Name() string {
	return "BackupScheduled"
}

// LoopInterval returns the execution interval
func (t *BackupTask) LoopInterval() time.Duration {
	return t.app.Config().GetBackupInterval()
}

// IsStartupRun returns whether to run on startup
func (t *BackupTask) IsStartupRun() bool {
	return false
}

// Run executes the backup round
func (t *BackupTask) Run(ctx context.Context) error {
	if t.app.BackupService == nil || !t.app.BackupService.IsEnabled() {
		return nil
	}
	return t.app.BackupService.ExecuteTaskBackups(ctx)
}

// NewBackupTask creates a new BackupTask instance
func NewBackupTask(appContainer *app.App) (Task, error) {
	return &BackupTask{
		app:    appContainer,
		logger: appContainer.Logger(),
	}, nil
}

// init registers the backup task
func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		return NewBackupTask(appContainer)
	})
}
