package task

import (
	"context"
	"time"

	"github.com/haierkeys/collab-doc-service/internal/app"

	"go.uber.org/zap"
)

// VersionRetentionTask 定时版本保留任务
// 提交时已做容量淘汰，这里对全库再做一次兜底清理
type VersionRetentionTask struct {
	app    *app.App
	logger *zap.Logger
}

// Name returns the task name
func (t *VersionRetentionTask) Name() string {
	return "VersionRetention"
}

// LoopInterval returns the execution interval
func (t *VersionRetentionTask) LoopInterval() time.Duration {
	return time.Hour
}

// IsStartupRun returns whether to run on startup
func (t *VersionRetentionTask) IsStartupRun() bool {
	return true
}

// Run sweeps every document's version ledger down to the retention cap
func (t *VersionRetentionTask) Run(ctx context.Context) error {
	keep := t.app.VersionService.MaxVersions()

	docs, err := t.app.DocumentRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	var swept int
	for _, doc := range docs {
		if err := t.app.VersionRepo.DeleteBeyondCap(ctx, doc.ID, keep); err != nil {
			t.logger.Warn("version retention sweep failed",
				zap.Int64("documentId", doc.ID),
				zap.Error(err))
			continue
		}
		swept++
	}

	t.logger.Info("version retention sweep completed",
		zap.Int("documents", swept),
		zap.Int("keep", keep))
	return nil
}

// NewVersionRetentionTask creates a new VersionRetentionTask instance
func NewVersionRetentionTask(appContainer *app.App) (Task, error) {
	return &VersionRetentionTask{
		app:    appContainer,
		logger: appContainer.Logger(),
	}, nil
}

// init registers the version retention task
func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		return NewVersionRetentionTask(appContainer)
	})
}
