package task

import (
	"context"
	"time"

	"github.com/haierkeys/collab-doc-service/internal/app"

	"go.uber.org/zap"
)

// SessionStatsTask 定期输出协作会话与队列的运行指标日志
type SessionStatsTask struct {
	app    *app.App
	logger *zap.Logger
}

// Name returns the task name
func (t *SessionStatsTask) Name() string {
	return "SessionStats"
}

// LoopInterval returns the execution interval
func (t *SessionStatsTask) LoopInterval() time.Duration {
	return 10 * time.Minute
}

// IsStartupRun returns whether to run on startup
func (t *SessionStatsTask) IsStartupRun() bool {
	return false
}

// Run 记录当前活跃会话数、写队列数与工作池负载
func (t *SessionStatsTask) Run(ctx context.Context) error {
	t.logger.Info("collab runtime stats",
		zap.Int("activeSessions", t.app.SessionRegistry.SessionCount()),
		zap.Int64("writeQueues", t.app.WriteQueueManager().QueueCount()),
		zap.Int64("activeWorkers", t.app.WorkerPool().ActiveCount()),
		zap.Int("queuedTasks", t.app.WorkerPool().QueuedCount()))
	return nil
}

// NewSessionStatsTask creates a new SessionStatsTask instance
func NewSessionStatsTask(appContainer *app.App) (Task, error) {
	return &SessionStatsTask{
		app:    appContainer,
		logger: appContainer.Logger(),
	}, nil
}

func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		return NewSessionStatsTask(appContainer)
	})
}
