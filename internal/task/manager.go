package task

import (
	"github.com/haierkeys/collab-doc-service/internal/app"
	"github.com/haierkeys/collab-doc-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	appContainer *app.App
	scheduler    *Scheduler
	logger       *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(appContainer *app.App, logger *zap.Logger, sc *safe_close.SafeClose) *Manager {
	return &Manager{
		appContainer: appContainer,
		scheduler:    NewScheduler(logger, sc),
		logger:       logger,
	}
}

// RegisterTasks 通过注册表创建所有任务并加入调度器
func (m *Manager) RegisterTasks() error {
	for _, factory := range GetAppFactories() {
		t, err := factory(m.appContainer)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t == nil {
			continue
		}
		m.scheduler.AddTask(t)
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
