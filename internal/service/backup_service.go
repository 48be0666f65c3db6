package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/pkg/backup"
	"github.com/haierkeys/collab-doc-service/pkg/timex"

	"go.uber.org/zap"
)

// BackupService 文档备份服务接口
// 周期性将全部文档与版本历史导出到备份存储
type BackupService interface {
	// ExecuteTaskBackups 执行一轮全量备份
	ExecuteTaskBackups(ctx context.Context) error

	// IsEnabled 备份是否开启
	IsEnabled() bool
}

// TaskSubmitter 后台任务提交接口，由 Worker Pool 实现
type TaskSubmitter interface {
	SubmitAsync(ctx context.Context, fn func(context.Context) error) error
}

// backupService 实现 BackupService 接口
type backupService struct {
	documentRepo domain.DocumentRepository
	versionRepo  domain.DocumentVersionRepository
	uploader     backup.Uploader
	tasks        TaskSubmitter
	enabled      bool
	logger       *zap.Logger
}

// NewBackupService 创建 BackupService 实例
// uploader 为 nil 时备份视为关闭，tasks 为 nil 时逐个同步上传
func NewBackupService(
	documentRepo domain.DocumentRepository,
	versionRepo domain.DocumentVersionRepository,
	uploader backup.Uploader,
	tasks TaskSubmitter,
	config *ServiceConfig,
	logger *zap.Logger,
) BackupService {
	enabled := uploader != nil
	if config != nil && !config.App.BackupIsEnable {
		enabled = false
	}
	return &backupService{
		documentRepo: documentRepo,
		versionRepo:  versionRepo,
		uploader:     uploader,
		tasks:        tasks,
		enabled:      enabled,
		logger:       logger,
	}
}

// documentBackup 单个文档的备份载荷
type documentBackup struct {
	Document *domain.Document          `json:"document"`
	Versions []*domain.DocumentVersion `json:"versions"`
}

// IsEnabled 备份是否开启
func (s *backupService) IsEnabled() bool {
	return s.enabled
}

// ExecuteTaskBackups 执行一轮全量备份
// 文档上传通过 Worker Pool 并发执行，单个文档失败不中断整轮，最后汇总失败数
func (s *backupService) ExecuteTaskBackups(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	docs, err := s.documentRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	stamp := timex.Now().Format("20060102150405")

	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}

		doc := doc
		job := func(jobCtx context.Context) error {
			defer wg.Done()
			if err := s.backupDocument(jobCtx, stamp, doc); err != nil {
				failed.Add(1)
			}
			return nil
		}

		wg.Add(1)
		if s.tasks == nil {
			job(ctx)
			continue
		}
		if err := s.tasks.SubmitAsync(ctx, job); err != nil {
			// 池满或已关闭时退化为同步上传
			job(ctx)
		}
	}

	// ctx 取消后池会跳过未执行的任务，不再等待
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("document backup round finished",
		zap.Int("total", len(docs)),
		zap.Int64("failed", failed.Load()))

	if failed.Load() > 0 {
		return fmt.Errorf("backup finished with %d failed documents", failed.Load())
	}
	return nil
}

// backupDocument 备份单个文档及其版本账本
func (s *backupService) backupDocument(ctx context.Context, stamp string, doc *domain.Document) error {
	versions, err := s.versionRepo.ListByDocumentID(ctx, doc.ID)
	if err != nil {
		s.logger.Warn("backup skip document, version query failed",
			zap.Int64("documentId", doc.ID),
			zap.Error(err))
		return err
	}

	payload, err := json.Marshal(&documentBackup{Document: doc, Versions: versions})
	if err != nil {
		s.logger.Warn("backup skip document, marshal failed",
			zap.Int64("documentId", doc.ID),
			zap.Error(err))
		return err
	}

	fileKey := fmt.Sprintf("%s/document-%d.json", stamp, doc.ID)
	if _, err := s.uploader.PutContent(ctx, fileKey, payload); err != nil {
		s.logger.Warn("backup upload failed",
			zap.Int64("documentId", doc.ID),
			zap.String("fileKey", fileKey),
			zap.Error(err))
		return err
	}
	return nil
}

// 确保 backupService 实现了 BackupService 接口
var _ BackupService = (*backupService)(nil)
