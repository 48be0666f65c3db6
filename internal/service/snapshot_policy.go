package service

import (
	"context"
	"time"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/pkg/util"

	"go.uber.org/zap"
)

// SnapshotPolicy 自动快照节流策略
// 同一 (文档, 作者) 对在冷却窗口内最多产生一个自动快照
// 手工保存不受冷却限制
type SnapshotPolicy interface {
	// ShouldAutoSnapshot 判断当前编辑是否应创建自动快照
	ShouldAutoSnapshot(ctx context.Context, documentID, authorUID int64) (bool, error)

	// Cooldown 返回冷却窗口时长
	Cooldown() time.Duration
}

// snapshotPolicy 实现 SnapshotPolicy 接口
type snapshotPolicy struct {
	versionRepo domain.DocumentVersionRepository
	cooldown    time.Duration
	logger      *zap.Logger
}

// NewSnapshotPolicy 创建 SnapshotPolicy 实例
func NewSnapshotPolicy(versionRepo domain.DocumentVersionRepository, config *ServiceConfig, logger *zap.Logger) SnapshotPolicy {
	cooldown := domain.AutoSnapshotCooldown
	if config != nil && config.App.SnapshotCooldown != "" {
		if d, err := util.ParseDuration(config.App.SnapshotCooldown); err == nil && d > 0 {
			cooldown = d
		}
	}
	return &snapshotPolicy{
		versionRepo: versionRepo,
		cooldown:    cooldown,
		logger:      logger,
	}
}

// ShouldAutoSnapshot 判断当前编辑是否应创建自动快照
// 无历史自动快照，或最近一次已超过冷却窗口时返回 true
func (p *snapshotPolicy) ShouldAutoSnapshot(ctx context.Context, documentID, authorUID int64) (bool, error) {
	latest, err := p.versionRepo.GetLatestAutoSnapshot(ctx, documentID, authorUID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}

	elapsed := time.Since(latest.CreatedAt)
	if elapsed > p.cooldown {
		return true, nil
	}

	p.logger.Debug("auto snapshot suppressed by cooldown",
		zap.Int64("documentId", documentID),
		zap.Int64("authorUid", authorUID),
		zap.Duration("elapsed", elapsed),
		zap.Duration("cooldown", p.cooldown))
	return false, nil
}

// Cooldown 返回冷却窗口时长
func (p *snapshotPolicy) Cooldown() time.Duration {
	return p.cooldown
}

// 确保 snapshotPolicy 实现了 SnapshotPolicy 接口
var _ SnapshotPolicy = (*snapshotPolicy)(nil)
