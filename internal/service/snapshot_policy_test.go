package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haierkeys/collab-doc-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeVersionRepo 仅实现快照策略需要的方法，其余方法继承接口零实现
type fakeVersionRepo struct {
	domain.DocumentVersionRepository

	latest *domain.DocumentVersion
	err    error
}

func (f *fakeVersionRepo) GetLatestAutoSnapshot(ctx context.Context, documentID, authorUID int64) (*domain.DocumentVersion, error) {
	return f.latest, f.err
}

func newTestPolicy(repo domain.DocumentVersionRepository, cooldown string) SnapshotPolicy {
	cfg := &ServiceConfig{}
	cfg.App.SnapshotCooldown = cooldown
	return NewSnapshotPolicy(repo, cfg, zap.NewNop())
}

func TestShouldAutoSnapshotNoHistory(t *testing.T) {
	policy := newTestPolicy(&fakeVersionRepo{latest: nil}, "30m")

	ok, err := policy.ShouldAutoSnapshot(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldAutoSnapshotWithinCooldown(t *testing.T) {
	repo := &fakeVersionRepo{latest: &domain.DocumentVersion{
		CreatedAt: time.Now().Add(-5 * time.Minute),
	}}
	policy := newTestPolicy(repo, "30m")

	ok, err := policy.ShouldAutoSnapshot(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestShouldAutoSnapshotAfterCooldown(t *testing.T) {
	repo := &fakeVersionRepo{latest: &domain.DocumentVersion{
		CreatedAt: time.Now().Add(-31 * time.Minute),
	}}
	policy := newTestPolicy(repo, "30m")

	ok, err := policy.ShouldAutoSnapshot(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldAutoSnapshotRepoError(t *testing.T) {
	repo := &fakeVersionRepo{err: errors.New("db gone")}
	policy := newTestPolicy(repo, "30m")

	ok, err := policy.ShouldAutoSnapshot(context.Background(), 1, 10)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSnapshotPolicyCooldownConfig(t *testing.T) {
	// 配置值生效
	policy := newTestPolicy(&fakeVersionRepo{}, "10m")
	assert.Equal(t, 10*time.Minute, policy.Cooldown())

	// 非法配置回退到默认值
	policy = newTestPolicy(&fakeVersionRepo{}, "not-a-duration")
	assert.Equal(t, domain.AutoSnapshotCooldown, policy.Cooldown())

	// 空配置回退到默认值
	policy = NewSnapshotPolicy(&fakeVersionRepo{}, nil, zap.NewNop())
	assert.Equal(t, domain.AutoSnapshotCooldown, policy.Cooldown())
}
