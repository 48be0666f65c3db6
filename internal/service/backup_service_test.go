package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/pkg/workerpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memDocumentRepo 的全量读取，备份服务测试使用

func (r *memDocumentRepo) ListAll(ctx context.Context) ([]*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*domain.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		clone := *doc
		result = append(result, &clone)
	}
	return result, nil
}

func (r *memVersionRepo) ListByDocumentID(ctx context.Context, documentID int64) ([]*domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append([]*domain.DocumentVersion(nil), r.versions[documentID]...)
	domain.SortVersionsDesc(all)
	return all, nil
}

// fakeUploader 记录上传内容的内存备份存储
type fakeUploader struct {
	mu      sync.Mutex
	keys    []string
	failKey string
}

func (u *fakeUploader) PutContent(ctx context.Context, fileKey string, content []byte) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failKey != "" && strings.HasSuffix(fileKey, u.failKey) {
		return "", errors.New("upload rejected")
	}
	u.keys = append(u.keys, fileKey)
	return fileKey, nil
}

func (u *fakeUploader) DeleteFile(ctx context.Context, fileKey string) error {
	return nil
}

func (u *fakeUploader) Keys() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	result := make([]string, len(u.keys))
	copy(result, u.keys)
	sort.Strings(result)
	return result
}

func newBackupTestService(t *testing.T, uploader *fakeUploader, docs ...*domain.Document) BackupService {
	t.Helper()

	pool := workerpool.New(&workerpool.Config{MaxWorkers: 4, QueueSize: 16}, zap.NewNop())
	t.Cleanup(func() {
		_ = pool.Shutdown(context.Background())
	})

	cfg := &ServiceConfig{}
	cfg.App.BackupIsEnable = true

	return NewBackupService(newMemDocumentRepo(docs...), newMemVersionRepo(), uploader, pool, cfg, zap.NewNop())
}

// 一轮备份将所有文档并发上传，全部到齐后才返回
func TestBackupRoundUploadsAllDocuments(t *testing.T) {
	uploader := &fakeUploader{}
	svc := newBackupTestService(t, uploader,
		&domain.Document{ID: 1, Title: "A", OwnerUID: 10},
		&domain.Document{ID: 2, Title: "B", OwnerUID: 10},
		&domain.Document{ID: 3, Title: "C", OwnerUID: 20},
	)

	require.NoError(t, svc.ExecuteTaskBackups(context.Background()))

	keys := uploader.Keys()
	require.Len(t, keys, 3)
	assert.Contains(t, keys[0], "document-1.json")
	assert.Contains(t, keys[2], "document-3.json")
}

// 单个文档上传失败不中断整轮，失败数体现在返回错误里
func TestBackupRoundReportsFailures(t *testing.T) {
	uploader := &fakeUploader{failKey: "document-2.json"}
	svc := newBackupTestService(t, uploader,
		&domain.Document{ID: 1, Title: "A", OwnerUID: 10},
		&domain.Document{ID: 2, Title: "B", OwnerUID: 10},
	)

	err := svc.ExecuteTaskBackups(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 failed")
	assert.Len(t, uploader.Keys(), 1)
}

func TestBackupDisabledIsNoOp(t *testing.T) {
	uploader := &fakeUploader{}
	cfg := &ServiceConfig{}

	svc := NewBackupService(newMemDocumentRepo(&domain.Document{ID: 1}), newMemVersionRepo(), uploader, nil, cfg, zap.NewNop())

	require.NoError(t, svc.ExecuteTaskBackups(context.Background()))
	assert.Empty(t, uploader.Keys())
}
