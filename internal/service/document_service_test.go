package service

import (
	"context"
	"testing"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	"github.com/haierkeys/collab-doc-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memDocumentRepo 的写方法，文档服务测试使用

func (r *memDocumentRepo) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *doc
	clone.ID = int64(len(r.docs) + 1)
	r.docs[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *memDocumentRepo) Update(ctx context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *doc
	r.docs[doc.ID] = &clone
	return nil
}

func (r *memDocumentRepo) UpdateCollaborators(ctx context.Context, id int64, collaborators []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	doc.Collaborators = append([]int64(nil), collaborators...)
	return nil
}

func (r *memDocumentRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *memDocumentRepo) ListByUser(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Document, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Document
	for _, doc := range r.docs {
		if doc.OwnerUID == uid || doc.HasCollaborator(uid) {
			clone := *doc
			result = append(result, &clone)
		}
	}
	return result, int64(len(result)), nil
}

// memVersionRepo 的账本维护之外的方法

func (r *memVersionRepo) CountByDocumentID(ctx context.Context, documentID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.versions[documentID])), nil
}

func (r *memVersionRepo) DeleteByDocumentID(ctx context.Context, documentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.versions, documentID)
	return nil
}

// memUserRepo 内存用户仓储
type memUserRepo struct {
	domain.UserRepository

	users map[int64]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		r.users[u.UID] = u
	}
	return r
}

func (r *memUserRepo) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	if u, ok := r.users[uid]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type documentTestEnv struct {
	svc         DocumentService
	docRepo     *memDocumentRepo
	versionRepo *memVersionRepo
	userRepo    *memUserRepo
}

func newDocumentTestEnv(docs []*domain.Document, users []*domain.User) *documentTestEnv {
	env := &documentTestEnv{
		docRepo:     newMemDocumentRepo(docs...),
		versionRepo: newMemVersionRepo(),
		userRepo:    newMemUserRepo(users...),
	}
	env.svc = NewDocumentService(env.docRepo, env.versionRepo, env.userRepo, zap.NewNop())
	return env
}

func documentTestUsers() []*domain.User {
	return []*domain.User{
		{UID: 10, Email: "alice@example.com", Nickname: "Alice"},
		{UID: 20, Email: "bob@example.com", Nickname: "Bob"},
		{UID: 30, Email: "eve@example.com", Nickname: "Eve"},
	}
}

func TestDocumentCreateAndGet(t *testing.T) {
	env := newDocumentTestEnv(nil, documentTestUsers())
	ctx := context.Background()

	created, err := env.svc.Create(ctx, 10, &dto.DocumentCreateRequest{Title: "Notes", Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), created.OwnerUID)
	assert.NotNil(t, created.Collaborators)

	got, err := env.svc.Get(ctx, 10, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notes", got.Title)
	assert.Equal(t, int64(0), got.VersionCount)
}

func TestDocumentGetNotFoundVsAccessDenied(t *testing.T) {
	env := newDocumentTestEnv([]*domain.Document{versionTestDoc()}, documentTestUsers())
	ctx := context.Background()

	// 不存在与无权限是不同的错误
	_, err := env.svc.Get(ctx, 10, 99)
	assert.ErrorIs(t, err, code.ErrorDocumentNotFound)

	_, err = env.svc.Get(ctx, 30, 1)
	assert.ErrorIs(t, err, code.ErrorDocumentAccessDenied)
}

func TestDocumentUpdateByCollaborator(t *testing.T) {
	env := newDocumentTestEnv([]*domain.Document{versionTestDoc()}, documentTestUsers())
	ctx := context.Background()

	err := env.svc.Update(ctx, 20, &dto.DocumentUpdateRequest{ID: 1, Title: "Renamed", Content: "new text"})
	require.NoError(t, err)

	got, err := env.svc.Get(ctx, 20, 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "new text", got.Content)

	// 非协作者不可写
	err = env.svc.Update(ctx, 30, &dto.DocumentUpdateRequest{ID: 1, Content: "x"})
	assert.ErrorIs(t, err, code.ErrorDocumentAccessDenied)
}

func TestDocumentDeleteOwnerOnly(t *testing.T) {
	env := newDocumentTestEnv([]*domain.Document{versionTestDoc()}, documentTestUsers())
	ctx := context.Background()

	// 协作者不可删除
	err := env.svc.Delete(ctx, 20, 1)
	assert.ErrorIs(t, err, code.ErrorDocumentAccessDenied)

	// 所有者删除后版本历史一并清理
	_, err = env.versionRepo.Create(ctx, &domain.DocumentVersion{DocumentID: 1, Content: "v"})
	require.NoError(t, err)

	err = env.svc.Delete(ctx, 10, 1)
	require.NoError(t, err)

	_, err = env.svc.Get(ctx, 10, 1)
	assert.ErrorIs(t, err, code.ErrorDocumentNotFound)
	assert.Equal(t, 0, env.versionRepo.count(1))
}

func TestDocumentListMarksOwnership(t *testing.T) {
	docs := []*domain.Document{
		{ID: 1, Title: "Mine", OwnerUID: 10},
		{ID: 2, Title: "Shared", OwnerUID: 20, Collaborators: []int64{10}},
		{ID: 3, Title: "Other", OwnerUID: 30},
	}
	env := newDocumentTestEnv(docs, documentTestUsers())

	items, count, err := env.svc.List(context.Background(), 10, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	owners := map[string]bool{}
	for _, item := range items {
		owners[item.Title] = item.IsOwner
	}
	assert.True(t, owners["Mine"])
	assert.False(t, owners["Shared"])
}

func TestAddCollaboratorByEmail(t *testing.T) {
	doc := &domain.Document{ID: 1, Title: "Notes", OwnerUID: 10}
	env := newDocumentTestEnv([]*domain.Document{doc}, documentTestUsers())
	ctx := context.Background()

	added, err := env.svc.AddCollaborator(ctx, 10, &dto.CollaboratorAddRequest{DocumentID: 1, Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(20), added.UID)
	assert.Equal(t, "Bob", added.Nickname)

	// 重复添加被拒绝
	_, err = env.svc.AddCollaborator(ctx, 10, &dto.CollaboratorAddRequest{DocumentID: 1, Email: "bob@example.com"})
	require.Error(t, err)

	// 未注册邮箱
	_, err = env.svc.AddCollaborator(ctx, 10, &dto.CollaboratorAddRequest{DocumentID: 1, Email: "nobody@example.com"})
	assert.ErrorIs(t, err, code.ErrorUserNotExists)

	// 非所有者不可管理协作者
	_, err = env.svc.AddCollaborator(ctx, 20, &dto.CollaboratorAddRequest{DocumentID: 1, Email: "eve@example.com"})
	assert.ErrorIs(t, err, code.ErrorDocumentAccessDenied)
}

func TestRemoveCollaborator(t *testing.T) {
	env := newDocumentTestEnv([]*domain.Document{versionTestDoc()}, documentTestUsers())
	ctx := context.Background()

	err := env.svc.RemoveCollaborator(ctx, 10, &dto.CollaboratorRemoveRequest{DocumentID: 1, UID: 20})
	require.NoError(t, err)

	// 被移除后失去读权限
	_, err = env.svc.Get(ctx, 20, 1)
	assert.ErrorIs(t, err, code.ErrorDocumentAccessDenied)

	// 再次移除报错
	err = env.svc.RemoveCollaborator(ctx, 10, &dto.CollaboratorRemoveRequest{DocumentID: 1, UID: 20})
	require.Error(t, err)
}

func TestListCollaboratorsSkipsMissingUsers(t *testing.T) {
	doc := &domain.Document{ID: 1, Title: "Notes", OwnerUID: 10, Collaborators: []int64{20, 99}}
	env := newDocumentTestEnv([]*domain.Document{doc}, documentTestUsers())

	collaborators, err := env.svc.ListCollaborators(context.Background(), 10, 1)
	require.NoError(t, err)

	// 已删除的用户从列表中跳过
	require.Len(t, collaborators, 1)
	assert.Equal(t, int64(20), collaborators[0].UID)
}
