package session

import (
	"context"
	"sync"
	"testing"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	"github.com/haierkeys/collab-doc-service/internal/service"
	"github.com/haierkeys/collab-doc-service/pkg/code"
	"github.com/haierkeys/collab-doc-service/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordedEvent 记录一次下发
type recordedEvent struct {
	Event   string
	Payload any
}

// fakeClient 内存客户端，记录收到的全部事件
type fakeClient struct {
	id string

	mu     sync.Mutex
	events []recordedEvent
}

func newFakeClient(id string) *fakeClient {
	return &fakeClient{id: id}
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) Send(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, recordedEvent{Event: event, Payload: payload})
	return nil
}

func (c *fakeClient) Events() []recordedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]recordedEvent, len(c.events))
	copy(result, c.events)
	return result
}

func (c *fakeClient) EventNames() []string {
	events := c.Events()
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Event)
	}
	return names
}

func (c *fakeClient) CountEvent(event string) int {
	count := 0
	for _, e := range c.Events() {
		if e.Event == event {
			count++
		}
	}
	return count
}

// fakeDocumentRepo 内存文档仓储
// UpdateContent 在共享时间线上记录写入次序，用于验证先持久化后广播
type fakeDocumentRepo struct {
	domain.DocumentRepository

	mu        sync.Mutex
	docs      map[int64]*domain.Document
	timeline  *[]string
	getErr    error
	updateErr error
}

func (f *fakeDocumentRepo) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *doc
	return &clone, nil
}

func (f *fakeDocumentRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if doc, ok := f.docs[id]; ok {
		doc.Content = content
	}
	if f.timeline != nil {
		*f.timeline = append(*f.timeline, "persist")
	}
	return nil
}

// commitRecord 一次版本提交记录
type commitRecord struct {
	DocumentID  int64
	Content     string
	Description string
	AuthorUID   int64
}

// fakeVersionService 记录版本提交的内存实现
type fakeVersionService struct {
	service.VersionService

	mu        sync.Mutex
	commits   []commitRecord
	commitErr error
	target    *domain.DocumentVersion
	findErr   error
	nextID    int64
}

func (f *fakeVersionService) Commit(ctx context.Context, documentID int64, content, description string, author *domain.Principal) (*domain.DocumentVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	f.commits = append(f.commits, commitRecord{
		DocumentID:  documentID,
		Content:     content,
		Description: description,
		AuthorUID:   author.UID,
	})
	f.nextID++
	return &domain.DocumentVersion{ID: f.nextID, DocumentID: documentID, Content: content, ChangeDescription: description}, nil
}

func (f *fakeVersionService) Find(ctx context.Context, documentID, versionID int64) (*domain.DocumentVersion, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.target, nil
}

func (f *fakeVersionService) Commits() []commitRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]commitRecord, len(f.commits))
	copy(result, f.commits)
	return result
}

// fakeSnapshotPolicy 固定返回值的快照策略
type fakeSnapshotPolicy struct {
	service.SnapshotPolicy

	should bool
	err    error
}

func (f *fakeSnapshotPolicy) ShouldAutoSnapshot(ctx context.Context, documentID, authorUID int64) (bool, error) {
	return f.should, f.err
}

// testEnv 注册表测试环境
type testEnv struct {
	registry   *Registry
	docRepo    *fakeDocumentRepo
	versionSvc *fakeVersionService
	policy     *fakeSnapshotPolicy
	writeQueue *writequeue.Manager
	timeline   []string
}

func newTestEnv(t *testing.T, docs ...*domain.Document) *testEnv {
	t.Helper()

	env := &testEnv{}
	env.docRepo = &fakeDocumentRepo{
		docs:     make(map[int64]*domain.Document),
		timeline: &env.timeline,
	}
	for _, doc := range docs {
		env.docRepo.docs[doc.ID] = doc
	}
	env.versionSvc = &fakeVersionService{}
	env.policy = &fakeSnapshotPolicy{should: true}
	env.writeQueue = writequeue.New(nil, zap.NewNop())
	t.Cleanup(func() {
		_ = env.writeQueue.Shutdown(context.Background())
	})

	env.registry = NewRegistry(env.docRepo, env.versionSvc, env.policy, env.writeQueue, zap.NewNop())
	return env
}

func testDocument() *domain.Document {
	return &domain.Document{
		ID:            1,
		Title:         "Design Notes",
		Content:       "initial content",
		OwnerUID:      10,
		Collaborators: []int64{20},
	}
}

func TestJoinBroadcastsToOthersAndSendsRoomUsers(t *testing.T) {
	env := newTestEnv(t, testDocument())
	ctx := context.Background()

	owner := newFakeClient("conn-owner")
	collab := newFakeClient("conn-collab")

	_, err := env.registry.Join(ctx, owner, domain.Principal{UID: 10, Name: "Alice"}, 1)
	require.NoError(t, err)

	// 首个加入者只收到 room-users
	assert.Equal(t, []string{dto.EventRoomUsers}, owner.EventNames())

	_, err = env.registry.Join(ctx, collab, domain.Principal{UID: 20, Name: "Bob"}, 1)
	require.NoError(t, err)

	// 已有参与者收到 user-joined，新加入者不收自己的 user-joined
	assert.Equal(t, 1, owner.CountEvent(dto.EventUserJoined))
	assert.Equal(t, 0, collab.CountEvent(dto.EventUserJoined))
	assert.Equal(t, 1, collab.CountEvent(dto.EventRoomUsers))

	events := collab.Events()
	roomUsers, ok := events[0].Payload.(*dto.RoomUsersMessage)
	require.True(t, ok)
	assert.Len(t, roomUsers.Participants, 2)

	assert.Equal(t, 1, env.registry.SessionCount())
	assert.Equal(t, 2, env.registry.Session(1).Size())
}

func TestJoinDocumentNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.registry.Join(context.Background(), newFakeClient("c1"), domain.Principal{UID: 10}, 99)
	assert.ErrorIs(t, err, code.ErrorDocumentNotFound)
	assert.Equal(t, 0, env.registry.SessionCount())
}

// 文档加载遇到非 NotFound 错误时，加入会话以会话错误上报
func TestJoinLoadFailure(t *testing.T) {
	env := newTestEnv(t, testDocument())
	env.docRepo.getErr = gorm.ErrInvalidDB

	_, err := env.registry.Join(context.Background(), newFakeClient("c1"), domain.Principal{UID: 10, Name: "Alice"}, 1)

	var got *code.Code
	require.ErrorAs(t, err, &got)
	assert.Equal(t, code.ErrorSessionJoinFailed.Code(), got.Code())
	assert.Equal(t, 0, env.registry.SessionCount())
}

func TestJoinAccessDenied(t *testing.T) {
	env := newTestEnv(t, testDocument())

	_, err := env.registry.Join(context.Background(), newFakeClient("c1"), domain.Principal{UID: 30, Name: "Eve"}, 1)
	assert.ErrorIs(t, err, code.ErrorDocumentAccessDenied)
	assert.Equal(t, 0, env.registry.SessionCount())
}

func TestApplyChangeRequiresJoin(t *testing.T) {
	env := newTestEnv(t, testDocument())

	err := env.registry.ApplyChange(context.Background(), newFakeClient("c1"), 1, "new content")
	assert.ErrorIs(t, err, code.ErrorSessionNotJoined)
}

func TestApplyChangePersistsBeforeBroadcast(t *testing.T) {
	env := newTestEnv(t, testDocument())
	ctx := context.Background()

	owner := newFakeClient("conn-owner")
	collab := newFakeClient("conn-collab")
	_, err := env.registry.Join(ctx, owner, domain.Principal{UID: 10, Name: "Alice"}, 1)
	require.NoError(t, err)
	_, err = env.registry.Join(ctx, collab, domain.Principal{UID: 20, Name: "Bob"}, 1)
	require.NoError(t, err)

	err = env.registry.ApplyChange(ctx, owner, 1, "revised content")
	require.NoError(t, err)

	// 旧内容留档，新内容自动快照
	commits := env.versionSvc.Commits()
	require.Len(t, commits, 2)
	assert.Equal(t, domain.ContentUpdatedTag, commits[0].Description)
	assert.Equal(t, "initial content", commits[0].Content)
	assert.Equal(t, domain.AutoSnapshotTag, commits[1].Description)
	assert.Equal(t, "revised content", commits[1].Content)

	// 持久化先于广播
	require.NotEmpty(t, env.timeline)
	assert.Equal(t, "persist", env.timeline[0])

	// 广播包含发起者自身
	assert.Equal(t, 1, owner.CountEvent(dto.EventDocumentUpdated))
	assert.Equal(t, 1, collab.CountEvent(dto.EventDocumentUpdated))

	for _, e := range collab.Events() {
		if e.Event != dto.EventDocumentUpdated {
			continue
		}
		msg, ok := e.Payload.(*dto.DocumentUpdatedMessage)
		require.True(t, ok)
		assert.Equal(t, "revised content", msg.Content)
		assert.Equal(t, "Alice", msg.UpdatedBy)
	}
}

func TestApplyChangeIdenticalContentIsNoOp(t *testing.T) {
	env := newTestEnv(t, testDocument())
	ctx := context.Background()

	owner := newFakeClient("conn-owner")
	_, err := env.registry.Join(ctx, owner, domain.Principal{UID: 10, Name: "Alice"}, 1)
	require.NoError(t, err)

	err = env.registry.ApplyChange(ctx, owner, 1, "initial content")
	require.NoError(t, err)

	assert.Empty(t, env.versionSvc.Commits())
	assert.Empty(t, env.timeline)
	assert.Equal(t, 0, owner.CountEvent(dto.EventDocumentUpdated))
}

func TestApplyChangeCooldownSuppressesAutoSnapshot(t *testing.T) {
	env := newTestEnv(t, testDocument())
	env.policy.should = false
	ctx := context.Background()

	owner := newFakeClient("conn-owner")
	_, err := env.registry.Join(ctx, owner, domain.Principal{UID: 10, Name: "Alice"}, 1)
	require.NoError(t, err)

	err = env.registry.ApplyChange(ctx, owner, 1, "revised content")
	require.NoError(t, err)

	commits := env.versionSvc.Commits()
	require.Len(t, commits, 1)
	assert.Equal(t, domain.ContentUpdatedTag, commits[0].Description)
}

func TestApplyChangePersistFailureSkipsBroadcast(t *testing.T) {
	env := newTestEnv(t, testDocument())
	env.docRepo.updateErr = gorm.ErrInvalidDB
	ctx := context.Background()

	owner := newFakeClient("conn-owner")
	_, err := env.registry.Join(ctx, owner, domain.Principal{UID: 10, Name: "Alice"}, 1)
	require.NoError(t, err)

	err = env.registry.ApplyChange(ctx, owner, 1, "revised content")
	require.Error(t, err)

	var codeErr *code.Code
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, code.ErrorPersistenceWrite.Code(), codeErr.Code())

	// 持久化失败不得广播
	assert.Equal(t, 0, owner.CountEvent(dto.EventDocumentUpdated))
}

func TestRestoreCommitsCurrentContentFirst(t *testing.T) {
	env := newTestEnv(t, testDocument())
	env.versionSvc.target = &domain.DocumentVersion{
		ID:         5,
		DocumentID: 1,
		Content:    "older content",
		AuthorName: "Alice",
	}
	ctx := context.Background()

	owner := newFakeClient("conn-owner")
	_, err := env.registry.Join(ctx, owner, domain.Principal{UID: 10, Name: "Alice"}, 1)
	require.NoError(t, err)

	restored, err := env.registry.Restore(ctx, 10, "Alice", 1, 5)
	require.NoError(t, err)
	require.NotNil(t, restored)

	// 恢复前当前内容留档为自动快照
	commits := env.versionSvc.Commits()
	require.Len(t, commits, 1)
	assert.Equal(t, "initial content", commits[0].Content)
	assert.Contains(t, commits[0].Description, domain.AutoSnapshotTag)

	// 文档内容落为目标版本内容
	doc, err := env.docRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "older content", doc.Content)

	// 会话内广播 document-restored
	assert.Equal(t, 1, owner.CountEvent(dto.EventDocumentRestored))
	assert.Equal(t, int64(5), restored.FromVersion.ID)
	assert.Equal(t, "older content", restored.Content)
}

func TestRestoreAbortsWhenSnapshotFails(t *testing.T) {
	env := newTestEnv(t, testDocument())
	env.versionSvc.target = &domain.DocumentVersion{ID: 5, DocumentID: 1, Content: "older content"}
	env.versionSvc.commitErr = code.ErrorPersistenceWrite
	ctx := context.Background()

	_, err := env.registry.Restore(ctx, 10, "Alice", 1, 5)
	require.Error(t, err)

	// 留档失败则放弃恢复，文档内容保持不变
	doc, getErr := env.docRepo.GetByID(ctx, 1)
	require.NoError(t, getErr)
	assert.Equal(t, "initial content", doc.Content)
}

func TestRestoreAccessDenied(t *testing.T) {
	env := newTestEnv(t, testDocument())

	_, err := env.registry.Restore(context.Background(), 30, "Eve", 1, 5)
	assert.ErrorIs(t, err, code.ErrorDocumentAccessDenied)
}

func TestRelayCursorExcludesSender(t *testing.T) {
	env := newTestEnv(t, testDocument())
	ctx := context.Background()

	owner := newFakeClient("conn-owner")
	collab := newFakeClient("conn-collab")
	_, err := env.registry.Join(ctx, owner, domain.Principal{UID: 10, Name: "Alice"}, 1)
	require.NoError(t, err)
	_, err = env.registry.Join(ctx, collab, domain.Principal{UID: 20, Name: "Bob"}, 1)
	require.NoError(t, err)

	err = env.registry.RelayCursor(owner, &dto.CursorMoveMessage{DocumentID: 1, Position: 42})
	require.NoError(t, err)

	assert.Equal(t, 0, owner.CountEvent(dto.EventCursorUpdated))
	assert.Equal(t, 1, collab.CountEvent(dto.EventCursorUpdated))

	for _, e := range collab.Events() {
		if e.Event != dto.EventCursorUpdated {
			continue
		}
		msg, ok := e.Payload.(*dto.CursorUpdatedMessage)
		require.True(t, ok)
		assert.Equal(t, int64(42), msg.Position)
		assert.Equal(t, "Alice", msg.UserName)
	}
}

func TestRelayTypingRequiresSession(t *testing.T) {
	env := newTestEnv(t, testDocument())

	err := env.registry.RelayTyping(newFakeClient("c1"), &dto.TypingMessage{DocumentID: 1, IsTyping: true})
	assert.ErrorIs(t, err, code.ErrorSessionNotJoined)
}

func TestLeaveBroadcastsAndEvictsEmptySession(t *testing.T) {
	env := newTestEnv(t, testDocument())
	ctx := context.Background()

	owner := newFakeClient("conn-owner")
	collab := newFakeClient("conn-collab")
	_, err := env.registry.Join(ctx, owner, domain.Principal{UID: 10, Name: "Alice"}, 1)
	require.NoError(t, err)
	_, err = env.registry.Join(ctx, collab, domain.Principal{UID: 20, Name: "Bob"}, 1)
	require.NoError(t, err)

	env.registry.Leave(collab, 1)

	// 剩余参与者收到 user-left，会话仍在
	assert.Equal(t, 1, owner.CountEvent(dto.EventUserLeft))
	assert.Equal(t, 1, env.registry.SessionCount())

	// 最后一人离开后会话立即回收
	env.registry.Leave(owner, 1)
	assert.Equal(t, 0, env.registry.SessionCount())
}

func TestRouteDisconnectRemovesFromAllSessions(t *testing.T) {
	docA := testDocument()
	docB := &domain.Document{ID: 2, Title: "Second", Content: "x", OwnerUID: 10, Collaborators: []int64{20}}
	env := newTestEnv(t, docA, docB)
	ctx := context.Background()

	shared := newFakeClient("conn-shared")
	other := newFakeClient("conn-other")

	_, err := env.registry.Join(ctx, shared, domain.Principal{UID: 10, Name: "Alice"}, 1)
	require.NoError(t, err)
	_, err = env.registry.Join(ctx, shared, domain.Principal{UID: 10, Name: "Alice"}, 2)
	require.NoError(t, err)
	_, err = env.registry.Join(ctx, other, domain.Principal{UID: 20, Name: "Bob"}, 2)
	require.NoError(t, err)

	env.registry.RouteDisconnect(shared.ID())

	// 文档1会话空则回收，文档2仍有参与者
	assert.Equal(t, 1, env.registry.SessionCount())
	assert.Nil(t, env.registry.Session(1))
	require.NotNil(t, env.registry.Session(2))
	assert.Equal(t, 1, env.registry.Session(2).Size())

	// 文档2剩余参与者收到 user-left
	assert.Equal(t, 1, other.CountEvent(dto.EventUserLeft))
}
