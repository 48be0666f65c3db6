package service

import (
	"context"
	"testing"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	pkgapp "github.com/haierkeys/collab-doc-service/pkg/app"
	"github.com/haierkeys/collab-doc-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memUserRepo 的写方法，用户服务测试使用

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	clone := *user
	clone.UID = int64(len(r.users) + 1)
	r.users[clone.UID] = &clone
	result := clone
	return &result, nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, password string, uid int64) error {
	u, ok := r.users[uid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = password
	return nil
}

func newUserTestService(registerEnabled bool) (UserService, *memUserRepo) {
	repo := newMemUserRepo()
	cfg := &ServiceConfig{}
	cfg.User.RegisterIsEnable = registerEnabled
	tm := pkgapp.NewTokenManager(pkgapp.TokenConfig{SecretKey: "test-secret"})
	return NewUserService(repo, tm, zap.NewNop(), cfg), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newUserTestService(true)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:    "alice@example.com",
		Nickname: "Alice",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "Alice", registered.Nickname)

	logged, err := svc.Login(ctx, &dto.UserLoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, registered.UID, logged.UID)
	assert.NotEmpty(t, logged.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserTestService(true)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.UserCreateRequest{Email: "alice@example.com", Nickname: "Alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.UserCreateRequest{Email: "alice@example.com", Nickname: "Alice2", Password: "secret456"})
	assert.ErrorIs(t, err, code.ErrorUserEmailExists)
}

func TestRegisterDisabled(t *testing.T) {
	svc, _ := newUserTestService(false)

	_, err := svc.Register(context.Background(), &dto.UserCreateRequest{Email: "a@b.c", Nickname: "A", Password: "secret123"})
	assert.ErrorIs(t, err, code.ErrorUserRegisterDisabled)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newUserTestService(true)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.UserCreateRequest{Email: "alice@example.com", Nickname: "Alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "alice@example.com", Password: "wrong"}, "")
	assert.ErrorIs(t, err, code.ErrorUserPasswordIncorrect)

	// 未注册邮箱同样返回密码错误，不暴露账号是否存在
	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "nobody@example.com", Password: "secret123"}, "")
	assert.ErrorIs(t, err, code.ErrorUserPasswordIncorrect)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newUserTestService(true)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.UserCreateRequest{Email: "alice@example.com", Nickname: "Alice", Password: "secret123"})
	require.NoError(t, err)

	// 旧密码错误
	err = svc.ChangePassword(ctx, registered.UID, &dto.UserChangePasswordRequest{OldPassword: "wrong", Password: "newsecret"})
	assert.ErrorIs(t, err, code.ErrorUserPasswordIncorrect)

	err = svc.ChangePassword(ctx, registered.UID, &dto.UserChangePasswordRequest{OldPassword: "secret123", Password: "newsecret"})
	require.NoError(t, err)

	// 新密码生效
	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "alice@example.com", Password: "newsecret"}, "")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "alice@example.com", Password: "secret123"}, "")
	assert.ErrorIs(t, err, code.ErrorUserPasswordIncorrect)
}

func TestGetInfoNotExists(t *testing.T) {
	svc, _ := newUserTestService(true)

	_, err := svc.GetInfo(context.Background(), 99)
	assert.ErrorIs(t, err, code.ErrorUserNotExists)
}
