package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/haierkeys/fast-note-share-service/internal/dao"
	"github.com/haierkeys/fast-note-share-service/internal/dto"
	"github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureMailer 记录发送的邮件
type captureMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"\n"+body)
	return nil
}

func (m *captureMailer) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

func newUserFixture(t *testing.T, register bool) (UserService, *captureMailer) {
	t.Helper()
	repo := dao.NewUserRepository(newTestDao(t))
	tm := app.NewTokenManager(app.TokenConfig{SecretKey: "test-secret"})
	mailer := &captureMailer{}
	cfg := &ServiceConfig{User: UserServiceConfig{RegisterIsEnable: register, ResetPasswordURL: "https://notes.example/reset"}}
	return NewUserService(repo, tm, mailer, nil, zap.NewNop(), cfg), mailer
}

func register(t *testing.T, svc UserService, username, email string) *dto.UserDTO {
	t.Helper()
	user, err := svc.Register(context.Background(), &dto.UserCreateRequest{
		Email: email, Username: username, Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserFixture(t, true)

	user := register(t, svc, "alice", "alice@example.com")
	assert.NotZero(t, user.UID)
	assert.NotEmpty(t, user.Token)

	byName, err := svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice", Password: "secret1"}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.UID, byName.UID)

	byEmail, err := svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice@example.com", Password: "secret1"}, "")
	require.NoError(t, err)
	assert.Equal(t, user.UID, byEmail.UID)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice", Password: "wrong"}, "")
	assert.ErrorIs(t, err, code.ErrorUserLoginPasswordFailed)
	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: "nobody", Password: "secret1"}, "")
	assert.ErrorIs(t, err, code.ErrorUserLoginPasswordFailed)
}

func TestRegisterErrors(t *testing.T) {
	ctx := context.Background()

	disabled, _ := newUserFixture(t, false)
	_, err := disabled.Register(ctx, &dto.UserCreateRequest{Email: "a@b.io", Username: "alice", Password: "secret1", ConfirmPassword: "secret1"})
	assert.ErrorIs(t, err, code.ErrorUserRegisterIsDisable)

	svc, _ := newUserFixture(t, true)
	register(t, svc, "alice", "alice@example.com")

	tests := []struct {
		name string
		req  *dto.UserCreateRequest
		want *code.Code
	}{
		{"bad username", &dto.UserCreateRequest{Email: "x@b.io", Username: "a!", Password: "secret1", ConfirmPassword: "secret1"}, code.ErrorUserUsernameNotValid},
		{"password mismatch", &dto.UserCreateRequest{Email: "x@b.io", Username: "bob", Password: "secret1", ConfirmPassword: "secret2"}, code.ErrorUserPasswordNotMatch},
		{"duplicate email", &dto.UserCreateRequest{Email: "alice@example.com", Username: "bob", Password: "secret1", ConfirmPassword: "secret1"}, code.ErrorUserEmailAlreadyExists},
		{"duplicate username", &dto.UserCreateRequest{Email: "bob@example.com", Username: "alice", Password: "secret1", ConfirmPassword: "secret1"}, code.ErrorUserAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserFixture(t, true)
	user := register(t, svc, "alice", "alice@example.com")

	err := svc.ChangePassword(ctx, user.UID, &dto.UserChangePasswordRequest{OldPassword: "nope", Password: "secret2", ConfirmPassword: "secret2"})
	assert.ErrorIs(t, err, code.ErrorUserOldPasswordFailed)

	require.NoError(t, svc.ChangePassword(ctx, user.UID, &dto.UserChangePasswordRequest{OldPassword: "secret1", Password: "secret2", ConfirmPassword: "secret2"}))
	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice", Password: "secret2"}, "")
	assert.NoError(t, err)

	info, err := svc.GetInfo(ctx, user.UID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", info.Email)
	assert.Empty(t, info.Token)
}

func resetTokenFrom(t *testing.T, mail string) string {
	t.Helper()
	i := strings.Index(mail, "https://notes.example/reset?")
	require.GreaterOrEqual(t, i, 0, mail)
	line := strings.SplitN(mail[i:], "\n", 2)[0]
	u, err := url.Parse(line)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newUserFixture(t, true)
	register(t, svc, "alice", "alice@example.com")

	// 未注册邮箱同样返回成功且不发送邮件
	require.NoError(t, svc.ForgotPassword(ctx, &dto.UserForgotPasswordRequest{Email: "ghost@example.com"}))
	assert.Empty(t, mailer.last())

	require.NoError(t, svc.ForgotPassword(ctx, &dto.UserForgotPasswordRequest{Email: "alice@example.com"}))
	mail := mailer.last()
	assert.True(t, strings.HasPrefix(mail, "alice@example.com\n"))
	token := resetTokenFrom(t, mail)

	err := svc.ResetPassword(ctx, &dto.UserResetPasswordRequest{Token: "garbage", Password: "newpass", ConfirmPassword: "newpass"})
	assert.ErrorIs(t, err, code.ErrorResetTokenInvalid)

	require.NoError(t, svc.ResetPassword(ctx, &dto.UserResetPasswordRequest{Token: token, Password: "newpass", ConfirmPassword: "newpass"}))
	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice", Password: "newpass"}, "")
	assert.NoError(t, err)

	// 密码变更后同一 Token 失效
	err = svc.ResetPassword(ctx, &dto.UserResetPasswordRequest{Token: token, Password: "again1", ConfirmPassword: "again1"})
	assert.ErrorIs(t, err, code.ErrorResetTokenInvalid)
}

// syncDispatcher 同步执行任务，记录任务名称
type syncDispatcher struct{ names []string }

func (d *syncDispatcher) SubmitAsync(ctx context.Context, name string, fn func(context.Context) error) error {
	d.names = append(d.names, name)
	return fn(ctx)
}

func TestForgotPasswordUsesDispatcher(t *testing.T) {
	repo := dao.NewUserRepository(newTestDao(t))
	tm := app.NewTokenManager(app.TokenConfig{SecretKey: "k"})
	mailer := &captureMailer{}
	d := &syncDispatcher{}
	svc := NewUserService(repo, tm, mailer, d, zap.NewNop(), &ServiceConfig{User: UserServiceConfig{RegisterIsEnable: true}})
	register(t, svc, "carol", "carol@example.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), &dto.UserForgotPasswordRequest{Email: "carol@example.com"}))
	assert.Equal(t, []string{"mail.password_reset"}, d.names)
	assert.NotEmpty(t, mailer.last())
}
