package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/internal/dto"
	"github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/code"
	"github.com/haierkeys/fast-note-share-service/pkg/logger"
	"github.com/haierkeys/fast-note-share-service/pkg/timex"
	"github.com/haierkeys/fast-note-share-service/pkg/util"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// UserService 定义用户业务服务接口
type UserService interface {
	// Register 用户注册
	Register(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error)

	// Login 用户登录
	Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error)

	// ChangePassword 修改密码
	ChangePassword(ctx context.Context, uid int64, params *dto.UserChangePasswordRequest) error

	// GetInfo 获取用户信息
	GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error)

	// ForgotPassword 发送密码重置邮件；邮箱不存在时同样返回成功
	ForgotPassword(ctx context.Context, params *dto.UserForgotPasswordRequest) error

	// ResetPassword 使用重置 Token 设置新密码
	ResetPassword(ctx context.Context, params *dto.UserResetPasswordRequest) error
}

// TaskDispatcher 异步任务派发接口
type TaskDispatcher interface {
	SubmitAsync(ctx context.Context, name string, fn func(context.Context) error) error
}

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenManager app.TokenManager
	mailer       Mailer
	dispatcher   TaskDispatcher
	logger       *zap.Logger
	config       *ServiceConfig
}

var _ UserService = (*userService)(nil)

// NewUserService 创建 UserService 实例；dispatcher 为 nil 时同步发送邮件
func NewUserService(userRepo domain.UserRepository, tokenManager app.TokenManager, mailer Mailer, dispatcher TaskDispatcher, logger *zap.Logger, config *ServiceConfig) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		mailer = NewMailer(MailConfig{}, logger)
	}
	return &userService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		mailer:       mailer,
		dispatcher:   dispatcher,
		logger:       logger,
		config:       config,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *userService) domainToDTO(user *domain.User) *dto.UserDTO {
	if user == nil {
		return nil
	}
	return &dto.UserDTO{
		UID:       user.UID,
		Email:     user.Email,
		Username:  user.Username,
		UpdatedAt: timex.Time(user.UpdatedAt),
		CreatedAt: timex.Time(user.CreatedAt),
	}
}

// passwordFingerprint binds reset tokens to the current hash so a token dies once the password changes
// passwordFingerprint 将重置 Token 绑定到当前密码哈希，密码变更后 Token 即失效
func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

// Register 用户注册
func (s *userService) Register(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error) {
	// 检查注册是否启用
	if s.config == nil || !s.config.User.RegisterIsEnable {
		return nil, code.ErrorUserRegisterIsDisable
	}

	if !util.IsValidUsername(params.Username) {
		return nil, code.ErrorUserUsernameNotValid
	}
	if params.Password != params.ConfirmPassword {
		return nil, code.ErrorUserPasswordNotMatch
	}

	// 预检查用于返回明确的错误，唯一索引兜底并发注册
	if _, err := s.userRepo.GetByEmail(ctx, params.Email); err == nil {
		return nil, code.ErrorUserEmailAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, errors.Wrap(err, "check email")
	}
	if _, err := s.userRepo.GetByUsername(ctx, params.Username); err == nil {
		return nil, code.ErrorUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, errors.Wrap(err, "check username")
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return nil, code.ErrorPasswordNotValid
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Username: params.Username,
		Email:    params.Email,
		Password: password,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		return nil, code.ErrorUserAlreadyExists
	case errors.Is(err, domain.ErrDuplicateUserEmail):
		return nil, code.ErrorUserEmailAlreadyExists
	case err != nil:
		return nil, errors.Wrap(err, "create user")
	}

	token, err := s.tokenManager.Generate(user.UID, user.Username, "")
	if err != nil {
		return nil, code.ErrorTokenGenerate
	}

	s.logger.Info("user registered", zap.Int64(logger.FieldUID, user.UID))
	out := s.domainToDTO(user)
	out.Token = token
	return out, nil
}

// Login 用户登录
func (s *userService) Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error) {
	var user *domain.User
	var err error

	if util.IsValidEmail(params.Credentials) {
		user, err = s.userRepo.GetByEmail(ctx, params.Credentials)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, params.Credentials)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// 不暴露用户是否存在，统一返回用户名或密码错误
			return nil, code.ErrorUserLoginPasswordFailed
		}
		return nil, errors.Wrap(err, "load user")
	}

	if !util.CheckPasswordHash(user.Password, params.Password) {
		return nil, code.ErrorUserLoginPasswordFailed
	}

	token, err := s.tokenManager.Generate(user.UID, user.Username, clientIP)
	if err != nil {
		return nil, code.ErrorTokenGenerate
	}

	out := s.domainToDTO(user)
	out.Token = token
	return out, nil
}

// ChangePassword 修改密码
func (s *userService) ChangePassword(ctx context.Context, uid int64, params *dto.UserChangePasswordRequest) error {
	if params.Password != params.ConfirmPassword {
		return code.ErrorUserPasswordNotMatch
	}

	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return code.ErrorUserNotFound
		}
		return errors.Wrap(err, "load user")
	}

	if !util.CheckPasswordHash(user.Password, params.OldPassword) {
		return code.ErrorUserOldPasswordFailed
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return code.ErrorPasswordNotValid
	}
	return errors.Wrap(s.userRepo.UpdatePassword(ctx, password, uid), "update password")
}

// GetInfo 获取用户信息
func (s *userService) GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, code.ErrorUserNotFound
		}
		return nil, errors.Wrap(err, "load user")
	}
	return s.domainToDTO(user), nil
}

func (s *userService) resetLink(token string) string {
	base := ""
	if s.config != nil {
		base = s.config.User.ResetPasswordURL
	}
	if base == "" {
		return token
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}

// ForgotPassword 发送密码重置邮件
func (s *userService) ForgotPassword(ctx context.Context, params *dto.UserForgotPasswordRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return errors.Wrap(err, "load user")
	}

	token, err := s.tokenManager.GenerateReset(user.UID, passwordFingerprint(user.Password))
	if err != nil {
		return code.ErrorTokenGenerate
	}

	to := user.Email
	body := "Hello " + user.Username + ",\n\n" +
		"Open the link below to reset your password. It expires in 30 minutes.\n\n" +
		s.resetLink(token) + "\n\n" +
		"If you did not request a reset, ignore this email.\n"
	send := func(ctx context.Context) error {
		return s.mailer.Send(ctx, to, "Reset your password", body)
	}

	if s.dispatcher == nil {
		return errors.Wrap(send(ctx), "send reset mail")
	}
	if err := s.dispatcher.SubmitAsync(ctx, "mail.password_reset", send); err != nil {
		return errors.Wrap(err, "queue reset mail")
	}
	return nil
}

// ResetPassword 使用重置 Token 设置新密码，Token 在密码变更后失效
func (s *userService) ResetPassword(ctx context.Context, params *dto.UserResetPasswordRequest) error {
	if params.Password != params.ConfirmPassword {
		return code.ErrorUserPasswordNotMatch
	}

	claims, err := s.tokenManager.ParseReset(params.Token)
	if err != nil {
		return code.ErrorResetTokenInvalid
	}

	user, err := s.userRepo.GetByUID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return code.ErrorResetTokenInvalid
		}
		return errors.Wrap(err, "load user")
	}
	if claims.Fingerprint != passwordFingerprint(user.Password) {
		return code.ErrorResetTokenInvalid
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return code.ErrorPasswordNotValid
	}
	if err := s.userRepo.UpdatePassword(ctx, password, user.UID); err != nil {
		return errors.Wrap(err, "update password")
	}

	s.logger.Info("password reset", zap.Int64(logger.FieldUID, user.UID))
	return nil
}
