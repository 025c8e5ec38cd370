package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/haierkeys/fast-note-share-service/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 默认 Token 签发者
const DefaultTokenIssuer = "fast-note-share-service"

// UserTokenKey gin 上下文中保存登录用户的键
const UserTokenKey = "user_token"

const (
	subjectUser  = "user-token"
	subjectReset = "password-reset"
)

// TokenConfig 定义 Token 管理器的配置
type TokenConfig struct {
	SecretKey   string        // JWT 签名密钥
	Expiry      time.Duration // 登录 Token 过期时间，默认 7 天
	ResetExpiry time.Duration // 密码重置 Token 过期时间，默认 30 分钟
	Issuer      string        // Token 签发者
}

// TokenManager 定义 Token 管理接口
type TokenManager interface {
	Generate(uid int64, nickname, ip string) (string, error)
	Parse(token string) (*UserEntity, error)
	Validate(token string) error
	// GenerateReset issues a password reset token bound to fingerprint (derived from the
	// current password hash), so the token stops working once the password changes.
	// GenerateReset 签发绑定 fingerprint（由当前密码哈希派生）的重置 Token，密码变更后自动失效
	GenerateReset(uid int64, fingerprint string) (string, error)
	ParseReset(token string) (*ResetEntity, error)
}

type tokenManager struct {
	config TokenConfig
}

// NewTokenManager 创建一个新的 TokenManager 实例
func NewTokenManager(cfg TokenConfig) TokenManager {
	if cfg.Expiry == 0 {
		cfg.Expiry = 7 * 24 * time.Hour
	}
	if cfg.ResetExpiry == 0 {
		cfg.ResetExpiry = 30 * time.Minute
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &tokenManager{config: cfg}
}

type UserEntity struct {
	UID      int64  `json:"uid"`
	Nickname string `json:"nickname"`
	IP       string `json:"ip"`
	jwt.RegisteredClaims
}

type ResetEntity struct {
	UID         int64  `json:"uid"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

func (t *tokenManager) signingKey() []byte {
	return []byte(t.config.SecretKey + "_" + util.GetMachineID())
}

func (t *tokenManager) registered(uid int64, subject string, expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    t.config.Issuer,
		Subject:   subject,
		ID:        strconv.FormatInt(uid, 10),
	}
}

// Generate 生成登录 JWT Token
func (t *tokenManager) Generate(uid int64, nickname, ip string) (string, error) {
	claims := &UserEntity{
		UID:              uid,
		Nickname:         nickname,
		IP:               ip,
		RegisteredClaims: t.registered(uid, subjectUser, t.config.Expiry),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey())
}

// Parse 解析登录 Token 并返回用户信息
func (t *tokenManager) Parse(token string) (*UserEntity, error) {
	claims := &UserEntity{}
	if err := t.parse(token, claims, subjectUser); err != nil {
		return nil, err
	}
	return claims, nil
}

// Validate 验证 Token 是否有效
func (t *tokenManager) Validate(token string) error {
	_, err := t.Parse(token)
	return err
}

func (t *tokenManager) GenerateReset(uid int64, fingerprint string) (string, error) {
	claims := &ResetEntity{
		UID:              uid,
		Fingerprint:      fingerprint,
		RegisteredClaims: t.registered(uid, subjectReset, t.config.ResetExpiry),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey())
}

func (t *tokenManager) ParseReset(token string) (*ResetEntity, error) {
	claims := &ResetEntity{}
	if err := t.parse(token, claims, subjectReset); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *tokenManager) parse(token string, claims jwt.Claims, subject string) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.signingKey(), nil
	}, jwt.WithIssuer(t.config.Issuer), jwt.WithSubject(subject))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// GetUID extracts the user ID from the request context.
// GetUID 从请求上下文获取用户 ID
func GetUID(ctx *gin.Context) (out int64) {
	if user, exist := ctx.Get(UserTokenKey); exist {
		if userEntity, ok := user.(*UserEntity); ok {
			out = userEntity.UID
		}
	}
	return
}
