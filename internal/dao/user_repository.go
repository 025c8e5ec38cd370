package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/internal/model"
	"github.com/haierkeys/fast-note-share-service/pkg/timex"

	"gorm.io/gorm"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

// user 获取用户表会话
func (r *userRepository) user(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnceFunc(ctx, func(g *gorm.DB) {
		_ = model.AutoMigrate(g, "User")
	}, "user#user")
}

// toDomain 将数据库模型转换为领域模型
func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		UID:       m.UID,
		Email:     m.Email,
		Username:  m.Username,
		Password:  m.Password,
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *userRepository) toModel(user *domain.User) *model.User {
	if user == nil {
		return nil
	}
	return &model.User{
		UID:       user.UID,
		Email:     user.Email,
		Username:  user.Username,
		Password:  user.Password,
		CreatedAt: timex.Time(user.CreatedAt),
		UpdatedAt: timex.Time(user.UpdatedAt),
	}
}

func (r *userRepository) first(db *gorm.DB) (*domain.User, error) {
	var m model.User
	if err := db.Take(&m).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return r.toDomain(&m), nil
}

// GetByUID 根据UID获取用户
func (r *userRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	return r.first(r.user(ctx).Where("uid = ?", uid))
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(r.user(ctx).Where("email = ?", email))
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(r.user(ctx).Where("username = ?", username))
}

// Create 创建用户，用户名或邮箱冲突时返回对应的领域错误
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := r.toModel(user)
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := r.user(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			if _, e := r.GetByUsername(ctx, user.Username); e == nil {
				return nil, domain.ErrDuplicateUsername
			}
			return nil, domain.ErrDuplicateUserEmail
		}
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdatePassword 更新用户密码
func (r *userRepository) UpdatePassword(ctx context.Context, password string, uid int64) error {
	res := r.user(ctx).Model(&model.User{}).Where("uid = ?", uid).Updates(map[string]interface{}{
		"password":   password,
		"updated_at": timex.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// 确保 userRepository 实现了 domain.UserRepository 接口
var _ domain.UserRepository = (*userRepository)(nil)
