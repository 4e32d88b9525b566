package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/pkg/utils"

	"gorm.io/gorm"
)

// RegisterInput 注册参数
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth string
	PhotoURL    string
	CompanyName string // 仅HR
	CompanyLogo string // 仅HR
}

// ProfileUpdate 个人资料更新，nil 表示不修改
type ProfileUpdate struct {
	Name        *string
	PhotoURL    *string
	DateOfBirth *string
}

// InterfaceUserService 定义用户服务接口
type InterfaceUserService interface {
	RegisterHR(ctx context.Context, input RegisterInput) (*models.User, error)
	RegisterEmployee(ctx context.Context, input RegisterInput) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*models.User, error)
}

// UserService 提供用户注册与资料管理
type UserService struct {
	DB       *gorm.DB
	Config   *config.Config
	Sessions InterfaceSessionService
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB, cfg *config.Config, sessions InterfaceSessionService) InterfaceUserService {
	return &UserService{
		DB:       db,
		Config:   cfg,
		Sessions: sessions,
	}
}

// validatePassword 密码至少6位，且包含大写和小写字母
func validatePassword(password string) error {
	if len(password) < 6 {
		return invalidInput("password must be at least 6 characters")
	}
	var hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper || !hasLower {
		return invalidInput("password must contain upper and lower case letters")
	}
	return nil
}

func (s *UserService) register(ctx context.Context, input RegisterInput, role models.UserRole) (*models.User, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalidInput("a valid email is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidInput("name is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if role == models.RoleHR && strings.TrimSpace(input.CompanyName) == "" {
		return nil, invalidInput("company name is required")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       email,
		Password:    hash,
		Name:        strings.TrimSpace(input.Name),
		PhotoURL:    input.PhotoURL,
		DateOfBirth: input.DateOfBirth,
		Role:        role,
	}
	if role == models.RoleHR {
		user.CompanyName = strings.TrimSpace(input.CompanyName)
		user.CompanyLogo = input.CompanyLogo
		user.PackageLimit = s.Config.DefaultPackageLimit
		user.Subscription = "basic"
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserAlreadyExists
		}
		return tx.Create(user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrUserAlreadyExists
	}
	if err != nil {
		return nil, err
	}

	// 之前以 unresolved 身份缓存的会话需要失效
	s.Sessions.Invalidate(ctx, email)
	return user, nil
}

// 1 RegisterHR 注册HR经理，默认获得基础套餐的员工上限
func (s *UserService) RegisterHR(ctx context.Context, input RegisterInput) (*models.User, error) {
	return s.register(ctx, input, models.RoleHR)
}

// 2 RegisterEmployee 注册员工
func (s *UserService) RegisterEmployee(ctx context.Context, input RegisterInput) (*models.User, error) {
	return s.register(ctx, input, models.RoleEmployee)
}

// 3 GetByEmail 根据邮箱获取用户
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", utils.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// 4 UpdateProfile 更新个人资料
func (s *UserService) UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, invalidInput("name must not be empty")
		}
		updates["name"] = name
	}
	if update.PhotoURL != nil {
		updates["photo_url"] = *update.PhotoURL
	}
	if update.DateOfBirth != nil {
		updates["date_of_birth"] = *update.DateOfBirth
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.DB.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.Sessions.Invalidate(ctx, user.Email)
	return s.GetByEmail(ctx, user.Email)
}
