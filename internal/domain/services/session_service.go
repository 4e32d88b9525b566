package services

import (
	"context"
	"errors"
	"time"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/pkg/logger"
	"assetverse-http-service/pkg/utils"

	"gorm.io/gorm"
)

// SessionRole 会话角色
type SessionRole string

const (
	RoleGuest      SessionRole = "guest"
	RoleHR         SessionRole = "hr"
	RoleEmployee   SessionRole = "employee"
	RoleUnresolved SessionRole = "unresolved" // 已登录但没有用户记录
)

// Session 当前请求的身份信息，由认证中间件注入
type Session struct {
	UserID      uint        `json:"user_id,omitempty"`
	Email       string      `json:"email,omitempty"`
	Name        string      `json:"name,omitempty"`
	PhotoURL    string      `json:"photo_url,omitempty"`
	Role        SessionRole `json:"role"`
	CompanyName string      `json:"company_name,omitempty"`
}

// IsAuthenticated 是否已登录
func (s Session) IsAuthenticated() bool {
	return s.Role != RoleGuest
}

const sessionCacheTTL = 5 * time.Minute

// InterfaceSessionService 定义会话角色解析接口
type InterfaceSessionService interface {
	Resolve(ctx context.Context, email string, authenticated bool) (Session, error)
	Invalidate(ctx context.Context, email string)
}

// SessionService 根据登录身份解析用户角色
type SessionService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceRedisService
}

// NewSessionService 创建会话服务
func NewSessionService(db *gorm.DB, cfg *config.Config, cache InterfaceRedisService) InterfaceSessionService {
	return &SessionService{
		DB:     db,
		Config: cfg,
		Cache:  cache,
	}
}

func sessionCacheKey(email string) string {
	return "session:" + email
}

// 1 Resolve 解析会话角色：未登录为 guest，没有用户记录为 unresolved
func (s *SessionService) Resolve(ctx context.Context, email string, authenticated bool) (Session, error) {
	if !authenticated {
		return Session{Role: RoleGuest}, nil
	}
	email = utils.NormalizeEmail(email)
	if email == "" {
		return Session{Role: RoleUnresolved}, nil
	}

	var cached Session
	if err := s.Cache.Get(ctx, sessionCacheKey(email), &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warning("读取会话缓存失败 %s: %v", email, err)
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{Email: email, Role: RoleUnresolved}, nil
	}
	if err != nil {
		return Session{}, err
	}

	session := Session{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		PhotoURL:    user.PhotoURL,
		Role:        SessionRole(user.Role),
		CompanyName: user.CompanyName,
	}
	if err := s.Cache.Set(ctx, sessionCacheKey(email), session, sessionCacheTTL); err != nil {
		logger.Warning("写入会话缓存失败 %s: %v", email, err)
	}
	return session, nil
}

// 2 Invalidate 清除会话缓存
func (s *SessionService) Invalidate(ctx context.Context, email string) {
	if err := s.Cache.Delete(ctx, sessionCacheKey(utils.NormalizeEmail(email))); err != nil {
		logger.Warning("清除会话缓存失败 %s: %v", email, err)
	}
}
