package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/infrastructure/database"
	"assetverse-http-service/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	packagesCacheKey = "packages:all"
	packagesCacheTTL = 10 * time.Minute
)

// PackageUsage HR当前的套餐使用情况
type PackageUsage struct {
	PackageLimit     int    `json:"package_limit"`
	AffiliationCount int64  `json:"affiliation_count"`
	Remaining        int64  `json:"remaining"`
	LimitReached     bool   `json:"limit_reached"`
	Subscription     string `json:"subscription"`
}

// CheckoutResult 创建支付会话的结果
type CheckoutResult struct {
	Session     models.CheckoutSession `json:"session"`
	CheckoutURL string                 `json:"checkout_url"`
}

// CheckoutClaims 支付回调令牌，由支付网关使用 CheckoutWebhookSecret 以 HS256 签名
type CheckoutClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// InterfacePackageService 定义套餐与员工上限接口
type InterfacePackageService interface {
	IsLimitReached(ctx context.Context, hrEmail string) (bool, error)
	Usage(ctx context.Context, hrEmail string) (*PackageUsage, error)
	ListPackages(ctx context.Context) ([]models.Package, error)
	CreateCheckout(ctx context.Context, session Session, packageID uint) (*CheckoutResult, error)
	CompleteCheckout(ctx context.Context, token string) (*models.CheckoutSession, error)
}

// PackageService 管理套餐、员工上限以及套餐升级
type PackageService struct {
	DB       *gorm.DB
	Config   *config.Config
	Cache    InterfaceRedisService
	Sessions InterfaceSessionService
	Notifier InterfaceNotificationService
}

// NewPackageService 创建套餐服务
func NewPackageService(db *gorm.DB, cfg *config.Config, cache InterfaceRedisService, sessions InterfaceSessionService, notifier InterfaceNotificationService) InterfacePackageService {
	return &PackageService{
		DB:       db,
		Config:   cfg,
		Cache:    cache,
		Sessions: sessions,
		Notifier: notifier,
	}
}

// 1 IsLimitReached 关联员工数是否已达到套餐上限
func (s *PackageService) IsLimitReached(ctx context.Context, hrEmail string) (bool, error) {
	usage, err := s.Usage(ctx, hrEmail)
	if err != nil {
		return false, err
	}
	return usage.LimitReached, nil
}

// 2 Usage 获取HR的套餐使用情况
func (s *PackageService) Usage(ctx context.Context, hrEmail string) (*PackageUsage, error) {
	db := s.DB.WithContext(ctx)

	var hr models.User
	if err := db.Where("email = ? AND role = ?", hrEmail, models.RoleHR).First(&hr).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	count, err := countAffiliations(db, hr.Email)
	if err != nil {
		return nil, err
	}

	remaining := int64(hr.PackageLimit) - count
	if remaining < 0 {
		remaining = 0
	}
	return &PackageUsage{
		PackageLimit:     hr.PackageLimit,
		AffiliationCount: count,
		Remaining:        remaining,
		LimitReached:     count >= int64(hr.PackageLimit),
		Subscription:     hr.Subscription,
	}, nil
}

// 3 ListPackages 获取所有套餐，优先读取缓存
func (s *PackageService) ListPackages(ctx context.Context) ([]models.Package, error) {
	var packages []models.Package
	if err := s.Cache.Get(ctx, packagesCacheKey, &packages); err == nil {
		return packages, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warning("读取套餐缓存失败: %v", err)
	}

	if err := s.DB.WithContext(ctx).Order("price_cents ASC, id ASC").Find(&packages).Error; err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, packagesCacheKey, packages, packagesCacheTTL); err != nil {
		logger.Warning("写入套餐缓存失败: %v", err)
	}
	return packages, nil
}

// 4 CreateCheckout HR选择套餐并创建支付会话
func (s *PackageService) CreateCheckout(ctx context.Context, session Session, packageID uint) (*CheckoutResult, error) {
	if err := requireRole(session, RoleHR); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var pkg models.Package
	if err := db.First(&pkg, packageID).Error; err != nil {
		return nil, notFound(err, ErrPackageNotFound)
	}

	checkout := models.CheckoutSession{
		SessionID:     uuid.NewString(),
		HREmail:       session.Email,
		PackageID:     pkg.ID,
		PackageName:   pkg.Name,
		EmployeeLimit: pkg.EmployeeLimit,
		AmountCents:   pkg.PriceCents,
		Status:        models.CheckoutPending,
	}
	if err := db.Create(&checkout).Error; err != nil {
		return nil, err
	}

	return &CheckoutResult{
		Session:     checkout,
		CheckoutURL: s.Config.CheckoutBaseURL + "?session_id=" + url.QueryEscape(checkout.SessionID),
	}, nil
}

// 5 CompleteCheckout 处理支付成功回调，重复回调直接返回
func (s *PackageService) CompleteCheckout(ctx context.Context, token string) (*models.CheckoutSession, error) {
	ctx, span := tracer.Start(ctx, "PackageService.CompleteCheckout")
	var err error
	defer func() { endSpan(span, err) }()

	var sessionID string
	if sessionID, err = s.parseCheckoutToken(token); err != nil {
		return nil, err
	}

	var checkout models.CheckoutSession
	upgraded := false
	err = database.RunInTransaction(ctx, s.DB, s.Config.DBMaxRetries, func(tx *gorm.DB) error {
		upgraded = false
		if err := database.ForUpdate(tx).Where("session_id = ?", sessionID).First(&checkout).Error; err != nil {
			return notFound(err, ErrCheckoutNotFound)
		}
		if checkout.Status == models.CheckoutPaid {
			return nil
		}

		now := time.Now()
		res := tx.Model(&models.CheckoutSession{}).
			Where("id = ? AND status = ?", checkout.ID, models.CheckoutPending).
			Updates(map[string]interface{}{"status": models.CheckoutPaid, "paid_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		res = tx.Model(&models.User{}).
			Where("email = ? AND role = ?", checkout.HREmail, models.RoleHR).
			Updates(map[string]interface{}{
				"package_limit": checkout.EmployeeLimit,
				"subscription":  strings.ToLower(checkout.PackageName),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		checkout.Status = models.CheckoutPaid
		checkout.PaidAt = &now
		upgraded = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if upgraded {
		s.Sessions.Invalidate(ctx, checkout.HREmail)
		s.Notifier.Publish(ctx, models.Event{
			Type:      models.EventPackageUpgraded,
			Recipient: checkout.HREmail,
			EntityID:  checkout.ID,
			Data:      checkout,
		})
	}
	return &checkout, nil
}

func (s *PackageService) parseCheckoutToken(token string) (string, error) {
	claims := &CheckoutClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.Config.CheckoutWebhookSecret), nil
	})
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return "", ErrCheckoutInvalid
	}
	return claims.SessionID, nil
}
