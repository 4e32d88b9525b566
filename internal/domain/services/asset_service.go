package services

import (
	"context"
	"strings"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/infrastructure/database"
	"assetverse-http-service/pkg/utils"

	"gorm.io/gorm"
)

// AssetQuery 资产目录查询条件。筛选在分页之前执行，Total 为筛选后的数量。
type AssetQuery struct {
	models.PaginationQuery
	Search        string           `form:"search"`
	Type          models.AssetType `form:"type"`
	Company       string           `form:"company"`
	OwnerEmail    string           `form:"-"`
	AvailableOnly bool             `form:"available"`
}

// AssetInput 创建或更新资产的参数
type AssetInput struct {
	Name     string
	Type     models.AssetType
	PhotoURL string
	Quantity int
}

// InterfaceAssetService 定义资产服务接口
type InterfaceAssetService interface {
	ListAssets(ctx context.Context, query AssetQuery) (models.PageResult[models.Asset], error)
	GetAsset(ctx context.Context, id uint) (*models.Asset, error)
	CreateAsset(ctx context.Context, session Session, input AssetInput) (*models.Asset, error)
	UpdateAsset(ctx context.Context, session Session, id uint, input AssetInput) (*models.Asset, error)
	DeleteAsset(ctx context.Context, session Session, id uint) error
}

// AssetService 提供资产目录与库存管理
type AssetService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAssetService 创建资产服务
func NewAssetService(db *gorm.DB, cfg *config.Config) InterfaceAssetService {
	return &AssetService{
		DB:     db,
		Config: cfg,
	}
}

// 1 ListAssets 分页获取资产目录，页码从0开始
func (s *AssetService) ListAssets(ctx context.Context, q AssetQuery) (models.PageResult[models.Asset], error) {
	ctx, span := tracer.Start(ctx, "AssetService.ListAssets")
	var err error
	defer func() { endSpan(span, err) }()

	q.PaginationQuery = q.PaginationQuery.Normalize(s.Config.CatalogPageSize)
	if q.Type != "" && !q.Type.Valid() {
		err = invalidInput("unknown asset type %q", q.Type)
		return models.PageResult[models.Asset]{}, err
	}

	query := s.DB.WithContext(ctx).Model(&models.Asset{})
	if keyword := utils.FoldKeyword(q.Search); keyword != "" {
		query = query.Where("name_folded LIKE ? ESCAPE '"+utils.LikeEscape+"'", utils.ContainsPattern(keyword))
	}
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if q.Company != "" {
		query = query.Where("company_name = ?", q.Company)
	}
	if q.OwnerEmail != "" {
		query = query.Where("owner_email = ?", q.OwnerEmail)
	}
	if q.AvailableOnly {
		query = query.Where("available_quantity > 0")
	}

	var result models.PageResult[models.Asset]
	result, err = paginate[models.Asset](query, q.PaginationQuery, "created_at DESC, id DESC")
	return result, err
}

// 2 GetAsset 获取单个资产
func (s *AssetService) GetAsset(ctx context.Context, id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := s.DB.WithContext(ctx).First(&asset, id).Error; err != nil {
		return nil, notFound(err, ErrAssetNotFound)
	}
	return &asset, nil
}

func validateAssetInput(input AssetInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return invalidInput("asset name is required")
	}
	if !input.Type.Valid() {
		return invalidInput("asset type must be returnable or non-returnable")
	}
	if input.Quantity < 0 {
		return invalidInput("quantity must not be negative")
	}
	return nil
}

// 3 CreateAsset HR向库存中添加资产
func (s *AssetService) CreateAsset(ctx context.Context, session Session, input AssetInput) (*models.Asset, error) {
	if err := requireRole(session, RoleHR); err != nil {
		return nil, err
	}
	if err := validateAssetInput(input); err != nil {
		return nil, err
	}

	asset := &models.Asset{
		Name:              strings.TrimSpace(input.Name),
		Type:              input.Type,
		PhotoURL:          input.PhotoURL,
		Quantity:          input.Quantity,
		AvailableQuantity: input.Quantity,
		CompanyName:       session.CompanyName,
		OwnerEmail:        session.Email,
	}
	if err := s.DB.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// 4 UpdateAsset 更新资产。已发放的数量保持不变，总量不能低于已发放数量。
func (s *AssetService) UpdateAsset(ctx context.Context, session Session, id uint, input AssetInput) (*models.Asset, error) {
	if err := requireRole(session, RoleHR); err != nil {
		return nil, err
	}
	if err := validateAssetInput(input); err != nil {
		return nil, err
	}

	var asset models.Asset
	err := database.RunInTransaction(ctx, s.DB, s.Config.DBMaxRetries, func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&asset, id).Error; err != nil {
			return notFound(err, ErrAssetNotFound)
		}
		if asset.OwnerEmail != session.Email {
			return ErrForbidden
		}
		issued := asset.Issued()
		if input.Quantity < issued {
			return preconditionFailed("quantity %d is below the %d units currently issued", input.Quantity, issued)
		}

		asset.Name = strings.TrimSpace(input.Name)
		asset.Type = input.Type
		asset.PhotoURL = input.PhotoURL
		asset.Quantity = input.Quantity
		asset.AvailableQuantity = input.Quantity - issued
		return tx.Save(&asset).Error
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// 5 DeleteAsset 删除资产，可归还资产仍有未归还的分配时拒绝
func (s *AssetService) DeleteAsset(ctx context.Context, session Session, id uint) error {
	if err := requireRole(session, RoleHR); err != nil {
		return err
	}

	return database.RunInTransaction(ctx, s.DB, s.Config.DBMaxRetries, func(tx *gorm.DB) error {
		var asset models.Asset
		if err := database.ForUpdate(tx).First(&asset, id).Error; err != nil {
			return notFound(err, ErrAssetNotFound)
		}
		if asset.OwnerEmail != session.Email {
			return ErrForbidden
		}

		// 不可归还的资产发放即消耗，不阻止删除
		if asset.Type == models.AssetReturnable {
			var open int64
			if err := tx.Model(&models.Assignment{}).
				Where("asset_id = ? AND status IN ?", asset.ID, openAssignmentStatuses).
				Count(&open).Error; err != nil {
				return err
			}
			if open > 0 {
				return ErrAssetInUse
			}
		}
		return tx.Delete(&asset).Error
	})
}
