package services

import (
	"context"
	"strings"
	"time"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/infrastructure/database"
	"assetverse-http-service/pkg/utils"

	"gorm.io/gorm"
)

// RequestQuery 申请列表查询条件
type RequestQuery struct {
	models.PaginationQuery
	Status models.RequestStatus `form:"status"`
	Search string               `form:"search"`
}

// InterfaceRequestService 定义资产申请服务接口
type InterfaceRequestService interface {
	SubmitRequest(ctx context.Context, session Session, assetID uint, note string) (*models.AssetRequest, error)
	CancelRequest(ctx context.Context, session Session, requestID uint) (*models.AssetRequest, error)
	GetRequest(ctx context.Context, session Session, requestID uint) (*models.AssetRequest, error)
	ListMyRequests(ctx context.Context, session Session, query RequestQuery) (models.PageResult[models.AssetRequest], error)
	ListHRRequests(ctx context.Context, session Session, query RequestQuery) (models.PageResult[models.AssetRequest], error)
}

// RequestService 处理员工的资产申请
type RequestService struct {
	DB       *gorm.DB
	Config   *config.Config
	Notifier InterfaceNotificationService
}

// NewRequestService 创建资产申请服务
func NewRequestService(db *gorm.DB, cfg *config.Config, notifier InterfaceNotificationService) InterfaceRequestService {
	return &RequestService{
		DB:       db,
		Config:   cfg,
		Notifier: notifier,
	}
}

// 1 SubmitRequest 员工提交资产申请。
// 同一员工对同一资产的多个待处理申请会各自保留，提交时不预留库存。
func (s *RequestService) SubmitRequest(ctx context.Context, session Session, assetID uint, note string) (*models.AssetRequest, error) {
	ctx, span := tracer.Start(ctx, "RequestService.SubmitRequest")
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireRole(session, RoleEmployee); err != nil {
		return nil, err
	}

	var asset models.Asset
	if err = s.DB.WithContext(ctx).First(&asset, assetID).Error; err != nil {
		err = notFound(err, ErrAssetNotFound)
		return nil, err
	}

	req := &models.AssetRequest{
		AssetID:        asset.ID,
		AssetName:      asset.Name,
		AssetType:      asset.Type,
		RequesterEmail: session.Email,
		RequesterName:  session.Name,
		HREmail:        asset.OwnerEmail,
		CompanyName:    asset.CompanyName,
		Note:           strings.TrimSpace(note),
		Status:         models.RequestPending,
		RequestDate:    time.Now(),
		Version:        1,
	}
	if err = s.DB.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}

	s.Notifier.Publish(ctx, models.Event{
		Type:      models.EventRequestSubmitted,
		Recipient: req.HREmail,
		Actor:     session.Email,
		EntityID:  req.ID,
		Data:      req,
	})
	return req, nil
}

// 2 CancelRequest 员工撤回自己的申请，仅在待处理状态下成功
func (s *RequestService) CancelRequest(ctx context.Context, session Session, requestID uint) (*models.AssetRequest, error) {
	ctx, span := tracer.Start(ctx, "RequestService.CancelRequest")
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireRole(session, RoleEmployee); err != nil {
		return nil, err
	}

	var req models.AssetRequest
	err = database.RunInTransaction(ctx, s.DB, s.Config.DBMaxRetries, func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&req, requestID).Error; err != nil {
			return notFound(err, ErrRequestNotFound)
		}
		if req.RequesterEmail != session.Email {
			return ErrForbidden
		}
		if req.Status != models.RequestPending {
			return preconditionFailed("request %d is %s", req.ID, req.Status)
		}
		return transitionRequest(tx, &req, models.RequestCancelled, nil)
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish(ctx, models.Event{
		Type:      models.EventRequestCancelled,
		Recipient: req.HREmail,
		Actor:     session.Email,
		EntityID:  req.ID,
		Data:      req,
	})
	return &req, nil
}

// 3 GetRequest 获取申请详情，只有申请人和处理该申请的HR可见
func (s *RequestService) GetRequest(ctx context.Context, session Session, requestID uint) (*models.AssetRequest, error) {
	var req models.AssetRequest
	if err := s.DB.WithContext(ctx).First(&req, requestID).Error; err != nil {
		return nil, notFound(err, ErrRequestNotFound)
	}
	if req.RequesterEmail != session.Email && req.HREmail != session.Email {
		return nil, ErrRequestNotFound
	}
	return &req, nil
}

// 4 ListMyRequests 员工的申请列表
func (s *RequestService) ListMyRequests(ctx context.Context, session Session, q RequestQuery) (models.PageResult[models.AssetRequest], error) {
	if err := requireRole(session, RoleEmployee); err != nil {
		return models.PageResult[models.AssetRequest]{}, err
	}
	return s.list(ctx, "requester_email", session.Email, q)
}

// 5 ListHRRequests HR收到的申请列表
func (s *RequestService) ListHRRequests(ctx context.Context, session Session, q RequestQuery) (models.PageResult[models.AssetRequest], error) {
	if err := requireRole(session, RoleHR); err != nil {
		return models.PageResult[models.AssetRequest]{}, err
	}
	return s.list(ctx, "hr_email", session.Email, q)
}

func (s *RequestService) list(ctx context.Context, column, email string, q RequestQuery) (models.PageResult[models.AssetRequest], error) {
	q.PaginationQuery = q.PaginationQuery.Normalize(10)

	query := s.DB.WithContext(ctx).Model(&models.AssetRequest{}).Where(column+" = ?", email)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if keyword := utils.FoldKeyword(q.Search); keyword != "" {
		pattern := utils.ContainsPattern(keyword)
		query = query.Where("(asset_name_folded LIKE ? ESCAPE '"+utils.LikeEscape+"' OR requester_name_folded LIKE ? ESCAPE '"+utils.LikeEscape+"')", pattern, pattern)
	}
	return paginate[models.AssetRequest](query, q.PaginationQuery, "request_date DESC, id DESC")
}

// transitionRequest 以乐观锁方式修改申请状态，版本不符时返回 ErrConflict
func transitionRequest(tx *gorm.DB, req *models.AssetRequest, status models.RequestStatus, approvedAt *time.Time) error {
	updates := map[string]interface{}{
		"status":  status,
		"version": req.Version + 1,
	}
	if approvedAt != nil {
		updates["approval_date"] = *approvedAt
	}

	res := tx.Model(&models.AssetRequest{}).
		Where("id = ? AND status = ? AND version = ?", req.ID, models.RequestPending, req.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}

	req.Status = status
	req.Version++
	if approvedAt != nil {
		req.ApprovalDate = approvedAt
	}
	return nil
}
