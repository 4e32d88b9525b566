package services

import (
	"context"
	"errors"
	"time"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/infrastructure/database"

	"gorm.io/gorm"
)

// ApprovalResult 审批结果
type ApprovalResult struct {
	Request            models.AssetRequest `json:"request"`
	Assignment         models.Assignment   `json:"assignment"`
	AffiliationCreated bool                `json:"affiliation_created"`
	Replayed           bool                `json:"replayed"` // 重复审批，直接返回已有结果
}

// InterfaceApprovalService 定义审批流程接口
type InterfaceApprovalService interface {
	Approve(ctx context.Context, session Session, requestID uint) (*ApprovalResult, error)
	Reject(ctx context.Context, session Session, requestID uint) (*models.AssetRequest, error)
}

// ApprovalService HR审批资产申请。
// 批准在一个事务内完成：员工关联、扣减库存、生成分配记录、修改申请状态。
type ApprovalService struct {
	DB       *gorm.DB
	Config   *config.Config
	Notifier InterfaceNotificationService
}

// NewApprovalService 创建审批服务
func NewApprovalService(db *gorm.DB, cfg *config.Config, notifier InterfaceNotificationService) InterfaceApprovalService {
	return &ApprovalService{
		DB:       db,
		Config:   cfg,
		Notifier: notifier,
	}
}

// 1 Approve 批准申请
func (s *ApprovalService) Approve(ctx context.Context, session Session, requestID uint) (*ApprovalResult, error) {
	ctx, span := tracer.Start(ctx, "ApprovalService.Approve")
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireRole(session, RoleHR); err != nil {
		return nil, err
	}

	var result ApprovalResult
	err = database.RunInTransaction(ctx, s.DB, s.Config.DBMaxRetries, func(tx *gorm.DB) error {
		result = ApprovalResult{}
		return s.approve(tx, session, requestID, &result)
	})
	if err != nil {
		return nil, err
	}

	if !result.Replayed {
		events := []models.Event{{
			Type:      models.EventRequestApproved,
			Recipient: result.Request.RequesterEmail,
			Actor:     session.Email,
			EntityID:  result.Request.ID,
			Data:      result.Assignment,
		}}
		if result.AffiliationCreated {
			events = append(events, models.Event{
				Type:      models.EventAffiliationCreated,
				Recipient: result.Request.RequesterEmail,
				Actor:     session.Email,
				Data:      map[string]string{"company_name": result.Request.CompanyName, "hr_email": session.Email},
			})
		}
		s.Notifier.Publish(ctx, events...)
	}
	return &result, nil
}

func (s *ApprovalService) approve(tx *gorm.DB, session Session, requestID uint, result *ApprovalResult) error {
	var req models.AssetRequest
	if err := database.ForUpdate(tx).First(&req, requestID).Error; err != nil {
		return notFound(err, ErrRequestNotFound)
	}
	if req.HREmail != session.Email {
		return ErrForbidden
	}

	// 重复提交的批准直接返回已有分配
	if req.Status == models.RequestApproved {
		var existing models.Assignment
		err := tx.Where("request_id = ?", req.ID).First(&existing).Error
		if err == nil {
			result.Request = req
			result.Assignment = existing
			result.Replayed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if req.Status != models.RequestPending {
		return preconditionFailed("request %d is %s", req.ID, req.Status)
	}

	// 锁定HR记录，同一HR的并发审批在此串行化，保证员工上限检查有效
	var hr models.User
	if err := database.ForUpdate(tx).Where("email = ?", req.HREmail).First(&hr).Error; err != nil {
		return notFound(err, ErrUserNotFound)
	}

	affiliationCreated, err := s.ensureAffiliation(tx, &hr, &req)
	if err != nil {
		return err
	}

	asset, err := takeFromStock(tx, req.AssetID)
	if err != nil {
		return err
	}

	now := time.Now()
	assignment := models.Assignment{
		RequestID:      req.ID,
		AssetID:        asset.ID,
		AssetName:      asset.Name,
		AssetType:      asset.Type,
		AssetPhoto:     asset.PhotoURL,
		EmployeeEmail:  req.RequesterEmail,
		EmployeeName:   req.RequesterName,
		HREmail:        hr.Email,
		CompanyName:    req.CompanyName,
		AssignmentDate: now,
		Status:         models.AssignmentAssigned,
	}
	if err := tx.Create(&assignment).Error; err != nil {
		return err
	}

	if err := transitionRequest(tx, &req, models.RequestApproved, &now); err != nil {
		return err
	}

	result.Request = req
	result.Assignment = assignment
	result.AffiliationCreated = affiliationCreated
	return nil
}

// ensureAffiliation 员工首次被该HR批准时建立关联，超出套餐上限则失败
func (s *ApprovalService) ensureAffiliation(tx *gorm.DB, hr *models.User, req *models.AssetRequest) (bool, error) {
	var affiliation models.Affiliation
	err := tx.Where("employee_email = ? AND hr_email = ?", req.RequesterEmail, hr.Email).First(&affiliation).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	count, err := countAffiliations(tx, hr.Email)
	if err != nil {
		return false, err
	}
	if count >= int64(hr.PackageLimit) {
		return false, ErrLimitReached
	}

	var employee models.User
	if err := tx.Where("email = ?", req.RequesterEmail).First(&employee).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	name := employee.Name
	if name == "" {
		name = req.RequesterName
	}

	affiliation = models.Affiliation{
		EmployeeEmail:   req.RequesterEmail,
		EmployeeName:    name,
		EmployeePhoto:   employee.PhotoURL,
		HREmail:         hr.Email,
		CompanyName:     hr.CompanyName,
		AffiliationDate: time.Now(),
		Status:          "active",
	}
	if err := tx.Create(&affiliation).Error; err != nil {
		return false, err
	}
	if err := tx.Model(&models.User{}).Where("id = ?", hr.ID).Update("current_ep", count+1).Error; err != nil {
		return false, err
	}
	return true, nil
}

// takeFromStock 扣减一件库存
func takeFromStock(tx *gorm.DB, assetID uint) (*models.Asset, error) {
	res := tx.Model(&models.Asset{}).
		Where("id = ? AND available_quantity > 0", assetID).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity - ?", 1))
	if res.Error != nil {
		return nil, res.Error
	}

	var asset models.Asset
	if err := tx.First(&asset, assetID).Error; err != nil {
		return nil, notFound(err, ErrAssetNotFound)
	}
	if res.RowsAffected == 0 {
		return nil, ErrOutOfStock
	}
	return &asset, nil
}

// 2 Reject 拒绝申请，不影响库存和员工关联
func (s *ApprovalService) Reject(ctx context.Context, session Session, requestID uint) (*models.AssetRequest, error) {
	ctx, span := tracer.Start(ctx, "ApprovalService.Reject")
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireRole(session, RoleHR); err != nil {
		return nil, err
	}

	var req models.AssetRequest
	err = database.RunInTransaction(ctx, s.DB, s.Config.DBMaxRetries, func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&req, requestID).Error; err != nil {
			return notFound(err, ErrRequestNotFound)
		}
		if req.HREmail != session.Email {
			return ErrForbidden
		}
		if req.Status != models.RequestPending {
			return preconditionFailed("request %d is %s", req.ID, req.Status)
		}
		return transitionRequest(tx, &req, models.RequestRejected, nil)
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish(ctx, models.Event{
		Type:      models.EventRequestRejected,
		Recipient: req.RequesterEmail,
		Actor:     session.Email,
		EntityID:  req.ID,
		Data:      req,
	})
	return &req, nil
}
