package services

import (
	"context"
	"time"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/infrastructure/database"
	"assetverse-http-service/pkg/logger"
	"assetverse-http-service/pkg/utils"

	"gorm.io/gorm"
)

// AssignmentQuery 员工资产列表查询条件
type AssignmentQuery struct {
	models.PaginationQuery
	Search string                  `form:"search"`
	Type   models.AssetType        `form:"type"`
	Status models.AssignmentStatus `form:"status"`
}

// ReturnQuery 归还申请列表查询条件
type ReturnQuery struct {
	models.PaginationQuery
	Status models.ReturnStatus `form:"status"`
}

// ReturnResult 归还流程的处理结果
type ReturnResult struct {
	Return     models.ReturnRequest `json:"return"`
	Assignment models.Assignment    `json:"assignment"`
	Restocked  bool                 `json:"restocked"`
}

// InterfaceReturnService 定义资产归还接口
type InterfaceReturnService interface {
	ListMyAssignments(ctx context.Context, session Session, query AssignmentQuery) (models.PageResult[models.Assignment], error)
	InitiateReturn(ctx context.Context, session Session, assignmentID uint) (*ReturnResult, error)
	ListHRReturns(ctx context.Context, session Session, query ReturnQuery) (models.PageResult[models.ReturnRequest], error)
	CompleteReturn(ctx context.Context, session Session, returnID uint) (*ReturnResult, error)
	RejectReturn(ctx context.Context, session Session, returnID uint) (*ReturnResult, error)
}

// ReturnService 处理可归还资产的归还流程
type ReturnService struct {
	DB       *gorm.DB
	Config   *config.Config
	Notifier InterfaceNotificationService
}

// NewReturnService 创建归还服务
func NewReturnService(db *gorm.DB, cfg *config.Config, notifier InterfaceNotificationService) InterfaceReturnService {
	return &ReturnService{
		DB:       db,
		Config:   cfg,
		Notifier: notifier,
	}
}

// 1 ListMyAssignments 员工持有的资产
func (s *ReturnService) ListMyAssignments(ctx context.Context, session Session, q AssignmentQuery) (models.PageResult[models.Assignment], error) {
	if err := requireRole(session, RoleEmployee); err != nil {
		return models.PageResult[models.Assignment]{}, err
	}
	q.PaginationQuery = q.PaginationQuery.Normalize(10)

	query := s.DB.WithContext(ctx).Model(&models.Assignment{}).Where("employee_email = ?", session.Email)
	if keyword := utils.FoldKeyword(q.Search); keyword != "" {
		query = query.Where("asset_name_folded LIKE ? ESCAPE '"+utils.LikeEscape+"'", utils.ContainsPattern(keyword))
	}
	if q.Type != "" {
		query = query.Where("asset_type = ?", q.Type)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	return paginate[models.Assignment](query, q.PaginationQuery, "assignment_date DESC, id DESC")
}

// 2 InitiateReturn 员工发起归还，仅限状态为 assigned 的可归还资产
func (s *ReturnService) InitiateReturn(ctx context.Context, session Session, assignmentID uint) (*ReturnResult, error) {
	ctx, span := tracer.Start(ctx, "ReturnService.InitiateReturn")
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireRole(session, RoleEmployee); err != nil {
		return nil, err
	}

	var result ReturnResult
	err = database.RunInTransaction(ctx, s.DB, s.Config.DBMaxRetries, func(tx *gorm.DB) error {
		var assignment models.Assignment
		if err := database.ForUpdate(tx).First(&assignment, assignmentID).Error; err != nil {
			return notFound(err, ErrAssignmentNotFound)
		}
		if assignment.EmployeeEmail != session.Email {
			return ErrAssignmentNotFound
		}
		if assignment.AssetType != models.AssetReturnable {
			return ErrNotReturnable
		}
		if assignment.Status != models.AssignmentAssigned {
			return preconditionFailed("assignment %d is %s", assignment.ID, assignment.Status)
		}

		if err := transitionAssignment(tx, &assignment, models.AssignmentAssigned, models.AssignmentReturnPending, nil); err != nil {
			return err
		}

		ret := models.ReturnRequest{
			AssignmentID:  assignment.ID,
			AssetID:       assignment.AssetID,
			AssetName:     assignment.AssetName,
			EmployeeEmail: assignment.EmployeeEmail,
			EmployeeName:  assignment.EmployeeName,
			HREmail:       assignment.HREmail,
			CompanyName:   assignment.CompanyName,
			Status:        models.ReturnPending,
			RequestDate:   time.Now(),
		}
		if err := tx.Create(&ret).Error; err != nil {
			return err
		}

		result = ReturnResult{Return: ret, Assignment: assignment}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish(ctx, models.Event{
		Type:      models.EventReturnInitiated,
		Recipient: result.Return.HREmail,
		Actor:     session.Email,
		EntityID:  result.Return.ID,
		Data:      result.Return,
	})
	return &result, nil
}

// 3 ListHRReturns HR收到的归还申请
func (s *ReturnService) ListHRReturns(ctx context.Context, session Session, q ReturnQuery) (models.PageResult[models.ReturnRequest], error) {
	if err := requireRole(session, RoleHR); err != nil {
		return models.PageResult[models.ReturnRequest]{}, err
	}
	q.PaginationQuery = q.PaginationQuery.Normalize(10)

	query := s.DB.WithContext(ctx).Model(&models.ReturnRequest{}).Where("hr_email = ?", session.Email)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	return paginate[models.ReturnRequest](query, q.PaginationQuery, "request_date DESC, id DESC")
}

// 4 CompleteReturn HR确认收到归还的资产，资产回到库存
func (s *ReturnService) CompleteReturn(ctx context.Context, session Session, returnID uint) (*ReturnResult, error) {
	return s.resolve(ctx, session, returnID, models.ReturnCompleted)
}

// 5 RejectReturn HR驳回归还申请，资产仍由员工持有
func (s *ReturnService) RejectReturn(ctx context.Context, session Session, returnID uint) (*ReturnResult, error) {
	return s.resolve(ctx, session, returnID, models.ReturnRejected)
}

func (s *ReturnService) resolve(ctx context.Context, session Session, returnID uint, outcome models.ReturnStatus) (*ReturnResult, error) {
	ctx, span := tracer.Start(ctx, "ReturnService.resolve")
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireRole(session, RoleHR); err != nil {
		return nil, err
	}

	var result ReturnResult
	err = database.RunInTransaction(ctx, s.DB, s.Config.DBMaxRetries, func(tx *gorm.DB) error {
		result = ReturnResult{}

		var ret models.ReturnRequest
		if err := database.ForUpdate(tx).First(&ret, returnID).Error; err != nil {
			return notFound(err, ErrReturnNotFound)
		}
		if ret.HREmail != session.Email {
			return ErrForbidden
		}
		if ret.Status != models.ReturnPending {
			return preconditionFailed("return %d is %s", ret.ID, ret.Status)
		}

		var assignment models.Assignment
		if err := database.ForUpdate(tx).First(&assignment, ret.AssignmentID).Error; err != nil {
			return notFound(err, ErrAssignmentNotFound)
		}

		now := time.Now()
		if outcome == models.ReturnCompleted {
			if err := transitionAssignment(tx, &assignment, models.AssignmentReturnPending, models.AssignmentReturned, &now); err != nil {
				return err
			}
			restocked, err := restock(tx, assignment.AssetID)
			if err != nil {
				return err
			}
			if !restocked {
				logger.Warning("归还资产 %d 时库存未变化（资产已删除或库存已满）", assignment.AssetID)
			}
			result.Restocked = restocked
		} else {
			if err := transitionAssignment(tx, &assignment, models.AssignmentReturnPending, models.AssignmentAssigned, nil); err != nil {
				return err
			}
		}

		res := tx.Model(&models.ReturnRequest{}).
			Where("id = ? AND status = ?", ret.ID, models.ReturnPending).
			Updates(map[string]interface{}{"status": outcome, "resolved_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		ret.Status = outcome
		ret.ResolvedAt = &now

		result.Return = ret
		result.Assignment = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := models.EventReturnCompleted
	if outcome == models.ReturnRejected {
		eventType = models.EventReturnRejected
	}
	s.Notifier.Publish(ctx, models.Event{
		Type:      eventType,
		Recipient: result.Return.EmployeeEmail,
		Actor:     session.Email,
		EntityID:  result.Return.ID,
		Data:      result.Return,
	})
	return &result, nil
}

// transitionAssignment 条件更新分配状态，状态不符时返回 ErrConflict
func transitionAssignment(tx *gorm.DB, assignment *models.Assignment, from, to models.AssignmentStatus, returnedAt *time.Time) error {
	updates := map[string]interface{}{"status": to}
	if returnedAt != nil {
		updates["returned_at"] = *returnedAt
	}

	res := tx.Model(&models.Assignment{}).
		Where("id = ? AND status = ?", assignment.ID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}

	assignment.Status = to
	if returnedAt != nil {
		assignment.ReturnedAt = returnedAt
	}
	return nil
}
