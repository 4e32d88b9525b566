package services

import (
	"errors"

	"assetverse-http-service/internal/domain/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("assetverse-http-service/services")

// openAssignmentStatuses 资产仍在员工手中的分配状态
var openAssignmentStatuses = []models.AssignmentStatus{models.AssignmentAssigned, models.AssignmentReturnPending}

// endSpan 结束追踪，出错时记录错误
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// requireRole 检查会话角色
func requireRole(session Session, role SessionRole) error {
	switch session.Role {
	case role:
		return nil
	case RoleUnresolved:
		return ErrRoleUnresolved
	default:
		return ErrForbidden
	}
}

// paginate 统计总数后查询当前页
func paginate[T any](query *gorm.DB, q models.PaginationQuery, order string) (models.PageResult[T], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return models.PageResult[T]{}, err
	}

	var items []T
	if err := query.Order(order).Limit(q.PageSize).Offset(q.Offset()).Find(&items).Error; err != nil {
		return models.PageResult[T]{}, err
	}
	return models.NewPageResult(items, total, q), nil
}

// notFound 将 gorm 的记录不存在错误替换为业务错误
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// countAffiliations 统计HR当前关联的员工数量
func countAffiliations(tx *gorm.DB, hrEmail string) (int64, error) {
	var count int64
	err := tx.Model(&models.Affiliation{}).Where("hr_email = ?", hrEmail).Count(&count).Error
	return count, err
}

// restock 归还一件资产到库存，库存已满时不变
func restock(tx *gorm.DB, assetID uint) (bool, error) {
	res := tx.Model(&models.Asset{}).
		Where("id = ? AND available_quantity < quantity", assetID).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity + ?", 1))
	return res.RowsAffected > 0, res.Error
}
