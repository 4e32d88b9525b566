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

// EmployeeSummary HR员工列表中的一行
type EmployeeSummary struct {
	models.Affiliation
	AssetCount int64 `json:"asset_count"`
}

// TeamMember 同公司成员
type TeamMember struct {
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	PhotoURL        string    `json:"photo_url"`
	DateOfBirth     string    `json:"date_of_birth,omitempty"`
	Role            string    `json:"role"`
	AffiliationDate time.Time `json:"affiliation_date"`
}

// Team 员工所属的一个公司团队
type Team struct {
	CompanyName string       `json:"company_name"`
	HREmail     string       `json:"hr_email"`
	Members     []TeamMember `json:"members"`
}

// RemovalResult 移除员工的处理结果
type RemovalResult struct {
	Affiliation       models.Affiliation `json:"affiliation"`
	ClosedAssignments int                `json:"closed_assignments"`
	Restocked         int                `json:"restocked"`
}

// InterfaceAffiliationService 定义员工关联接口
type InterfaceAffiliationService interface {
	ListEmployees(ctx context.Context, session Session, query models.PaginationQuery) (models.PageResult[EmployeeSummary], error)
	RemoveEmployee(ctx context.Context, session Session, affiliationID uint) (*RemovalResult, error)
	ListTeam(ctx context.Context, session Session) ([]Team, error)
}

// AffiliationService 管理HR与员工之间的关联
type AffiliationService struct {
	DB       *gorm.DB
	Config   *config.Config
	Notifier InterfaceNotificationService
}

// NewAffiliationService 创建员工关联服务
func NewAffiliationService(db *gorm.DB, cfg *config.Config, notifier InterfaceNotificationService) InterfaceAffiliationService {
	return &AffiliationService{
		DB:       db,
		Config:   cfg,
		Notifier: notifier,
	}
}

// 1 ListEmployees 分页获取HR关联的员工及其持有资产数
func (s *AffiliationService) ListEmployees(ctx context.Context, session Session, q models.PaginationQuery) (models.PageResult[EmployeeSummary], error) {
	if err := requireRole(session, RoleHR); err != nil {
		return models.PageResult[EmployeeSummary]{}, err
	}
	q = q.Normalize(10)

	query := s.DB.WithContext(ctx).Model(&models.Affiliation{}).Where("hr_email = ?", session.Email)
	page, err := paginate[models.Affiliation](query, q, "affiliation_date DESC, id DESC")
	if err != nil {
		return models.PageResult[EmployeeSummary]{}, err
	}

	counts := make(map[string]int64, len(page.Items))
	if len(page.Items) > 0 {
		emails := make([]string, 0, len(page.Items))
		for _, a := range page.Items {
			emails = append(emails, a.EmployeeEmail)
		}
		var rows []struct {
			EmployeeEmail string
			Total         int64
		}
		err := s.DB.WithContext(ctx).Model(&models.Assignment{}).
			Select("employee_email, COUNT(*) AS total").
			Where("hr_email = ? AND employee_email IN ? AND status IN ?", session.Email, emails, openAssignmentStatuses).
			Group("employee_email").
			Scan(&rows).Error
		if err != nil {
			return models.PageResult[EmployeeSummary]{}, err
		}
		for _, r := range rows {
			counts[r.EmployeeEmail] = r.Total
		}
	}

	items := make([]EmployeeSummary, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, EmployeeSummary{Affiliation: a, AssetCount: counts[a.EmployeeEmail]})
	}
	return models.PageResult[EmployeeSummary]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// 2 RemoveEmployee 移除员工：收回其持有的资产并删除关联
func (s *AffiliationService) RemoveEmployee(ctx context.Context, session Session, affiliationID uint) (*RemovalResult, error) {
	ctx, span := tracer.Start(ctx, "AffiliationService.RemoveEmployee")
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireRole(session, RoleHR); err != nil {
		return nil, err
	}

	var result RemovalResult
	err = database.RunInTransaction(ctx, s.DB, s.Config.DBMaxRetries, func(tx *gorm.DB) error {
		result = RemovalResult{}

		// 与审批使用同一把锁，避免并发审批重新建立关联
		var hr models.User
		if err := database.ForUpdate(tx).Where("email = ?", session.Email).First(&hr).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}

		var affiliation models.Affiliation
		if err := tx.First(&affiliation, affiliationID).Error; err != nil {
			return notFound(err, ErrAffiliationNotFound)
		}
		if affiliation.HREmail != hr.Email {
			return ErrAffiliationNotFound
		}

		var open []models.Assignment
		err := tx.Where("hr_email = ? AND employee_email = ? AND status IN ?", hr.Email, affiliation.EmployeeEmail, openAssignmentStatuses).
			Find(&open).Error
		if err != nil {
			return err
		}

		now := time.Now()
		for i := range open {
			if err := transitionAssignment(tx, &open[i], open[i].Status, models.AssignmentReturned, &now); err != nil {
				return err
			}
			if open[i].AssetType == models.AssetReturnable {
				restocked, err := restock(tx, open[i].AssetID)
				if err != nil {
					return err
				}
				if restocked {
					result.Restocked++
				}
			}
			result.ClosedAssignments++
		}

		err = tx.Model(&models.ReturnRequest{}).
			Where("hr_email = ? AND employee_email = ? AND status = ?", hr.Email, affiliation.EmployeeEmail, models.ReturnPending).
			Updates(map[string]interface{}{"status": models.ReturnCompleted, "resolved_at": now}).Error
		if err != nil {
			return err
		}

		if err := tx.Delete(&models.Affiliation{}, affiliation.ID).Error; err != nil {
			return err
		}

		count, err := countAffiliations(tx, hr.Email)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", hr.ID).Update("current_ep", count).Error; err != nil {
			return err
		}

		result.Affiliation = affiliation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish(ctx, models.Event{
		Type:      models.EventAffiliationRemoved,
		Recipient: result.Affiliation.EmployeeEmail,
		Actor:     session.Email,
		EntityID:  result.Affiliation.ID,
		Data:      map[string]string{"company_name": result.Affiliation.CompanyName, "hr_email": session.Email},
	})
	return &result, nil
}

// 3 ListTeam 员工查看所属公司的成员，每个关联的公司一组
func (s *AffiliationService) ListTeam(ctx context.Context, session Session) ([]Team, error) {
	if err := requireRole(session, RoleEmployee); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var mine []models.Affiliation
	if err := db.Where("employee_email = ?", session.Email).Order("affiliation_date ASC, id ASC").Find(&mine).Error; err != nil {
		return nil, err
	}

	teams := make([]Team, 0, len(mine))
	for _, a := range mine {
		team := Team{CompanyName: a.CompanyName, HREmail: a.HREmail, Members: []TeamMember{}}

		var hr models.User
		if err := db.Where("email = ?", a.HREmail).First(&hr).Error; err == nil {
			team.Members = append(team.Members, TeamMember{
				Email:       hr.Email,
				Name:        hr.Name,
				PhotoURL:    hr.PhotoURL,
				DateOfBirth: hr.DateOfBirth,
				Role:        string(models.RoleHR),
			})
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		var colleagues []models.Affiliation
		if err := db.Where("hr_email = ?", a.HREmail).Order("employee_name ASC, id ASC").Find(&colleagues).Error; err != nil {
			return nil, err
		}
		emails := make([]string, 0, len(colleagues))
		for _, c := range colleagues {
			emails = append(emails, c.EmployeeEmail)
		}
		birthdays := make(map[string]string, len(emails))
		if len(emails) > 0 {
			var users []models.User
			if err := db.Select("email", "date_of_birth").Where("email IN ?", emails).Find(&users).Error; err != nil {
				return nil, err
			}
			for _, u := range users {
				birthdays[u.Email] = u.DateOfBirth
			}
		}
		for _, c := range colleagues {
			team.Members = append(team.Members, TeamMember{
				Email:           c.EmployeeEmail,
				Name:            c.EmployeeName,
				PhotoURL:        c.EmployeePhoto,
				DateOfBirth:     birthdays[c.EmployeeEmail],
				Role:            string(models.RoleEmployee),
				AffiliationDate: c.AffiliationDate,
			})
		}
		teams = append(teams, team)
	}
	return teams, nil
}
