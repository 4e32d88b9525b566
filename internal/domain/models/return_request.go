package models

import "time"

// ReturnStatus 归还申请状态
type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "pending"
	ReturnCompleted ReturnStatus = "completed"
	ReturnRejected  ReturnStatus = "rejected"
)

// ReturnRequest 员工发起的可归还资产归还申请
type ReturnRequest struct {
	BaseModel
	AssignmentID  uint         `gorm:"not null;index" json:"assignment_id"`
	AssetID       uint         `gorm:"not null;index" json:"asset_id"`
	AssetName     string       `gorm:"type:varchar(150);not null" json:"asset_name"`
	EmployeeEmail string       `gorm:"type:varchar(191);not null;index" json:"employee_email"`
	EmployeeName  string       `gorm:"type:varchar(100)" json:"employee_name"`
	HREmail       string       `gorm:"column:hr_email;type:varchar(191);not null;index" json:"hr_email"`
	CompanyName   string       `gorm:"type:varchar(150)" json:"company_name"`
	Status        ReturnStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RequestDate   time.Time    `gorm:"not null" json:"request_date"`
	ResolvedAt    *time.Time   `json:"resolved_at,omitempty"`
}

// TableName 指定表名
func (ReturnRequest) TableName() string {
	return "return_requests"
}
