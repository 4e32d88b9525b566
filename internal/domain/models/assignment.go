package models

import (
	"time"

	"assetverse-http-service/pkg/utils"

	"gorm.io/gorm"
)

// AssignmentStatus 资产分配状态
type AssignmentStatus string

const (
	AssignmentAssigned      AssignmentStatus = "assigned"
	AssignmentReturnPending AssignmentStatus = "return-pending"
	AssignmentReturned      AssignmentStatus = "returned"
)

// Assignment 员工当前持有的一件资产。RequestID 唯一，保证每个已批准的申请只产生一条分配记录。
type Assignment struct {
	BaseModel
	RequestID      uint             `gorm:"not null;uniqueIndex" json:"request_id"`
	AssetID        uint             `gorm:"not null;index" json:"asset_id"`
	AssetName      string           `gorm:"type:varchar(150);not null" json:"asset_name"`
	AssetType      AssetType        `gorm:"type:varchar(20);not null" json:"asset_type"`
	AssetPhoto     string           `gorm:"type:varchar(500)" json:"asset_photo"`
	EmployeeEmail  string           `gorm:"type:varchar(191);not null;index" json:"employee_email"`
	EmployeeName   string           `gorm:"type:varchar(100)" json:"employee_name"`
	HREmail        string           `gorm:"column:hr_email;type:varchar(191);not null;index" json:"hr_email"`
	CompanyName    string           `gorm:"type:varchar(150)" json:"company_name"`
	AssignmentDate time.Time        `gorm:"not null" json:"assignment_date"`
	ReturnedAt     *time.Time       `json:"returned_at,omitempty"`
	Status         AssignmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	AssetNameFolded string `gorm:"type:varchar(150);not null;default:''" json:"-"` // 搜索列
}

// TableName 指定表名
func (Assignment) TableName() string {
	return "assignments"
}

// IsOpen 资产是否仍在员工手中
func (a *Assignment) IsOpen() bool {
	return a.Status == AssignmentAssigned || a.Status == AssignmentReturnPending
}

// BeforeSave 写入前同步搜索列
func (a *Assignment) BeforeSave(tx *gorm.DB) error {
	a.AssetNameFolded = utils.FoldKeyword(a.AssetName)
	return nil
}
