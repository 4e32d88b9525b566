package models

import (
	"time"

	"assetverse-http-service/pkg/utils"

	"gorm.io/gorm"
)

// RequestStatus 资产申请状态
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// AssetRequest 员工对某项资产的申请。除 pending 外的所有状态都是终态。
type AssetRequest struct {
	BaseModel
	AssetID        uint          `gorm:"not null;index" json:"asset_id"`
	AssetName      string        `gorm:"type:varchar(150);not null" json:"asset_name"`
	AssetType      AssetType     `gorm:"type:varchar(20);not null" json:"asset_type"`
	RequesterEmail string        `gorm:"type:varchar(191);not null;index" json:"requester_email"`
	RequesterName  string        `gorm:"type:varchar(100)" json:"requester_name"`
	HREmail        string        `gorm:"column:hr_email;type:varchar(191);not null;index" json:"hr_email"`
	CompanyName    string        `gorm:"type:varchar(150)" json:"company_name"`
	Note           string        `gorm:"type:text" json:"note"`
	Status         RequestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RequestDate    time.Time     `gorm:"not null" json:"request_date"`
	ApprovalDate   *time.Time    `json:"approval_date,omitempty"`
	Version        int           `gorm:"not null;default:1" json:"version"`

	// 搜索列，由 BeforeSave 维护
	AssetNameFolded     string `gorm:"type:varchar(150);not null;default:''" json:"-"`
	RequesterNameFolded string `gorm:"type:varchar(100);not null;default:''" json:"-"`
}

// TableName 指定表名
func (AssetRequest) TableName() string {
	return "asset_requests"
}

// IsTerminal 是否处于终态
func (r *AssetRequest) IsTerminal() bool {
	return r.Status != RequestPending
}

// BeforeSave 写入前同步搜索列
func (r *AssetRequest) BeforeSave(tx *gorm.DB) error {
	r.AssetNameFolded = utils.FoldKeyword(r.AssetName)
	r.RequesterNameFolded = utils.FoldKeyword(r.RequesterName)
	return nil
}
