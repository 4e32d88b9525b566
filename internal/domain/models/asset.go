package models

import (
	"assetverse-http-service/pkg/utils"

	"gorm.io/gorm"
)

// AssetType 资产类型
type AssetType string

const (
	AssetReturnable    AssetType = "returnable"
	AssetNonReturnable AssetType = "non-returnable"
)

// Valid 检查资产类型是否合法
func (t AssetType) Valid() bool {
	return t == AssetReturnable || t == AssetNonReturnable
}

// Asset 公司资产，0 <= AvailableQuantity <= Quantity
type Asset struct {
	BaseModel
	Name              string    `gorm:"type:varchar(150);not null;index" json:"name"`
	NameFolded        string    `gorm:"type:varchar(150);not null;default:'';index" json:"-"` // 搜索列
	Type              AssetType `gorm:"type:varchar(20);not null;index" json:"type"`
	PhotoURL          string    `gorm:"type:varchar(500)" json:"photo_url"`
	Quantity          int       `gorm:"not null" json:"quantity"`
	AvailableQuantity int       `gorm:"not null" json:"available_quantity"`
	CompanyName       string    `gorm:"type:varchar(150);index" json:"company_name"`
	OwnerEmail        string    `gorm:"type:varchar(191);not null;index" json:"owner_email"`
}

// TableName 指定表名
func (Asset) TableName() string {
	return "assets"
}

// Issued 已发放数量
func (a *Asset) Issued() int {
	return a.Quantity - a.AvailableQuantity
}

// BeforeSave 写入前同步搜索列
func (a *Asset) BeforeSave(tx *gorm.DB) error {
	a.NameFolded = utils.FoldKeyword(a.Name)
	return nil
}
