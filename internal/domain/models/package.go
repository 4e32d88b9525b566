package models

import "time"

// Package 订阅套餐，决定HR可关联的员工数量上限
type Package struct {
	BaseModel
	Name          string   `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	PriceCents    int      `gorm:"not null" json:"price_cents"`
	EmployeeLimit int      `gorm:"not null" json:"employee_limit"`
	Features      []string `gorm:"type:text;serializer:json" json:"features"`
	IsRecommended bool     `gorm:"not null;default:false" json:"is_recommended"`
}

// TableName 指定表名
func (Package) TableName() string {
	return "packages"
}

// CheckoutStatus 支付会话状态
type CheckoutStatus string

const (
	CheckoutPending CheckoutStatus = "pending"
	CheckoutPaid    CheckoutStatus = "paid"
)

// CheckoutSession 套餐升级的支付会话
type CheckoutSession struct {
	BaseModel
	SessionID     string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"session_id"`
	HREmail       string         `gorm:"column:hr_email;type:varchar(191);not null;index" json:"hr_email"`
	PackageID     uint           `gorm:"not null" json:"package_id"`
	PackageName   string         `gorm:"type:varchar(50);not null" json:"package_name"`
	EmployeeLimit int            `gorm:"not null" json:"employee_limit"`
	AmountCents   int            `gorm:"not null" json:"amount_cents"`
	Status        CheckoutStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
}

// TableName 指定表名
func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}
