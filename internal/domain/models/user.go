package models

// UserRole 用户角色
type UserRole string

const (
	RoleHR       UserRole = "hr"
	RoleEmployee UserRole = "employee"
)

// User 平台用户，HR经理或员工，按邮箱唯一
type User struct {
	BaseModel
	Email        string   `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Password     string   `gorm:"type:varchar(100);not null" json:"-"`
	Name         string   `gorm:"type:varchar(100);not null" json:"name"`
	PhotoURL     string   `gorm:"type:varchar(500)" json:"photo_url"`
	DateOfBirth  string   `gorm:"type:varchar(20)" json:"date_of_birth"`
	Role         UserRole `gorm:"type:varchar(20);not null;index" json:"role"`
	CompanyName  string   `gorm:"type:varchar(150)" json:"company_name,omitempty"`
	CompanyLogo  string   `gorm:"type:varchar(500)" json:"company_logo,omitempty"`
	PackageLimit int      `gorm:"not null;default:0" json:"package_limit"`
	CurrentEP    int      `gorm:"column:current_ep;not null;default:0" json:"current_ep"`
	Subscription string   `gorm:"type:varchar(50)" json:"subscription,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsHR 是否为HR经理
func (u *User) IsHR() bool {
	return u.Role == RoleHR
}
