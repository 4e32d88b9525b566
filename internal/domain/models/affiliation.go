package models

import "time"

// Affiliation 员工与HR（公司）之间的雇佣关系，(员工, HR) 唯一
type Affiliation struct {
	BaseModel
	EmployeeEmail   string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_affiliation_pair" json:"employee_email"`
	EmployeeName    string    `gorm:"type:varchar(100)" json:"employee_name"`
	EmployeePhoto   string    `gorm:"type:varchar(500)" json:"employee_photo"`
	HREmail         string    `gorm:"column:hr_email;type:varchar(191);not null;uniqueIndex:idx_affiliation_pair;index" json:"hr_email"`
	CompanyName     string    `gorm:"type:varchar(150)" json:"company_name"`
	AffiliationDate time.Time `gorm:"not null" json:"affiliation_date"`
	Status          string    `gorm:"type:varchar(20);not null;default:active" json:"status"`
}

// TableName 指定表名
func (Affiliation) TableName() string {
	return "affiliations"
}
