package models

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&Asset{},
		&AssetRequest{},
		&Affiliation{},
		&Assignment{},
		&ReturnRequest{},
		&Package{},
		&CheckoutSession{},
	}
}

// DefaultPackages 启动时写入的默认套餐
func DefaultPackages() []Package {
	return []Package{
		{Name: "Basic", PriceCents: 500, EmployeeLimit: 5, Features: []string{"Asset Tracking", "Employee Management", "Basic Support"}},
		{Name: "Standard", PriceCents: 800, EmployeeLimit: 10, Features: []string{"All Basic features", "Advanced Analytics", "Priority Support"}, IsRecommended: true},
		{Name: "Premium", PriceCents: 1500, EmployeeLimit: 20, Features: []string{"All Standard features", "Custom Branding", "24/7 Support"}},
	}
}
