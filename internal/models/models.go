package models

// All lists every model for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&User{},
		&Property{},
		&Transaction{},
		&Insight{},
		&Holding{},
		&InvestmentTransaction{},
	}
}
