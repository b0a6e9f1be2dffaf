package models

import "time"

// Property is a tracked real-estate holding. Structural and valuation
// fields are fixed at creation; only the financing fields change later.
type Property struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	UserID           uint    `gorm:"index;not null" json:"userId"`
	FormattedAddress string  `gorm:"size:500;not null" json:"formattedAddress"`
	PropertyType     string  `gorm:"size:50;not null" json:"propertyType"`
	Bedrooms         int     `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms        float64 `gorm:"type:decimal(4,1);not null;default:0" json:"bathrooms"`
	SquareFootage    int     `gorm:"not null;default:0" json:"squareFootage"`
	YearBuilt        int     `gorm:"not null;default:0" json:"yearBuilt"`
	LastSale         string  `gorm:"size:50" json:"lastSale"`
	LastSalePrice    float64 `gorm:"type:decimal(14,2);not null;default:0" json:"lastSalePrice"`
	Price            float64 `gorm:"type:decimal(14,2);not null;default:0" json:"price"`
	PriceRangeLow    float64 `gorm:"type:decimal(14,2);not null;default:0" json:"priceRangeLow"`
	PriceRangeHigh   float64 `gorm:"type:decimal(14,2);not null;default:0" json:"priceRangeHigh"`
	Image            string  `gorm:"size:1000" json:"image"`
	Notes            string  `gorm:"type:text" json:"notes"`
	MonthlyRent      float64 `gorm:"type:decimal(12,2);not null;default:0" json:"monthlyRent"`
	MortgagePayment  float64 `gorm:"type:decimal(12,2);not null;default:0" json:"mortgagePayment"`
	MortgageBalance  float64 `gorm:"type:decimal(14,2);not null;default:0" json:"mortgageBalance"`
	HOAPayment       float64 `gorm:"type:decimal(12,2);not null;default:0" json:"hoaPayment"`
	InterestRate     float64 `gorm:"type:decimal(6,3);not null;default:0" json:"interestRate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Property model
func (Property) TableName() string {
	return "properties"
}
