package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Service is a bookable medical service. Code is the registration-number
// prefix for every visit group created under it.
type Service struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Code string `gorm:"column:code;type:varchar(10);not null;uniqueIndex"`
	Name string `gorm:"column:name;type:varchar(255);not null"`
}

func (Service) TableName() string {
	return "scheduling.services"
}

// Package defines how many visits a booking generates and what they cost.
// Pricing fields are snapshotted into PackageHistory at booking time, so
// later edits never change an existing group's financial record.
type Package struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	ServiceID uuid.UUID `gorm:"column:service_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`

	VisitCount      int     `gorm:"column:visit_count;not null;default:1"`
	PricePerVisit   float64 `gorm:"column:price_per_visit;type:numeric(10,2);not null"`
	Currency        string  `gorm:"column:currency;type:varchar(3);not null;default:'USD'"`
	DiscountPercent float64 `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
}

func (Package) TableName() string {
	return "scheduling.packages"
}

// TotalPrice is the package price across all visits, less the discount.
func (p *Package) TotalPrice() float64 {
	gross := p.PricePerVisit * float64(p.VisitCount)
	return gross - gross*p.DiscountPercent/100
}

type Location struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Name     string `gorm:"column:name;type:varchar(255);not null"`
	IsActive bool   `gorm:"column:is_active;default:true"`
}

func (Location) TableName() string {
	return "scheduling.locations"
}
