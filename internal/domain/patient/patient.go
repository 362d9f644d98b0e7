package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a patient record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null"`
	Phone     string `gorm:"column:phone;type:varchar(20)"`
	Email     string `gorm:"column:email;type:varchar(255)"`

	Status Status `gorm:"column:status;type:varchar(20);default:'active';index"`
}

func (Patient) TableName() string {
	return "scheduling.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Patient) IsActive() bool {
	return p.Status == StatusActive && p.DeletedAt == nil
}

// Address is a patient address. At most one per patient is active at a time;
// the active one is snapshotted onto every new visit group.
type Address struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`

	Line1   string `gorm:"column:line1;type:varchar(255);not null"`
	Line2   string `gorm:"column:line2;type:varchar(255)"`
	City    string `gorm:"column:city;type:varchar(100)"`
	State   string `gorm:"column:state;type:varchar(50)"`
	ZipCode string `gorm:"column:zip_code;type:varchar(20)"`
	Country string `gorm:"column:country;type:varchar(100)"`

	IsActive bool `gorm:"column:is_active;default:true;index"`
}

func (Address) TableName() string {
	return "scheduling.patient_addresses"
}
