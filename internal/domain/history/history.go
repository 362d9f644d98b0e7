package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/medvisit/visitflow/internal/domain/appointment"
)

// PackageHistory snapshots a package's pricing terms at booking time so later
// price changes never retroactively alter a booked group's financial record.
// One row per appointment; re-snapshotting replaces the prior row.
type PackageHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;uniqueIndex"`
	PackageID     uuid.UUID `gorm:"column:package_id;type:uuid;not null;index"`

	VisitCount      int     `gorm:"column:visit_count;not null"`
	PricePerVisit   float64 `gorm:"column:price_per_visit;type:numeric(10,2);not null"`
	Currency        string  `gorm:"column:currency;type:varchar(3);not null"`
	DiscountPercent float64 `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
}

func (PackageHistory) TableName() string {
	return "scheduling.package_histories"
}

// TotalPrice is the booked group's price from the snapshotted terms.
func (h *PackageHistory) TotalPrice() float64 {
	gross := h.PricePerVisit * float64(h.VisitCount)
	return gross - gross*h.DiscountPercent/100
}

// AddressHistory snapshots the patient's active address at booking time.
type AddressHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;uniqueIndex"`
	PatientID     uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`

	Line1   string `gorm:"column:line1;type:varchar(255);not null"`
	Line2   string `gorm:"column:line2;type:varchar(255)"`
	City    string `gorm:"column:city;type:varchar(100)"`
	State   string `gorm:"column:state;type:varchar(50)"`
	ZipCode string `gorm:"column:zip_code;type:varchar(20)"`
	Country string `gorm:"column:country;type:varchar(100)"`
}

func (AddressHistory) TableName() string {
	return "scheduling.address_histories"
}

// StatusHistory is an append-only audit row, written after every committed
// status change for which the acting user is known.
type StatusHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	AppointmentID uuid.UUID          `gorm:"column:appointment_id;type:uuid;not null;index"`
	OldStatus     appointment.Status `gorm:"column:old_status;type:varchar(30);not null"`
	NewStatus     appointment.Status `gorm:"column:new_status;type:varchar(30);not null"`
	Reason        string             `gorm:"column:reason;type:text"`
	ChangedBy     uuid.UUID          `gorm:"column:changed_by;type:uuid;not null"`
}

func (StatusHistory) TableName() string {
	return "scheduling.status_histories"
}
