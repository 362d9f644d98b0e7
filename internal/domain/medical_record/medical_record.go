package medical_record

import (
	"time"

	"github.com/google/uuid"
)

// Record is the per-visit clinical note container. Every visit of a group
// owns exactly one; generated series visits start out with a clone of the
// root visit's record so clinical context travels with the series.
type Record struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;uniqueIndex"`
	PatientID     uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`

	Notes     string   `gorm:"column:notes;type:text"`
	Diagnoses []string `gorm:"column:diagnoses;serializer:json"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Record) TableName() string {
	return "scheduling.medical_records"
}

// CloneFor copies the record's clinical content onto another visit. Identity
// and timestamps are left for the database to assign.
func (r *Record) CloneFor(appointmentID uuid.UUID) *Record {
	return &Record{
		AppointmentID: appointmentID,
		PatientID:     r.PatientID,
		Notes:         r.Notes,
		Diagnoses:     append([]string(nil), r.Diagnoses...),
		CreatedBy:     r.CreatedBy,
	}
}
