package therapist

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Therapist struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null"`
	Gender    Gender `gorm:"column:gender;type:varchar(10);not null"`
	IsActive  bool   `gorm:"column:is_active;default:true;index"`
}

func (Therapist) TableName() string {
	return "scheduling.therapists"
}

// Schedule is the working configuration consumed by the conflict validators.
// Zero fields fall back to the service-wide scheduling defaults.
type Schedule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	TherapistID uuid.UUID `gorm:"column:therapist_id;type:uuid;not null;uniqueIndex"`

	AppointmentDurationMins int    `gorm:"column:appointment_duration_mins;not null;default:0"`
	BufferTimeMins          int    `gorm:"column:buffer_time_mins;not null;default:0"`
	MaxDailyAppointments    int    `gorm:"column:max_daily_appointments;not null;default:0"`
	TimeZone                string `gorm:"column:time_zone;type:varchar(64)"`
}

func (Schedule) TableName() string {
	return "scheduling.therapist_schedules"
}
