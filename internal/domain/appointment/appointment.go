package appointment

import (
	"time"

	"github.com/google/uuid"
)

// GenderPreference is the patient's preference for the assigned therapist.
type GenderPreference string

const (
	PreferMale   GenderPreference = "male"
	PreferFemale GenderPreference = "female"
	PreferAny    GenderPreference = "any"
)

func (g GenderPreference) IsValid() bool {
	switch g {
	case PreferMale, PreferFemale, PreferAny:
		return true
	}
	return false
}

// ReferralSourceOther requires OtherReferralSource to be filled in.
const ReferralSourceOther = "Other"

// Appointment is one visit of a visit group. The group shares a registration
// number; the root visit has VisitNumber 1 and no reference appointment, and
// every generated series visit points back to the root's id.
type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	RegistrationNumber string `gorm:"column:registration_number;type:varchar(20);not null;uniqueIndex:idx_registration_visit,priority:1"`
	VisitNumber        int    `gorm:"column:visit_number;not null;uniqueIndex:idx_registration_visit,priority:2"`

	PatientID  uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	ServiceID  uuid.UUID `gorm:"column:service_id;type:uuid;not null;index"`
	PackageID  uuid.UUID `gorm:"column:package_id;type:uuid;not null"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;not null"`

	// Nil for the root visit; the root's id for every series visit.
	ReferenceAppointmentID *uuid.UUID `gorm:"column:reference_appointment_id;type:uuid;index"`

	AppointmentDateTime      *time.Time       `gorm:"column:appointment_date_time;index"`
	TherapistID              *uuid.UUID       `gorm:"column:therapist_id;type:uuid;index"`
	PreferredTherapistGender GenderPreference `gorm:"column:preferred_therapist_gender;type:varchar(10);not null;default:'any'"`

	Status       Status `gorm:"column:status;type:varchar(30);not null;index"`
	StatusReason string `gorm:"column:status_reason;type:text"`

	ReferralSource      string `gorm:"column:referral_source;type:varchar(100)"`
	OtherReferralSource string `gorm:"column:other_referral_source;type:varchar(255)"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Appointment) TableName() string {
	return "scheduling.appointments"
}

// IsRoot reports whether this is the first visit of its group.
func (a *Appointment) IsRoot() bool {
	return a.ReferenceAppointmentID == nil
}

// IsScheduled reports whether a date/time is set.
func (a *Appointment) IsScheduled() bool {
	return a.AppointmentDateTime != nil
}

// RootID returns the id of the group's root visit.
func (a *Appointment) RootID() uuid.UUID {
	if a.ReferenceAppointmentID != nil {
		return *a.ReferenceAppointmentID
	}
	return a.ID
}

// ClearSchedule drops the scheduled slot. Applied whenever a save moves the
// visit to on_hold, as part of the same write.
func (a *Appointment) ClearSchedule() {
	a.AppointmentDateTime = nil
	a.TherapistID = nil
}

// InitialStatus computes the status of a freshly created appointment. The
// status is never supplied by callers.
func (a *Appointment) InitialStatus() Status {
	switch {
	case a.TherapistID != nil:
		return StatusPendingApproval
	case a.IsRoot() || a.AppointmentDateTime != nil:
		return StatusPendingTherapist
	default:
		return StatusUnscheduled
	}
}

// OccupiedWindow is the half-open interval [Start, End) during which the
// visit's therapist is considered busy.
type OccupiedWindow struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open windows intersect.
func (w OccupiedWindow) Overlaps(o OccupiedWindow) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Window computes the occupied window from the owning therapist's schedule
// parameters. Returns false when the visit carries no date/time.
func (a *Appointment) Window(durationMins, bufferMins int) (OccupiedWindow, bool) {
	if a.AppointmentDateTime == nil {
		return OccupiedWindow{}, false
	}
	start := *a.AppointmentDateTime
	return OccupiedWindow{
		Start: start,
		End:   start.Add(time.Duration(durationMins+bufferMins) * time.Minute),
	}, true
}

// CreateCommand carries the full attribute set for a new root or standalone
// visit. Status and registration number are computed, never accepted.
type CreateCommand struct {
	PatientID                uuid.UUID
	ServiceID                uuid.UUID
	PackageID                uuid.UUID
	LocationID               uuid.UUID
	AppointmentDateTime      *time.Time
	TherapistID              *uuid.UUID
	PreferredTherapistGender GenderPreference
	ReferralSource           string
	OtherReferralSource      string
	StatusReason             string

	// Intake clinical context; seeds the root visit's medical record.
	MedicalNotes string
	Diagnoses    []string

	CreatedBy uuid.UUID
}

// RescheduleCommand moves an existing visit to a different slot or therapist.
type RescheduleCommand struct {
	AppointmentDateTime *time.Time
	TherapistID         *uuid.UUID
	UpdatedBy           uuid.UUID
}
