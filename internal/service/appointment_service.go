package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medvisit/visitflow/internal/domain/appointment"
	"github.com/medvisit/visitflow/internal/domain/therapist"
	"github.com/medvisit/visitflow/internal/repository"
	"github.com/medvisit/visitflow/internal/scheduling"
	"github.com/medvisit/visitflow/pkg/auth"
	"github.com/medvisit/visitflow/pkg/metrics"

	"github.com/medvisit/visitflow/internal/domain/catalog"
	"github.com/medvisit/visitflow/internal/domain/medical_record"
	"github.com/medvisit/visitflow/internal/domain/patient"
)

// RegistrationAllocator hands out the next service-scoped group identifier.
type RegistrationAllocator interface {
	Next(ctx context.Context, serviceCode string) (string, error)
}

// AppointmentService is the only sanctioned entry point for creating visits
// and changing their status. Every mutation runs inside one transaction;
// validators accumulate all violations before the save is rejected.
type AppointmentService struct {
	repo       appointment.Repository
	therapists therapist.Repository
	catalog    catalog.Repository
	patients   patient.Repository
	records    medical_record.Repository
	historySvc *HistoryService
	alloc      RegistrationAllocator
	tx         repository.TxManager
	metrics    *metrics.Collector
	defaults   scheduling.Defaults
	log        *zap.Logger
	now        func() time.Time
}

func NewAppointmentService(
	repo appointment.Repository,
	therapists therapist.Repository,
	cat catalog.Repository,
	patients patient.Repository,
	records medical_record.Repository,
	historySvc *HistoryService,
	alloc RegistrationAllocator,
	tx repository.TxManager,
	collector *metrics.Collector,
	defaults scheduling.Defaults,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:       repo,
		therapists: therapists,
		catalog:    cat,
		patients:   patients,
		records:    records,
		historySvc: historySvc,
		alloc:      alloc,
		tx:         tx,
		metrics:    collector,
		defaults:   defaults,
		log:        log,
		now:        time.Now,
	}
}

// CreateRootVisit books the first visit of a group. When the package calls
// for N > 1 visits and generateSeries is true, visits 2..N are materialized
// in the same transaction as unscheduled follow-ups. The series generator
// itself calls back with generateSeries = false.
func (s *AppointmentService) CreateRootVisit(
	ctx context.Context,
	cmd *appointment.CreateCommand,
	generateSeries bool,
	actor *auth.Actor,
) (*appointment.Appointment, error) {
	if cmd.PreferredTherapistGender == "" {
		cmd.PreferredTherapistGender = appointment.PreferAny
	}

	ve := &appointment.ValidationError{}
	validateCreateCommand(cmd, ve)
	if ve.HasErrors() {
		s.countValidationFailure()
		return nil, ve
	}

	var created *appointment.Appointment
	var generated int

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		svc, err := s.catalog.GetService(ctx, cmd.ServiceID)
		if err != nil {
			return err
		}
		pkg, err := s.catalog.GetPackage(ctx, cmd.PackageID)
		if err != nil {
			return err
		}
		if pkg.ServiceID != svc.ID {
			ve.Add("package_id", "package does not belong to the selected service")
		}
		if _, err := s.catalog.GetLocation(ctx, cmd.LocationID); err != nil {
			return err
		}

		p, err := s.patients.GetByID(ctx, cmd.PatientID)
		if err != nil {
			return err
		}
		if !p.IsActive() {
			return patient.ErrPatientInactive
		}
		addr, err := s.patients.GetActiveAddress(ctx, cmd.PatientID)
		if err != nil {
			return err
		}

		if cmd.TherapistID != nil {
			if err := s.checkTherapist(ctx, *cmd.TherapistID, ve); err != nil {
				return err
			}
		}

		regNum, err := s.alloc.Next(ctx, svc.Code)
		if err != nil {
			return fmt.Errorf("allocating registration number: %w", err)
		}

		a := &appointment.Appointment{
			RegistrationNumber:       regNum,
			VisitNumber:              1,
			PatientID:                cmd.PatientID,
			ServiceID:                cmd.ServiceID,
			PackageID:                cmd.PackageID,
			LocationID:               cmd.LocationID,
			AppointmentDateTime:      cmd.AppointmentDateTime,
			TherapistID:              cmd.TherapistID,
			PreferredTherapistGender: cmd.PreferredTherapistGender,
			ReferralSource:           cmd.ReferralSource,
			OtherReferralSource:      cmd.OtherReferralSource,
			StatusReason:             cmd.StatusReason,
			CreatedBy:                cmd.CreatedBy,
		}
		a.Status = a.InitialStatus()

		if a.VisitNumber > pkg.VisitCount {
			ve.Add("visit_number", fmt.Sprintf("must not exceed the package's visit count (%d)", pkg.VisitCount))
		}

		if err := s.validateSchedule(ctx, a, ve); err != nil {
			return err
		}
		if ve.HasErrors() {
			return ve
		}

		if err := s.repo.Create(ctx, a); err != nil {
			return fmt.Errorf("creating appointment: %w", err)
		}

		record := &medical_record.Record{
			AppointmentID: a.ID,
			PatientID:     a.PatientID,
			Notes:         cmd.MedicalNotes,
			Diagnoses:     cmd.Diagnoses,
			CreatedBy:     cmd.CreatedBy,
		}
		if err := s.records.Create(ctx, record); err != nil {
			return fmt.Errorf("creating medical record: %w", err)
		}

		if generateSeries && pkg.VisitCount > 1 {
			series := buildSeries(a, pkg.VisitCount)
			if err := s.repo.CreateBatch(ctx, series); err != nil {
				return fmt.Errorf("generating series visits: %w", err)
			}
			clones := make([]*medical_record.Record, 0, len(series))
			for _, v := range series {
				clones = append(clones, record.CloneFor(v.ID))
			}
			if err := s.records.CreateBatch(ctx, clones); err != nil {
				return fmt.Errorf("cloning medical records: %w", err)
			}
			generated = len(series)
		}

		if err := s.historySvc.SnapshotRoot(ctx, a, pkg, addr); err != nil {
			return fmt.Errorf("snapshotting booking terms: %w", err)
		}

		created = a
		return nil
	})
	if err != nil {
		s.countValidationFailureIf(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AppointmentsCreatedTotal.Inc()
		s.metrics.RegistrationsAllocated.Inc()
		if generated > 0 {
			s.metrics.SeriesVisitsGenerated.Add(float64(generated))
		}
	}
	s.log.Info("visit group created",
		zap.String("registration_number", created.RegistrationNumber),
		zap.Int("series_visits", generated),
		zap.String("status", string(created.Status)),
	)

	return created, nil
}

// Reschedule moves an appointment to a different slot or therapist and
// re-runs the conflict and sequence validators. An unscheduled or on-hold
// visit that receives a date/time advances to pending_therapist_assignment.
func (s *AppointmentService) Reschedule(
	ctx context.Context,
	id uuid.UUID,
	cmd *appointment.RescheduleCommand,
	actor *auth.Actor,
) (*appointment.Appointment, error) {
	var result *appointment.Appointment
	var change *statusChange

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Status.IsTerminal() && !actor.Privileged() {
			return appointment.ErrTerminalStatus
		}

		ve := &appointment.ValidationError{}
		oldStatus := a.Status

		if cmd.AppointmentDateTime != nil {
			a.AppointmentDateTime = cmd.AppointmentDateTime
		}
		if cmd.TherapistID != nil {
			if err := s.checkTherapist(ctx, *cmd.TherapistID, ve); err != nil {
				return err
			}
			a.TherapistID = cmd.TherapistID
		}
		if a.IsRoot() && a.AppointmentDateTime == nil {
			ve.Add("appointment_date_time", "a root visit must always carry a date/time")
		}

		if a.AppointmentDateTime != nil {
			switch a.Status {
			case appointment.StatusUnscheduled, appointment.StatusOnHold:
				a.Status = appointment.StatusPendingTherapist
			}
		}

		if err := s.validateSchedule(ctx, a, ve); err != nil {
			return err
		}
		if ve.HasErrors() {
			return ve
		}

		if err := s.repo.Save(ctx, a); err != nil {
			return fmt.Errorf("saving appointment: %w", err)
		}
		if a.Status != oldStatus {
			change = &statusChange{id: a.ID, old: oldStatus, new: a.Status}
		}
		result = a
		return nil
	})
	if err != nil {
		s.countValidationFailureIf(err)
		return nil, err
	}

	s.recordChanges(actor, change)
	return result, nil
}

// validateSchedule runs the conflict and series-sequence validators for one
// appointment against a transactional snapshot of its patient's calendar and
// its visit group.
func (s *AppointmentService) validateSchedule(ctx context.Context, a *appointment.Appointment, ve *appointment.ValidationError) error {
	params, err := s.resolveParams(ctx, a.TherapistID)
	if err != nil {
		return err
	}

	others, err := s.repo.ListByPatient(ctx, a.PatientID, &a.ID)
	if err != nil {
		return err
	}

	cache := map[uuid.UUID]*scheduling.Params{}
	visits := make([]scheduling.PatientVisit, 0, len(others))
	for _, o := range others {
		v := scheduling.PatientVisit{Appt: o}
		if o.TherapistID != nil {
			p, ok := cache[*o.TherapistID]
			if !ok {
				resolved, err := s.resolveParams(ctx, o.TherapistID)
				if err != nil {
					return err
				}
				p = &resolved
				cache[*o.TherapistID] = p
			}
			v.Params = p
		}
		visits = append(visits, v)
	}

	var dayCount int64
	if a.TherapistID != nil && a.AppointmentDateTime != nil && a.Status.IsScheduledState() {
		from, to := scheduling.DayWindow(*a.AppointmentDateTime, params.Location)
		dayCount, err = s.repo.CountTherapistBetween(ctx, *a.TherapistID, from, to, &a.ID)
		if err != nil {
			return err
		}
	}

	scheduling.ValidateConflicts(scheduling.ConflictInput{
		Candidate:         a,
		Params:            params,
		Now:               s.now(),
		Others:            visits,
		TherapistDayCount: dayCount,
	}, ve)

	root, siblings, err := s.loadGroup(ctx, a, visits)
	if err != nil {
		return err
	}
	scheduling.ValidateSequence(scheduling.SequenceInput{
		Candidate: a,
		Params:    params,
		Root:      root,
		Siblings:  siblings,
	}, ve)
	scheduling.ValidateStatusParity(a, root, ve)

	return nil
}

// loadGroup resolves the root and the candidate's group siblings. Sibling
// schedule params are reused from the already-resolved patient visits.
func (s *AppointmentService) loadGroup(ctx context.Context, a *appointment.Appointment, patientVisits []scheduling.PatientVisit) (*appointment.Appointment, []scheduling.PatientVisit, error) {
	byID := map[uuid.UUID]scheduling.PatientVisit{}
	for _, v := range patientVisits {
		byID[v.Appt.ID] = v
	}

	pick := func(member *appointment.Appointment) scheduling.PatientVisit {
		if v, ok := byID[member.ID]; ok {
			return v
		}
		return scheduling.PatientVisit{Appt: member}
	}

	if a.IsRoot() {
		series, err := s.repo.ListSeries(ctx, a.ID)
		if err != nil {
			return nil, nil, err
		}
		siblings := make([]scheduling.PatientVisit, 0, len(series))
		for _, m := range series {
			siblings = append(siblings, pick(m))
		}
		return a, siblings, nil
	}

	root, err := s.repo.GetByID(ctx, *a.ReferenceAppointmentID)
	if err != nil {
		return nil, nil, err
	}
	series, err := s.repo.ListSeries(ctx, root.ID)
	if err != nil {
		return nil, nil, err
	}

	siblings := []scheduling.PatientVisit{pick(root)}
	for _, m := range series {
		if m.ID == a.ID {
			continue
		}
		siblings = append(siblings, pick(m))
	}
	return root, siblings, nil
}

func (s *AppointmentService) resolveParams(ctx context.Context, therapistID *uuid.UUID) (scheduling.Params, error) {
	if therapistID == nil {
		return scheduling.Resolve(nil, s.defaults), nil
	}
	sched, err := s.therapists.GetSchedule(ctx, *therapistID)
	if err != nil {
		if errors.Is(err, therapist.ErrScheduleNotFound) {
			return scheduling.Resolve(nil, s.defaults), nil
		}
		return scheduling.Params{}, err
	}
	return scheduling.Resolve(sched, s.defaults), nil
}

func (s *AppointmentService) checkTherapist(ctx context.Context, id uuid.UUID, ve *appointment.ValidationError) error {
	t, err := s.therapists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, therapist.ErrTherapistNotFound) {
			ve.Add("therapist_id", "therapist does not exist")
			return nil
		}
		return err
	}
	if !t.IsActive {
		ve.Add("therapist_id", "therapist is not active")
	}
	return nil
}

// buildSeries materializes visits 2..visitCount from a committed root.
// Identity, scheduling and status fields are stripped; associations and the
// therapist gender preference carry over.
func buildSeries(root *appointment.Appointment, visitCount int) []*appointment.Appointment {
	rootID := root.ID
	series := make([]*appointment.Appointment, 0, visitCount-1)
	for n := 2; n <= visitCount; n++ {
		series = append(series, &appointment.Appointment{
			RegistrationNumber:       root.RegistrationNumber,
			VisitNumber:              n,
			PatientID:                root.PatientID,
			ServiceID:                root.ServiceID,
			PackageID:                root.PackageID,
			LocationID:               root.LocationID,
			ReferenceAppointmentID:   &rootID,
			PreferredTherapistGender: root.PreferredTherapistGender,
			ReferralSource:           root.ReferralSource,
			OtherReferralSource:      root.OtherReferralSource,
			Status:                   appointment.StatusUnscheduled,
			CreatedBy:                root.CreatedBy,
		})
	}
	return series
}

func validateCreateCommand(cmd *appointment.CreateCommand, ve *appointment.ValidationError) {
	if cmd.PatientID == uuid.Nil {
		ve.Add("patient_id", "is required")
	}
	if cmd.ServiceID == uuid.Nil {
		ve.Add("service_id", "is required")
	}
	if cmd.PackageID == uuid.Nil {
		ve.Add("package_id", "is required")
	}
	if cmd.LocationID == uuid.Nil {
		ve.Add("location_id", "is required")
	}
	if cmd.AppointmentDateTime == nil {
		ve.Add("appointment_date_time", "a root visit must always carry a date/time")
	}
	if !cmd.PreferredTherapistGender.IsValid() {
		ve.Add("preferred_therapist_gender", "is invalid")
	}
	if cmd.ReferralSource == appointment.ReferralSourceOther && cmd.OtherReferralSource == "" {
		ve.Add("other_referral_source", `is required when referral source is "Other"`)
	}
}

func (s *AppointmentService) countValidationFailure() {
	if s.metrics != nil {
		s.metrics.ValidationFailuresTotal.Inc()
	}
}

func (s *AppointmentService) countValidationFailureIf(err error) {
	var ve *appointment.ValidationError
	if errors.As(err, &ve) {
		s.countValidationFailure()
	}
}
