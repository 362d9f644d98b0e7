package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/medvisit/visitflow/internal/domain/appointment"
	"github.com/medvisit/visitflow/internal/domain/catalog"
	"github.com/medvisit/visitflow/internal/domain/history"
	"github.com/medvisit/visitflow/internal/domain/medical_record"
	"github.com/medvisit/visitflow/internal/domain/patient"
	"github.com/medvisit/visitflow/internal/domain/therapist"
	"github.com/medvisit/visitflow/internal/scheduling"
)

// passthroughTx runs the function directly; unit tests have no database.
type passthroughTx struct{}

func (passthroughTx) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockAppointmentRepo struct{ mock.Mock }

func (m *mockAppointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAppointmentRepo) CreateBatch(ctx context.Context, as []*appointment.Appointment) error {
	return m.Called(ctx, as).Error(0)
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*appointment.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAppointmentRepo) Save(ctx context.Context, a *appointment.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAppointmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, excludeID *uuid.UUID) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, patientID, excludeID)
	if as := args.Get(0); as != nil {
		return as.([]*appointment.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAppointmentRepo) ListSeries(ctx context.Context, rootID uuid.UUID) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, rootID)
	if as := args.Get(0); as != nil {
		return as.([]*appointment.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAppointmentRepo) ListGroup(ctx context.Context, registrationNumber string) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, registrationNumber)
	if as := args.Get(0); as != nil {
		return as.([]*appointment.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAppointmentRepo) CountTherapistBetween(ctx context.Context, therapistID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, therapistID, from, to, excludeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAppointmentRepo) MaxRegistrationSuffix(ctx context.Context, codePrefix string) (int, error) {
	args := m.Called(ctx, codePrefix)
	return args.Int(0), args.Error(1)
}

type mockTherapistRepo struct{ mock.Mock }

func (m *mockTherapistRepo) GetByID(ctx context.Context, id uuid.UUID) (*therapist.Therapist, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*therapist.Therapist), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTherapistRepo) GetSchedule(ctx context.Context, therapistID uuid.UUID) (*therapist.Schedule, error) {
	args := m.Called(ctx, therapistID)
	if s := args.Get(0); s != nil {
		return s.(*therapist.Schedule), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCatalogRepo struct{ mock.Mock }

func (m *mockCatalogRepo) GetService(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*catalog.Service), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogRepo) GetPackage(ctx context.Context, id uuid.UUID) (*catalog.Package, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*catalog.Package), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogRepo) GetLocation(ctx context.Context, id uuid.UUID) (*catalog.Location, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*catalog.Location), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPatientRepo struct{ mock.Mock }

func (m *mockPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*patient.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPatientRepo) GetActiveAddress(ctx context.Context, patientID uuid.UUID) (*patient.Address, error) {
	args := m.Called(ctx, patientID)
	if a := args.Get(0); a != nil {
		return a.(*patient.Address), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMedicalRecordRepo struct{ mock.Mock }

func (m *mockMedicalRecordRepo) Create(ctx context.Context, r *medical_record.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockMedicalRecordRepo) CreateBatch(ctx context.Context, rs []*medical_record.Record) error {
	return m.Called(ctx, rs).Error(0)
}

func (m *mockMedicalRecordRepo) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*medical_record.Record, error) {
	args := m.Called(ctx, appointmentID)
	if r := args.Get(0); r != nil {
		return r.(*medical_record.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockHistoryRepo struct{ mock.Mock }

func (m *mockHistoryRepo) ReplacePackageHistory(ctx context.Context, h *history.PackageHistory) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockHistoryRepo) ReplaceAddressHistory(ctx context.Context, h *history.AddressHistory) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockHistoryRepo) AppendStatusHistory(ctx context.Context, h *history.StatusHistory) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockHistoryRepo) GetPackageHistory(ctx context.Context, appointmentID uuid.UUID) (*history.PackageHistory, error) {
	args := m.Called(ctx, appointmentID)
	if h := args.Get(0); h != nil {
		return h.(*history.PackageHistory), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockHistoryRepo) ListStatusHistory(ctx context.Context, appointmentID uuid.UUID) ([]*history.StatusHistory, error) {
	args := m.Called(ctx, appointmentID)
	if hs := args.Get(0); hs != nil {
		return hs.([]*history.StatusHistory), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAllocator struct{ mock.Mock }

func (m *mockAllocator) Next(ctx context.Context, serviceCode string) (string, error) {
	args := m.Called(ctx, serviceCode)
	return args.String(0), args.Error(1)
}

// fixture bundles a service wired to mocks with a frozen clock.
type fixture struct {
	svc        *AppointmentService
	repo       *mockAppointmentRepo
	therapists *mockTherapistRepo
	catalog    *mockCatalogRepo
	patients   *mockPatientRepo
	records    *mockMedicalRecordRepo
	histRepo   *mockHistoryRepo
	alloc      *mockAllocator
	now        time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:       &mockAppointmentRepo{},
		therapists: &mockTherapistRepo{},
		catalog:    &mockCatalogRepo{},
		patients:   &mockPatientRepo{},
		records:    &mockMedicalRecordRepo{},
		histRepo:   &mockHistoryRepo{},
		alloc:      &mockAllocator{},
		now:        time.Date(2030, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	// the worker may fire after the test returns
	f.histRepo.On("AppendStatusHistory", mock.Anything, mock.Anything).Return(nil).Maybe()

	log := zap.NewNop()
	f.svc = NewAppointmentService(
		f.repo, f.therapists, f.catalog, f.patients, f.records,
		NewHistoryService(f.histRepo, nil, log),
		f.alloc, passthroughTx{}, nil,
		scheduling.Defaults{DurationMins: 60, MaxDaily: 8, Location: time.UTC},
		log,
	)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) futureTime(hours int) *time.Time {
	t := f.now.Add(time.Duration(hours) * time.Hour)
	return &t
}
