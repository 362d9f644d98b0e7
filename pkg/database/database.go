package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medvisit/visitflow/internal/config"
	"github.com/medvisit/visitflow/internal/domain/appointment"
	"github.com/medvisit/visitflow/internal/domain/catalog"
	"github.com/medvisit/visitflow/internal/domain/history"
	"github.com/medvisit/visitflow/internal/domain/medical_record"
	"github.com/medvisit/visitflow/internal/domain/patient"
	"github.com/medvisit/visitflow/internal/domain/therapist"
	"github.com/medvisit/visitflow/internal/registration"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	if err := db.Exec("CREATE SCHEMA IF NOT EXISTS scheduling").Error; err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	models := []any{
		&patient.Patient{},
		&patient.Address{},
		&therapist.Therapist{},
		&therapist.Schedule{},
		&catalog.Service{},
		&catalog.Package{},
		&catalog.Location{},
		&appointment.Appointment{},
		&medical_record.Record{},
		&history.PackageHistory{},
		&history.AddressHistory{},
		&history.StatusHistory{},
		&registration.Sequence{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// Daily-cap counting: therapist + day range, non-cancelled only
		{
			name:  "idx_appointments_therapist_day",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_therapist_day ON scheduling.appointments (therapist_id, appointment_date_time) WHERE deleted_at IS NULL AND status <> 'cancelled'`,
		},
		// Patient calendar scans for overlap checks
		{
			name:  "idx_appointments_patient_time",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_patient_time ON scheduling.appointments (patient_id, appointment_date_time) WHERE deleted_at IS NULL`,
		},
		// Registration max-suffix seeding scans the code prefix in order
		{
			name:  "idx_appointments_registration_desc",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_registration_desc ON scheduling.appointments (registration_number DESC)`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
