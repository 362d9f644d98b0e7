// Package registration assigns the service-scoped identifiers shared by a
// visit group. Numbers look like "PHY-000042": the service code, a dash, and
// a six-digit zero-padded sequence.
package registration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medvisit/visitflow/internal/repository"
)

// Sequence is the per-service counter row. Incrementing it under a row lock
// serializes concurrent allocations for the same code; a plain read-max-then-
// insert over the appointments table would race.
type Sequence struct {
	ServiceCode string `gorm:"column:service_code;type:varchar(10);primaryKey"`
	LastNumber  int    `gorm:"column:last_number;not null;default:0"`
}

func (Sequence) TableName() string {
	return "scheduling.registration_sequences"
}

// MaxSuffixFunc reports the greatest numeric suffix already present among
// registration numbers with the given code prefix. Used to seed a counter the
// first time a service code allocates.
type MaxSuffixFunc func(ctx context.Context, codePrefix string) (int, error)

type Allocator struct {
	db        *gorm.DB
	maxSuffix MaxSuffixFunc
}

func NewAllocator(db *gorm.DB, maxSuffix MaxSuffixFunc) *Allocator {
	return &Allocator{db: db, maxSuffix: maxSuffix}
}

// Next allocates the next registration number for a service code. Must run
// inside the transaction that inserts the root visit, so a failed insert
// rolls the counter back with it.
func (a *Allocator) Next(ctx context.Context, serviceCode string) (string, error) {
	if serviceCode == "" {
		return "", errors.New("service code is required")
	}

	db := repository.FromContext(ctx, a.db)

	var seq Sequence
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "service_code = ?", serviceCode).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		seed, seedErr := a.maxSuffix(ctx, serviceCode)
		if seedErr != nil {
			return "", fmt.Errorf("seeding registration counter: %w", seedErr)
		}
		seq = Sequence{ServiceCode: serviceCode, LastNumber: seed}
		if err := db.Create(&seq).Error; err != nil {
			return "", fmt.Errorf("creating registration counter: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("locking registration counter: %w", err)
	}

	seq.LastNumber++
	if err := db.Save(&seq).Error; err != nil {
		return "", fmt.Errorf("advancing registration counter: %w", err)
	}

	return Format(serviceCode, seq.LastNumber), nil
}

// Format renders a registration number from its parts.
func Format(serviceCode string, n int) string {
	return fmt.Sprintf("%s-%06d", serviceCode, n)
}

// ParseSuffix extracts the numeric sequence from a registration number.
func ParseSuffix(registrationNumber, serviceCode string) (int, error) {
	prefix := serviceCode + "-"
	if !strings.HasPrefix(registrationNumber, prefix) {
		return 0, fmt.Errorf("registration number %q does not match service code %q", registrationNumber, serviceCode)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(registrationNumber, prefix))
	if err != nil {
		return 0, fmt.Errorf("registration number %q has a non-numeric suffix", registrationNumber)
	}
	return n, nil
}
