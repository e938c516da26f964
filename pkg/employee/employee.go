// Package employee provides the example entity type served by the entitystore
// commands. Employment variants form a closed set and pay is computed by a
// single exhaustive switch over the kind.
package employee

import (
	"github.com/pkg/errors"
)

// Kind enumerates the employment variants.
type Kind string

const (
	KindFullTime   Kind = "full-time"
	KindPartTime   Kind = "part-time"
	KindContractor Kind = "contractor"
)

var (
	// ErrUnknownKind is returned by Pay for a kind outside the closed set.
	ErrUnknownKind = errors.New("unknown employee kind")
	// ErrInvalid is returned by Validate for malformed employees.
	ErrInvalid = errors.New("invalid employee")
)

// Employee is a keyed entity. Only the pay fields of the active kind are
// meaningful, the others stay zero. Amounts are in cents.
type Employee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	// full-time
	MonthlySalary int64 `json:"monthlySalary,omitempty"`
	// part-time
	HourlyRate  int64 `json:"hourlyRate,omitempty"`
	HoursWorked int64 `json:"hoursWorked,omitempty"`
	// contractor
	ContractAmount int64 `json:"contractAmount,omitempty"`
}

// Key derives the store key for an employee.
func Key(e Employee) string {
	return e.ID
}

// Pay computes the pay for the employee's kind.
func (e Employee) Pay() (int64, error) {
	switch e.Kind {
	case KindFullTime:
		return e.MonthlySalary, nil
	case KindPartTime:
		return e.HourlyRate * e.HoursWorked, nil
	case KindContractor:
		return e.ContractAmount, nil
	default:
		return 0, errors.Wrapf(ErrUnknownKind, "kind %q", e.Kind)
	}
}

// Validate checks the fields every stored employee must carry.
func (e Employee) Validate() error {
	if e.ID == "" {
		return errors.Wrap(ErrInvalid, "id must not be empty")
	}
	if e.Name == "" {
		return errors.Wrap(ErrInvalid, "name must not be empty")
	}
	switch e.Kind {
	case KindFullTime, KindPartTime, KindContractor:
		return nil
	default:
		return errors.Wrapf(ErrUnknownKind, "kind %q", e.Kind)
	}
}
