// Package storage defines the Storage interface, a contract that any
// database backend must satisfy to work with this application, together
// with the errors every backend reports.
//
// Services depend only on these interfaces. Switching databases means
// implementing them for the new engine and changing one line in main.go.
//
// Backends translate driver errors into the sentinels below so callers can
// use errors.Is without knowing which engine produced the failure.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/schools-api/internal/types"
)

var (
	// ErrNotFound is returned when a requested row does not exist, or when
	// an update/delete affected zero rows.
	ErrNotFound = errors.New("record not found")

	// ErrSchoolNotFound indicates that the requested school does not exist.
	ErrSchoolNotFound = fmt.Errorf("%w: school", ErrNotFound)

	// ErrStudentNotFound indicates that the requested student does not exist.
	ErrStudentNotFound = fmt.Errorf("%w: student", ErrNotFound)

	// ErrDuplicate is reported when a write violates a UNIQUE constraint.
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidReference is reported when a write violates a FOREIGN KEY
	// constraint.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// ConstraintError is a constraint violation raised by the database itself.
//
// Kind is ErrDuplicate or ErrInvalidReference, so
//
//	errors.Is(err, storage.ErrDuplicate)
//
// works on any error chain containing a ConstraintError. Table and Column
// are filled in when the driver reports them.
type ConstraintError struct {
	Kind   error
	Table  string
	Column string
	Err    error
}

func (e *ConstraintError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%v (%s.%s): %v", e.Kind, e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Is reports whether target is the sentinel this violation represents.
func (e *ConstraintError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the driver error.
func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// SchoolStorage persists schools.
type SchoolStorage interface {
	// ListSchools returns every school ordered by id.
	// Returns an empty slice (not nil) if there are no schools.
	ListSchools(ctx context.Context) ([]types.School, error)

	// GetSchoolByID returns ErrSchoolNotFound when no row matches.
	GetSchoolByID(ctx context.Context, id int64) (types.School, error)

	// CreateSchool inserts a school and returns the generated primary key.
	CreateSchool(ctx context.Context, school types.School) (int64, error)

	// UpdateSchool replaces every mutable column of the row with school.ID.
	UpdateSchool(ctx context.Context, school types.School) error

	// DeleteSchoolByID removes a school (and, by cascade, its students).
	DeleteSchoolByID(ctx context.Context, id int64) error

	// SchoolNameTaken reports whether a school other than excludeID uses name.
	// Pass 0 as excludeID when creating.
	SchoolNameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
}

// StudentStorage persists students.
type StudentStorage interface {
	// ListStudents returns one page ordered by created_at DESC, id DESC.
	ListStudents(ctx context.Context, limit, offset int64) ([]types.Student, error)

	CountStudents(ctx context.Context) (int64, error)

	// GetStudentByID returns ErrStudentNotFound when no row matches.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// CreateStudent inserts a student and returns the generated primary key.
	CreateStudent(ctx context.Context, student types.Student) (int64, error)

	// UpdateStudent replaces every mutable column of the row with student.ID.
	UpdateStudent(ctx context.Context, student types.Student) error

	DeleteStudentByID(ctx context.Context, id int64) error

	// StudentIDTaken reports whether a student other than excludeID uses
	// the external identifier.
	StudentIDTaken(ctx context.Context, studentID string, excludeID int64) (bool, error)

	// EmailTaken reports whether a student other than excludeID uses email.
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
}

// Storage is the full database contract.
type Storage interface {
	SchoolStorage
	StudentStorage

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	Close() error
}
