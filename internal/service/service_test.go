package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/logger"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/storage/sqlite"
	"github.com/aanand-mishra/schools-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by one second on every call so successive writes get
// distinct, predictable timestamps.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}

var start = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newStore(t *testing.T) storage.Storage {
	t.Helper()
	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "service.db")}
	store, err := sqlite.New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type fixture struct {
	store    storage.Storage
	clock    *fakeClock
	schools  *Schools
	students *Students
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newStore(t)
	clock := &fakeClock{t: start}
	return &fixture{
		store:    store,
		clock:    clock,
		schools:  NewSchools(store, WithClock(clock.Now)),
		students: NewStudents(store, WithClock(clock.Now)),
	}
}

func (f *fixture) school(t *testing.T, name string) types.School {
	t.Helper()
	school, err := f.schools.Create(context.Background(), types.SchoolForm{Name: name, Principal: "Dr. " + name})
	require.NoError(t, err)
	return school
}

func (f *fixture) student(t *testing.T, schoolID int64, studentID, email string) types.Student {
	t.Helper()
	student, err := f.students.Create(context.Background(), types.StudentForm{
		SchoolID:  schoolID,
		FullName:  "Student " + studentID,
		StudentID: studentID,
		Email:     email,
	})
	require.NoError(t, err)
	return student
}

func requireValidation(t *testing.T, err error, field, message string) {
	t.Helper()
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
	assert.Equal(t, message, verr.Message)
}
