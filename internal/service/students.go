package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aanand-mishra/schools-api/internal/logger"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"
)

// StudentPage is one page of students and its position in the full list.
type StudentPage struct {
	Items      []types.Student
	Pagination types.Pagination
}

// Students implements the student use cases.
type Students struct {
	store storage.Storage
	opts  options
}

func NewStudents(store storage.Storage, opts ...Option) *Students {
	return &Students{store: store, opts: newOptions(opts)}
}

// List returns one page of students, newest first.
func (s *Students) List(ctx context.Context, req PageRequest) (StudentPage, error) {
	req, err := req.normalize()
	if err != nil {
		return StudentPage{}, err
	}

	total, err := s.store.CountStudents(ctx)
	if err != nil {
		return StudentPage{}, wrap("Students.List", err)
	}
	page := StudentPage{
		Items:      []types.Student{},
		Pagination: newPagination(req, total),
	}

	offset, ok := req.offset()
	if !ok {
		logger.FromContext(ctx).Debug("page offset out of range",
			slog.Int("page", req.Page),
			slog.Int("page_size", req.PageSize))
		return page, nil
	}

	page.Items, err = s.store.ListStudents(ctx, int64(req.PageSize), offset)
	if err != nil {
		return StudentPage{}, wrap("Students.List", err)
	}
	return page, nil
}

func (s *Students) Get(ctx context.Context, id int64) (types.Student, error) {
	student, err := s.store.GetStudentByID(ctx, id)
	if err != nil {
		return types.Student{}, wrap("Students.Get", err)
	}
	return student, nil
}

// Create checks the form against the business rules, inserts it and
// returns the stored record.
//
// The result is built from the inserted values rather than read back, so
// a failing read cannot report an error for a row that was written.
func (s *Students) Create(ctx context.Context, form types.StudentForm) (types.Student, error) {
	school, err := s.check(ctx, form, 0)
	if err != nil {
		return types.Student{}, err
	}

	student := fromForm(form)
	student.SchoolName = school.Name
	student.CreatedAt = s.opts.now()

	id, err := s.store.CreateStudent(ctx, student)
	if err != nil {
		return types.Student{}, studentConstraint(wrap("Students.Create", err), false)
	}
	student.ID = id

	logger.FromContext(ctx).Info("student created",
		slog.Int64("id", id),
		slog.String("student_id", student.StudentID))
	return student, nil
}

// Update replaces every field of student id. created_at is kept;
// updated_at is set to now.
func (s *Students) Update(ctx context.Context, id int64, form types.StudentForm) (types.Student, error) {
	existing, err := s.store.GetStudentByID(ctx, id)
	if err != nil {
		return types.Student{}, wrap("Students.Update", err)
	}

	school, err := s.check(ctx, form, id)
	if err != nil {
		return types.Student{}, err
	}

	now := s.opts.now()
	student := fromForm(form)
	student.ID = id
	student.SchoolName = school.Name
	student.CreatedAt = existing.CreatedAt
	student.UpdatedAt = &now

	if err := s.store.UpdateStudent(ctx, student); err != nil {
		return types.Student{}, studentConstraint(wrap("Students.Update", err), true)
	}

	logger.FromContext(ctx).Info("student updated", slog.Int64("id", id))
	return student, nil
}

func (s *Students) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteStudentByID(ctx, id); err != nil {
		return wrap("Students.Delete", err)
	}
	logger.FromContext(ctx).Info("student deleted", slog.Int64("id", id))
	return nil
}

// check runs the business rules in order and stops at the first failure.
// excludeID is the record being updated, or 0 on create. It returns the
// referenced school.
func (s *Students) check(ctx context.Context, form types.StudentForm, excludeID int64) (types.School, error) {
	updating := excludeID != 0

	school, err := s.store.GetSchoolByID(ctx, form.SchoolID)
	if errors.Is(err, storage.ErrNotFound) {
		return types.School{}, invalid("schoolId", msgSchoolMissing)
	}
	if err != nil {
		return types.School{}, wrap("check school", err)
	}

	taken, err := s.store.StudentIDTaken(ctx, form.StudentID, excludeID)
	if err != nil {
		return types.School{}, wrap("check student id", err)
	}
	if taken {
		return types.School{}, invalid("studentId", pick(updating, msgStudentIDTaken, msgStudentIDExists))
	}

	taken, err = s.store.EmailTaken(ctx, form.Email, excludeID)
	if err != nil {
		return types.School{}, wrap("check email", err)
	}
	if taken {
		return types.School{}, invalid("email", pick(updating, msgEmailTaken, msgEmailExists))
	}
	return school, nil
}

// studentConstraint turns a constraint violation that slipped past check
// (a concurrent writer) into the message check would have produced.
func studentConstraint(err error, updating bool) error {
	var ce *storage.ConstraintError
	if !errors.As(err, &ce) {
		return err
	}

	switch {
	case errors.Is(ce, storage.ErrInvalidReference):
		return invalid("schoolId", msgSchoolMissing)
	case ce.Column == "student_id":
		return invalid("studentId", pick(updating, msgStudentIDTaken, msgStudentIDExists))
	case ce.Column == "email":
		return invalid("email", pick(updating, msgEmailTaken, msgEmailExists))
	}
	return err
}

func fromForm(form types.StudentForm) types.Student {
	student := types.Student{
		SchoolID:  form.SchoolID,
		FullName:  form.FullName,
		StudentID: form.StudentID,
		Email:     form.Email,
	}
	if form.Phone != "" {
		phone := form.Phone
		student.Phone = &phone
	}
	return student
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
