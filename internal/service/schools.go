package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aanand-mishra/schools-api/internal/logger"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"
)

// Schools implements the school use cases.
type Schools struct {
	store storage.SchoolStorage
	opts  options
}

func NewSchools(store storage.SchoolStorage, opts ...Option) *Schools {
	return &Schools{store: store, opts: newOptions(opts)}
}

func (s *Schools) List(ctx context.Context) ([]types.School, error) {
	schools, err := s.store.ListSchools(ctx)
	if err != nil {
		return nil, wrap("Schools.List", err)
	}
	return schools, nil
}

func (s *Schools) Get(ctx context.Context, id int64) (types.School, error) {
	school, err := s.store.GetSchoolByID(ctx, id)
	if err != nil {
		return types.School{}, wrap("Schools.Get", err)
	}
	return school, nil
}

func (s *Schools) Create(ctx context.Context, form types.SchoolForm) (types.School, error) {
	if err := s.checkName(ctx, form.Name, 0); err != nil {
		return types.School{}, err
	}

	school := types.School{
		Name:      form.Name,
		Principal: form.Principal,
		Address:   form.Address,
		CreatedAt: s.opts.now(),
	}
	id, err := s.store.CreateSchool(ctx, school)
	if err != nil {
		return types.School{}, schoolConstraint(wrap("Schools.Create", err))
	}
	school.ID = id

	logger.FromContext(ctx).Info("school created", slog.Int64("id", id))
	return school, nil
}

func (s *Schools) Update(ctx context.Context, id int64, form types.SchoolForm) (types.School, error) {
	existing, err := s.store.GetSchoolByID(ctx, id)
	if err != nil {
		return types.School{}, wrap("Schools.Update", err)
	}
	if err := s.checkName(ctx, form.Name, id); err != nil {
		return types.School{}, err
	}

	now := s.opts.now()
	school := types.School{
		ID:        id,
		Name:      form.Name,
		Principal: form.Principal,
		Address:   form.Address,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: &now,
	}
	if err := s.store.UpdateSchool(ctx, school); err != nil {
		return types.School{}, schoolConstraint(wrap("Schools.Update", err))
	}

	logger.FromContext(ctx).Info("school updated", slog.Int64("id", id))
	return school, nil
}

// Delete removes a school together with its students.
func (s *Schools) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteSchoolByID(ctx, id); err != nil {
		return wrap("Schools.Delete", err)
	}
	logger.FromContext(ctx).Info("school deleted", slog.Int64("id", id))
	return nil
}

func (s *Schools) checkName(ctx context.Context, name string, excludeID int64) error {
	taken, err := s.store.SchoolNameTaken(ctx, name, excludeID)
	if err != nil {
		return wrap("check school name", err)
	}
	if taken {
		return invalid("name", msgSchoolNameExists)
	}
	return nil
}

func schoolConstraint(err error) error {
	var ce *storage.ConstraintError
	if errors.As(err, &ce) && errors.Is(ce, storage.ErrDuplicate) {
		return invalid("name", msgSchoolNameExists)
	}
	return err
}
