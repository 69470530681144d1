package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"
)

// Explicitly list columns: if a column is added later, SELECT * would
// break the Scan ordering.
const schoolColumns = "id, name, principal, address, created_at, updated_at"

func scanSchool(row scanner) (types.School, error) {
	var (
		school    types.School
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&school.ID,
		&school.Name,
		&school.Principal,
		&school.Address,
		&school.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return types.School{}, err
	}
	school.UpdatedAt = timePtr(updatedAt)
	return school, nil
}

func (s *Store) ListSchools(ctx context.Context) ([]types.School, error) {
	rows, err := s.db.QueryContext(ctx, s.query(
		"SELECT "+schoolColumns+" FROM schools ORDER BY id",
	))
	if err != nil {
		return nil, s.wrap("ListSchools: query", err)
	}
	defer rows.Close()

	// Returning [] instead of null in JSON is better API behaviour.
	schools := make([]types.School, 0)
	for rows.Next() {
		school, err := scanSchool(rows)
		if err != nil {
			return nil, fmt.Errorf("ListSchools: scan row: %w", err)
		}
		schools = append(schools, school)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListSchools: rows iteration: %w", err)
	}
	return schools, nil
}

func (s *Store) GetSchoolByID(ctx context.Context, id int64) (types.School, error) {
	row := s.db.QueryRowContext(ctx, s.query(
		"SELECT "+schoolColumns+" FROM schools WHERE id = ?",
	), id)

	school, err := scanSchool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.School{}, fmt.Errorf("%w: id %d", storage.ErrSchoolNotFound, id)
	}
	if err != nil {
		return types.School{}, s.wrap("GetSchoolByID: scan", err)
	}
	return school, nil
}

func (s *Store) CreateSchool(ctx context.Context, school types.School) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.query(
		`INSERT INTO schools (name, principal, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
	),
		school.Name,
		school.Principal,
		school.Address,
		school.CreatedAt,
		nullTime(school.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return 0, s.wrap("CreateSchool: insert", err)
	}
	return id, nil
}

func (s *Store) UpdateSchool(ctx context.Context, school types.School) error {
	result, err := s.db.ExecContext(ctx, s.query(
		`UPDATE schools SET name = ?, principal = ?, address = ?, updated_at = ?
		 WHERE id = ?`,
	),
		school.Name,
		school.Principal,
		school.Address,
		nullTime(school.UpdatedAt),
		school.ID,
	)
	if err != nil {
		return s.wrap("UpdateSchool: exec", err)
	}

	notFound := fmt.Errorf("%w: id %d", storage.ErrSchoolNotFound, school.ID)
	if err := checkRowsAffected(result, notFound); err != nil {
		return fmt.Errorf("UpdateSchool: %w", err)
	}
	return nil
}

func (s *Store) DeleteSchoolByID(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.query("DELETE FROM schools WHERE id = ?"), id)
	if err != nil {
		return s.wrap("DeleteSchoolByID: exec", err)
	}

	notFound := fmt.Errorf("%w: id %d", storage.ErrSchoolNotFound, id)
	if err := checkRowsAffected(result, notFound); err != nil {
		return fmt.Errorf("DeleteSchoolByID: %w", err)
	}
	return nil
}

func (s *Store) SchoolNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, s.query(
		"SELECT EXISTS (SELECT 1 FROM schools WHERE name = ? AND id <> ?)",
	), name, excludeID).Scan(&taken)
	if err != nil {
		return false, s.wrap("SchoolNameTaken: scan", err)
	}
	return taken, nil
}
