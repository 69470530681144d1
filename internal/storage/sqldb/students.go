package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"
)

// studentSelect joins the owning school so every read carries its name.
const studentSelect = `SELECT st.id, st.school_id, sc.name, st.full_name, st.student_id,
       st.email, st.phone, st.created_at, st.updated_at
  FROM students st
  JOIN schools sc ON sc.id = st.school_id`

func scanStudent(row scanner) (types.Student, error) {
	var (
		student   types.Student
		phone     sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&student.ID,
		&student.SchoolID,
		&student.SchoolName,
		&student.FullName,
		&student.StudentID,
		&student.Email,
		&phone,
		&student.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return types.Student{}, err
	}
	student.Phone = stringPtr(phone)
	student.UpdatedAt = timePtr(updatedAt)
	return student, nil
}

// ListStudents returns newest first. id breaks ties between rows created
// in the same instant, so paging is stable.
func (s *Store) ListStudents(ctx context.Context, limit, offset int64) ([]types.Student, error) {
	rows, err := s.db.QueryContext(ctx, s.query(
		studentSelect+" ORDER BY st.created_at DESC, st.id DESC LIMIT ? OFFSET ?",
	), limit, offset)
	if err != nil {
		return nil, s.wrap("ListStudents: query", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("ListStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStudents: rows iteration: %w", err)
	}
	return students, nil
}

func (s *Store) CountStudents(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM students").Scan(&n); err != nil {
		return 0, s.wrap("CountStudents: scan", err)
	}
	return n, nil
}

func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	row := s.db.QueryRowContext(ctx, s.query(studentSelect+" WHERE st.id = ?"), id)

	student, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("%w: id %d", storage.ErrStudentNotFound, id)
	}
	if err != nil {
		return types.Student{}, s.wrap("GetStudentByID: scan", err)
	}
	return student, nil
}

func (s *Store) CreateStudent(ctx context.Context, student types.Student) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.query(
		`INSERT INTO students (school_id, full_name, student_id, email, phone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
	),
		student.SchoolID,
		student.FullName,
		student.StudentID,
		student.Email,
		nullString(student.Phone),
		student.CreatedAt,
		nullTime(student.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return 0, s.wrap("CreateStudent: insert", err)
	}
	return id, nil
}

func (s *Store) UpdateStudent(ctx context.Context, student types.Student) error {
	result, err := s.db.ExecContext(ctx, s.query(
		`UPDATE students
		    SET school_id = ?, full_name = ?, student_id = ?, email = ?, phone = ?, updated_at = ?
		  WHERE id = ?`,
	),
		student.SchoolID,
		student.FullName,
		student.StudentID,
		student.Email,
		nullString(student.Phone),
		nullTime(student.UpdatedAt),
		student.ID,
	)
	if err != nil {
		return s.wrap("UpdateStudent: exec", err)
	}

	notFound := fmt.Errorf("%w: id %d", storage.ErrStudentNotFound, student.ID)
	if err := checkRowsAffected(result, notFound); err != nil {
		return fmt.Errorf("UpdateStudent: %w", err)
	}
	return nil
}

func (s *Store) DeleteStudentByID(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.query("DELETE FROM students WHERE id = ?"), id)
	if err != nil {
		return s.wrap("DeleteStudentByID: exec", err)
	}

	notFound := fmt.Errorf("%w: id %d", storage.ErrStudentNotFound, id)
	if err := checkRowsAffected(result, notFound); err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}
	return nil
}

func (s *Store) StudentIDTaken(ctx context.Context, studentID string, excludeID int64) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, s.query(
		"SELECT EXISTS (SELECT 1 FROM students WHERE student_id = ? AND id <> ?)",
	), studentID, excludeID).Scan(&taken)
	if err != nil {
		return false, s.wrap("StudentIDTaken: scan", err)
	}
	return taken, nil
}

func (s *Store) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, s.query(
		"SELECT EXISTS (SELECT 1 FROM students WHERE email = ? AND id <> ?)",
	), email, excludeID).Scan(&taken)
	if err != nil {
		return false, s.wrap("EmailTaken: scan", err)
	}
	return taken, nil
}
