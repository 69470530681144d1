// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, services, and storage can all import types without depending
// on each other.
//
// Three kinds of structs live here:
//
//  1. Entities (School, Student) mirror the database rows.
//  2. Forms (SchoolForm, StudentForm) are what clients send. Their
//     validate:"..." tags are checked by go-playground/validator.
//  3. DTOs (SchoolDTO, StudentDTO, Pagination) are what clients receive.
//
// Entities never go over the wire directly, so a column can be renamed
// without breaking API consumers.
package types

import (
	"strings"
	"time"
)

// School is a row of the schools table.
type School struct {
	ID        int64
	Name      string
	Principal string
	Address   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Student is a row of the students table. SchoolName is not a column: it
// is filled from a join when the record is read back.
type Student struct {
	ID         int64
	SchoolID   int64
	SchoolName string
	FullName   string
	StudentID  string
	Email      string
	Phone      *string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// SchoolForm is the payload for creating or replacing a school.
type SchoolForm struct {
	Name      string `json:"name"      validate:"required,max=200"`
	Principal string `json:"principal" validate:"required,max=200"`
	Address   string `json:"address"   validate:"max=500"`
}

// Normalize trims surrounding whitespace from every field.
func (f *SchoolForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Principal = strings.TrimSpace(f.Principal)
	f.Address = strings.TrimSpace(f.Address)
}

// StudentForm is the payload for creating or replacing a student.
//
// Phone is optional: an empty string (or a JSON null) means "no phone".
// When present it must be 10 or 11 digits (the custom "phone" tag).
type StudentForm struct {
	SchoolID  int64  `json:"schoolId"  validate:"required,gt=0"`
	FullName  string `json:"fullName"  validate:"required,min=2,max=100"`
	StudentID string `json:"studentId" validate:"required,min=5,max=20"`
	Email     string `json:"email"     validate:"required,email"`
	Phone     string `json:"phone"     validate:"omitempty,phone"`
}

// Normalize trims surrounding whitespace from every string field.
func (f *StudentForm) Normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.StudentID = strings.TrimSpace(f.StudentID)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
}

// SchoolDTO is the public shape of a school.
type SchoolDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Principal string `json:"principal"`
	Address   string `json:"address"`
}

// NewSchoolDTO maps an entity to its transfer object.
func NewSchoolDTO(s School) SchoolDTO {
	return SchoolDTO{
		ID:        s.ID,
		Name:      s.Name,
		Principal: s.Principal,
		Address:   s.Address,
	}
}

// StudentDTO is the public shape of a student.
type StudentDTO struct {
	ID         int64      `json:"id"`
	SchoolID   int64      `json:"schoolId"`
	SchoolName string     `json:"schoolName"`
	FullName   string     `json:"fullName"`
	StudentID  string     `json:"studentId"`
	Email      string     `json:"email"`
	Phone      *string    `json:"phone"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}

// NewStudentDTO maps an entity to its transfer object.
func NewStudentDTO(s Student) StudentDTO {
	return StudentDTO{
		ID:         s.ID,
		SchoolID:   s.SchoolID,
		SchoolName: s.SchoolName,
		FullName:   s.FullName,
		StudentID:  s.StudentID,
		Email:      s.Email,
		Phone:      s.Phone,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// Pagination describes where a page sits inside the full result set.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
}
