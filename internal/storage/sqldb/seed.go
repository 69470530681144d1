package sqldb

import (
	"context"
	"fmt"
	"time"
)

type seedSchool struct {
	name, principal, address string
}

type seedStudent struct {
	school                     int // index into seedSchools
	fullName, studentID, email string
}

var seedSchools = []seedSchool{
	{"Green Valley High", "Dr. Jonathan Smith", "123 Education St, CA"},
	{"West River Academy", "Mrs. Sarah Johnson", "456 River Rd, NY"},
	{"North Star Institute", "Mr. Robert Brown", "789 North Way, WA"},
	{"Elite Preparatory", "Ms. Emily Davis", "101 Scholar Blvd, MA"},
	{"Unity International", "Dr. Michael Wilson", "202 Global Ave, TX"},
	{"Blue Ridge High", "Mrs. Linda Garcia", "303 Mountain Dr, CO"},
	{"Horizon Science", "Mr. David Martinez", "404 Future Ln, NV"},
	{"Maple Leaf School", "Ms. Karen Anderson", "505 Forest Pkwy, VT"},
	{"Ocean View Academy", "Mr. James Taylor", "606 Coastline Hwy, FL"},
	{"Summit Peak School", "Mrs. Susan Thomas", "707 Peak Rd, UT"},
}

var seedStudents = []seedStudent{
	{0, "Alice Thompson", "STU001", "alice.t@school.edu"},
	{0, "Bob Miller", "STU002", "bob.m@school.edu"},
	{1, "Charlie Davis", "STU003", "charlie.d@school.edu"},
	{1, "Diana Prince", "STU004", "diana.p@school.edu"},
	{2, "Edward Norton", "STU005", "edward.n@school.edu"},
	{2, "Fiona Gallagher", "STU006", "fiona.g@school.edu"},
	{3, "George Clooney", "STU007", "george.c@school.edu"},
	{3, "Hannah Montana", "STU008", "hannah.m@school.edu"},
	{4, "Ian Wright", "STU009", "ian.w@school.edu"},
	{4, "Julia Roberts", "STU010", "julia.r@school.edu"},
	{5, "Kevin Hart", "STU011", "kevin.h@school.edu"},
	{5, "Laura Palmer", "STU012", "laura.p@school.edu"},
	{6, "Mike Tyson", "STU013", "mike.t@school.edu"},
	{6, "Nina Simone", "STU014", "nina.s@school.edu"},
	{7, "Oscar Isaac", "STU015", "oscar.i@school.edu"},
	{7, "Peter Parker", "STU016", "peter.p@school.edu"},
	{8, "Quinn Fabray", "STU017", "quinn.f@school.edu"},
	{8, "Riley Reid", "STU018", "riley.r@school.edu"},
	{9, "Steve Rogers", "STU019", "steve.r@school.edu"},
	{9, "Tony Stark", "STU020", "tony.s@school.edu"},
}

// Seed loads the demo schools and students when the schools table is
// empty. It reports whether anything was inserted. The whole set goes in
// one transaction: either every row lands or none does.
func (s *Store) Seed(ctx context.Context, now time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("Seed: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var count int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM schools").Scan(&count); err != nil {
		return false, s.wrap("Seed: count schools", err)
	}
	if count > 0 {
		return false, nil
	}

	schoolIDs := make([]int64, len(seedSchools))
	for i, sc := range seedSchools {
		err := tx.QueryRowContext(ctx, s.query(
			`INSERT INTO schools (name, principal, address, created_at)
			 VALUES (?, ?, ?, ?) RETURNING id`,
		), sc.name, sc.principal, sc.address, now).Scan(&schoolIDs[i])
		if err != nil {
			return false, s.wrap("Seed: insert school "+sc.name, err)
		}
	}

	for _, st := range seedStudents {
		_, err := tx.ExecContext(ctx, s.query(
			`INSERT INTO students (school_id, full_name, student_id, email, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
		), schoolIDs[st.school], st.fullName, st.studentID, st.email, now)
		if err != nil {
			return false, s.wrap("Seed: insert student "+st.studentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("Seed: commit: %w", err)
	}
	return true, nil
}
