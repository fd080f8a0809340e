package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/user"
)

// reportRepository runs the read-only aggregation queries behind dashboards,
// statistics and reports. A zero instructorID widens a scoped query to all
// instructors.
type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo reportRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM "user"`); err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return n, nil
}

func (repo reportRepository) CountUsersByRole(ctx context.Context) (map[user.Role]int, error) {
	rows := make([]struct {
		Role  user.Role `db:"role"`
		Count int       `db:"count"`
	}, 0)
	query := `SELECT role, COUNT(*) AS count FROM "user" GROUP BY role`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "counting users by role")
	}

	counts := make(map[user.Role]int, len(user.AllRoles))
	for _, role := range user.AllRoles {
		counts[role] = 0
	}
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

func (repo reportRepository) CountUsersByActive(ctx context.Context) (active, inactive int, err error) {
	var row struct {
		Active   int `db:"active"`
		Inactive int `db:"inactive"`
	}
	query := `
		SELECT COUNT(*) FILTER (WHERE is_active) AS active,
		       COUNT(*) FILTER (WHERE NOT is_active) AS inactive
		FROM "user"`
	if err = repo.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, errors.Wrap(err, "counting users by activity")
	}
	return row.Active, row.Inactive, nil
}

func (repo reportRepository) RecentUsers(ctx context.Context, limit int) ([]report.RecentUser, error) {
	users := make([]report.RecentUser, 0)
	query := `
		SELECT id, email, full_name, role, created_at AS date_joined
		FROM "user"
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	if err := repo.db.SelectContext(ctx, &users, query, limit); err != nil {
		return nil, errors.Wrap(err, "querying recent users")
	}
	return users, nil
}

func (repo reportRepository) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM category`); err != nil {
		return 0, errors.Wrap(err, "counting categories")
	}
	return n, nil
}

func (repo reportRepository) CountCourses(ctx context.Context, instructorID int) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM course`
	args := make([]interface{}, 0, 1)
	if instructorID != 0 {
		query += ` WHERE instructor_id = $1`
		args = append(args, instructorID)
	}
	if err := repo.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting courses")
	}
	return n, nil
}

func (repo reportRepository) CountCoursesByCategory(ctx context.Context, instructorID int) ([]report.CategoryCourseCount, error) {
	counts := make([]report.CategoryCourseCount, 0)
	query := `
		SELECT cat.name AS category_name, COUNT(co.id) AS count
		FROM course co
		INNER JOIN category cat ON cat.id = co.category_id
		%s
		GROUP BY cat.name
		ORDER BY count DESC, cat.name ASC`
	args := make([]interface{}, 0, 1)
	where := ""
	if instructorID != 0 {
		where = `WHERE co.instructor_id = $1`
		args = append(args, instructorID)
	}
	if err := repo.db.SelectContext(ctx, &counts, fmt.Sprintf(query, where), args...); err != nil {
		return nil, errors.Wrap(err, "counting courses by category")
	}
	return counts, nil
}

func (repo reportRepository) CountEnrollments(ctx context.Context, instructorID int) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM enrollment e`
	args := make([]interface{}, 0, 1)
	if instructorID != 0 {
		query += ` INNER JOIN course co ON co.id = e.course_id WHERE co.instructor_id = $1`
		args = append(args, instructorID)
	}
	if err := repo.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return n, nil
}

func (repo reportRepository) CountEnrollmentsByCourse(ctx context.Context, instructorID int) ([]report.CourseTitleCount, error) {
	counts := make([]report.CourseTitleCount, 0)
	query := `
		SELECT co.title AS course_title, COUNT(e.id) AS count
		FROM enrollment e
		INNER JOIN course co ON co.id = e.course_id
		%s
		GROUP BY co.id
		ORDER BY count DESC, co.id ASC`
	args := make([]interface{}, 0, 1)
	where := ""
	if instructorID != 0 {
		where = `WHERE co.instructor_id = $1`
		args = append(args, instructorID)
	}
	if err := repo.db.SelectContext(ctx, &counts, fmt.Sprintf(query, where), args...); err != nil {
		return nil, errors.Wrap(err, "counting enrollments by course")
	}
	return counts, nil
}

func (repo reportRepository) CountDistinctStudents(ctx context.Context, instructorID int) (int, error) {
	var n int
	query := `SELECT COUNT(DISTINCT e.student_id) FROM enrollment e`
	args := make([]interface{}, 0, 1)
	if instructorID != 0 {
		query += ` INNER JOIN course co ON co.id = e.course_id WHERE co.instructor_id = $1`
		args = append(args, instructorID)
	}
	if err := repo.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting distinct students")
	}
	return n, nil
}

func (repo reportRepository) TopCourses(ctx context.Context, instructorID, limit int) ([]report.CourseEnrollmentCount, error) {
	courses := make([]report.CourseEnrollmentCount, 0)
	query := `
		SELECT co.id, co.title, cat.name AS category_name, instr.full_name AS instructor_name,
		       COUNT(e.id) AS enrollments_count
		FROM course co
		INNER JOIN category cat ON cat.id = co.category_id
		INNER JOIN "user" instr ON instr.id = co.instructor_id
		LEFT JOIN enrollment e ON e.course_id = co.id
		%s
		GROUP BY co.id, cat.name, instr.full_name
		ORDER BY enrollments_count DESC, co.id ASC
		%s`
	args := make([]interface{}, 0, 2)
	where, limitClause := "", ""
	if instructorID != 0 {
		args = append(args, instructorID)
		where = fmt.Sprintf(`WHERE co.instructor_id = $%d`, len(args))
	}
	if limit > 0 {
		args = append(args, limit)
		limitClause = fmt.Sprintf(`LIMIT $%d`, len(args))
	}
	if err := repo.db.SelectContext(ctx, &courses, fmt.Sprintf(query, where, limitClause), args...); err != nil {
		return nil, errors.Wrap(err, "querying top courses")
	}
	return courses, nil
}

func (repo reportRepository) RecentEnrollments(ctx context.Context, instructorID, limit int) ([]enrollment.RosterEntry, error) {
	entries := make([]enrollment.RosterEntry, 0)
	query := `
		SELECT e.id, e.student_id, stu.full_name AS student_name, stu.email AS student_email,
		       e.course_id, co.title AS course_title, e.enrolled_at
		FROM enrollment e
		INNER JOIN "user" stu ON stu.id = e.student_id
		INNER JOIN course co ON co.id = e.course_id
		%s
		ORDER BY e.enrolled_at DESC, e.id DESC
		LIMIT $%d`
	args := make([]interface{}, 0, 2)
	where := ""
	if instructorID != 0 {
		args = append(args, instructorID)
		where = fmt.Sprintf(`WHERE co.instructor_id = $%d`, len(args))
	}
	args = append(args, limit)
	if err := repo.db.SelectContext(ctx, &entries, fmt.Sprintf(query, where, len(args)), args...); err != nil {
		return nil, errors.Wrap(err, "querying recent enrollments")
	}
	return entries, nil
}

func (repo reportRepository) TopInstructors(ctx context.Context, limit int) ([]report.InstructorActivity, error) {
	instructors := make([]report.InstructorActivity, 0)
	query := `
		SELECT instr.id, instr.full_name, instr.email,
		       COUNT(DISTINCT co.id) AS course_count,
		       COUNT(e.id) AS total_students
		FROM "user" instr
		LEFT JOIN course co ON co.instructor_id = instr.id
		LEFT JOIN enrollment e ON e.course_id = co.id
		WHERE instr.role = $1
		GROUP BY instr.id
		ORDER BY total_students DESC, instr.id ASC
		LIMIT $2`
	if err := repo.db.SelectContext(ctx, &instructors, query, user.RoleInstructor, limit); err != nil {
		return nil, errors.Wrap(err, "querying top instructors")
	}
	return instructors, nil
}

func (repo reportRepository) CountStudentEnrollments(ctx context.Context, studentID int) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM enrollment WHERE student_id = $1`
	if err := repo.db.GetContext(ctx, &n, query, studentID); err != nil {
		return 0, errors.Wrap(err, "counting student enrollments")
	}
	return n, nil
}

func (repo reportRepository) RecentStudentEnrollments(ctx context.Context, studentID, limit int) ([]enrollment.StudentEnrollment, error) {
	enrs := make([]enrollment.StudentEnrollment, 0)
	query := `
		SELECT e.id, e.course_id, co.title AS course_title,
		       cat.name AS category_name, instr.full_name AS instructor_name,
		       e.enrolled_at
		FROM enrollment e
		INNER JOIN course co ON co.id = e.course_id
		INNER JOIN category cat ON cat.id = co.category_id
		INNER JOIN "user" instr ON instr.id = co.instructor_id
		WHERE e.student_id = $1
		ORDER BY e.enrolled_at DESC, e.id DESC
		LIMIT $2`
	if err := repo.db.SelectContext(ctx, &enrs, query, studentID, limit); err != nil {
		return nil, errors.Wrap(err, "querying recent student enrollments")
	}
	return enrs, nil
}
