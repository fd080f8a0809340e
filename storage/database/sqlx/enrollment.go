package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/enrollment"
)

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	query := `
		INSERT INTO enrollment (student_id, course_id, enrolled_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, enr.StudentID, enr.CourseID, enr.EnrolledAt).Scan(&enr.ID)
	if err != nil {
		// the (student_id, course_id) unique constraint settles concurrent enrolls
		if pqErrCode(err) == pqUniqueViolation {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) DeleteEnrollment(ctx context.Context, studentID, courseID int) error {
	res, err := repo.db.ExecContext(
		ctx, `DELETE FROM enrollment WHERE student_id = $1 AND course_id = $2`,
		studentID, courseID,
	)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	} else if n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo enrollmentRepository) QueryStudentEnrollments(ctx context.Context, studentID int) ([]enrollment.StudentEnrollment, error) {
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
		ORDER BY e.enrolled_at DESC, e.id DESC`
	if err := repo.db.SelectContext(ctx, &enrs, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student enrollments")
	}
	return enrs, nil
}

func (repo enrollmentRepository) QueryCourseEnrollments(ctx context.Context, courseID int) ([]enrollment.RosterEntry, error) {
	entries := make([]enrollment.RosterEntry, 0)
	query := `
		SELECT e.id, e.student_id, stu.full_name AS student_name, stu.email AS student_email,
		       e.course_id, co.title AS course_title, e.enrolled_at
		FROM enrollment e
		INNER JOIN "user" stu ON stu.id = e.student_id
		INNER JOIN course co ON co.id = e.course_id
		WHERE e.course_id = $1
		ORDER BY e.enrolled_at DESC, e.id DESC`
	if err := repo.db.SelectContext(ctx, &entries, query, courseID); err != nil {
		return nil, errors.Wrap(err, "querying course enrollments")
	}
	return entries, nil
}
