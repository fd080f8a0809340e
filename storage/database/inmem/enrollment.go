package inmemdb

import (
	"context"

	"github.com/trezcool/darasa/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.enrollments {
		if existing.StudentID == enr.StudentID && existing.CourseID == enr.CourseID {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
	}

	repo.db.enrollmentPK++
	enr.ID = repo.db.enrollmentPK
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, studentID, courseID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.CourseID == courseID {
			delete(repo.db.enrollments, id)
			return nil
		}
	}
	return enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryStudentEnrollments(ctx context.Context, studentID int) ([]enrollment.StudentEnrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrs := make([]enrollment.StudentEnrollment, 0)
	for _, enr := range repo.db.queryEnrollments() {
		if enr.StudentID != studentID {
			continue
		}
		course, ok := repo.db.courses[enr.CourseID]
		if !ok {
			continue
		}
		enrs = append(enrs, enrollment.StudentEnrollment{
			ID:             enr.ID,
			CourseID:       course.ID,
			CourseTitle:    course.Title,
			CategoryName:   repo.db.categoryName(course.CategoryID),
			InstructorName: repo.db.userName(course.InstructorID),
			EnrolledAt:     enr.EnrolledAt,
		})
	}
	return enrs, nil
}

func (repo *enrollmentRepository) QueryCourseEnrollments(ctx context.Context, courseID int) ([]enrollment.RosterEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]enrollment.RosterEntry, 0)
	for _, enr := range repo.db.queryEnrollments() {
		if enr.CourseID != courseID {
			continue
		}
		entries = append(entries, repo.db.rosterEntry(enr))
	}
	return entries, nil
}
