package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrNotFound        = errors.New("enrollment not found")
	ErrNotCourseOwner  = errors.New("permission denied")
)

type (
	Repository interface {
		// CreateEnrollment returns ErrAlreadyEnrolled when the (student, course)
		// pair already exists; uniqueness is enforced atomically by the store.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		// DeleteEnrollment returns ErrNotFound when no such pair exists.
		DeleteEnrollment(ctx context.Context, studentID, courseID int) error
		// QueryStudentEnrollments returns enrollments ordered by enrolled_at descending.
		QueryStudentEnrollments(ctx context.Context, studentID int) ([]StudentEnrollment, error)
		QueryCourseEnrollments(ctx context.Context, courseID int) ([]RosterEntry, error)
	}

	Service interface {
		Enroll(ctx context.Context, student user.User, courseID int) (Enrollment, error)
		Unenroll(ctx context.Context, student user.User, courseID int) error
		ListMyEnrollments(ctx context.Context, student user.User) ([]StudentEnrollment, error)
		// ListCourseEnrollments is restricted to the owning instructor or any admin.
		ListCourseEnrollments(ctx context.Context, caller user.User, courseID int) ([]RosterEntry, error)
	}

	service struct {
		repo        Repository
		catalogRepo catalog.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, catalogRepo catalog.Repository) Service {
	return &service{
		repo:        repo,
		catalogRepo: catalogRepo,
	}
}

func (svc *service) Enroll(ctx context.Context, student user.User, courseID int) (Enrollment, error) {
	if _, err := svc.catalogRepo.GetCourseByID(ctx, courseID); err != nil {
		return Enrollment{}, err
	}

	enr := Enrollment{
		StudentID:  student.ID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *service) Unenroll(ctx context.Context, student user.User, courseID int) error {
	return svc.repo.DeleteEnrollment(ctx, student.ID, courseID)
}

func (svc *service) ListMyEnrollments(ctx context.Context, student user.User) ([]StudentEnrollment, error) {
	return svc.repo.QueryStudentEnrollments(ctx, student.ID)
}

func (svc *service) ListCourseEnrollments(ctx context.Context, caller user.User, courseID int) ([]RosterEntry, error) {
	course, err := svc.catalogRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case user.RoleAdmin:
	case user.RoleInstructor:
		if course.InstructorID != caller.ID {
			return nil, ErrNotCourseOwner
		}
	case user.RoleStudent:
		return nil, ErrNotCourseOwner
	default:
		return nil, ErrNotCourseOwner
	}

	return svc.repo.QueryCourseEnrollments(ctx, courseID)
}
