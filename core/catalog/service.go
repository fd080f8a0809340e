package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrNameExists       = errors.New("a category with this name already exists")
	ErrCategoryInUse    = errors.New("category still has courses and cannot be deleted")
	ErrNotCourseOwner   = errors.New("permission denied")

	errInvalidCategory   = "invalid category"
	errInvalidInstructor = "instructor not found or not an instructor account"
)

type (
	Repository interface {
		CheckCategoryNameUniqueness(ctx context.Context, name string, excludedCategories ...Category) error
		CreateCategory(ctx context.Context, cat Category) (Category, error)
		QueryAllCategories(ctx context.Context) ([]CategoryInfo, error)
		GetCategoryByID(ctx context.Context, id int) (CategoryInfo, error)
		UpdateCategory(ctx context.Context, cat Category) (Category, error)
		// DeleteCategory returns ErrCategoryInUse when courses still reference it.
		DeleteCategory(ctx context.Context, id int) error

		CreateCourse(ctx context.Context, course Course) (Course, error)
		// QueryAllCourses returns courses ordered by creation date descending.
		QueryAllCourses(ctx context.Context) ([]CourseInfo, error)
		QueryCoursesByInstructor(ctx context.Context, instructorID int) ([]CourseInfo, error)
		GetCourseByID(ctx context.Context, id int) (CourseInfo, error)
		UpdateCourse(ctx context.Context, course Course) (Course, error)
		DeleteCourse(ctx context.Context, id int) error
		// CourseHasStudent reports whether the student is enrolled in the course.
		CourseHasStudent(ctx context.Context, courseID, studentID int) (bool, error)
	}

	Service interface {
		CheckCategoryUniqueness(ctx context.Context, name string, excludedCategories ...Category) error
		CreateCategory(ctx context.Context, nc NewCategory) (Category, error)
		QueryCategories(ctx context.Context) ([]CategoryInfo, error)
		GetCategory(ctx context.Context, id int) (CategoryInfo, error)
		UpdateCategory(ctx context.Context, id int, uc UpdateCategory) (Category, error)
		DeleteCategory(ctx context.Context, id int) error

		CreateCourse(ctx context.Context, actor user.User, nc NewCourse) (Course, error)
		QueryCourses(ctx context.Context) ([]CourseInfo, error)
		QueryInstructorCourses(ctx context.Context, instructorID int) ([]CourseInfo, error)
		// GetCourse resolves is_enrolled for an authenticated student caller;
		// caller may be nil for anonymous requests.
		GetCourse(ctx context.Context, id int, caller *user.User) (CourseDetail, error)
		UpdateCourse(ctx context.Context, actor user.User, id int, uc UpdateCourse) (Course, error)
		DeleteCourse(ctx context.Context, actor user.User, id int) error
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
	}
}

func (svc *service) CheckCategoryUniqueness(ctx context.Context, name string, excludedCategories ...Category) error {
	if err := svc.repo.CheckCategoryNameUniqueness(ctx, name, excludedCategories...); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	cat := Category{
		Name:        nc.Name,
		Description: nc.Description,
	}
	return svc.repo.CreateCategory(ctx, cat)
}

func (svc *service) QueryCategories(ctx context.Context) ([]CategoryInfo, error) {
	return svc.repo.QueryAllCategories(ctx)
}

func (svc *service) GetCategory(ctx context.Context, id int) (CategoryInfo, error) {
	return svc.repo.GetCategoryByID(ctx, id)
}

func (svc *service) UpdateCategory(ctx context.Context, id int, uc UpdateCategory) (Category, error) {
	orig, err := svc.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if err = uc.Validate(ctx, orig.Category, svc); err != nil {
		return Category{}, err
	}

	cat := orig.Category
	cat.Name = uc.Name
	cat.Description = uc.Description
	return svc.repo.UpdateCategory(ctx, cat)
}

// DeleteCategory forbids deletion while courses still reference the category.
func (svc *service) DeleteCategory(ctx context.Context, id int) error {
	if err := svc.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Cause(err) == ErrCategoryInUse {
			return core.NewValidationError(err)
		}
		return err
	}
	return nil
}

// CreateCourse makes the acting instructor the owner. An admin may supply a
// different instructor id; an id that does not resolve to an active instructor
// is rejected rather than silently falling back to the admin.
func (svc *service) CreateCourse(ctx context.Context, actor user.User, nc NewCourse) (Course, error) {
	if _, err := svc.repo.GetCategoryByID(ctx, nc.CategoryID); err != nil {
		if errors.Cause(err) == ErrCategoryNotFound {
			return Course{}, core.NewValidationError(err, core.FieldError{Field: "category_id", Error: errInvalidCategory})
		}
		return Course{}, errors.Wrap(err, "finding category")
	}

	instructorID := actor.ID
	switch actor.Role {
	case user.RoleInstructor:
		// an instructor always owns the courses they create
	case user.RoleAdmin:
		if nc.InstructorID != 0 {
			instructor, err := svc.usrRepo.GetUserByID(ctx, nc.InstructorID)
			if err != nil || !instructor.IsInstructor() || !instructor.Active() {
				return Course{}, core.NewValidationError(nil, core.FieldError{Field: "instructor_id", Error: errInvalidInstructor})
			}
			instructorID = instructor.ID
		}
	case user.RoleStudent:
		return Course{}, ErrNotCourseOwner
	default:
		return Course{}, ErrNotCourseOwner
	}

	now := time.Now().UTC()
	course := Course{
		Title:        nc.Title,
		Description:  nc.Description,
		CategoryID:   nc.CategoryID,
		InstructorID: instructorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateCourse(ctx, course)
}

func (svc *service) QueryCourses(ctx context.Context) ([]CourseInfo, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *service) QueryInstructorCourses(ctx context.Context, instructorID int) ([]CourseInfo, error) {
	return svc.repo.QueryCoursesByInstructor(ctx, instructorID)
}

func (svc *service) GetCourse(ctx context.Context, id int, caller *user.User) (CourseDetail, error) {
	info, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return CourseDetail{}, err
	}

	detail := CourseDetail{CourseInfo: info}
	if caller != nil && caller.IsStudent() {
		enrolled, err := svc.repo.CourseHasStudent(ctx, id, caller.ID)
		if err != nil {
			return CourseDetail{}, errors.Wrap(err, "checking enrollment")
		}
		detail.IsEnrolled = enrolled
	}
	return detail, nil
}

func (svc *service) UpdateCourse(ctx context.Context, actor user.User, id int, uc UpdateCourse) (Course, error) {
	orig, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err = checkOwnership(actor, orig.Course); err != nil {
		return Course{}, err
	}
	if err = uc.Validate(orig.Course); err != nil {
		return Course{}, err
	}

	if uc.CategoryID != orig.CategoryID {
		if _, err = svc.repo.GetCategoryByID(ctx, uc.CategoryID); err != nil {
			if errors.Cause(err) == ErrCategoryNotFound {
				return Course{}, core.NewValidationError(err, core.FieldError{Field: "category_id", Error: errInvalidCategory})
			}
			return Course{}, errors.Wrap(err, "finding category")
		}
	}

	course := orig.Course
	course.Title = uc.Title
	course.Description = uc.Description
	course.CategoryID = uc.CategoryID
	course.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, course)
}

func (svc *service) DeleteCourse(ctx context.Context, actor user.User, id int) error {
	orig, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return err
	}
	if err = checkOwnership(actor, orig.Course); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, id)
}

// checkOwnership allows any admin and the owning instructor through.
func checkOwnership(actor user.User, course Course) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleInstructor:
		if course.InstructorID == actor.ID {
			return nil
		}
		return ErrNotCourseOwner
	case user.RoleStudent:
		return ErrNotCourseOwner
	default:
		return ErrNotCourseOwner
	}
}
