package catalog

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
)

type Category struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// CategoryInfo is the read projection of a Category.
type CategoryInfo struct {
	Category
	CoursesCount int `json:"courses_count" db:"courses_count"`
}

type Course struct {
	ID           int       `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	CategoryID   int       `json:"category_id" db:"category_id"`
	InstructorID int       `json:"instructor_id" db:"instructor_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// CourseInfo is the read projection of a Course with its denormalized
// category/instructor names and enrollment count.
type CourseInfo struct {
	Course
	CategoryName     string `json:"category_name" db:"category_name"`
	InstructorName   string `json:"instructor_name" db:"instructor_name"`
	EnrollmentsCount int    `json:"enrollments_count" db:"enrollments_count"`
}

// CourseDetail adds whether the calling student is enrolled.
type CourseDetail struct {
	CourseInfo
	IsEnrolled bool `json:"is_enrolled"`
}

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCategory) Validate(ctx context.Context, svc Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)

	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckCategoryUniqueness(ctx, nc.Name)
}

// UpdateCategory defines what may be modified on an existing Category.
type UpdateCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (uc *UpdateCategory) Validate(ctx context.Context, origCat Category, svc Service) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = origCat.Name
	}

	desc := core.CleanString(uc.Description)
	if desc != "" {
		uc.Description = desc
	} else {
		uc.Description = origCat.Description
	}

	if err := core.Validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckCategoryUniqueness(ctx, uc.Name, origCat)
}

// NewCourse contains information needed to create a new Course.
// InstructorID is only honored when the acting user is an admin.
type NewCourse struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	CategoryID   int    `json:"category_id" validate:"required"`
	InstructorID int    `json:"instructor_id"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what may be modified on an existing Course.
type UpdateCourse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  int    `json:"category_id"`
}

func (uc *UpdateCourse) Validate(origCourse Course) error {
	title := core.CleanString(uc.Title)
	if title != "" {
		uc.Title = title
	} else {
		uc.Title = origCourse.Title
	}

	desc := core.CleanString(uc.Description)
	if desc != "" {
		uc.Description = desc
	} else {
		uc.Description = origCourse.Description
	}

	if uc.CategoryID == 0 {
		uc.CategoryID = origCourse.CategoryID
	}
	return core.Validate.Struct(uc)
}
