package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/catalog"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// pqErrCode extracts the psql error code, if any
func pqErrCode(err error) string {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return string(pqErr.Code)
	}
	return ""
}

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

/* Categories */

func (repo catalogRepository) CheckCategoryNameUniqueness(ctx context.Context, name string, excludedCategories ...catalog.Category) error {
	query := `SELECT EXISTS (SELECT 1 FROM category WHERE lower(name) = lower(?))`
	args := []interface{}{name}
	if len(excludedCategories) > 0 {
		ids := make([]int, 0, len(excludedCategories))
		for _, cat := range excludedCategories {
			ids = append(ids, cat.ID)
		}
		query = `SELECT EXISTS (SELECT 1 FROM category WHERE lower(name) = lower(?) AND id NOT IN (?))`
		var err error
		if query, args, err = sqlx.In(query, name, ids); err != nil {
			return errors.Wrap(err, "expanding query")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking category uniqueness")
	}
	if exists {
		return catalog.ErrNameExists
	}
	return nil
}

func (repo catalogRepository) CreateCategory(ctx context.Context, cat catalog.Category) (catalog.Category, error) {
	query := `INSERT INTO category (name, description) VALUES ($1, $2) RETURNING id`
	if err := repo.db.QueryRowContext(ctx, query, cat.Name, cat.Description).Scan(&cat.ID); err != nil {
		if pqErrCode(err) == pqUniqueViolation {
			return catalog.Category{}, catalog.ErrNameExists
		}
		return catalog.Category{}, errors.Wrap(err, "inserting category")
	}
	return cat, nil
}

func (repo catalogRepository) QueryAllCategories(ctx context.Context) ([]catalog.CategoryInfo, error) {
	cats := make([]catalog.CategoryInfo, 0)
	query := `
		SELECT cat.id, cat.name, cat.description, COUNT(co.id) AS courses_count
		FROM category cat
		LEFT JOIN course co ON co.category_id = cat.id
		GROUP BY cat.id
		ORDER BY cat.name ASC`
	if err := repo.db.SelectContext(ctx, &cats, query); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	return cats, nil
}

func (repo catalogRepository) GetCategoryByID(ctx context.Context, id int) (catalog.CategoryInfo, error) {
	var cat catalog.CategoryInfo
	query := `
		SELECT cat.id, cat.name, cat.description, COUNT(co.id) AS courses_count
		FROM category cat
		LEFT JOIN course co ON co.category_id = cat.id
		WHERE cat.id = $1
		GROUP BY cat.id`
	if err := repo.db.GetContext(ctx, &cat, query, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.CategoryInfo{}, catalog.ErrCategoryNotFound
		}
		return catalog.CategoryInfo{}, errors.Wrap(err, "finding category by id")
	}
	return cat, nil
}

func (repo catalogRepository) UpdateCategory(ctx context.Context, cat catalog.Category) (catalog.Category, error) {
	query := `UPDATE category SET name = $1, description = $2 WHERE id = $3 RETURNING *`
	var updated catalog.Category
	if err := repo.db.GetContext(ctx, &updated, query, cat.Name, cat.Description, cat.ID); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Category{}, catalog.ErrCategoryNotFound
		}
		if pqErrCode(err) == pqUniqueViolation {
			return catalog.Category{}, catalog.ErrNameExists
		}
		return catalog.Category{}, errors.Wrap(err, "updating category")
	}
	return updated, nil
}

func (repo catalogRepository) DeleteCategory(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM category WHERE id = $1`, id)
	if err != nil {
		// course.category_id is ON DELETE RESTRICT
		if pqErrCode(err) == pqForeignKeyViolation {
			return catalog.ErrCategoryInUse
		}
		return errors.Wrap(err, "deleting category")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting category")
	} else if n == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

/* Courses */

const courseInfoQuery = `
	SELECT co.id, co.title, co.description, co.category_id, co.instructor_id, co.created_at, co.updated_at,
	       cat.name AS category_name, instr.full_name AS instructor_name,
	       COUNT(e.id) AS enrollments_count
	FROM course co
	INNER JOIN category cat ON cat.id = co.category_id
	INNER JOIN "user" instr ON instr.id = co.instructor_id
	LEFT JOIN enrollment e ON e.course_id = co.id`

const courseInfoGroupBy = ` GROUP BY co.id, cat.name, instr.full_name`

func (repo catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	query := `
		INSERT INTO course (title, description, category_id, instructor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, query,
		course.Title, course.Description, course.CategoryID, course.InstructorID, course.CreatedAt, course.UpdatedAt,
	).Scan(&course.ID)
	if err != nil {
		return catalog.Course{}, errors.Wrap(err, "inserting course")
	}
	return course, nil
}

func (repo catalogRepository) QueryAllCourses(ctx context.Context) ([]catalog.CourseInfo, error) {
	courses := make([]catalog.CourseInfo, 0)
	query := courseInfoQuery + courseInfoGroupBy + ` ORDER BY co.created_at DESC, co.id DESC`
	if err := repo.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo catalogRepository) QueryCoursesByInstructor(ctx context.Context, instructorID int) ([]catalog.CourseInfo, error) {
	courses := make([]catalog.CourseInfo, 0)
	query := courseInfoQuery + ` WHERE co.instructor_id = $1` + courseInfoGroupBy + ` ORDER BY co.created_at DESC, co.id DESC`
	if err := repo.db.SelectContext(ctx, &courses, query, instructorID); err != nil {
		return nil, errors.Wrap(err, "querying instructor courses")
	}
	return courses, nil
}

func (repo catalogRepository) GetCourseByID(ctx context.Context, id int) (catalog.CourseInfo, error) {
	var course catalog.CourseInfo
	query := courseInfoQuery + ` WHERE co.id = $1` + courseInfoGroupBy
	if err := repo.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.CourseInfo{}, catalog.ErrCourseNotFound
		}
		return catalog.CourseInfo{}, errors.Wrap(err, "finding course by id")
	}
	return course, nil
}

func (repo catalogRepository) UpdateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	query := `
		UPDATE course
		SET title = $1, description = $2, category_id = $3, updated_at = $4
		WHERE id = $5
		RETURNING *`
	var updated catalog.Course
	err := repo.db.GetContext(
		ctx, &updated, query,
		course.Title, course.Description, course.CategoryID, course.UpdatedAt, course.ID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "updating course")
	}
	return updated, nil
}

func (repo catalogRepository) DeleteCourse(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting course")
	} else if n == 0 {
		return catalog.ErrCourseNotFound
	}
	return nil
}

func (repo catalogRepository) CourseHasStudent(ctx context.Context, courseID, studentID int) (bool, error) {
	var enrolled bool
	query := `SELECT EXISTS (SELECT 1 FROM enrollment WHERE course_id = $1 AND student_id = $2)`
	if err := repo.db.GetContext(ctx, &enrolled, query, courseID, studentID); err != nil {
		return false, errors.Wrap(err, "checking course membership")
	}
	return enrolled, nil
}
