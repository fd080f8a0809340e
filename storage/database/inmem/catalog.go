package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/darasa/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

/* Categories */

func (repo *catalogRepository) CheckCategoryNameUniqueness(ctx context.Context, name string, excludedCategories ...catalog.Category) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[int]struct{}, len(excludedCategories))
	for _, cat := range excludedCategories {
		excluded[cat.ID] = struct{}{}
	}

	for _, cat := range repo.db.categories {
		if _, skip := excluded[cat.ID]; skip {
			continue
		}
		if strings.EqualFold(cat.Name, name) {
			return catalog.ErrNameExists
		}
	}
	return nil
}

func (repo *catalogRepository) CreateCategory(ctx context.Context, cat catalog.Category) (catalog.Category, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.categoryPK++
	cat.ID = repo.db.categoryPK
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

func (repo *catalogRepository) QueryAllCategories(ctx context.Context) ([]catalog.CategoryInfo, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cats := make([]catalog.CategoryInfo, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		cats = append(cats, catalog.CategoryInfo{
			Category:     *cat,
			CoursesCount: repo.categoryCoursesCount(cat.ID),
		})
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *catalogRepository) GetCategoryByID(ctx context.Context, id int) (catalog.CategoryInfo, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cat, ok := repo.db.categories[id]
	if !ok {
		return catalog.CategoryInfo{}, catalog.ErrCategoryNotFound
	}
	return catalog.CategoryInfo{
		Category:     *cat,
		CoursesCount: repo.categoryCoursesCount(id),
	}, nil
}

func (repo *catalogRepository) UpdateCategory(ctx context.Context, cat catalog.Category) (catalog.Category, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origCat, ok := repo.db.categories[cat.ID]
	if !ok {
		return catalog.Category{}, catalog.ErrCategoryNotFound
	}
	origCat.Name = cat.Name
	origCat.Description = cat.Description
	return *origCat, nil
}

func (repo *catalogRepository) DeleteCategory(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.categories[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	for _, course := range repo.db.courses {
		if course.CategoryID == id {
			return catalog.ErrCategoryInUse
		}
	}
	delete(repo.db.categories, id)
	return nil
}

func (repo *catalogRepository) categoryCoursesCount(categoryID int) int {
	n := 0
	for _, course := range repo.db.courses {
		if course.CategoryID == categoryID {
			n++
		}
	}
	return n
}

/* Courses */

func (repo *catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.coursePK++
	course.ID = repo.db.coursePK
	repo.db.courses[course.ID] = &course
	return course, nil
}

func (repo *catalogRepository) QueryAllCourses(ctx context.Context) ([]catalog.CourseInfo, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]catalog.CourseInfo, 0, len(repo.db.courses))
	for _, course := range repo.db.queryCourses() {
		courses = append(courses, repo.db.courseInfo(course))
	}
	return courses, nil
}

func (repo *catalogRepository) QueryCoursesByInstructor(ctx context.Context, instructorID int) ([]catalog.CourseInfo, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]catalog.CourseInfo, 0)
	for _, course := range repo.db.queryCourses() {
		if course.InstructorID == instructorID {
			courses = append(courses, repo.db.courseInfo(course))
		}
	}
	return courses, nil
}

func (repo *catalogRepository) GetCourseByID(ctx context.Context, id int) (catalog.CourseInfo, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	course, ok := repo.db.courses[id]
	if !ok {
		return catalog.CourseInfo{}, catalog.ErrCourseNotFound
	}
	return repo.db.courseInfo(*course), nil
}

func (repo *catalogRepository) UpdateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origCourse, ok := repo.db.courses[course.ID]
	if !ok {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	origCourse.Title = course.Title
	origCourse.Description = course.Description
	origCourse.CategoryID = course.CategoryID
	origCourse.UpdatedAt = course.UpdatedAt
	return *origCourse, nil
}

func (repo *catalogRepository) DeleteCourse(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return catalog.ErrCourseNotFound
	}
	// enrollments cascade with their course
	for enrID, enr := range repo.db.enrollments {
		if enr.CourseID == id {
			delete(repo.db.enrollments, enrID)
		}
	}
	delete(repo.db.courses, id)
	return nil
}

func (repo *catalogRepository) CourseHasStudent(ctx context.Context, courseID, studentID int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.CourseID == courseID && enr.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}
