package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/user"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

// ownsCourse reports whether the enrollment's course belongs to the instructor;
// a zero instructorID matches everything.
func (repo *reportRepository) ownsCourse(enr enrollment.Enrollment, instructorID int) bool {
	if instructorID == 0 {
		return true
	}
	course, ok := repo.db.courses[enr.CourseID]
	return ok && course.InstructorID == instructorID
}

func (repo *reportRepository) CountUsers(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.users), nil
}

func (repo *reportRepository) CountUsersByRole(ctx context.Context) (map[user.Role]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[user.Role]int, len(user.AllRoles))
	for _, role := range user.AllRoles {
		counts[role] = 0
	}
	for _, usr := range repo.db.users {
		counts[usr.Role]++
	}
	return counts, nil
}

func (repo *reportRepository) CountUsersByActive(ctx context.Context) (active, inactive int, err error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Active() {
			active++
		} else {
			inactive++
		}
	}
	return active, inactive, nil
}

func (repo *reportRepository) RecentUsers(ctx context.Context, limit int) ([]report.RecentUser, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recent := make([]report.RecentUser, 0, limit)
	for _, usr := range repo.db.queryUsers() {
		if len(recent) == limit {
			break
		}
		recent = append(recent, report.RecentUser{
			ID:         usr.ID,
			Email:      usr.Email,
			FullName:   usr.FullName,
			Role:       usr.Role,
			DateJoined: usr.CreatedAt,
		})
	}
	return recent, nil
}

func (repo *reportRepository) CountCategories(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.categories), nil
}

func (repo *reportRepository) CountCourses(ctx context.Context, instructorID int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if instructorID == 0 {
		return len(repo.db.courses), nil
	}
	n := 0
	for _, course := range repo.db.courses {
		if course.InstructorID == instructorID {
			n++
		}
	}
	return n, nil
}

func (repo *reportRepository) CountCoursesByCategory(ctx context.Context, instructorID int) ([]report.CategoryCourseCount, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byName := make(map[string]int)
	for _, course := range repo.db.courses {
		if instructorID != 0 && course.InstructorID != instructorID {
			continue
		}
		byName[repo.db.categoryName(course.CategoryID)]++
	}

	counts := make([]report.CategoryCourseCount, 0, len(byName))
	for name, count := range byName {
		counts = append(counts, report.CategoryCourseCount{CategoryName: name, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count == counts[j].Count {
			return counts[i].CategoryName < counts[j].CategoryName
		}
		return counts[i].Count > counts[j].Count
	})
	return counts, nil
}

func (repo *reportRepository) CountEnrollments(ctx context.Context, instructorID int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	n := 0
	for _, enr := range repo.db.enrollments {
		if repo.ownsCourse(*enr, instructorID) {
			n++
		}
	}
	return n, nil
}

func (repo *reportRepository) CountEnrollmentsByCourse(ctx context.Context, instructorID int) ([]report.CourseTitleCount, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byCourse := make(map[int]int)
	for _, enr := range repo.db.enrollments {
		if repo.ownsCourse(*enr, instructorID) {
			byCourse[enr.CourseID]++
		}
	}

	courseIDs := make([]int, 0, len(byCourse))
	for id := range byCourse {
		courseIDs = append(courseIDs, id)
	}
	sort.Slice(courseIDs, func(i, j int) bool {
		if byCourse[courseIDs[i]] == byCourse[courseIDs[j]] {
			return courseIDs[i] < courseIDs[j]
		}
		return byCourse[courseIDs[i]] > byCourse[courseIDs[j]]
	})

	counts := make([]report.CourseTitleCount, 0, len(courseIDs))
	for _, id := range courseIDs {
		title := ""
		if course, ok := repo.db.courses[id]; ok {
			title = course.Title
		}
		counts = append(counts, report.CourseTitleCount{CourseTitle: title, Count: byCourse[id]})
	}
	return counts, nil
}

func (repo *reportRepository) CountDistinctStudents(ctx context.Context, instructorID int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make(map[int]struct{})
	for _, enr := range repo.db.enrollments {
		if repo.ownsCourse(*enr, instructorID) {
			students[enr.StudentID] = struct{}{}
		}
	}
	return len(students), nil
}

func (repo *reportRepository) TopCourses(ctx context.Context, instructorID, limit int) ([]report.CourseEnrollmentCount, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]report.CourseEnrollmentCount, 0, len(repo.db.courses))
	for _, course := range repo.db.courses {
		if instructorID != 0 && course.InstructorID != instructorID {
			continue
		}
		courses = append(courses, report.CourseEnrollmentCount{
			ID:               course.ID,
			Title:            course.Title,
			CategoryName:     repo.db.categoryName(course.CategoryID),
			InstructorName:   repo.db.userName(course.InstructorID),
			EnrollmentsCount: repo.db.courseEnrollmentsCount(course.ID),
		})
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].EnrollmentsCount == courses[j].EnrollmentsCount {
			return courses[i].ID < courses[j].ID
		}
		return courses[i].EnrollmentsCount > courses[j].EnrollmentsCount
	})
	if limit > 0 && len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

func (repo *reportRepository) RecentEnrollments(ctx context.Context, instructorID, limit int) ([]enrollment.RosterEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]enrollment.RosterEntry, 0, limit)
	for _, enr := range repo.db.queryEnrollments() {
		if len(entries) == limit {
			break
		}
		if repo.ownsCourse(enr, instructorID) {
			entries = append(entries, repo.db.rosterEntry(enr))
		}
	}
	return entries, nil
}

func (repo *reportRepository) TopInstructors(ctx context.Context, limit int) ([]report.InstructorActivity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	instructors := make([]report.InstructorActivity, 0)
	for _, usr := range repo.db.users {
		if usr.Role != user.RoleInstructor {
			continue
		}
		activity := report.InstructorActivity{
			ID:       usr.ID,
			FullName: usr.FullName,
			Email:    usr.Email,
		}
		for _, course := range repo.db.courses {
			if course.InstructorID == usr.ID {
				activity.CourseCount++
				activity.TotalStudents += repo.db.courseEnrollmentsCount(course.ID)
			}
		}
		instructors = append(instructors, activity)
	}
	sort.Slice(instructors, func(i, j int) bool {
		if instructors[i].TotalStudents == instructors[j].TotalStudents {
			return instructors[i].ID < instructors[j].ID
		}
		return instructors[i].TotalStudents > instructors[j].TotalStudents
	})
	if limit > 0 && len(instructors) > limit {
		instructors = instructors[:limit]
	}
	return instructors, nil
}

func (repo *reportRepository) CountStudentEnrollments(ctx context.Context, studentID int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	n := 0
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (repo *reportRepository) RecentStudentEnrollments(ctx context.Context, studentID, limit int) ([]enrollment.StudentEnrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrs := make([]enrollment.StudentEnrollment, 0, limit)
	for _, enr := range repo.db.queryEnrollments() {
		if len(enrs) == limit {
			break
		}
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
