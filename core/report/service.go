package report

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidRole      = errors.New("invalid role")
)

const (
	dashboardRecentLimit  = 5
	dashboardPopularLimit = 5
	statsRecentLimit      = 10
	reportTopLimit        = 10
)

type (
	// Repository holds the read-only aggregation queries over the identity,
	// catalog and enrollment stores. An instructorID of 0 means "all courses"
	// (admin visibility); a non-zero value scopes the query to that
	// instructor's courses.
	Repository interface {
		CountUsers(ctx context.Context) (int, error)
		CountUsersByRole(ctx context.Context) (map[user.Role]int, error)
		CountUsersByActive(ctx context.Context) (active, inactive int, err error)
		RecentUsers(ctx context.Context, limit int) ([]RecentUser, error)

		CountCategories(ctx context.Context) (int, error)

		CountCourses(ctx context.Context, instructorID int) (int, error)
		CountCoursesByCategory(ctx context.Context, instructorID int) ([]CategoryCourseCount, error)
		CountEnrollments(ctx context.Context, instructorID int) (int, error)
		// CountEnrollmentsByCourse returns counts ordered by count descending.
		CountEnrollmentsByCourse(ctx context.Context, instructorID int) ([]CourseTitleCount, error)
		CountDistinctStudents(ctx context.Context, instructorID int) (int, error)
		// TopCourses returns courses with their enrollment counts ordered by
		// count descending, ties broken by ascending course id; limit of 0
		// returns all.
		TopCourses(ctx context.Context, instructorID, limit int) ([]CourseEnrollmentCount, error)
		RecentEnrollments(ctx context.Context, instructorID, limit int) ([]enrollment.RosterEntry, error)
		TopInstructors(ctx context.Context, limit int) ([]InstructorActivity, error)

		CountStudentEnrollments(ctx context.Context, studentID int) (int, error)
		RecentStudentEnrollments(ctx context.Context, studentID, limit int) ([]enrollment.StudentEnrollment, error)
	}

	Service interface {
		DashboardSummary(ctx context.Context, usr user.User) (Dashboard, error)
		UserStatistics(ctx context.Context) (*UserStatistics, error)
		CourseStatistics(ctx context.Context, usr user.User) (*CourseStatistics, error)
		EnrollmentStatistics(ctx context.Context, usr user.User) (*EnrollmentStatistics, error)
		Reports(ctx context.Context) (*Reports, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) DashboardSummary(ctx context.Context, usr user.User) (Dashboard, error) {
	totalCourses, err := svc.repo.CountCourses(ctx, 0)
	if err != nil {
		return nil, errors.Wrap(err, "counting courses")
	}
	totalCategories, err := svc.repo.CountCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting categories")
	}

	switch usr.Role {
	case user.RoleAdmin:
		return svc.adminDashboard(ctx, totalCourses, totalCategories)
	case user.RoleInstructor:
		return svc.instructorDashboard(ctx, usr, totalCourses, totalCategories)
	case user.RoleStudent:
		return svc.studentDashboard(ctx, usr, totalCourses, totalCategories)
	default:
		return nil, ErrInvalidRole
	}
}

func (svc *service) adminDashboard(ctx context.Context, totalCourses, totalCategories int) (Dashboard, error) {
	totalUsers, err := svc.repo.CountUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting users")
	}
	totalEnrollments, err := svc.repo.CountEnrollments(ctx, 0)
	if err != nil {
		return nil, errors.Wrap(err, "counting enrollments")
	}
	usersByRole, err := svc.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting users by role")
	}
	recent, err := svc.repo.RecentEnrollments(ctx, 0, dashboardRecentLimit)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent enrollments")
	}
	popular, err := svc.repo.TopCourses(ctx, 0, dashboardPopularLimit)
	if err != nil {
		return nil, errors.Wrap(err, "querying popular courses")
	}

	recentData := make([]RecentEnrollment, 0, len(recent))
	for _, e := range recent {
		recentData = append(recentData, RecentEnrollment{
			Student:    e.StudentName,
			Course:     e.CourseTitle,
			EnrolledAt: e.EnrolledAt,
		})
	}

	return AdminDashboard{
		Role: user.RoleAdmin,
		Summary: AdminSummary{
			TotalUsers:       totalUsers,
			TotalCourses:     totalCourses,
			TotalCategories:  totalCategories,
			TotalEnrollments: totalEnrollments,
		},
		UsersByRole:       usersByRole,
		RecentEnrollments: recentData,
		PopularCourses:    popular,
	}, nil
}

func (svc *service) instructorDashboard(ctx context.Context, usr user.User, totalCourses, totalCategories int) (Dashboard, error) {
	myCourses, err := svc.repo.CountCourses(ctx, usr.ID)
	if err != nil {
		return nil, errors.Wrap(err, "counting own courses")
	}
	myStudents, err := svc.repo.CountEnrollments(ctx, usr.ID)
	if err != nil {
		return nil, errors.Wrap(err, "counting own enrollments")
	}
	courses, err := svc.repo.TopCourses(ctx, usr.ID, 0)
	if err != nil {
		return nil, errors.Wrap(err, "querying own courses")
	}

	return InstructorDashboard{
		Role: user.RoleInstructor,
		Summary: InstructorSummary{
			MyCourses:       myCourses,
			MyStudents:      myStudents,
			TotalCourses:    totalCourses,
			TotalCategories: totalCategories,
		},
		Courses: courses,
	}, nil
}

func (svc *service) studentDashboard(ctx context.Context, usr user.User, totalCourses, totalCategories int) (Dashboard, error) {
	enrolled, err := svc.repo.CountStudentEnrollments(ctx, usr.ID)
	if err != nil {
		return nil, errors.Wrap(err, "counting own enrollments")
	}
	recent, err := svc.repo.RecentStudentEnrollments(ctx, usr.ID, dashboardRecentLimit)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent enrollments")
	}

	return StudentDashboard{
		Role: user.RoleStudent,
		Summary: StudentSummary{
			EnrolledCourses:  enrolled,
			AvailableCourses: totalCourses,
			TotalCategories:  totalCategories,
		},
		MyEnrollments: recent,
	}, nil
}

func (svc *service) UserStatistics(ctx context.Context) (*UserStatistics, error) {
	total, err := svc.repo.CountUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting users")
	}
	byRole, err := svc.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting users by role")
	}
	active, inactive, err := svc.repo.CountUsersByActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting users by active")
	}
	recent, err := svc.repo.RecentUsers(ctx, statsRecentLimit)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent users")
	}

	return &UserStatistics{
		TotalUsers:          total,
		UsersByRole:         byRole,
		ActiveUsers:         active,
		InactiveUsers:       inactive,
		RecentRegistrations: recent,
	}, nil
}

// CourseStatistics scopes visibility by role: admins see all courses,
// instructors only their own; anyone else is denied.
func (svc *service) CourseStatistics(ctx context.Context, usr user.User) (*CourseStatistics, error) {
	instructorID, err := visibilityScope(usr)
	if err != nil {
		return nil, err
	}

	totalCourses, err := svc.repo.CountCourses(ctx, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "counting courses")
	}
	totalEnrollments, err := svc.repo.CountEnrollments(ctx, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "counting enrollments")
	}
	byCategory, err := svc.repo.CountCoursesByCategory(ctx, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "counting courses by category")
	}
	courses, err := svc.repo.TopCourses(ctx, instructorID, 0)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	return &CourseStatistics{
		TotalCourses:                totalCourses,
		TotalEnrollments:            totalEnrollments,
		AverageEnrollmentsPerCourse: avg(totalEnrollments, totalCourses),
		CoursesByCategory:           byCategory,
		Courses:                     courses,
	}, nil
}

func (svc *service) EnrollmentStatistics(ctx context.Context, usr user.User) (*EnrollmentStatistics, error) {
	instructorID, err := visibilityScope(usr)
	if err != nil {
		return nil, err
	}

	total, err := svc.repo.CountEnrollments(ctx, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "counting enrollments")
	}
	byCourse, err := svc.repo.CountEnrollmentsByCourse(ctx, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "counting enrollments by course")
	}
	recent, err := svc.repo.RecentEnrollments(ctx, instructorID, statsRecentLimit)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent enrollments")
	}
	uniqueStudents, err := svc.repo.CountDistinctStudents(ctx, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "counting distinct students")
	}

	return &EnrollmentStatistics{
		TotalEnrollments:    total,
		UniqueStudents:      uniqueStudents,
		EnrollmentsByCourse: byCourse,
		RecentEnrollments:   recent,
	}, nil
}

func (svc *service) Reports(ctx context.Context) (*Reports, error) {
	totalUsers, err := svc.repo.CountUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting users")
	}
	usersByRole, err := svc.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting users by role")
	}
	totalCourses, err := svc.repo.CountCourses(ctx, 0)
	if err != nil {
		return nil, errors.Wrap(err, "counting courses")
	}
	totalCategories, err := svc.repo.CountCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting categories")
	}
	coursesByCategory, err := svc.repo.CountCoursesByCategory(ctx, 0)
	if err != nil {
		return nil, errors.Wrap(err, "counting courses by category")
	}
	totalEnrollments, err := svc.repo.CountEnrollments(ctx, 0)
	if err != nil {
		return nil, errors.Wrap(err, "counting enrollments")
	}
	popular, err := svc.repo.TopCourses(ctx, 0, reportTopLimit)
	if err != nil {
		return nil, errors.Wrap(err, "querying popular courses")
	}
	instructors, err := svc.repo.TopInstructors(ctx, reportTopLimit)
	if err != nil {
		return nil, errors.Wrap(err, "querying top instructors")
	}

	byCategory := make(map[string]int, len(coursesByCategory))
	for _, c := range coursesByCategory {
		byCategory[c.CategoryName] = c.Count
	}

	totalStudents := usersByRole[user.RoleStudent]

	return &Reports{
		Users: ReportUsers{
			Total:  totalUsers,
			ByRole: usersByRole,
		},
		Courses: ReportCourses{
			Total:           totalCourses,
			TotalCategories: totalCategories,
			ByCategory:      byCategory,
		},
		Enrollments: ReportEnrollments{
			Total:         totalEnrollments,
			AvgPerCourse:  avg(totalEnrollments, totalCourses),
			AvgPerStudent: avg(totalEnrollments, totalStudents),
			TotalStudents: totalStudents,
		},
		PopularCourses:    popular,
		ActiveInstructors: instructors,
	}, nil
}

// visibilityScope maps a caller to the instructor scope of the statistics
// queries: 0 (all) for admins, own id for instructors, denied otherwise.
func visibilityScope(usr user.User) (int, error) {
	switch usr.Role {
	case user.RoleAdmin:
		return 0, nil
	case user.RoleInstructor:
		return usr.ID, nil
	case user.RoleStudent:
		return 0, ErrPermissionDenied
	default:
		return 0, ErrPermissionDenied
	}
}

// avg returns total/count rounded to 2 decimals; 0 when count is 0.
func avg(total, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(count)*100) / 100
}
