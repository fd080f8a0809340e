package report

import (
	"time"

	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/user"
)

// Dashboard is the role-scoped summary payload; its concrete shape depends on
// the caller's role.
type Dashboard interface {
	isDashboard()
}

type (
	AdminSummary struct {
		TotalUsers       int `json:"total_users"`
		TotalCourses     int `json:"total_courses"`
		TotalCategories  int `json:"total_categories"`
		TotalEnrollments int `json:"total_enrollments"`
	}

	AdminDashboard struct {
		Role              user.Role               `json:"role"`
		Summary           AdminSummary            `json:"summary"`
		UsersByRole       map[user.Role]int       `json:"users_by_role"`
		RecentEnrollments []RecentEnrollment      `json:"recent_enrollments"`
		PopularCourses    []CourseEnrollmentCount `json:"popular_courses"`
	}

	InstructorSummary struct {
		MyCourses       int `json:"my_courses"`
		MyStudents      int `json:"my_students"`
		TotalCourses    int `json:"total_courses"`
		TotalCategories int `json:"total_categories"`
	}

	InstructorDashboard struct {
		Role    user.Role               `json:"role"`
		Summary InstructorSummary       `json:"summary"`
		Courses []CourseEnrollmentCount `json:"courses"`
	}

	StudentSummary struct {
		EnrolledCourses  int `json:"enrolled_courses"`
		AvailableCourses int `json:"available_courses"`
		TotalCategories  int `json:"total_categories"`
	}

	StudentDashboard struct {
		Role          user.Role                       `json:"role"`
		Summary       StudentSummary                  `json:"summary"`
		MyEnrollments []enrollment.StudentEnrollment  `json:"my_enrollments"`
	}
)

func (AdminDashboard) isDashboard()      {}
func (InstructorDashboard) isDashboard() {}
func (StudentDashboard) isDashboard()    {}

// RecentEnrollment is a trimmed enrollment line for the admin dashboard.
type RecentEnrollment struct {
	Student    string    `json:"student" db:"student"`
	Course     string    `json:"course" db:"course"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"`
}

// CourseEnrollmentCount annotates a course with its enrollment count.
type CourseEnrollmentCount struct {
	ID               int    `json:"id" db:"id"`
	Title            string `json:"title" db:"title"`
	CategoryName     string `json:"category_name,omitempty" db:"category_name"`
	InstructorName   string `json:"instructor_name,omitempty" db:"instructor_name"`
	EnrollmentsCount int    `json:"enrollments_count" db:"enrollments_count"`
}

// CategoryCourseCount is a per-category course count.
type CategoryCourseCount struct {
	CategoryName string `json:"category_name" db:"category_name"`
	Count        int    `json:"count" db:"count"`
}

// CourseTitleCount is a per-course enrollment count.
type CourseTitleCount struct {
	CourseTitle string `json:"course_title" db:"course_title"`
	Count       int    `json:"count" db:"count"`
}

// RecentUser is a trimmed user line for the user statistics payload.
type RecentUser struct {
	ID         int       `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	FullName   string    `json:"full_name" db:"full_name"`
	Role       user.Role `json:"role" db:"role"`
	DateJoined time.Time `json:"date_joined" db:"date_joined"`
}

// InstructorActivity ranks an instructor by total enrolled students.
type InstructorActivity struct {
	ID            int    `json:"id" db:"id"`
	FullName      string `json:"full_name" db:"full_name"`
	Email         string `json:"email" db:"email"`
	CourseCount   int    `json:"course_count" db:"course_count"`
	TotalStudents int    `json:"total_students" db:"total_students"`
}

type UserStatistics struct {
	TotalUsers          int               `json:"total_users"`
	UsersByRole         map[user.Role]int `json:"users_by_role"`
	ActiveUsers         int               `json:"active_users"`
	InactiveUsers       int               `json:"inactive_users"`
	RecentRegistrations []RecentUser      `json:"recent_registrations"`
}

type CourseStatistics struct {
	TotalCourses                int                     `json:"total_courses"`
	TotalEnrollments            int                     `json:"total_enrollments"`
	AverageEnrollmentsPerCourse float64                 `json:"average_enrollments_per_course"`
	CoursesByCategory           []CategoryCourseCount   `json:"courses_by_category"`
	Courses                     []CourseEnrollmentCount `json:"courses"`
}

type EnrollmentStatistics struct {
	TotalEnrollments    int                      `json:"total_enrollments"`
	UniqueStudents      int                      `json:"unique_students"`
	EnrollmentsByCourse []CourseTitleCount       `json:"enrollments_by_course"`
	RecentEnrollments   []enrollment.RosterEntry `json:"recent_enrollments"`
}

type (
	ReportUsers struct {
		Total  int               `json:"total"`
		ByRole map[user.Role]int `json:"by_role"`
	}

	ReportCourses struct {
		Total           int            `json:"total"`
		TotalCategories int            `json:"total_categories"`
		ByCategory      map[string]int `json:"by_category"`
	}

	ReportEnrollments struct {
		Total         int     `json:"total"`
		AvgPerCourse  float64 `json:"avg_per_course"`
		AvgPerStudent float64 `json:"avg_per_student"`
		// TotalStudents makes the avg_per_student=0 case explicit when there
		// are no student accounts.
		TotalStudents int `json:"total_students"`
	}

	Reports struct {
		Users             ReportUsers          `json:"users"`
		Courses           ReportCourses        `json:"courses"`
		Enrollments       ReportEnrollments    `json:"enrollments"`
		PopularCourses    []CourseEnrollmentCount `json:"popular_courses"`
		ActiveInstructors []InstructorActivity    `json:"active_instructors"`
	}
)
