package enrollment

import "time"

type Enrollment struct {
	ID         int       `json:"id" db:"id"`
	StudentID  int       `json:"student_id" db:"student_id"`
	CourseID   int       `json:"course_id" db:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"` // UTC
}

// StudentEnrollment is the student-facing projection of an Enrollment,
// carrying the denormalized course/category/instructor names.
type StudentEnrollment struct {
	ID             int       `json:"id" db:"id"`
	CourseID       int       `json:"course_id" db:"course_id"`
	CourseTitle    string    `json:"course_title" db:"course_title"`
	CategoryName   string    `json:"category_name" db:"category_name"`
	InstructorName string    `json:"instructor_name" db:"instructor_name"`
	EnrolledAt     time.Time `json:"enrolled_at" db:"enrolled_at"`
}

// RosterEntry is the instructor/admin-facing projection of an Enrollment.
type RosterEntry struct {
	ID           int       `json:"id" db:"id"`
	StudentID    int       `json:"student_id" db:"student_id"`
	StudentName  string    `json:"student_name" db:"student_name"`
	StudentEmail string    `json:"student_email" db:"student_email"`
	CourseID     int       `json:"course_id" db:"course_id"`
	CourseTitle  string    `json:"course_title" db:"course_title"`
	EnrolledAt   time.Time `json:"enrolled_at" db:"enrolled_at"`
}
