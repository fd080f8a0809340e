package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_enrollmentApi_enroll(t *testing.T) {
	app, repos := setup(t)

	admin := testutil.CreateUser(t, repos.usr, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, repos.usr, "Teach", "teach@test.cd", "", user.RoleInstructor, true)
	student := testutil.CreateUser(t, repos.usr, "Hero", "hero@test.cd", "", user.RoleStudent, true)

	golang := testutil.CreateCategory(t, repos.cat, "Golang", "")
	course := testutil.CreateCourse(t, repos.cat, "Go 101", golang.ID, teacher.ID)

	studentToken := getToken(t, student)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: fmt.Sprintf("/v1/courses/%d/enroll", course.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "instructors cannot enroll", method: http.MethodPost, path: fmt.Sprintf("/v1/courses/%d/enroll", course.ID),
			token:    getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "admins cannot enroll", method: http.MethodPost, path: fmt.Sprintf("/v1/courses/%d/enroll", course.ID),
			token:    getToken(t, admin),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "course not found", method: http.MethodPost, path: "/v1/courses/666/enroll",
			token:    studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "ok", method: http.MethodPost, path: fmt.Sprintf("/v1/courses/%d/enroll", course.ID),
			token:    studentToken,
			wantCode: http.StatusCreated,
		},
		{
			name: "double enroll", method: http.MethodPost, path: fmt.Sprintf("/v1/courses/%d/enroll", course.ID),
			token:    studentToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "already enrolled in this course"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var enr enrollment.Enrollment
				if err := json.Unmarshal(rec.Body.Bytes(), &enr); err != nil {
					t.Fatalf("unmarshalling enrollment: %v", err)
				}
				if enr.StudentID != student.ID || enr.CourseID != course.ID {
					t.Errorf("enrollment = %+v; want student %d course %d", enr, student.ID, course.ID)
				}
				if enr.EnrolledAt.IsZero() {
					t.Error("enrolled_at not set")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_enrollmentApi_unenroll(t *testing.T) {
	app, repos := setup(t)

	teacher := testutil.CreateUser(t, repos.usr, "Teach", "teach@test.cd", "", user.RoleInstructor, true)
	student := testutil.CreateUser(t, repos.usr, "Hero", "hero@test.cd", "", user.RoleStudent, true)

	golang := testutil.CreateCategory(t, repos.cat, "Golang", "")
	course := testutil.CreateCourse(t, repos.cat, "Go 101", golang.ID, teacher.ID)
	testutil.CreateEnrollment(t, repos.enr, student.ID, course.ID)

	studentToken := getToken(t, student)

	tests := []httpTest{
		{
			name: "auth required",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "instructors cannot unenroll", token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "ok", token: studentToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, MessageResponse{Message: "unenrolled from course"}),
		},
		{
			name: "not enrolled", token: studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "enrollment not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/courses/%d/unenroll", course.ID), tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_enrollmentApi_studentEnrollments(t *testing.T) {
	app, repos := setup(t)

	teacher := testutil.CreateUser(t, repos.usr, "Teach", "teach@test.cd", "", user.RoleInstructor, true)
	student := testutil.CreateUser(t, repos.usr, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	other := testutil.CreateUser(t, repos.usr, "Passerby", "passerby@test.cd", "", user.RoleStudent, true)

	golang := testutil.CreateCategory(t, repos.cat, "Golang", "")
	maths := testutil.CreateCategory(t, repos.cat, "Maths", "")
	goCourse := testutil.CreateCourse(t, repos.cat, "Go 101", golang.ID, teacher.ID)
	mathCourse := testutil.CreateCourse(t, repos.cat, "Algebra", maths.ID, teacher.ID)

	now := time.Now().UTC()
	older := testutil.CreateEnrollment(t, repos.enr, student.ID, goCourse.ID, now.Add(-time.Hour))
	newer := testutil.CreateEnrollment(t, repos.enr, student.ID, mathCourse.ID, now)
	testutil.CreateEnrollment(t, repos.enr, other.ID, goCourse.ID, now)

	// newest first, scoped to the caller
	wantData := marchallList(t,
		enrollment.StudentEnrollment{
			ID:             newer.ID,
			CourseID:       mathCourse.ID,
			CourseTitle:    mathCourse.Title,
			CategoryName:   maths.Name,
			InstructorName: teacher.FullName,
			EnrolledAt:     newer.EnrolledAt,
		},
		enrollment.StudentEnrollment{
			ID:             older.ID,
			CourseID:       goCourse.ID,
			CourseTitle:    goCourse.Title,
			CategoryName:   golang.Name,
			InstructorName: teacher.FullName,
			EnrolledAt:     older.EnrolledAt,
		},
	)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "instructors denied", token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "ok", token: getToken(t, student), wantCode: http.StatusOK, wantData: wantData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/student/enrollments", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_enrollmentApi_roster(t *testing.T) {
	app, repos := setup(t)

	admin := testutil.CreateUser(t, repos.usr, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, repos.usr, "Teach", "teach@test.cd", "", user.RoleInstructor, true)
	rival := testutil.CreateUser(t, repos.usr, "Rival", "rival@test.cd", "", user.RoleInstructor, true)
	student := testutil.CreateUser(t, repos.usr, "Hero", "hero@test.cd", "", user.RoleStudent, true)

	golang := testutil.CreateCategory(t, repos.cat, "Golang", "")
	course := testutil.CreateCourse(t, repos.cat, "Go 101", golang.ID, teacher.ID)
	enr := testutil.CreateEnrollment(t, repos.enr, student.ID, course.ID)

	wantData := marchallList(t, enrollment.RosterEntry{
		ID:           enr.ID,
		StudentID:    student.ID,
		StudentName:  student.FullName,
		StudentEmail: student.Email,
		CourseID:     course.ID,
		CourseTitle:  course.Title,
		EnrolledAt:   enr.EnrolledAt,
	})

	tests := []httpTest{
		{
			name: "auth required", path: fmt.Sprintf("/v1/courses/%d/enrollments", course.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "students denied", path: fmt.Sprintf("/v1/courses/%d/enrollments", course.ID),
			token:    getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "non owning instructor denied", path: fmt.Sprintf("/v1/courses/%d/enrollments", course.ID),
			token:    getToken(t, rival),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "course not found", path: "/v1/courses/666/enrollments",
			token:    getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "owning instructor", path: fmt.Sprintf("/v1/courses/%d/enrollments", course.ID),
			token:    getToken(t, teacher),
			wantCode: http.StatusOK, wantData: wantData,
		},
		{
			name: "admin", path: fmt.Sprintf("/v1/courses/%d/enrollments", course.ID),
			token:    getToken(t, admin),
			wantCode: http.StatusOK, wantData: wantData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
