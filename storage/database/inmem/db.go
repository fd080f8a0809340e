// Package inmemdb provides map-backed implementations of the core repositories
// for tests. A single lock guards all tables since most queries join across them.
package inmemdb

import (
	"sort"
	"sync"

	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users       map[int]*user.User
	categories  map[int]*catalog.Category
	courses     map[int]*catalog.Course
	enrollments map[int]*enrollment.Enrollment

	userPK       int
	categoryPK   int
	coursePK     int
	enrollmentPK int
}

func Open() (*DB, error) {
	db := &DB{
		users:       make(map[int]*user.User),
		categories:  make(map[int]*catalog.Category),
		courses:     make(map[int]*catalog.Course),
		enrollments: make(map[int]*enrollment.Enrollment),
	}
	return db, nil
}

/* lock-free helpers; callers hold db.mutex */

func (db *DB) queryUsers() []user.User {
	users := make([]user.User, 0, len(db.users))
	for _, usr := range db.users {
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users
}

func (db *DB) queryCourses() []catalog.Course {
	courses := make([]catalog.Course, 0, len(db.courses))
	for _, course := range db.courses {
		courses = append(courses, *course)
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].ID > courses[j].ID
		}
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
	return courses
}

func (db *DB) queryEnrollments() []enrollment.Enrollment {
	enrs := make([]enrollment.Enrollment, 0, len(db.enrollments))
	for _, enr := range db.enrollments {
		enrs = append(enrs, *enr)
	}
	sort.Slice(enrs, func(i, j int) bool {
		if enrs[i].EnrolledAt.Equal(enrs[j].EnrolledAt) {
			return enrs[i].ID > enrs[j].ID
		}
		return enrs[i].EnrolledAt.After(enrs[j].EnrolledAt)
	})
	return enrs
}

func (db *DB) rosterEntry(enr enrollment.Enrollment) enrollment.RosterEntry {
	entry := enrollment.RosterEntry{
		ID:         enr.ID,
		StudentID:  enr.StudentID,
		CourseID:   enr.CourseID,
		EnrolledAt: enr.EnrolledAt,
	}
	if stu, ok := db.users[enr.StudentID]; ok {
		entry.StudentName = stu.FullName
		entry.StudentEmail = stu.Email
	}
	if course, ok := db.courses[enr.CourseID]; ok {
		entry.CourseTitle = course.Title
	}
	return entry
}

func (db *DB) categoryName(id int) string {
	if cat, ok := db.categories[id]; ok {
		return cat.Name
	}
	return ""
}

func (db *DB) userName(id int) string {
	if usr, ok := db.users[id]; ok {
		return usr.FullName
	}
	return ""
}

func (db *DB) courseEnrollmentsCount(courseID int) int {
	n := 0
	for _, enr := range db.enrollments {
		if enr.CourseID == courseID {
			n++
		}
	}
	return n
}

func (db *DB) courseInfo(course catalog.Course) catalog.CourseInfo {
	return catalog.CourseInfo{
		Course:           course,
		CategoryName:     db.categoryName(course.CategoryID),
		InstructorName:   db.userName(course.InstructorID),
		EnrollmentsCount: db.courseEnrollmentsCount(course.ID),
	}
}
