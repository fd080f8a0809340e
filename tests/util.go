package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FullName:  name,
		Email:     email,
		Role:      role,
		IsStaff:   role.IsStaff(),
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateCategory(t *testing.T, repo catalog.Repository, name, description string) catalog.Category {
	cat, err := repo.CreateCategory(context.Background(), catalog.Category{
		Name:        name,
		Description: description,
	})
	if err != nil {
		t.Fatalf("CreateCategory(): %v", err)
	}
	return cat
}

func CreateCourse(
	t *testing.T,
	repo catalog.Repository,
	title string,
	categoryID, instructorID int,
	createdAt ...time.Time,
) catalog.Course {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	course, err := repo.CreateCourse(context.Background(), catalog.Course{
		Title:        title,
		CategoryID:   categoryID,
		InstructorID: instructorID,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	return course
}

func CreateEnrollment(
	t *testing.T,
	repo enrollment.Repository,
	studentID, courseID int,
	enrolledAt ...time.Time,
) enrollment.Enrollment {
	tstamp := time.Now().UTC()
	if len(enrolledAt) > 0 {
		tstamp = enrolledAt[0].UTC()
	}
	enr, err := repo.CreateEnrollment(context.Background(), enrollment.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment(): %v", err)
	}
	return enr
}
