package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campushq/backoffice/core/campus"
	"github.com/campushq/backoffice/core/group"
	"github.com/campushq/backoffice/core/schedule"
	"github.com/campushq/backoffice/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCampus(t *testing.T, repo campus.Repository, name, city string) campus.Campus {
	t.Helper()
	now := time.Now().UTC()
	cp, err := repo.CreateCampus(context.Background(), campus.Campus{
		ID:        uuid.New().String(),
		Name:      name,
		City:      city,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCampus() failed: %v", err)
	}
	return cp
}

func CreateClassroom(t *testing.T, repo campus.Repository, campusID, name string, capacity int, isUniversal bool) campus.Classroom {
	t.Helper()
	now := time.Now().UTC()
	room, err := repo.CreateClassroom(context.Background(), campus.Classroom{
		ID:          uuid.New().String(),
		CampusID:    campusID,
		Name:        name,
		Capacity:    capacity,
		IsUniversal: isUniversal,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateClassroom() failed: %v", err)
	}
	return room
}

func CreateGroup(t *testing.T, repo group.Repository, name, campusID string) group.Group {
	t.Helper()
	now := time.Now().UTC()
	grp, err := repo.CreateGroup(context.Background(), group.Group{
		ID:        uuid.New().String(),
		Name:      name,
		CampusID:  campusID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

func CreateEvent(
	t *testing.T,
	repo schedule.Repository,
	title string,
	start, end time.Time,
	groupID, teacherID, classroomID string,
) schedule.Event {
	t.Helper()
	now := time.Now().UTC()
	evt, err := repo.CreateEvent(context.Background(), schedule.Event{
		ID:        uuid.New().String(),
		Title:     title,
		StartTime: start,
		EndTime:   end,
		Type:      schedule.TypeLesson,
		GroupID:   groupID,
		TeacherID: teacherID,
		Location:  schedule.ClassroomLocation(classroomID),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return evt
}
