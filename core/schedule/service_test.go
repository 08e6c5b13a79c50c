package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/campushq/backoffice/core"
	"github.com/campushq/backoffice/core/campus"
	"github.com/campushq/backoffice/core/schedule"
	emailsvc "github.com/campushq/backoffice/services/email"
	inmemdb "github.com/campushq/backoffice/storage/database/inmem"
	testutil "github.com/campushq/backoffice/tests"
)

type fixture struct {
	repo       schedule.Repository
	campusRepo campus.Repository
	svc        *schedule.Service

	campus   campus.Campus
	room     campus.Classroom
	aula     campus.Classroom // universal
	teacher  string
	group    string
	otherGrp string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := inmemdb.NewDB()
	repo := inmemdb.NewScheduleRepository(db)
	campusRepo := inmemdb.NewCampusRepository(db)

	f := &fixture{
		repo:       repo,
		campusRepo: campusRepo,
		svc: schedule.NewServiceWithPolicy(
			repo, campusRepo, nil, emailsvc.NewConsoleServiceMock(), nil, core.ConflictPolicyBlock,
		),
		teacher:  "3290f66e-7bc2-44b6-9bd1-5b3e6a0a0c01",
		group:    "3290f66e-7bc2-44b6-9bd1-5b3e6a0a0c02",
		otherGrp: "3290f66e-7bc2-44b6-9bd1-5b3e6a0a0c03",
	}
	f.campus = testutil.CreateCampus(t, campusRepo, "Main", "Kinshasa")
	f.room = testutil.CreateClassroom(t, campusRepo, f.campus.ID, "B12", 30, false)
	f.aula = testutil.CreateClassroom(t, campusRepo, f.campus.ID, "Aula", 0, true)
	return f
}

func at(h, m int) time.Time {
	return time.Date(2026, 9, 7, h, m, 0, 0, time.UTC)
}

func TestService_CheckConflicts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	existing := testutil.CreateEvent(t, f.repo, "Algebra", at(10, 0), at(11, 0), f.group, f.teacher, f.room.ID)
	cancelled := testutil.CreateEvent(t, f.repo, "Cancelled", at(10, 0), at(11, 0), f.otherGrp, "", "")
	cancelled.IsCancelled = true
	if _, err := f.repo.UpdateEvent(ctx, cancelled); err != nil {
		t.Fatalf("UpdateEvent() failed: %v", err)
	}
	testutil.CreateEvent(t, f.repo, "In Aula", at(10, 0), at(11, 0), "", "", f.aula.ID)

	tests := []struct {
		name      string
		probe     schedule.ConflictProbe
		wantTypes []string
	}{
		{
			name:      "no dimensions",
			probe:     schedule.ConflictProbe{StartTime: at(10, 0), EndTime: at(11, 0)},
			wantTypes: []string{},
		},
		{
			name:      "teacher busy",
			probe:     schedule.ConflictProbe{StartTime: at(10, 30), EndTime: at(11, 30), TeacherID: f.teacher},
			wantTypes: []string{schedule.ConflictTeacher},
		},
		{
			name:      "group busy",
			probe:     schedule.ConflictProbe{StartTime: at(10, 30), EndTime: at(11, 30), GroupID: f.group},
			wantTypes: []string{schedule.ConflictGroup},
		},
		{
			name:      "classroom busy",
			probe:     schedule.ConflictProbe{StartTime: at(10, 30), EndTime: at(11, 30), ClassroomID: f.room.ID},
			wantTypes: []string{schedule.ConflictClassroom},
		},
		{
			name: "all dimensions busy",
			probe: schedule.ConflictProbe{
				StartTime: at(10, 30), EndTime: at(11, 30),
				TeacherID: f.teacher, GroupID: f.group, ClassroomID: f.room.ID,
			},
			wantTypes: []string{schedule.ConflictTeacher, schedule.ConflictGroup, schedule.ConflictClassroom},
		},
		{
			name:      "back to back is fine",
			probe:     schedule.ConflictProbe{StartTime: at(11, 0), EndTime: at(12, 0), TeacherID: f.teacher},
			wantTypes: []string{},
		},
		{
			name:      "universal classroom is exempt",
			probe:     schedule.ConflictProbe{StartTime: at(10, 0), EndTime: at(11, 0), ClassroomID: f.aula.ID},
			wantTypes: []string{},
		},
		{
			name:      "cancelled events never conflict",
			probe:     schedule.ConflictProbe{StartTime: at(10, 0), EndTime: at(11, 0), GroupID: f.otherGrp},
			wantTypes: []string{},
		},
		{
			name: "edited event excludes itself",
			probe: schedule.ConflictProbe{
				ExcludeEventID: existing.ID,
				StartTime:      at(10, 0), EndTime: at(11, 0),
				TeacherID: f.teacher, GroupID: f.group, ClassroomID: f.room.ID,
			},
			wantTypes: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicts, err := f.svc.CheckConflicts(ctx, tt.probe)
			if err != nil {
				t.Fatalf("CheckConflicts() failed: %v", err)
			}
			if len(conflicts) != len(tt.wantTypes) {
				t.Fatalf("CheckConflicts() returned %d conflicts, want %d: %+v", len(conflicts), len(tt.wantTypes), conflicts)
			}
			for i, want := range tt.wantTypes {
				if conflicts[i].Type != want {
					t.Errorf("conflicts[%d].Type = %s, want %s", i, conflicts[i].Type, want)
				}
			}
		})
	}
}

func TestService_Create_conflictGate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	testutil.CreateEvent(t, f.repo, "Algebra", at(10, 0), at(11, 0), f.group, f.teacher, f.room.ID)

	ne := schedule.NewEvent{
		Title:       "Geometry",
		StartTime:   at(10, 30),
		EndTime:     at(11, 30),
		Type:        schedule.TypeLesson,
		GroupID:     f.otherGrp,
		TeacherID:   f.teacher,
		ClassroomID: f.room.ID,
	}

	_, err := f.svc.Create(ctx, ne)
	if err == nil {
		t.Fatal("Create() expected conflict error")
	}
	var cErr *schedule.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("Create() error = %v, want *ConflictError", err)
	}
	if len(cErr.Conflicts) != 2 { // teacher + classroom
		t.Errorf("Create() returned %d conflicts, want 2: %+v", len(cErr.Conflicts), cErr.Conflicts)
	}

	// force bypasses the gate
	ne.Force = true
	if _, err = f.svc.Create(ctx, ne); err != nil {
		t.Errorf("Create(force) failed: %v", err)
	}
}

func TestService_Move(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	evt := testutil.CreateEvent(t, f.repo, "Algebra", at(10, 0), at(11, 0), f.group, f.teacher, f.room.ID)
	blocker := testutil.CreateEvent(t, f.repo, "Staff meeting", at(14, 0), at(15, 0), "", f.teacher, "")

	// moving to the exact same interval is a no-op
	before, _ := f.repo.GetEventByID(ctx, evt.ID)
	moved, err := f.svc.Move(ctx, evt.ID, schedule.MoveEvent{StartTime: at(10, 0), EndTime: at(11, 0)})
	if err != nil {
		t.Fatalf("Move() failed: %v", err)
	}
	if !moved.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("Move() to same interval should not touch the event")
	}

	// moving onto the blocker conflicts
	_, err = f.svc.Move(ctx, evt.ID, schedule.MoveEvent{StartTime: at(14, 30), EndTime: at(15, 30)})
	var cErr *schedule.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("Move() error = %v, want *ConflictError", err)
	}

	// force wins
	moved, err = f.svc.Move(ctx, evt.ID, schedule.MoveEvent{StartTime: at(14, 30), EndTime: at(15, 30), Force: true})
	if err != nil {
		t.Fatalf("Move(force) failed: %v", err)
	}
	if !moved.StartTime.Equal(at(14, 30)) || !moved.EndTime.Equal(at(15, 30)) {
		t.Errorf("Move(force) times = %v-%v", moved.StartTime, moved.EndTime)
	}

	// a clean move keeps everything but the times
	moved, err = f.svc.Move(ctx, blocker.ID, schedule.MoveEvent{StartTime: at(8, 0), EndTime: at(9, 0)})
	if err != nil {
		t.Fatalf("Move() failed: %v", err)
	}
	if moved.Title != blocker.Title || moved.TeacherID != blocker.TeacherID {
		t.Error("Move() must not touch category or associations")
	}
}

// erroringRepo fails every overlap query; used to exercise the failure policy.
type erroringRepo struct {
	schedule.Repository
}

func (erroringRepo) FilterOverlappingEvents(context.Context, time.Time, time.Time, string, string, string, string) ([]schedule.Event, error) {
	return nil, errors.New("db is down")
}

func TestService_conflictCheckFailurePolicy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ne := schedule.NewEvent{
		Title:     "Geometry",
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
		Type:      schedule.TypeLesson,
		GroupID:   f.group,
		TeacherID: f.teacher,
	}

	blockSvc := schedule.NewServiceWithPolicy(
		erroringRepo{f.repo}, f.campusRepo, nil, emailsvc.NewConsoleServiceMock(), nil, core.ConflictPolicyBlock,
	)
	if _, err := blockSvc.Create(ctx, ne); err == nil {
		t.Error("Create() with block policy should reject when the check fails")
	}

	allowSvc := schedule.NewServiceWithPolicy(
		erroringRepo{f.repo}, f.campusRepo, nil, emailsvc.NewConsoleServiceMock(), nil, core.ConflictPolicyAllow,
	)
	if _, err := allowSvc.Create(ctx, ne); err != nil {
		t.Errorf("Create() with allow policy should proceed unchecked, got %v", err)
	}
}

func TestService_CancelRestore(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	evt := testutil.CreateEvent(t, f.repo, "Algebra", at(10, 0), at(11, 0), f.group, f.teacher, f.room.ID)

	cancelled, err := f.svc.Cancel(ctx, evt.ID, "teacher is sick")
	if err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	if !cancelled.IsCancelled || cancelled.CancelledReason != "teacher is sick" {
		t.Errorf("Cancel() = %+v", cancelled)
	}

	// cancelled events free up their slot
	conflicts, err := f.svc.CheckConflicts(ctx, schedule.ConflictProbe{
		StartTime: at(10, 0), EndTime: at(11, 0), ClassroomID: f.room.ID,
	})
	if err != nil {
		t.Fatalf("CheckConflicts() failed: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("cancelled event should not conflict, got %+v", conflicts)
	}

	restored, err := f.svc.Restore(ctx, evt.ID)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if restored.IsCancelled || restored.CancelledReason != "" {
		t.Errorf("Restore() = %+v", restored)
	}
}

func TestService_AvailableClassrooms(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	testutil.CreateClassroom(t, f.campusRepo, f.campus.ID, "Lab", 20, false)
	inactive := testutil.CreateClassroom(t, f.campusRepo, f.campus.ID, "Closed", 10, false)
	if _, err := f.campusRepo.UpdateClassroom(ctx, inactive, nil, boolPtr(false)); err != nil {
		t.Fatalf("UpdateClassroom() failed: %v", err)
	}

	// B12 is booked 10:00-11:00; the aula is booked too but is universal
	booking := testutil.CreateEvent(t, f.repo, "Algebra", at(10, 0), at(11, 0), f.group, "", f.room.ID)
	testutil.CreateEvent(t, f.repo, "Assembly", at(10, 0), at(11, 0), f.otherGrp, "", f.aula.ID)

	rooms, err := f.svc.AvailableClassrooms(ctx, f.campus.ID, at(10, 30), at(11, 30), "")
	if err != nil {
		t.Fatalf("AvailableClassrooms() failed: %v", err)
	}
	assertRoomNames(t, rooms, "Aula", "Lab") // universal first, then by name

	// excluding the booking frees B12
	rooms, err = f.svc.AvailableClassrooms(ctx, f.campus.ID, at(10, 30), at(11, 30), booking.ID)
	if err != nil {
		t.Fatalf("AvailableClassrooms() failed: %v", err)
	}
	assertRoomNames(t, rooms, "Aula", "B12", "Lab")

	// outside the booked window everything is free
	rooms, err = f.svc.AvailableClassrooms(ctx, f.campus.ID, at(11, 0), at(12, 0), "")
	if err != nil {
		t.Fatalf("AvailableClassrooms() failed: %v", err)
	}
	assertRoomNames(t, rooms, "Aula", "B12", "Lab")
}

func TestService_BulkShift(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	evt1 := testutil.CreateEvent(t, f.repo, "Algebra", at(10, 0), at(11, 0), f.group, "", "")
	evt2 := testutil.CreateEvent(t, f.repo, "Geometry", at(14, 0), at(15, 30), f.group, "", "")

	err := f.svc.BulkShift(ctx, schedule.BulkShift{IDs: []string{evt1.ID, evt2.ID}, Days: 1, Minutes: 30})
	if err != nil {
		t.Fatalf("BulkShift() failed: %v", err)
	}

	shifted, _ := f.repo.GetEventByID(ctx, evt1.ID)
	if want := at(10, 30).AddDate(0, 0, 1); !shifted.StartTime.Equal(want) {
		t.Errorf("BulkShift() start = %v, want %v", shifted.StartTime, want)
	}
	shifted, _ = f.repo.GetEventByID(ctx, evt2.ID)
	if got := shifted.Duration(); got != 90*time.Minute {
		t.Errorf("BulkShift() must preserve duration, got %v", got)
	}
}

func TestService_BulkDuplicate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	evt := testutil.CreateEvent(t, f.repo, "Algebra", at(10, 0), at(11, 0), f.group, f.teacher, f.room.ID)

	copies, err := f.svc.BulkDuplicate(ctx, schedule.BulkDuplicate{
		IDs: []string{evt.ID}, OffsetDays: 7, GroupID: f.otherGrp,
	})
	if err != nil {
		t.Fatalf("BulkDuplicate() failed: %v", err)
	}
	if len(copies) != 1 {
		t.Fatalf("BulkDuplicate() returned %d copies, want 1", len(copies))
	}
	cp := copies[0]
	if cp.ID == evt.ID {
		t.Error("BulkDuplicate() must assign a new ID")
	}
	if want := at(10, 0).AddDate(0, 0, 7); !cp.StartTime.Equal(want) {
		t.Errorf("BulkDuplicate() start = %v, want %v", cp.StartTime, want)
	}
	if cp.GroupID != f.otherGrp {
		t.Errorf("BulkDuplicate() group = %s, want %s", cp.GroupID, f.otherGrp)
	}
	if cp.TeacherID != evt.TeacherID || cp.ClassroomID() != f.room.ID {
		t.Error("BulkDuplicate() must keep teacher and location")
	}
}

func TestService_BulkReassign(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	evt := testutil.CreateEvent(t, f.repo, "Algebra", at(10, 0), at(11, 0), f.group, f.teacher, f.room.ID)

	newTeacher := "3290f66e-7bc2-44b6-9bd1-5b3e6a0a0c09"
	typ := schedule.TypeTest
	err := f.svc.BulkReassign(ctx, schedule.BulkReassign{
		IDs:         []string{evt.ID},
		TeacherID:   &newTeacher,
		ClassroomID: &f.aula.ID,
		Type:        &typ,
	})
	if err != nil {
		t.Fatalf("BulkReassign() failed: %v", err)
	}

	reassigned, _ := f.repo.GetEventByID(ctx, evt.ID)
	if reassigned.TeacherID != newTeacher {
		t.Errorf("BulkReassign() teacher = %s, want %s", reassigned.TeacherID, newTeacher)
	}
	if reassigned.ClassroomID() != f.aula.ID {
		t.Errorf("BulkReassign() classroom = %s, want %s", reassigned.ClassroomID(), f.aula.ID)
	}
	if reassigned.Type != schedule.TypeTest {
		t.Errorf("BulkReassign() type = %s, want %s", reassigned.Type, schedule.TypeTest)
	}
	if !reassigned.StartTime.Equal(evt.StartTime) {
		t.Error("BulkReassign() must not touch times")
	}
}

func boolPtr(b bool) *bool { return &b }

func assertRoomNames(t *testing.T, rooms []campus.Classroom, want ...string) {
	t.Helper()
	if len(rooms) != len(want) {
		t.Fatalf("got %d rooms, want %d: %+v", len(rooms), len(want), rooms)
	}
	for i, name := range want {
		if rooms[i].Name != name {
			t.Errorf("rooms[%d].Name = %s, want %s", i, rooms[i].Name, name)
		}
	}
}
