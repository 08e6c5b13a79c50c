package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Conflict dimensions.
const (
	ConflictTeacher   = "teacher"
	ConflictGroup     = "group"
	ConflictClassroom = "classroom"
)

// Conflict is a detected temporal overlap between a candidate interval and
// an existing non-cancelled event, scoped to one dimension. It is derived,
// never persisted; recomputed on every check.
type Conflict struct {
	Type      string    `json:"type"`
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// ConflictProbe is a candidate interval to test against existing events.
// Empty dimension ids skip that dimension. ExcludeEventID lets an in-place
// edit check against everyone except itself.
type ConflictProbe struct {
	ExcludeEventID string    `json:"exclude_event_id"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	TeacherID      string    `json:"teacher_id"`
	GroupID        string    `json:"group_id"`
	ClassroomID    string    `json:"classroom_id"`
}

func (cp ConflictProbe) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// collide. An event ending exactly when another starts does not conflict.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// ConflictError is returned by mutating operations when the conflict gate
// rejects a save.
type ConflictError struct {
	Conflicts []Conflict
}

func (err ConflictError) Error() string {
	dims := make([]string, 0, len(err.Conflicts))
	seen := make(map[string]bool, 3)
	for _, c := range err.Conflicts {
		if !seen[c.Type] {
			seen[c.Type] = true
			dims = append(dims, c.Type)
		}
	}
	return fmt.Sprintf("scheduling conflict (%s)", strings.Join(dims, ", "))
}

// partitionConflicts maps overlapping events onto probe dimensions. An event
// may collide on more than one dimension; it yields one Conflict per match.
func partitionConflicts(probe ConflictProbe, events []Event) []Conflict {
	conflicts := make([]Conflict, 0, len(events))
	for _, evt := range events {
		if probe.TeacherID != "" && evt.TeacherID == probe.TeacherID {
			conflicts = append(conflicts, newConflict(ConflictTeacher, evt))
		}
		if probe.GroupID != "" && evt.GroupID == probe.GroupID {
			conflicts = append(conflicts, newConflict(ConflictGroup, evt))
		}
		if probe.ClassroomID != "" && evt.ClassroomID() == probe.ClassroomID {
			conflicts = append(conflicts, newConflict(ConflictClassroom, evt))
		}
	}
	return conflicts
}

func newConflict(dim string, evt Event) Conflict {
	return Conflict{
		Type:      dim,
		EventID:   evt.ID,
		Title:     evt.Title,
		StartTime: evt.StartTime,
		EndTime:   evt.EndTime,
	}
}
