package schedule

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campushq/backoffice/core"
)

// Event types
const (
	TypeLesson   = "lesson"
	TypePractice = "practice"
	TypeTest     = "test"
	TypeProject  = "project"
	TypeOther    = "other"
)

var EventTypes = []string{TypeLesson, TypePractice, TypeTest, TypeProject, TypeOther}

// Location kinds
const (
	LocationRoom      = "room" // legacy single-room reference
	LocationClassroom = "classroom"
)

// Location is the single bookable-location variant an Event may occupy.
// Legacy "room" references and capacity-aware "classroom" references are
// distinguished by Kind; only classroom locations participate in
// collision checking.
type Location struct {
	Kind string
	ID   string
}

// RoomLocation returns a legacy room Location; empty id means no location.
func RoomLocation(id string) *Location {
	if id == "" {
		return nil
	}
	return &Location{Kind: LocationRoom, ID: id}
}

func ClassroomLocation(id string) *Location {
	if id == "" {
		return nil
	}
	return &Location{Kind: LocationClassroom, ID: id}
}

// Event marshals with the location variant flattened into `room_id` /
// `classroom_id` wire fields; see eventJSON.
type Event struct {
	ID              string
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	Type            string
	IsCancelled     bool
	CancelledReason string
	OnlineLink      string
	GroupID         string
	TeacherID       string
	Location        *Location
	LessonID        string
	CreatedAt       time.Time // UTC
	UpdatedAt       time.Time // UTC
}

// eventJSON is the wire shape of an Event: snake_case fields with the
// single-location variant spread over room_id/classroom_id.
type eventJSON struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Type            string    `json:"event_type"`
	IsCancelled     bool      `json:"is_cancelled"`
	CancelledReason string    `json:"cancelled_reason,omitempty"`
	OnlineLink      string    `json:"online_link,omitempty"`
	GroupID         string    `json:"group_id"`
	TeacherID       string    `json:"teacher_id,omitempty"`
	RoomID          string    `json:"room_id,omitempty"`
	ClassroomID     string    `json:"classroom_id,omitempty"`
	LessonID        string    `json:"lesson_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Type:            e.Type,
		IsCancelled:     e.IsCancelled,
		CancelledReason: e.CancelledReason,
		OnlineLink:      e.OnlineLink,
		GroupID:         e.GroupID,
		TeacherID:       e.TeacherID,
		RoomID:          e.RoomID(),
		ClassroomID:     e.ClassroomID(),
		LessonID:        e.LessonID,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Event{
		ID:              w.ID,
		Title:           w.Title,
		Description:     w.Description,
		StartTime:       w.StartTime,
		EndTime:         w.EndTime,
		Type:            w.Type,
		IsCancelled:     w.IsCancelled,
		CancelledReason: w.CancelledReason,
		OnlineLink:      w.OnlineLink,
		GroupID:         w.GroupID,
		TeacherID:       w.TeacherID,
		LessonID:        w.LessonID,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
	if w.ClassroomID != "" {
		e.Location = ClassroomLocation(w.ClassroomID)
	} else {
		e.Location = RoomLocation(w.RoomID)
	}
	return nil
}

func (e Event) Duration() time.Duration { return e.EndTime.Sub(e.StartTime) }

// ClassroomID returns the classroom id when the event occupies a
// collision-checked classroom, "" otherwise.
func (e Event) ClassroomID() string {
	if e.Location != nil && e.Location.Kind == LocationClassroom {
		return e.Location.ID
	}
	return ""
}

// RoomID returns the legacy room id, "" otherwise.
func (e Event) RoomID() string {
	if e.Location != nil && e.Location.Kind == LocationRoom {
		return e.Location.ID
	}
	return ""
}

// NewEvent contains information needed to create a new Event.
// `room_id` and `classroom_id` are mutually exclusive; they collapse into
// the single Location variant.
type NewEvent struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Type        string    `json:"event_type" validate:"required,eventtype"`
	OnlineLink  string    `json:"online_link" validate:"omitempty,url"`
	GroupID     string    `json:"group_id" validate:"required,uuid4"`
	TeacherID   string    `json:"teacher_id" validate:"omitempty,uuid4"`
	RoomID      string    `json:"room_id" validate:"omitempty,uuid4"`
	ClassroomID string    `json:"classroom_id" validate:"omitempty,uuid4"`
	LessonID    string    `json:"lesson_id" validate:"omitempty,uuid4"`

	// Force skips the conflict gate on save.
	Force bool `json:"force"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.OnlineLink = core.CleanString(ne.OnlineLink)

	if err := validate.Struct(ne); err != nil {
		return err
	}
	if ne.RoomID != "" && ne.ClassroomID != "" {
		return core.NewValidationError(
			errors.New("an event cannot reference both a room and a classroom"),
			core.FieldError{Field: "classroom_id", Error: errRoomAndClassroomText},
		)
	}
	return nil
}

func (ne NewEvent) location() *Location {
	if ne.ClassroomID != "" {
		return ClassroomLocation(ne.ClassroomID)
	}
	return RoomLocation(ne.RoomID)
}

// UpdateEvent defines what information may be provided to modify an existing
// Event. nil pointers leave the field untouched; pointers to zero values
// clear it.
type UpdateEvent struct {
	Title       *string    `json:"title" validate:"omitempty"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Type        *string    `json:"event_type" validate:"omitempty,eventtype"`
	OnlineLink  *string    `json:"online_link"`
	GroupID     *string    `json:"group_id" validate:"omitempty,uuid4"`
	TeacherID   *string    `json:"teacher_id" validate:"omitempty,allowempty_uuid4"`
	RoomID      *string    `json:"room_id" validate:"omitempty,allowempty_uuid4"`
	ClassroomID *string    `json:"classroom_id" validate:"omitempty,allowempty_uuid4"`
	LessonID    *string    `json:"lesson_id" validate:"omitempty,allowempty_uuid4"`

	Force bool `json:"force"`
}

func (ue *UpdateEvent) Validate(validate *validator.Validate) error {
	if ue.Title != nil {
		title := core.CleanString(*ue.Title)
		ue.Title = &title
	}
	if err := validate.Struct(ue); err != nil {
		return err
	}
	if ue.RoomID != nil && ue.ClassroomID != nil && *ue.RoomID != "" && *ue.ClassroomID != "" {
		return core.NewValidationError(
			errors.New("an event cannot reference both a room and a classroom"),
			core.FieldError{Field: "classroom_id", Error: errRoomAndClassroomText},
		)
	}
	return nil
}

// apply merges the update into evt.
func (ue UpdateEvent) apply(evt Event) Event {
	if ue.Title != nil && *ue.Title != "" {
		evt.Title = *ue.Title
	}
	if ue.Description != nil {
		evt.Description = *ue.Description
	}
	if ue.StartTime != nil {
		evt.StartTime = *ue.StartTime
	}
	if ue.EndTime != nil {
		evt.EndTime = *ue.EndTime
	}
	if ue.Type != nil {
		evt.Type = *ue.Type
	}
	if ue.OnlineLink != nil {
		evt.OnlineLink = *ue.OnlineLink
	}
	if ue.GroupID != nil && *ue.GroupID != "" {
		evt.GroupID = *ue.GroupID
	}
	if ue.TeacherID != nil {
		evt.TeacherID = *ue.TeacherID
	}
	if ue.ClassroomID != nil {
		evt.Location = ClassroomLocation(*ue.ClassroomID)
	} else if ue.RoomID != nil {
		evt.Location = RoomLocation(*ue.RoomID)
	}
	if ue.LessonID != nil {
		evt.LessonID = *ue.LessonID
	}
	return evt
}

// MoveEvent reschedules an event: start/end shift only, category and
// associations unchanged.
type MoveEvent struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Force     bool      `json:"force"`
}

func (me MoveEvent) Validate(validate *validator.Validate) error {
	return validate.Struct(me)
}

// QueryFilter narrows event listings. Zero values mean "any".
type QueryFilter struct {
	GroupID          string    `query:"group_id"`
	TeacherID        string    `query:"teacher_id"`
	ClassroomID      string    `query:"classroom_id"`
	Types            []string  `query:"event_type"`
	From             time.Time `query:"from"`
	To               time.Time `query:"to"`
	IncludeCancelled bool      `query:"include_cancelled"`
	Search           string    `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.GroupID == "" && qf.TeacherID == "" && qf.ClassroomID == "" &&
		qf.Types == nil && qf.From.IsZero() && qf.To.IsZero() &&
		!qf.IncludeCancelled && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Bulk operation inputs, used by multi-select toolbars.

type BulkCancel struct {
	IDs    []string `json:"ids" validate:"required,min=1"`
	Reason string   `json:"reason"`
}

func (bc *BulkCancel) Validate(validate *validator.Validate) error {
	bc.Reason = core.CleanString(bc.Reason)
	return validate.Struct(bc)
}

// BulkReassign reassigns teacher, location and/or type across events.
// nil pointers leave the field untouched.
type BulkReassign struct {
	IDs         []string `json:"ids" validate:"required,min=1"`
	TeacherID   *string  `json:"teacher_id" validate:"omitempty,allowempty_uuid4"`
	RoomID      *string  `json:"room_id" validate:"omitempty,allowempty_uuid4"`
	ClassroomID *string  `json:"classroom_id" validate:"omitempty,allowempty_uuid4"`
	Type        *string  `json:"event_type" validate:"omitempty,eventtype"`
}

func (br BulkReassign) Validate(validate *validator.Validate) error {
	if err := validate.Struct(br); err != nil {
		return err
	}
	if br.RoomID != nil && br.ClassroomID != nil && *br.RoomID != "" && *br.ClassroomID != "" {
		return core.NewValidationError(
			errors.New("an event cannot reference both a room and a classroom"),
			core.FieldError{Field: "classroom_id", Error: errRoomAndClassroomText},
		)
	}
	return nil
}

// BulkShift shifts events by whole days and/or minutes, preserving duration.
type BulkShift struct {
	IDs     []string `json:"ids" validate:"required,min=1"`
	Days    int      `json:"days"`
	Minutes int      `json:"minutes"`
}

func (bs BulkShift) Validate(validate *validator.Validate) error {
	return validate.Struct(bs)
}

// BulkDuplicate copies events with a day offset, optionally into another group.
type BulkDuplicate struct {
	IDs        []string `json:"ids" validate:"required,min=1"`
	OffsetDays int      `json:"offset_days"`
	GroupID    string   `json:"group_id" validate:"omitempty,uuid4"`
}

func (bd BulkDuplicate) Validate(validate *validator.Validate) error {
	return validate.Struct(bd)
}
