package schedule

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campushq/backoffice/core"
	"github.com/campushq/backoffice/core/campus"
)

var (
	ErrNotFound = errors.New("event not found")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		CreateEvents(ctx context.Context, evts []Event) ([]Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		// FilterEvents applies AND operation on available QueryFilter fields.
		// Cancelled events are excluded unless QueryFilter.IncludeCancelled.
		FilterEvents(ctx context.Context, filter QueryFilter) ([]Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEventsByID(ctx context.Context, ids ...string) error
		// FilterOverlappingEvents returns non-cancelled events overlapping the
		// half-open interval [start,end) that match any of the non-empty
		// dimension ids, excluding excludeID (the event being edited, if any).
		FilterOverlappingEvents(ctx context.Context, start, end time.Time, excludeID, teacherID, groupID, classroomID string) ([]Event, error)
	}

	// ClassroomDirectory is the slice of the campus domain the scheduler
	// needs: classroom lookups for the universal-room exemption and the
	// available-classrooms query.
	ClassroomDirectory interface {
		GetClassroomByID(ctx context.Context, id string) (campus.Classroom, error)
		FilterClassrooms(ctx context.Context, filter campus.ClassroomFilter) ([]campus.Classroom, error)
	}

	// TeacherDirectory resolves a teacher id to an email address for
	// cancellation notices. Optional.
	TeacherDirectory interface {
		GetTeacherEmail(ctx context.Context, id string) (mail.Address, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, ne NewEvent) (Event, error)
		CreateBatch(ctx context.Context, nes []NewEvent) ([]Event, error)
		GetByID(ctx context.Context, id string) (Event, error)
		Query(ctx context.Context, filter QueryFilter) ([]Event, error)
		Update(ctx context.Context, id string, ue UpdateEvent) (Event, error)
		Move(ctx context.Context, id string, me MoveEvent) (Event, error)
		Delete(ctx context.Context, ids ...string) error
		Cancel(ctx context.Context, id, reason string) (Event, error)
		Restore(ctx context.Context, id string) (Event, error)

		CheckConflicts(ctx context.Context, probe ConflictProbe) ([]Conflict, error)
		AvailableClassrooms(ctx context.Context, campusID string, start, end time.Time, excludeEventID string) ([]campus.Classroom, error)

		BulkCancel(ctx context.Context, bc BulkCancel) error
		BulkRestore(ctx context.Context, ids ...string) error
		BulkReassign(ctx context.Context, br BulkReassign) error
		BulkShift(ctx context.Context, bs BulkShift) error
		BulkDuplicate(ctx context.Context, bd BulkDuplicate) ([]Event, error)
	}

	Service struct {
		repo          Repository
		rooms         ClassroomDirectory
		teachers      TeacherDirectory // may be nil
		mailSvc       core.EmailService
		logger        core.Logger
		failurePolicy string // core.ConflictPolicyAllow | core.ConflictPolicyBlock
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	rooms ClassroomDirectory,
	teachers TeacherDirectory,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:          repo,
		rooms:         rooms,
		teachers:      teachers,
		mailSvc:       mailSvc,
		logger:        logger,
		failurePolicy: core.Conf.Schedule.ConflictCheckFailurePolicy,
	}
}

// NewServiceWithPolicy overrides the configured conflict-check failure policy.
func NewServiceWithPolicy(
	repo Repository,
	rooms ClassroomDirectory,
	teachers TeacherDirectory,
	mailSvc core.EmailService,
	logger core.Logger,
	failurePolicy string,
) *Service {
	svc := NewService(repo, rooms, teachers, mailSvc, logger)
	svc.failurePolicy = failurePolicy
	return svc
}

// CheckConflicts tests a candidate interval against existing events for
// teacher/group/classroom overlap. Cancelled events never participate; the
// classroom dimension is skipped entirely when the target classroom is
// universal. Read-only: safe to call speculatively while a user drags.
func (svc *Service) CheckConflicts(ctx context.Context, probe ConflictProbe) ([]Conflict, error) {
	if probe.TeacherID == "" && probe.GroupID == "" && probe.ClassroomID == "" {
		return []Conflict{}, nil
	}

	if probe.ClassroomID != "" {
		room, err := svc.rooms.GetClassroomByID(ctx, probe.ClassroomID)
		if err != nil {
			return nil, errors.Wrap(err, "finding probe classroom")
		}
		if room.IsUniversal {
			probe.ClassroomID = "" // unlimited capacity: exempt
		}
	}
	if probe.TeacherID == "" && probe.GroupID == "" && probe.ClassroomID == "" {
		return []Conflict{}, nil
	}

	events, err := svc.repo.FilterOverlappingEvents(
		ctx,
		probe.StartTime, probe.EndTime,
		probe.ExcludeEventID,
		probe.TeacherID, probe.GroupID, probe.ClassroomID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "filtering overlapping events")
	}
	return partitionConflicts(probe, events), nil
}

// AvailableClassrooms returns every active classroom at a campus that is
// either universal or has zero overlapping non-cancelled bookings in the
// given window, universal rooms first, then by name.
func (svc *Service) AvailableClassrooms(ctx context.Context, campusID string, start, end time.Time, excludeEventID string) ([]campus.Classroom, error) {
	rooms, err := svc.rooms.FilterClassrooms(ctx, campus.ClassroomFilter{CampusID: campusID, ActiveOnly: true})
	if err != nil {
		return nil, errors.Wrap(err, "filtering classrooms")
	}

	available := make([]campus.Classroom, 0, len(rooms))
	for _, room := range rooms {
		if room.IsUniversal {
			available = append(available, room)
			continue
		}
		bookings, err := svc.repo.FilterOverlappingEvents(ctx, start, end, excludeEventID, "", "", room.ID)
		if err != nil {
			return nil, errors.Wrap(err, "filtering bookings")
		}
		if len(bookings) == 0 {
			available = append(available, room)
		}
	}

	sort.Slice(available, func(i, j int) bool {
		if available[i].IsUniversal != available[j].IsUniversal {
			return available[i].IsUniversal
		}
		return available[i].Name < available[j].Name
	})
	return available, nil
}

func (svc *Service) Create(ctx context.Context, ne NewEvent) (Event, error) {
	now := time.Now().UTC()
	evt := Event{
		ID:          uuid.New().String(),
		Title:       ne.Title,
		Description: ne.Description,
		StartTime:   ne.StartTime,
		EndTime:     ne.EndTime,
		Type:        ne.Type,
		OnlineLink:  ne.OnlineLink,
		GroupID:     ne.GroupID,
		TeacherID:   ne.TeacherID,
		Location:    ne.location(),
		LessonID:    ne.LessonID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := svc.conflictGate(ctx, probeFor(evt, ""), ne.Force); err != nil {
		return Event{}, err
	}
	return svc.repo.CreateEvent(ctx, evt)
}

// CreateBatch creates many events at once (e.g. "repeat on selected weekdays
// × selected lesson templates"). Batch creation is not conflict-gated; the
// caller is expected to have checked candidates one by one.
func (svc *Service) CreateBatch(ctx context.Context, nes []NewEvent) ([]Event, error) {
	now := time.Now().UTC()
	evts := make([]Event, 0, len(nes))
	for _, ne := range nes {
		evts = append(evts, Event{
			ID:          uuid.New().String(),
			Title:       ne.Title,
			Description: ne.Description,
			StartTime:   ne.StartTime,
			EndTime:     ne.EndTime,
			Type:        ne.Type,
			OnlineLink:  ne.OnlineLink,
			GroupID:     ne.GroupID,
			TeacherID:   ne.TeacherID,
			Location:    ne.location(),
			LessonID:    ne.LessonID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return svc.repo.CreateEvents(ctx, evts)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return svc.repo.FilterEvents(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	evt = ue.apply(evt)
	if !evt.EndTime.After(evt.StartTime) {
		return Event{}, core.NewValidationError(
			errors.New("end time must be after start time"),
			core.FieldError{Field: "end_time", Error: "must be after start_time"},
		)
	}
	if err := svc.conflictGate(ctx, probeFor(evt, evt.ID), ue.Force); err != nil {
		return Event{}, err
	}
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

// Move shifts an event's start/end only; category and associations are
// untouched. Moving to the exact current interval is a no-op.
func (svc *Service) Move(ctx context.Context, id string, me MoveEvent) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if evt.StartTime.Equal(me.StartTime) && evt.EndTime.Equal(me.EndTime) {
		return evt, nil
	}
	evt.StartTime = me.StartTime
	evt.EndTime = me.EndTime
	if err := svc.conflictGate(ctx, probeFor(evt, evt.ID), me.Force); err != nil {
		return Event{}, err
	}
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteEventsByID(ctx, ids...)
}

// Cancel soft-cancels an event; it stops participating in conflict checks
// but is never deleted. The assigned teacher is notified when a teacher
// directory and mail service are wired.
func (svc *Service) Cancel(ctx context.Context, id, reason string) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	evt.IsCancelled = true
	evt.CancelledReason = core.CleanString(reason)
	evt.UpdatedAt = time.Now().UTC()
	evt, err = svc.repo.UpdateEvent(ctx, evt)
	if err != nil {
		return Event{}, err
	}
	svc.notifyCancellation(ctx, evt)
	return evt, nil
}

func (svc *Service) Restore(ctx context.Context, id string) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	evt.IsCancelled = false
	evt.CancelledReason = ""
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *Service) BulkCancel(ctx context.Context, bc BulkCancel) error {
	for _, id := range bc.IDs {
		if _, err := svc.Cancel(ctx, id, bc.Reason); err != nil {
			return errors.Wrapf(err, "cancelling event %s", id)
		}
	}
	return nil
}

func (svc *Service) BulkRestore(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := svc.Restore(ctx, id); err != nil {
			return errors.Wrapf(err, "restoring event %s", id)
		}
	}
	return nil
}

// BulkReassign reassigns teacher, location and/or type across events.
// Reassignments are not conflict-gated (multi-select toolbars warn upfront).
func (svc *Service) BulkReassign(ctx context.Context, br BulkReassign) error {
	for _, id := range br.IDs {
		evt, err := svc.repo.GetEventByID(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "finding event %s", id)
		}
		if br.TeacherID != nil {
			evt.TeacherID = *br.TeacherID
		}
		if br.ClassroomID != nil {
			evt.Location = ClassroomLocation(*br.ClassroomID)
		} else if br.RoomID != nil {
			evt.Location = RoomLocation(*br.RoomID)
		}
		if br.Type != nil {
			evt.Type = *br.Type
		}
		evt.UpdatedAt = time.Now().UTC()
		if _, err := svc.repo.UpdateEvent(ctx, evt); err != nil {
			return errors.Wrapf(err, "updating event %s", id)
		}
	}
	return nil
}

// BulkShift shifts events by days and/or minutes, preserving duration.
func (svc *Service) BulkShift(ctx context.Context, bs BulkShift) error {
	delta := time.Duration(bs.Days)*24*time.Hour + time.Duration(bs.Minutes)*time.Minute
	for _, id := range bs.IDs {
		evt, err := svc.repo.GetEventByID(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "finding event %s", id)
		}
		evt.StartTime = evt.StartTime.Add(delta)
		evt.EndTime = evt.EndTime.Add(delta)
		evt.UpdatedAt = time.Now().UTC()
		if _, err := svc.repo.UpdateEvent(ctx, evt); err != nil {
			return errors.Wrapf(err, "updating event %s", id)
		}
	}
	return nil
}

// BulkDuplicate copies events with a day offset, optionally into another
// group (copy-to-other-group when GroupID is set).
func (svc *Service) BulkDuplicate(ctx context.Context, bd BulkDuplicate) ([]Event, error) {
	delta := time.Duration(bd.OffsetDays) * 24 * time.Hour
	now := time.Now().UTC()

	copies := make([]Event, 0, len(bd.IDs))
	for _, id := range bd.IDs {
		evt, err := svc.repo.GetEventByID(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "finding event %s", id)
		}
		evt.ID = uuid.New().String()
		evt.StartTime = evt.StartTime.Add(delta)
		evt.EndTime = evt.EndTime.Add(delta)
		evt.IsCancelled = false
		evt.CancelledReason = ""
		if bd.GroupID != "" {
			evt.GroupID = bd.GroupID
		}
		evt.CreatedAt = now
		evt.UpdatedAt = now
		copies = append(copies, evt)
	}
	return svc.repo.CreateEvents(ctx, copies)
}

// conflictGate runs the checker before a save. Detected conflicts reject the
// save with a ConflictError unless force is set. A checker failure obeys the
// configured policy: "allow" proceeds (fail-open, logged), "block" rejects.
func (svc *Service) conflictGate(ctx context.Context, probe ConflictProbe, force bool) error {
	if force {
		return nil
	}
	conflicts, err := svc.CheckConflicts(ctx, probe)
	if err != nil {
		if svc.failurePolicy == core.ConflictPolicyBlock {
			return errors.Wrap(err, "checking conflicts")
		}
		if svc.logger != nil {
			svc.logger.Warn("conflict check failed; proceeding unchecked", err)
		}
		return nil
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

func (svc *Service) notifyCancellation(ctx context.Context, evt Event) {
	if svc.teachers == nil || svc.mailSvc == nil || evt.TeacherID == "" {
		return
	}
	addr, err := svc.teachers.GetTeacherEmail(ctx, evt.TeacherID)
	if err != nil {
		if svc.logger != nil {
			svc.logger.Warn("resolving teacher email for cancellation notice", err)
		}
		return
	}
	body := fmt.Sprintf(
		"%q on %s has been cancelled.",
		evt.Title, evt.StartTime.Format("Mon, 02 Jan 2006 15:04"),
	)
	if evt.CancelledReason != "" {
		body += "\nReason: " + evt.CancelledReason
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{addr},
		Subject: "Event cancelled: " + evt.Title,
		BodyStr: body,
	})
}

// probeFor derives the conflict probe for saving evt, excluding excludeID.
func probeFor(evt Event, excludeID string) ConflictProbe {
	return ConflictProbe{
		ExcludeEventID: excludeID,
		StartTime:      evt.StartTime,
		EndTime:        evt.EndTime,
		TeacherID:      evt.TeacherID,
		GroupID:        evt.GroupID,
		ClassroomID:    evt.ClassroomID(),
	}
}
