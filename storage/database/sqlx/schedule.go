package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/campushq/backoffice/core/schedule"
)

type eventRow struct {
	ID              string      `db:"id"`
	Title           string      `db:"title"`
	Description     string      `db:"description"`
	StartTime       time.Time   `db:"start_time"`
	EndTime         time.Time   `db:"end_time"`
	Type            string      `db:"event_type"`
	IsCancelled     bool        `db:"is_cancelled"`
	CancelledReason null.String `db:"cancelled_reason"`
	OnlineLink      null.String `db:"online_link"`
	GroupID         string      `db:"group_id"`
	TeacherID       null.String `db:"teacher_id"`
	RoomID          null.String `db:"room_id"`
	ClassroomID     null.String `db:"classroom_id"`
	LessonID        null.String `db:"lesson_id"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (r eventRow) toEvent() schedule.Event {
	evt := schedule.Event{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Type:            r.Type,
		IsCancelled:     r.IsCancelled,
		CancelledReason: r.CancelledReason.String,
		OnlineLink:      r.OnlineLink.String,
		GroupID:         r.GroupID,
		TeacherID:       r.TeacherID.String,
		LessonID:        r.LessonID.String,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.ClassroomID.Valid {
		evt.Location = schedule.ClassroomLocation(r.ClassroomID.String)
	} else if r.RoomID.Valid {
		evt.Location = schedule.RoomLocation(r.RoomID.String)
	}
	return evt
}

func toEventRow(evt schedule.Event) eventRow {
	nullable := func(s string) null.String { return null.NewString(s, s != "") }
	return eventRow{
		ID:              evt.ID,
		Title:           evt.Title,
		Description:     evt.Description,
		StartTime:       evt.StartTime,
		EndTime:         evt.EndTime,
		Type:            evt.Type,
		IsCancelled:     evt.IsCancelled,
		CancelledReason: nullable(evt.CancelledReason),
		OnlineLink:      nullable(evt.OnlineLink),
		GroupID:         evt.GroupID,
		TeacherID:       nullable(evt.TeacherID),
		RoomID:          nullable(evt.RoomID()),
		ClassroomID:     nullable(evt.ClassroomID()),
		LessonID:        nullable(evt.LessonID),
		CreatedAt:       evt.CreatedAt,
		UpdatedAt:       evt.UpdatedAt,
	}
}

type scheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

const insertEventQuery = `
INSERT INTO events (id, title, description, start_time, end_time, event_type, is_cancelled, cancelled_reason,
                    online_link, group_id, teacher_id, room_id, classroom_id, lesson_id, created_at, updated_at)
VALUES (:id, :title, :description, :start_time, :end_time, :event_type, :is_cancelled, :cancelled_reason,
        :online_link, :group_id, :teacher_id, :room_id, :classroom_id, :lesson_id, :created_at, :updated_at)`

func (repo *scheduleRepository) CreateEvent(ctx context.Context, evt schedule.Event) (schedule.Event, error) {
	if _, err := repo.db.NamedExecContext(ctx, insertEventQuery, toEventRow(evt)); err != nil {
		return schedule.Event{}, errors.Wrap(err, "inserting event")
	}
	return evt, nil
}

func (repo *scheduleRepository) CreateEvents(ctx context.Context, evts []schedule.Event) ([]schedule.Event, error) {
	if len(evts) == 0 {
		return []schedule.Event{}, nil
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, evt := range evts {
		if _, err := tx.NamedExecContext(ctx, insertEventQuery, toEventRow(evt)); err != nil {
			return nil, errors.Wrapf(err, "inserting event %s", evt.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing transaction")
	}
	return evts, nil
}

func (repo *scheduleRepository) GetEventByID(ctx context.Context, id string) (schedule.Event, error) {
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM events WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return schedule.Event{}, schedule.ErrNotFound
		}
		return schedule.Event{}, errors.Wrap(err, "getting event")
	}
	return row.toEvent(), nil
}

func (repo *scheduleRepository) FilterEvents(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Event, error) {
	q := `SELECT * FROM events WHERE true`
	var args []interface{}

	if !filter.IncludeCancelled {
		q += ` AND NOT is_cancelled`
	}
	if filter.GroupID != "" {
		q += ` AND group_id = ?`
		args = append(args, filter.GroupID)
	}
	if filter.TeacherID != "" {
		q += ` AND teacher_id = ?`
		args = append(args, filter.TeacherID)
	}
	if filter.ClassroomID != "" {
		q += ` AND classroom_id = ?`
		args = append(args, filter.ClassroomID)
	}
	if len(filter.Types) > 0 {
		q += ` AND event_type IN (?)`
		args = append(args, filter.Types)
	}
	if !filter.From.IsZero() {
		q += ` AND end_time > ?`
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		q += ` AND start_time < ?`
		args = append(args, filter.To)
	}
	if filter.Search != "" {
		q += ` AND (title ILIKE ? OR description ILIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	q += ` ORDER BY start_time`

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building filter query")
	}

	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering events")
	}
	return toEvents(rows), nil
}

func (repo *scheduleRepository) UpdateEvent(ctx context.Context, evt schedule.Event) (schedule.Event, error) {
	const q = `
UPDATE events
SET title = :title, description = :description, start_time = :start_time, end_time = :end_time,
    event_type = :event_type, is_cancelled = :is_cancelled, cancelled_reason = :cancelled_reason,
    online_link = :online_link, group_id = :group_id, teacher_id = :teacher_id, room_id = :room_id,
    classroom_id = :classroom_id, lesson_id = :lesson_id, updated_at = :updated_at
WHERE id = :id`

	res, err := repo.db.NamedExecContext(ctx, q, toEventRow(evt))
	if err != nil {
		return schedule.Event{}, errors.Wrap(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.Event{}, schedule.ErrNotFound
	}
	return evt, nil
}

func (repo *scheduleRepository) DeleteEventsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM events WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return nil
}

// FilterOverlappingEvents scans for non-cancelled events overlapping the
// half-open interval [start,end) on any of the non-empty dimension ids.
func (repo *scheduleRepository) FilterOverlappingEvents(
	ctx context.Context,
	start, end time.Time,
	excludeID, teacherID, groupID, classroomID string,
) ([]schedule.Event, error) {
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	dims := make([]string, 0, 3)
	if teacherID != "" {
		dims = append(dims, `teacher_id = `+arg(teacherID))
	}
	if groupID != "" {
		dims = append(dims, `group_id = `+arg(groupID))
	}
	if classroomID != "" {
		dims = append(dims, `classroom_id = `+arg(classroomID))
	}
	if len(dims) == 0 {
		return []schedule.Event{}, nil
	}

	q := fmt.Sprintf(
		`SELECT * FROM events WHERE NOT is_cancelled AND start_time < %s AND end_time > %s AND (%s)`,
		arg(end), arg(start), strings.Join(dims, " OR "),
	)
	if excludeID != "" {
		q += ` AND id <> ` + arg(excludeID)
	}
	q += ` ORDER BY start_time`

	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering overlapping events")
	}
	return toEvents(rows), nil
}

func toEvents(rows []eventRow) []schedule.Event {
	events := make([]schedule.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toEvent())
	}
	return events
}
