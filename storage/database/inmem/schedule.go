package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/campushq/backoffice/core/schedule"
)

type scheduleRepository struct {
	db *eventTable
}

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.event}
}

func (repo *scheduleRepository) query() []schedule.Event {
	events := make([]schedule.Event, 0, len(repo.db.table))
	for _, evt := range repo.db.table {
		events = append(events, *evt)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartTime.Before(events[j].StartTime) })
	return events
}

func (repo *scheduleRepository) CreateEvent(_ context.Context, evt schedule.Event) (schedule.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *scheduleRepository) CreateEvents(_ context.Context, evts []schedule.Event) ([]schedule.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i := range evts {
		evt := evts[i]
		repo.db.table[evt.ID] = &evt
	}
	return evts, nil
}

func (repo *scheduleRepository) GetEventByID(_ context.Context, id string) (schedule.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if evt, ok := repo.db.table[id]; ok {
		return *evt, nil
	}
	return schedule.Event{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) FilterEvents(_ context.Context, filter schedule.QueryFilter) ([]schedule.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]schedule.Event, 0)
	for _, evt := range repo.query() {
		if evt.IsCancelled && !filter.IncludeCancelled {
			continue
		}
		if filter.GroupID != "" && evt.GroupID != filter.GroupID {
			continue
		}
		if filter.TeacherID != "" && evt.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ClassroomID != "" && evt.ClassroomID() != filter.ClassroomID {
			continue
		}
		if len(filter.Types) > 0 && !containsString(filter.Types, evt.Type) {
			continue
		}
		if !filter.From.IsZero() && !evt.EndTime.After(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !evt.StartTime.Before(filter.To) {
			continue
		}
		if filter.Search != "" && !matchesEventSearch(evt, filter.Search) {
			continue
		}
		matches = append(matches, evt)
	}
	return matches, nil
}

func (repo *scheduleRepository) UpdateEvent(_ context.Context, evt schedule.Event) (schedule.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[evt.ID]; !ok {
		return schedule.Event{}, schedule.ErrNotFound
	}
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *scheduleRepository) DeleteEventsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *scheduleRepository) FilterOverlappingEvents(
	_ context.Context,
	start, end time.Time,
	excludeID, teacherID, groupID, classroomID string,
) ([]schedule.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if teacherID == "" && groupID == "" && classroomID == "" {
		return []schedule.Event{}, nil
	}

	matches := make([]schedule.Event, 0)
	for _, evt := range repo.query() {
		if evt.IsCancelled || evt.ID == excludeID {
			continue
		}
		if !schedule.Overlaps(evt.StartTime, evt.EndTime, start, end) {
			continue
		}
		if (teacherID != "" && evt.TeacherID == teacherID) ||
			(groupID != "" && evt.GroupID == groupID) ||
			(classroomID != "" && evt.ClassroomID() == classroomID) {
			matches = append(matches, evt)
		}
	}
	return matches, nil
}

func containsString(vals []string, want string) bool {
	for _, v := range vals {
		if v == want {
			return true
		}
	}
	return false
}

func matchesEventSearch(evt schedule.Event, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(evt.Title), search) ||
		strings.Contains(strings.ToLower(evt.Description), search)
}
