// Package inmemdb provides map-backed repositories for tests and local
// prototyping. Every table is guarded by its own RWMutex.
package inmemdb

import (
	"sync"

	"github.com/campushq/backoffice/core/campus"
	"github.com/campushq/backoffice/core/group"
	"github.com/campushq/backoffice/core/schedule"
	"github.com/campushq/backoffice/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	campusTable struct {
		mutex sync.RWMutex
		table map[string]*campus.Campus
	}

	classroomTable struct {
		mutex sync.RWMutex
		table map[string]*campus.Classroom
	}

	groupTable struct {
		mutex sync.RWMutex
		table map[string]*group.Group
	}

	eventTable struct {
		mutex sync.RWMutex
		table map[string]*schedule.Event
	}

	DB struct {
		user      *userTable
		campus    *campusTable
		classroom *classroomTable
		group     *groupTable
		event     *eventTable
	}
)

func NewDB() *DB {
	return &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		campus:    &campusTable{table: make(map[string]*campus.Campus)},
		classroom: &classroomTable{table: make(map[string]*campus.Classroom)},
		group:     &groupTable{table: make(map[string]*group.Group)},
		event:     &eventTable{table: make(map[string]*schedule.Event)},
	}
}

// Reset empties every table; meant for tests.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.mutex.Unlock()

	db.campus.mutex.Lock()
	db.campus.table = make(map[string]*campus.Campus)
	db.campus.mutex.Unlock()

	db.classroom.mutex.Lock()
	db.classroom.table = make(map[string]*campus.Classroom)
	db.classroom.mutex.Unlock()

	db.group.mutex.Lock()
	db.group.table = make(map[string]*group.Group)
	db.group.mutex.Unlock()

	db.event.mutex.Lock()
	db.event.table = make(map[string]*schedule.Event)
	db.event.mutex.Unlock()
}
