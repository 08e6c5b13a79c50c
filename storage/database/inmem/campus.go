package inmemdb

import (
	"context"
	"sort"

	"github.com/campushq/backoffice/core/campus"
)

type campusRepository struct {
	campuses   *campusTable
	classrooms *classroomTable
}

func NewCampusRepository(db *DB) campus.Repository {
	return &campusRepository{campuses: db.campus, classrooms: db.classroom}
}

func (repo *campusRepository) CreateCampus(_ context.Context, cp campus.Campus) (campus.Campus, error) {
	repo.campuses.mutex.Lock()
	defer repo.campuses.mutex.Unlock()

	repo.campuses.table[cp.ID] = &cp
	return cp, nil
}

func (repo *campusRepository) GetCampusByID(_ context.Context, id string) (campus.Campus, error) {
	repo.campuses.mutex.RLock()
	defer repo.campuses.mutex.RUnlock()

	if cp, ok := repo.campuses.table[id]; ok {
		return *cp, nil
	}
	return campus.Campus{}, campus.ErrNotFound
}

func (repo *campusRepository) QueryAllCampuses(_ context.Context) ([]campus.Campus, error) {
	repo.campuses.mutex.RLock()
	defer repo.campuses.mutex.RUnlock()

	campuses := make([]campus.Campus, 0, len(repo.campuses.table))
	for _, cp := range repo.campuses.table {
		campuses = append(campuses, *cp)
	}
	sort.Slice(campuses, func(i, j int) bool { return campuses[i].Name < campuses[j].Name })
	return campuses, nil
}

func (repo *campusRepository) UpdateCampus(_ context.Context, cp campus.Campus, isActive *bool) (campus.Campus, error) {
	repo.campuses.mutex.Lock()
	defer repo.campuses.mutex.Unlock()

	orig, ok := repo.campuses.table[cp.ID]
	if !ok {
		return campus.Campus{}, campus.ErrNotFound
	}
	orig.Name = cp.Name
	orig.City = cp.City
	orig.UpdatedAt = cp.UpdatedAt
	if isActive != nil {
		orig.IsActive = *isActive
	}
	return *orig, nil
}

func (repo *campusRepository) DeleteCampusesByID(_ context.Context, ids ...string) error {
	repo.campuses.mutex.Lock()
	defer repo.campuses.mutex.Unlock()
	for _, id := range ids {
		delete(repo.campuses.table, id)
	}
	return nil
}

func (repo *campusRepository) CreateClassroom(_ context.Context, room campus.Classroom) (campus.Classroom, error) {
	repo.classrooms.mutex.Lock()
	defer repo.classrooms.mutex.Unlock()

	repo.classrooms.table[room.ID] = &room
	return room, nil
}

func (repo *campusRepository) GetClassroomByID(_ context.Context, id string) (campus.Classroom, error) {
	repo.classrooms.mutex.RLock()
	defer repo.classrooms.mutex.RUnlock()

	if room, ok := repo.classrooms.table[id]; ok {
		return *room, nil
	}
	return campus.Classroom{}, campus.ErrClassroomNotFound
}

func (repo *campusRepository) FilterClassrooms(_ context.Context, filter campus.ClassroomFilter) ([]campus.Classroom, error) {
	repo.classrooms.mutex.RLock()
	defer repo.classrooms.mutex.RUnlock()

	rooms := make([]campus.Classroom, 0, len(repo.classrooms.table))
	for _, room := range repo.classrooms.table {
		if filter.CampusID != "" && room.CampusID != filter.CampusID {
			continue
		}
		if filter.ActiveOnly && !room.IsActive {
			continue
		}
		rooms = append(rooms, *room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func (repo *campusRepository) UpdateClassroom(_ context.Context, room campus.Classroom, isUniversal, isActive *bool) (campus.Classroom, error) {
	repo.classrooms.mutex.Lock()
	defer repo.classrooms.mutex.Unlock()

	orig, ok := repo.classrooms.table[room.ID]
	if !ok {
		return campus.Classroom{}, campus.ErrClassroomNotFound
	}
	orig.Name = room.Name
	orig.Capacity = room.Capacity
	orig.UpdatedAt = room.UpdatedAt
	if isUniversal != nil {
		orig.IsUniversal = *isUniversal
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	return *orig, nil
}

func (repo *campusRepository) DeleteClassroomsByID(_ context.Context, ids ...string) error {
	repo.classrooms.mutex.Lock()
	defer repo.classrooms.mutex.Unlock()
	for _, id := range ids {
		delete(repo.classrooms.table, id)
	}
	return nil
}
