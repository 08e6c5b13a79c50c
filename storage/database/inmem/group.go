package inmemdb

import (
	"context"
	"sort"

	"github.com/campushq/backoffice/core/group"
)

type groupRepository struct {
	db *groupTable
}

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db.group}
}

func (repo *groupRepository) CreateGroup(_ context.Context, grp group.Group) (group.Group, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) GetGroupByID(_ context.Context, id string) (group.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grp, ok := repo.db.table[id]; ok {
		return *grp, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) QueryAllGroups(_ context.Context) ([]group.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	groups := make([]group.Group, 0, len(repo.db.table))
	for _, grp := range repo.db.table {
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (repo *groupRepository) UpdateGroup(_ context.Context, grp group.Group, isActive *bool) (group.Group, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[grp.ID]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	orig.Name = grp.Name
	orig.CampusID = grp.CampusID
	orig.Program = grp.Program
	orig.CohortYear = grp.CohortYear
	orig.UpdatedAt = grp.UpdatedAt
	if isActive != nil {
		orig.IsActive = *isActive
	}
	return *orig, nil
}

func (repo *groupRepository) DeleteGroupsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
