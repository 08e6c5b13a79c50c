package group

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("group not found")

type (
	Repository interface {
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		GetGroupByID(ctx context.Context, id string) (Group, error)
		QueryAllGroups(ctx context.Context) ([]Group, error)
		UpdateGroup(ctx context.Context, grp Group, isActive *bool) (Group, error)
		DeleteGroupsByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ng NewGroup) (Group, error)
		GetByID(ctx context.Context, id string) (Group, error)
		QueryAll(ctx context.Context) ([]Group, error)
		Update(ctx context.Context, id string, ug UpdateGroup) (Group, error)
		Delete(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()
	grp := Group{
		ID:         uuid.New().String(),
		Name:       ng.Name,
		CampusID:   ng.CampusID,
		Program:    ng.Program,
		CohortYear: ng.CohortYear,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateGroup(ctx, grp)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Group, error) {
	return svc.repo.QueryAllGroups(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGroup) (Group, error) {
	grp, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return Group{}, err
	}
	if ug.Name != "" {
		grp.Name = ug.Name
	}
	if ug.Program != "" {
		grp.Program = ug.Program
	}
	if ug.CohortYear != nil {
		grp.CohortYear = *ug.CohortYear
	}
	grp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGroup(ctx, grp, ug.IsActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteGroupsByID(ctx, ids...)
}
