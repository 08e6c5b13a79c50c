package campus

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("campus not found")
	ErrClassroomNotFound = errors.New("classroom not found")
)

type (
	Repository interface {
		CreateCampus(ctx context.Context, cp Campus) (Campus, error)
		GetCampusByID(ctx context.Context, id string) (Campus, error)
		QueryAllCampuses(ctx context.Context) ([]Campus, error)
		UpdateCampus(ctx context.Context, cp Campus, isActive *bool) (Campus, error)
		DeleteCampusesByID(ctx context.Context, ids ...string) error

		CreateClassroom(ctx context.Context, room Classroom) (Classroom, error)
		GetClassroomByID(ctx context.Context, id string) (Classroom, error)
		FilterClassrooms(ctx context.Context, filter ClassroomFilter) ([]Classroom, error)
		UpdateClassroom(ctx context.Context, room Classroom, isUniversal, isActive *bool) (Classroom, error)
		DeleteClassroomsByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		CreateCampus(ctx context.Context, nc NewCampus) (Campus, error)
		GetCampus(ctx context.Context, id string) (Campus, error)
		QueryCampuses(ctx context.Context) ([]Campus, error)
		UpdateCampus(ctx context.Context, id string, uc UpdateCampus) (Campus, error)
		DeleteCampuses(ctx context.Context, ids ...string) error

		CreateClassroom(ctx context.Context, nc NewClassroom) (Classroom, error)
		GetClassroom(ctx context.Context, id string) (Classroom, error)
		QueryClassrooms(ctx context.Context, filter ClassroomFilter) ([]Classroom, error)
		UpdateClassroom(ctx context.Context, id string, uc UpdateClassroom) (Classroom, error)
		DeleteClassrooms(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateCampus(ctx context.Context, nc NewCampus) (Campus, error) {
	now := time.Now().UTC()
	cp := Campus{
		ID:        uuid.New().String(),
		Name:      nc.Name,
		City:      nc.City,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateCampus(ctx, cp)
}

func (svc *Service) GetCampus(ctx context.Context, id string) (Campus, error) {
	return svc.repo.GetCampusByID(ctx, id)
}

func (svc *Service) QueryCampuses(ctx context.Context) ([]Campus, error) {
	return svc.repo.QueryAllCampuses(ctx)
}

func (svc *Service) UpdateCampus(ctx context.Context, id string, uc UpdateCampus) (Campus, error) {
	cp, err := svc.repo.GetCampusByID(ctx, id)
	if err != nil {
		return Campus{}, err
	}
	if uc.Name != "" {
		cp.Name = uc.Name
	}
	if uc.City != "" {
		cp.City = uc.City
	}
	cp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCampus(ctx, cp, uc.IsActive)
}

func (svc *Service) DeleteCampuses(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCampusesByID(ctx, ids...)
}

func (svc *Service) CreateClassroom(ctx context.Context, nc NewClassroom) (Classroom, error) {
	if _, err := svc.repo.GetCampusByID(ctx, nc.CampusID); err != nil {
		return Classroom{}, err
	}
	now := time.Now().UTC()
	room := Classroom{
		ID:          uuid.New().String(),
		CampusID:    nc.CampusID,
		Name:        nc.Name,
		Capacity:    nc.Capacity,
		IsUniversal: nc.IsUniversal,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateClassroom(ctx, room)
}

func (svc *Service) GetClassroom(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.GetClassroomByID(ctx, id)
}

func (svc *Service) QueryClassrooms(ctx context.Context, filter ClassroomFilter) ([]Classroom, error) {
	return svc.repo.FilterClassrooms(ctx, filter)
}

func (svc *Service) UpdateClassroom(ctx context.Context, id string, uc UpdateClassroom) (Classroom, error) {
	room, err := svc.repo.GetClassroomByID(ctx, id)
	if err != nil {
		return Classroom{}, err
	}
	if uc.Name != "" {
		room.Name = uc.Name
	}
	if uc.Capacity != nil {
		room.Capacity = *uc.Capacity
	}
	room.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClassroom(ctx, room, uc.IsUniversal, uc.IsActive)
}

func (svc *Service) DeleteClassrooms(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClassroomsByID(ctx, ids...)
}
