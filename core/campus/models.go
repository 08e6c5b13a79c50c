package campus

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campushq/backoffice/core"
)

type Campus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Classroom is a bookable physical room at a campus. A universal classroom
// can host unlimited concurrent events and is exempt from collision checks.
type Classroom struct {
	ID          string    `json:"id"`
	CampusID    string    `json:"campus_id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	IsUniversal bool      `json:"is_universal"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewCampus struct {
	Name string `json:"name" validate:"required"`
	City string `json:"city"`
}

func (nc *NewCampus) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.City = core.CleanString(nc.City)
	return validate.Struct(nc)
}

type UpdateCampus struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	IsActive *bool  `json:"is_active"`
}

type NewClassroom struct {
	CampusID    string `json:"campus_id" validate:"required,uuid4"`
	Name        string `json:"name" validate:"required"`
	Capacity    int    `json:"capacity" validate:"omitempty,min=0"`
	IsUniversal bool   `json:"is_universal"`
}

func (nc *NewClassroom) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type UpdateClassroom struct {
	Name        string `json:"name"`
	Capacity    *int   `json:"capacity" validate:"omitempty,min=0"`
	IsUniversal *bool  `json:"is_universal"`
	IsActive    *bool  `json:"is_active"`
}

func (uc *UpdateClassroom) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	return validate.Struct(uc)
}

// ClassroomFilter narrows classroom listings. Zero values mean "any".
type ClassroomFilter struct {
	CampusID   string `query:"campus_id"`
	ActiveOnly bool   `query:"active_only"`
}
