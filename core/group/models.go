package group

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campushq/backoffice/core"
)

// Group is an enrollment cohort of students following a study program at a
// campus. Events always belong to exactly one group.
type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CampusID   string    `json:"campus_id"`
	Program    string    `json:"program,omitempty"`
	CohortYear int       `json:"cohort_year,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type NewGroup struct {
	Name       string `json:"name" validate:"required"`
	CampusID   string `json:"campus_id" validate:"required,uuid4"`
	Program    string `json:"program"`
	CohortYear int    `json:"cohort_year" validate:"omitempty,min=2000"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Program = core.CleanString(ng.Program)
	return validate.Struct(ng)
}

type UpdateGroup struct {
	Name       string `json:"name"`
	Program    string `json:"program"`
	CohortYear *int   `json:"cohort_year" validate:"omitempty,min=2000"`
	IsActive   *bool  `json:"is_active"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	ug.Name = core.CleanString(ug.Name)
	ug.Program = core.CleanString(ug.Program)
	return validate.Struct(ug)
}
