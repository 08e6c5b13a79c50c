package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/campushq/backoffice/core/group"
)

type groupRow struct {
	ID         string      `db:"id"`
	Name       string      `db:"name"`
	CampusID   null.String `db:"campus_id"`
	Program    string      `db:"program"`
	CohortYear int         `db:"cohort_year"`
	IsActive   bool        `db:"is_active"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

func (r groupRow) toGroup() group.Group {
	return group.Group{
		ID:         r.ID,
		Name:       r.Name,
		CampusID:   r.CampusID.String,
		Program:    r.Program,
		CohortYear: r.CohortYear,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toGroupRow(grp group.Group) groupRow {
	return groupRow{
		ID:         grp.ID,
		Name:       grp.Name,
		CampusID:   null.NewString(grp.CampusID, grp.CampusID != ""),
		Program:    grp.Program,
		CohortYear: grp.CohortYear,
		IsActive:   grp.IsActive,
		CreatedAt:  grp.CreatedAt,
		UpdatedAt:  grp.UpdatedAt,
	}
}

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	const q = `
INSERT INTO groups (id, name, campus_id, program, cohort_year, is_active, created_at, updated_at)
VALUES (:id, :name, :campus_id, :program, :cohort_year, :is_active, :created_at, :updated_at)`

	if _, err := repo.db.NamedExecContext(ctx, q, toGroupRow(grp)); err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	var row groupRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM groups WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, errors.Wrap(err, "getting group")
	}
	return row.toGroup(), nil
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.Group, error) {
	var rows []groupRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM groups ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	groups := make([]group.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.toGroup())
	}
	return groups, nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, grp group.Group, isActive *bool) (group.Group, error) {
	active := grp.IsActive
	if isActive != nil {
		active = *isActive
	}

	const q = `
UPDATE groups SET name = $2, campus_id = $3, program = $4, cohort_year = $5, is_active = $6, updated_at = $7
WHERE id = $1`
	res, err := repo.db.ExecContext(
		ctx, q,
		grp.ID, grp.Name, null.NewString(grp.CampusID, grp.CampusID != ""), grp.Program, grp.CohortYear, active, grp.UpdatedAt,
	)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return group.Group{}, group.ErrNotFound
	}
	grp.IsActive = active
	return grp, nil
}

func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM groups WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting groups")
	}
	return nil
}
