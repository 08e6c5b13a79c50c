package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/campushq/backoffice/core/campus"
)

type campusRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	City      string    `db:"city"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r campusRow) toCampus() campus.Campus {
	return campus.Campus(r)
}

type classroomRow struct {
	ID          string    `db:"id"`
	CampusID    string    `db:"campus_id"`
	Name        string    `db:"name"`
	Capacity    int       `db:"capacity"`
	IsUniversal bool      `db:"is_universal"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r classroomRow) toClassroom() campus.Classroom {
	return campus.Classroom(r)
}

type campusRepository struct {
	db *sqlx.DB
}

func NewCampusRepository(db *sqlx.DB) campus.Repository {
	return &campusRepository{db: db}
}

func (repo *campusRepository) CreateCampus(ctx context.Context, cp campus.Campus) (campus.Campus, error) {
	const q = `
INSERT INTO campuses (id, name, city, is_active, created_at, updated_at)
VALUES (:id, :name, :city, :is_active, :created_at, :updated_at)`

	if _, err := repo.db.NamedExecContext(ctx, q, campusRow(cp)); err != nil {
		return campus.Campus{}, errors.Wrap(err, "inserting campus")
	}
	return cp, nil
}

func (repo *campusRepository) GetCampusByID(ctx context.Context, id string) (campus.Campus, error) {
	var row campusRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM campuses WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return campus.Campus{}, campus.ErrNotFound
		}
		return campus.Campus{}, errors.Wrap(err, "getting campus")
	}
	return row.toCampus(), nil
}

func (repo *campusRepository) QueryAllCampuses(ctx context.Context) ([]campus.Campus, error) {
	var rows []campusRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM campuses ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying campuses")
	}
	campuses := make([]campus.Campus, 0, len(rows))
	for _, r := range rows {
		campuses = append(campuses, r.toCampus())
	}
	return campuses, nil
}

func (repo *campusRepository) UpdateCampus(ctx context.Context, cp campus.Campus, isActive *bool) (campus.Campus, error) {
	active := cp.IsActive
	if isActive != nil {
		active = *isActive
	}

	const q = `UPDATE campuses SET name = $2, city = $3, is_active = $4, updated_at = $5 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, cp.ID, cp.Name, cp.City, active, cp.UpdatedAt)
	if err != nil {
		return campus.Campus{}, errors.Wrap(err, "updating campus")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return campus.Campus{}, campus.ErrNotFound
	}
	cp.IsActive = active
	return cp, nil
}

func (repo *campusRepository) DeleteCampusesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM campuses WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting campuses")
	}
	return nil
}

func (repo *campusRepository) CreateClassroom(ctx context.Context, room campus.Classroom) (campus.Classroom, error) {
	const q = `
INSERT INTO classrooms (id, campus_id, name, capacity, is_universal, is_active, created_at, updated_at)
VALUES (:id, :campus_id, :name, :capacity, :is_universal, :is_active, :created_at, :updated_at)`

	if _, err := repo.db.NamedExecContext(ctx, q, classroomRow(room)); err != nil {
		return campus.Classroom{}, errors.Wrap(err, "inserting classroom")
	}
	return room, nil
}

func (repo *campusRepository) GetClassroomByID(ctx context.Context, id string) (campus.Classroom, error) {
	var row classroomRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM classrooms WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return campus.Classroom{}, campus.ErrClassroomNotFound
		}
		return campus.Classroom{}, errors.Wrap(err, "getting classroom")
	}
	return row.toClassroom(), nil
}

func (repo *campusRepository) FilterClassrooms(ctx context.Context, filter campus.ClassroomFilter) ([]campus.Classroom, error) {
	q := `SELECT * FROM classrooms WHERE true`
	var args []interface{}
	if filter.CampusID != "" {
		args = append(args, filter.CampusID)
		q += fmt.Sprintf(` AND campus_id = $%d`, len(args))
	}
	if filter.ActiveOnly {
		q += ` AND is_active`
	}
	q += ` ORDER BY name`

	var rows []classroomRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering classrooms")
	}
	rooms := make([]campus.Classroom, 0, len(rows))
	for _, r := range rows {
		rooms = append(rooms, r.toClassroom())
	}
	return rooms, nil
}

func (repo *campusRepository) UpdateClassroom(ctx context.Context, room campus.Classroom, isUniversal, isActive *bool) (campus.Classroom, error) {
	universal := room.IsUniversal
	if isUniversal != nil {
		universal = *isUniversal
	}
	active := room.IsActive
	if isActive != nil {
		active = *isActive
	}

	const q = `
UPDATE classrooms SET name = $2, capacity = $3, is_universal = $4, is_active = $5, updated_at = $6 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, room.ID, room.Name, room.Capacity, universal, active, room.UpdatedAt)
	if err != nil {
		return campus.Classroom{}, errors.Wrap(err, "updating classroom")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return campus.Classroom{}, campus.ErrClassroomNotFound
	}
	room.IsUniversal = universal
	room.IsActive = active
	return room, nil
}

func (repo *campusRepository) DeleteClassroomsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM classrooms WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting classrooms")
	}
	return nil
}
